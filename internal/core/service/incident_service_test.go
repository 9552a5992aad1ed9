package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartcompute/monitoring-system/internal/core/domain"
	"github.com/smartcompute/monitoring-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubIncidentRepo struct {
	byID      map[string]*domain.Incident
	createErr error
	appended  []string // incident IDs that received AppendEvent
}

func newStubIncidentRepo() *stubIncidentRepo {
	return &stubIncidentRepo{byID: make(map[string]*domain.Incident)}
}

func (r *stubIncidentRepo) Create(_ context.Context, inc *domain.Incident) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.byID[inc.IncidentID]; exists {
		return domain.ErrDuplicateIncident
	}
	clone := *inc
	r.byID[inc.IncidentID] = &clone
	return nil
}

func (r *stubIncidentRepo) FindByIncidentID(_ context.Context, incidentID, teamID string) (*domain.Incident, error) {
	inc, ok := r.byID[incidentID]
	if !ok {
		return nil, domain.ErrIncidentNotFound
	}
	if teamID != "" && inc.TeamID != teamID {
		return nil, domain.ErrIncidentNotFound
	}
	clone := *inc
	return &clone, nil
}

func (r *stubIncidentRepo) FindOpenByAsset(_ context.Context, assetID string, category domain.ThreatCategory) (*domain.Incident, error) {
	for _, inc := range r.byID {
		if inc.AssetID == assetID && inc.Category == category && !inc.Status.Terminal() {
			clone := *inc
			return &clone, nil
		}
	}
	return nil, domain.ErrIncidentNotFound
}

func (r *stubIncidentRepo) AppendEvent(_ context.Context, incidentID string, severity domain.Severity, score float64, lastEventAt time.Time) error {
	inc, ok := r.byID[incidentID]
	if !ok {
		return domain.ErrIncidentNotFound
	}
	inc.EventCount++
	inc.LastEventAt = lastEventAt
	if score > inc.Score {
		inc.Score = score
	}
	if severity.Weight() > inc.Severity.Weight() {
		inc.Severity = severity
	}
	r.appended = append(r.appended, incidentID)
	return nil
}

func (r *stubIncidentRepo) UpdateStatus(_ context.Context, incidentID string, status domain.IncidentStatus, entry domain.StatusHistoryEntry) error {
	inc, ok := r.byID[incidentID]
	if !ok {
		return domain.ErrIncidentNotFound
	}
	inc.Status = status
	inc.StatusHistory = append(inc.StatusHistory, entry)
	return nil
}

func (r *stubIncidentRepo) List(_ context.Context, f ports.ListIncidentsFilter) ([]*domain.Incident, int64, error) {
	var matched []*domain.Incident
	for _, inc := range r.byID {
		if f.TeamID != "" && inc.TeamID != f.TeamID {
			continue
		}
		if f.Status != "" && string(inc.Status) != f.Status {
			continue
		}
		if f.Severity != "" && string(inc.Severity) != f.Severity {
			continue
		}
		clone := *inc
		matched = append(matched, &clone)
	}
	return matched, int64(len(matched)), nil
}

func seededIncident(repo *stubIncidentRepo, incidentID, teamID string, status domain.IncidentStatus) {
	now := time.Now().UTC()
	repo.byID[incidentID] = &domain.Incident{
		IncidentID:    incidentID,
		TeamID:        teamID,
		AssetID:       "web-01",
		Category:      domain.CategoryMalware,
		Title:         "malware activity on web-01",
		Severity:      domain.SeverityHigh,
		Score:         70,
		Status:        status,
		EventCount:    3,
		CreatedAt:     now,
		LastEventAt:   now,
		StatusHistory: []domain.StatusHistoryEntry{{Status: domain.StatusOpen, Timestamp: now}},
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestIncidentService_CreateIncident(t *testing.T) {
	repo := newStubIncidentRepo()
	svc := NewIncidentService(repo, zerolog.Nop())

	result, err := svc.CreateIncident(context.Background(), ports.CreateIncidentInput{
		AssetID:  "db-02",
		Category: "exfiltration",
		Title:    "suspicious outbound transfer",
		Severity: "high",
		TeamID:   "team_soc",
		Actor:    "alice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != string(domain.StatusOpen) {
		t.Errorf("expected open status, got %s", result.Status)
	}
	if result.Severity != "high" {
		t.Errorf("expected high severity, got %s", result.Severity)
	}

	stored := repo.byID[result.IncidentID]
	if stored == nil {
		t.Fatalf("incident not persisted")
	}
	if stored.TeamID != "team_soc" {
		t.Errorf("team not recorded: %q", stored.TeamID)
	}
	if len(stored.StatusHistory) != 1 || stored.StatusHistory[0].Actor != "alice" {
		t.Errorf("unexpected history: %+v", stored.StatusHistory)
	}
}

func TestIncidentService_CreateIncident_DefaultsSeverity(t *testing.T) {
	repo := newStubIncidentRepo()
	svc := NewIncidentService(repo, zerolog.Nop())

	result, err := svc.CreateIncident(context.Background(), ports.CreateIncidentInput{
		AssetID:  "db-02",
		Category: "anomaly",
		Title:    "odd login pattern",
		Severity: "catastrophic", // not a valid label
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Severity != string(domain.SeverityMedium) {
		t.Errorf("expected medium default, got %s", result.Severity)
	}
}

func TestIncidentService_GetIncident_AdminSeesAll(t *testing.T) {
	repo := newStubIncidentRepo()
	seededIncident(repo, "SC-00000001", "team_a", domain.StatusOpen)
	svc := NewIncidentService(repo, zerolog.Nop())

	detail, err := svc.GetIncident(context.Background(), ports.GetIncidentInput{
		IncidentID: "SC-00000001",
		Role:       domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.IncidentID != "SC-00000001" {
		t.Errorf("unexpected incident: %s", detail.IncidentID)
	}
}

func TestIncidentService_GetIncident_AnalystScoped(t *testing.T) {
	repo := newStubIncidentRepo()
	seededIncident(repo, "SC-00000001", "team_a", domain.StatusOpen)
	svc := NewIncidentService(repo, zerolog.Nop())

	// Wrong team sees nothing.
	_, err := svc.GetIncident(context.Background(), ports.GetIncidentInput{
		IncidentID: "SC-00000001",
		Role:       domain.RoleAnalyst,
		TeamID:     "team_b",
	})
	if !errors.Is(err, domain.ErrIncidentNotFound) {
		t.Fatalf("expected ErrIncidentNotFound, got %v", err)
	}

	// Analyst without a team is rejected outright.
	_, err = svc.GetIncident(context.Background(), ports.GetIncidentInput{
		IncidentID: "SC-00000001",
		Role:       domain.RoleAnalyst,
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestIncidentService_Transition_Valid(t *testing.T) {
	repo := newStubIncidentRepo()
	seededIncident(repo, "SC-00000001", "team_a", domain.StatusOpen)
	svc := NewIncidentService(repo, zerolog.Nop())

	detail, err := svc.Transition(context.Background(), ports.TransitionInput{
		IncidentID: "SC-00000001",
		NextStatus: "triaged",
		Role:       domain.RoleAnalyst,
		TeamID:     "team_a",
		Actor:      "bob",
		Notes:      "confirmed by EDR",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Status != "triaged" {
		t.Errorf("expected triaged, got %s", detail.Status)
	}
	last := detail.StatusHistory[len(detail.StatusHistory)-1]
	if last.Actor != "bob" || last.Notes != "confirmed by EDR" {
		t.Errorf("unexpected history entry: %+v", last)
	}
}

func TestIncidentService_Transition_Invalid(t *testing.T) {
	repo := newStubIncidentRepo()
	seededIncident(repo, "SC-00000001", "team_a", domain.StatusOpen)
	svc := NewIncidentService(repo, zerolog.Nop())

	_, err := svc.Transition(context.Background(), ports.TransitionInput{
		IncidentID: "SC-00000001",
		NextStatus: "resolved", // open -> resolved is not allowed
		Role:       domain.RoleAdmin,
	})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if repo.byID["SC-00000001"].Status != domain.StatusOpen {
		t.Error("status must not change on invalid transition")
	}
}

func TestIncidentService_ListIncidents_PaginationDefaults(t *testing.T) {
	repo := newStubIncidentRepo()
	seededIncident(repo, "SC-00000001", "team_a", domain.StatusOpen)
	seededIncident(repo, "SC-00000002", "team_a", domain.StatusTriaged)
	svc := NewIncidentService(repo, zerolog.Nop())

	result, err := svc.ListIncidents(context.Background(), ports.ListIncidentsInput{
		Role: domain.RoleAdmin,
		Page: -5, Limit: 100000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Page != 1 {
		t.Errorf("expected page clamped to 1, got %d", result.Page)
	}
	if result.Limit != maxPageLimit {
		t.Errorf("expected limit capped at %d, got %d", maxPageLimit, result.Limit)
	}
	if result.Total != 2 {
		t.Errorf("expected 2 incidents, got %d", result.Total)
	}
}
