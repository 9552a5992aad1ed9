package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartcompute/monitoring-system/internal/api/metrics"
	"github.com/smartcompute/monitoring-system/internal/core/domain"
	"github.com/smartcompute/monitoring-system/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type IncidentService struct {
	repo   ports.IncidentRepository
	logger zerolog.Logger
}

func NewIncidentService(repo ports.IncidentRepository, logger zerolog.Logger) *IncidentService {
	return &IncidentService{repo: repo, logger: logger}
}

// CreateIncident opens an incident manually, bypassing event triage. Used by
// analysts for threats reported out of band.
func (s *IncidentService) CreateIncident(ctx context.Context, input ports.CreateIncidentInput) (*ports.IncidentResult, error) {
	severity := domain.Severity(input.Severity)
	if !domain.ValidSeverity(input.Severity) {
		severity = domain.SeverityMedium
	}

	now := time.Now().UTC()
	incident := &domain.Incident{
		IncidentID:  generateIncidentID(),
		TeamID:      input.TeamID,
		AssetID:     input.AssetID,
		Category:    domain.ThreatCategory(input.Category),
		Title:       input.Title,
		Severity:    severity,
		Score:       float64(severity.Weight()) * 20,
		Status:      domain.StatusOpen,
		EventCount:  0,
		CreatedAt:   now,
		LastEventAt: now,
		StatusHistory: []domain.StatusHistoryEntry{
			{Status: domain.StatusOpen, Timestamp: now, Actor: input.Actor, Notes: "opened manually"},
		},
	}

	if err := s.repo.Create(ctx, incident); err != nil {
		s.logger.Error().Err(err).Msg("failed to create incident")
		return nil, err
	}

	metrics.IncidentsOpenedTotal.WithLabelValues(string(severity), input.Category).Inc()
	s.logger.Info().Str("incident", incident.IncidentID).Str("asset", input.AssetID).Msg("incident created")

	return &ports.IncidentResult{
		IncidentID: incident.IncidentID,
		Status:     string(incident.Status),
		Severity:   string(incident.Severity),
		CreatedAt:  incident.CreatedAt,
	}, nil
}

// GetIncident retrieves a single incident, enforcing team scoping for analysts.
func (s *IncidentService) GetIncident(ctx context.Context, input ports.GetIncidentInput) (*ports.IncidentDetail, error) {
	teamFilter := ""
	if input.Role == domain.RoleAnalyst {
		if input.TeamID == "" {
			return nil, domain.ErrForbidden
		}
		teamFilter = input.TeamID
	}

	incident, err := s.repo.FindByIncidentID(ctx, input.IncidentID, teamFilter)
	if err != nil {
		return nil, err
	}

	return toDetail(incident), nil
}

// ListIncidents returns a page of incidents matching the filters. Analysts
// are always scoped to their own team regardless of the filter they send.
func (s *IncidentService) ListIncidents(ctx context.Context, input ports.ListIncidentsInput) (*ports.ListIncidentsResult, error) {
	teamFilter := ""
	if input.Role == domain.RoleAnalyst {
		if input.TeamID == "" {
			return nil, domain.ErrForbidden
		}
		teamFilter = input.TeamID
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	items, total, err := s.repo.List(ctx, ports.ListIncidentsFilter{
		TeamID:   teamFilter,
		Status:   input.Status,
		Severity: input.Severity,
		Category: input.Category,
		AssetID:  input.AssetID,
		Search:   input.Search,
		DateFrom: input.DateFrom,
		DateTo:   input.DateTo,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list incidents")
		return nil, err
	}

	summaries := make([]ports.IncidentSummary, 0, len(items))
	for _, inc := range items {
		summaries = append(summaries, ports.IncidentSummary{
			IncidentID:  inc.IncidentID,
			AssetID:     inc.AssetID,
			Category:    string(inc.Category),
			Title:       inc.Title,
			Severity:    string(inc.Severity),
			Score:       inc.Score,
			Status:      string(inc.Status),
			EventCount:  inc.EventCount,
			TeamID:      inc.TeamID,
			CreatedAt:   inc.CreatedAt,
			LastEventAt: inc.LastEventAt,
		})
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListIncidentsResult{
		Items:      summaries,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Transition applies an analyst-driven status change, validated against the
// incident lifecycle state machine.
func (s *IncidentService) Transition(ctx context.Context, input ports.TransitionInput) (*ports.IncidentDetail, error) {
	teamFilter := ""
	if input.Role == domain.RoleAnalyst {
		if input.TeamID == "" {
			return nil, domain.ErrForbidden
		}
		teamFilter = input.TeamID
	}

	incident, err := s.repo.FindByIncidentID(ctx, input.IncidentID, teamFilter)
	if err != nil {
		return nil, err
	}

	next := domain.IncidentStatus(input.NextStatus)
	if !incident.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("transition: %w (from %s to %s)", domain.ErrInvalidTransition, incident.Status, next)
	}

	entry := domain.StatusHistoryEntry{
		Status:    next,
		Timestamp: time.Now().UTC(),
		Actor:     input.Actor,
		Notes:     input.Notes,
	}
	if err := s.repo.UpdateStatus(ctx, input.IncidentID, next, entry); err != nil {
		s.logger.Error().Err(err).Str("incident", input.IncidentID).Msg("failed to update status")
		return nil, err
	}

	metrics.IncidentTransitionsTotal.WithLabelValues(string(incident.Status), string(next)).Inc()
	s.logger.Info().
		Str("incident", input.IncidentID).
		Str("from", string(incident.Status)).
		Str("to", string(next)).
		Str("actor", input.Actor).
		Msg("incident status changed")

	incident.Status = next
	incident.StatusHistory = append(incident.StatusHistory, entry)
	return toDetail(incident), nil
}

func toDetail(inc *domain.Incident) *ports.IncidentDetail {
	history := make([]ports.StatusHistoryItem, 0, len(inc.StatusHistory))
	for _, h := range inc.StatusHistory {
		history = append(history, ports.StatusHistoryItem{
			Status:    string(h.Status),
			Timestamp: h.Timestamp,
			Actor:     h.Actor,
			Notes:     h.Notes,
		})
	}
	return &ports.IncidentDetail{
		IncidentID:    inc.IncidentID,
		AssetID:       inc.AssetID,
		Category:      string(inc.Category),
		Title:         inc.Title,
		Severity:      string(inc.Severity),
		Score:         inc.Score,
		Status:        string(inc.Status),
		EventCount:    inc.EventCount,
		CreatedAt:     inc.CreatedAt,
		LastEventAt:   inc.LastEventAt,
		StatusHistory: history,
	}
}
