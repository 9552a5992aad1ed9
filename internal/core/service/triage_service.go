package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartcompute/monitoring-system/internal/api/metrics"
	"github.com/smartcompute/monitoring-system/internal/core/domain"
	"github.com/smartcompute/monitoring-system/internal/core/ports"
)

// DedupChecker abstracts the idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, assetID, category, fileHash string, ts time.Time) (bool, error)
	Mark(ctx context.Context, assetID, category, fileHash string, ts time.Time) error
}

// Severity score bands. A triage score in [0,100] maps onto the severity the
// incident is opened (or escalated) at.
const (
	scoreBandCritical = 85.0
	scoreBandHigh     = 65.0
	scoreBandMedium   = 40.0
)

type triageService struct {
	incidents ports.IncidentRepository
	events    ports.EventRepository
	dedup     DedupChecker
	bizCtx    domain.BusinessContext
	log       zerolog.Logger
}

// NewTriageService returns a TriageService implementation.
func NewTriageService(
	incidents ports.IncidentRepository,
	events ports.EventRepository,
	dedup DedupChecker,
	bizCtx domain.BusinessContext,
	log zerolog.Logger,
) ports.TriageService {
	return &triageService{
		incidents: incidents,
		events:    events,
		dedup:     dedup,
		bizCtx:    bizCtx,
		log:       log,
	}
}

// Process deduplicates, scores, and correlates a single detection. Events for
// an asset/category pair with an open incident escalate that incident; others
// open a new one at the computed severity.
func (s *triageService) Process(ctx context.Context, in ports.SecurityEventInput) (*ports.TriageOutcome, error) {
	start := time.Now()

	// 1. Idempotency check: silently skip duplicates.
	isDup, err := s.dedup.IsDuplicate(ctx, in.AssetID, in.Category, in.Indicators.FileHash, in.Timestamp)
	if err != nil {
		s.log.Warn().Err(err).Str("asset", in.AssetID).Msg("dedup check failed, processing anyway")
	} else if isDup {
		metrics.EventsDedupTotal.WithLabelValues("hit").Inc()
		s.log.Debug().Str("asset", in.AssetID).Str("category", in.Category).Msg("duplicate event skipped")
		return &ports.TriageOutcome{Duplicate: true}, nil
	}
	metrics.EventsDedupTotal.WithLabelValues("miss").Inc()

	// 2. Score the event against the business context.
	score, severity := s.Score(in)
	category := domain.ThreatCategory(in.Category)

	// 3. Correlate: attach to the open incident for (asset, category), or open one.
	var incidentID string
	created := false
	existing, err := s.incidents.FindOpenByAsset(ctx, in.AssetID, category)
	switch {
	case err == nil:
		incidentID = existing.IncidentID
		// Severity and score only escalate while an incident is open.
		if err := s.incidents.AppendEvent(ctx, incidentID, severity, score, in.Timestamp); err != nil {
			metrics.EventsErrorsTotal.WithLabelValues("append_failed").Inc()
			return nil, fmt.Errorf("triage: append event: %w", err)
		}
	case errors.Is(err, domain.ErrIncidentNotFound):
		incident := &domain.Incident{
			IncidentID:  generateIncidentID(),
			AssetID:     in.AssetID,
			TeamID:      in.TeamID,
			Category:    category,
			Title:       fmt.Sprintf("%s activity on %s", category, in.AssetID),
			Severity:    severity,
			Score:       score,
			Status:      domain.StatusOpen,
			EventCount:  1,
			CreatedAt:   time.Now().UTC(),
			LastEventAt: in.Timestamp,
			StatusHistory: []domain.StatusHistoryEntry{
				{Status: domain.StatusOpen, Timestamp: time.Now().UTC(), Actor: "triage", Notes: "opened by " + in.Source},
			},
		}
		if err := s.incidents.Create(ctx, incident); err != nil {
			metrics.EventsErrorsTotal.WithLabelValues("create_failed").Inc()
			return nil, fmt.Errorf("triage: create incident: %w", err)
		}
		incidentID = incident.IncidentID
		created = true
		metrics.IncidentsOpenedTotal.WithLabelValues(string(severity), in.Category).Inc()
	default:
		metrics.EventsErrorsTotal.WithLabelValues("lookup_failed").Inc()
		return nil, fmt.Errorf("triage: find open incident: %w", err)
	}

	// 4. Mark as processed before the audit write (prevents duplicate
	// processing on retry).
	if markErr := s.dedup.Mark(ctx, in.AssetID, in.Category, in.Indicators.FileHash, in.Timestamp); markErr != nil {
		s.log.Warn().Err(markErr).Str("asset", in.AssetID).Msg("failed to set dedup key")
	}

	// 5. Insert into audit trail (non-fatal on failure).
	event := &domain.SecurityEvent{
		EventID:    uuid.NewString(),
		AssetID:    in.AssetID,
		Category:   category,
		Severity:   severity,
		Confidence: clamp01(in.Confidence),
		Indicators: domain.Indicators{
			SrcIP:       in.Indicators.SrcIP,
			DstIP:       in.Indicators.DstIP,
			ProcessName: in.Indicators.ProcessName,
			FileHash:    in.Indicators.FileHash,
		},
		Source:    in.Source,
		Timestamp: in.Timestamp,
	}
	if err := s.events.Insert(ctx, event, incidentID); err != nil {
		s.log.Warn().Err(err).Str("asset", in.AssetID).Msg("failed to insert audit event")
	}

	metrics.EventsProcessedTotal.WithLabelValues(string(severity), in.Source).Inc()
	metrics.EventProcessingDuration.WithLabelValues(string(severity)).Observe(time.Since(start).Seconds())

	s.log.Info().
		Str("asset", in.AssetID).
		Str("category", in.Category).
		Str("incident", incidentID).
		Str("severity", string(severity)).
		Float64("score", score).
		Bool("created", created).
		Msg("event triaged")

	return &ports.TriageOutcome{
		IncidentID: incidentID,
		Created:    created,
		Severity:   string(severity),
		Score:      score,
		Duplicate:  false,
	}, nil
}

// Score computes the triage score for an event against the service's
// business context.
func (s *triageService) Score(in ports.SecurityEventInput) (float64, domain.Severity) {
	return ScoreEvent(s.bizCtx, in)
}

// ScoreEvent computes the triage score in [0,100] and the severity band it
// falls into. Connector confidence is clamped to [0,1] before use; a
// connector can never push severity past the band its combined score earns.
func ScoreEvent(bizCtx domain.BusinessContext, in ports.SecurityEventInput) (float64, domain.Severity) {
	confidence := clamp01(in.Confidence)
	sevNorm := float64(domain.Severity(in.Severity).Weight()) / float64(domain.SeverityCritical.Weight())
	catWeight := domain.ThreatCategory(in.Category).Weight()
	tier := bizCtx.TierFor(in.AssetID)

	score := 100 * (0.5*sevNorm + 0.5*confidence) * catWeight * tier.Multiplier()
	if bizCtx.OffHours(in.Timestamp) {
		score *= 1.1
	}
	if score > 100 {
		score = 100
	}

	return score, severityForScore(score)
}

// severityForScore maps a triage score onto its severity band.
func severityForScore(score float64) domain.Severity {
	switch {
	case score >= scoreBandCritical:
		return domain.SeverityCritical
	case score >= scoreBandHigh:
		return domain.SeverityHigh
	case score >= scoreBandMedium:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// generateIncidentID returns a unique incident identifier in the format SC-XXXXXXXX.
func generateIncidentID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("SC-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("SC-%08X", b)
}
