package ports

import (
	"context"
	"time"
)

// IndicatorsInput carries optional observables for a detection.
type IndicatorsInput struct {
	SrcIP       string
	DstIP       string
	ProcessName string
	FileHash    string
}

// SecurityEventInput is the DTO passed from the transport layer to TriageService.
type SecurityEventInput struct {
	AssetID    string
	TeamID     string
	Category   string
	Severity   string
	Confidence float64
	Indicators IndicatorsInput
	Source     string
	Timestamp  time.Time
}

// TriageOutcome describes what triage did with one event.
type TriageOutcome struct {
	IncidentID string
	Created    bool // true when a new incident was opened
	Severity   string
	Score      float64
	Duplicate  bool // true when the event was skipped as a dedup hit
}

// TriageService folds incoming detections into incidents.
type TriageService interface {
	Process(ctx context.Context, event SecurityEventInput) (*TriageOutcome, error)
}
