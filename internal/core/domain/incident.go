package domain

import (
	"errors"
	"time"
)

// IncidentStatus represents the lifecycle state of a security incident.
type IncidentStatus string

const (
	StatusOpen      IncidentStatus = "open"
	StatusTriaged   IncidentStatus = "triaged"
	StatusContained IncidentStatus = "contained"
	StatusResolved  IncidentStatus = "resolved"
	StatusDismissed IncidentStatus = "dismissed"
)

// validTransitions defines the allowed state machine transitions.
// Resolved and dismissed are terminal.
var validTransitions = map[IncidentStatus][]IncidentStatus{
	StatusOpen:      {StatusTriaged, StatusDismissed},
	StatusTriaged:   {StatusContained, StatusResolved, StatusDismissed},
	StatusContained: {StatusResolved},
}

var ErrInvalidTransition = errors.New("invalid status transition")
var ErrIncidentNotFound = errors.New("incident not found")
var ErrDuplicateIncident = errors.New("incident already exists")
var ErrForbidden = errors.New("access forbidden")

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s IncidentStatus) CanTransitionTo(next IncidentStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s IncidentStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

// Severity classifies how dangerous an incident or event is considered.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityWeights orders severities for comparison and scoring.
var severityWeights = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Weight returns the numeric rank of the severity; unknown severities rank as low.
func (s Severity) Weight() int {
	if w, ok := severityWeights[s]; ok {
		return w
	}
	return severityWeights[SeverityLow]
}

// AtLeast reports whether s ranks equal to or above other.
func (s Severity) AtLeast(other Severity) bool {
	return s.Weight() >= other.Weight()
}

// ValidSeverity reports whether the string is a known severity label.
func ValidSeverity(s string) bool {
	_, ok := severityWeights[Severity(s)]
	return ok
}

// StatusHistoryEntry records a single status transition on an incident.
type StatusHistoryEntry struct {
	Status    IncidentStatus `json:"status" bson:"status"`
	Timestamp time.Time      `json:"timestamp" bson:"timestamp"`
	Actor     string         `json:"actor,omitempty" bson:"actor,omitempty"`
	Notes     string         `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Incident is the core aggregate root. One incident groups every security
// event observed for the same asset and threat category while it stays open.
type Incident struct {
	ID            string               `json:"id" bson:"_id,omitempty"`
	IncidentID    string               `json:"incident_id" bson:"incident_id"`
	TeamID        string               `json:"team_id" bson:"team_id"`
	AssetID       string               `json:"asset_id" bson:"asset_id"`
	Category      ThreatCategory       `json:"category" bson:"category"`
	Title         string               `json:"title" bson:"title"`
	Severity      Severity             `json:"severity" bson:"severity"`
	Score         float64              `json:"score" bson:"score"`
	Status        IncidentStatus       `json:"status" bson:"status"`
	EventCount    int                  `json:"event_count" bson:"event_count"`
	CreatedAt     time.Time            `json:"created_at" bson:"created_at"`
	LastEventAt   time.Time            `json:"last_event_at" bson:"last_event_at"`
	StatusHistory []StatusHistoryEntry `json:"status_history" bson:"status_history"`
}
