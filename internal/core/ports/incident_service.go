package ports

import (
	"context"
	"time"
)

// CreateIncidentInput carries all data needed to open an incident manually.
type CreateIncidentInput struct {
	AssetID  string
	Category string
	Title    string
	Severity string
	TeamID   string
	Actor    string
}

// IncidentResult is returned by the service after creating an incident.
type IncidentResult struct {
	IncidentID string
	Status     string
	Severity   string
	CreatedAt  time.Time
}

// GetIncidentInput carries the parameters needed to retrieve a single incident.
type GetIncidentInput struct {
	IncidentID string
	// Role and TeamID are used to enforce RBAC: "analyst" role only sees own team.
	Role   string
	TeamID string
}

// StatusHistoryItem is a single entry in the incident's status history.
type StatusHistoryItem struct {
	Status    string
	Timestamp time.Time
	Actor     string
	Notes     string
}

// IncidentDetail is the full incident view returned by GetIncident.
type IncidentDetail struct {
	IncidentID    string
	AssetID       string
	Category      string
	Title         string
	Severity      string
	Score         float64
	Status        string
	EventCount    int
	CreatedAt     time.Time
	LastEventAt   time.Time
	StatusHistory []StatusHistoryItem
}

// ListIncidentsInput carries all parameters for the list endpoint.
type ListIncidentsInput struct {
	Role     string
	TeamID   string
	Status   string
	Severity string
	Category string
	AssetID  string
	Search   string
	DateFrom time.Time
	DateTo   time.Time
	Page     int
	Limit    int
}

// IncidentSummary is the lightweight view used in list responses (no status_history).
type IncidentSummary struct {
	IncidentID  string
	AssetID     string
	Category    string
	Title       string
	Severity    string
	Score       float64
	Status      string
	EventCount  int
	TeamID      string
	CreatedAt   time.Time
	LastEventAt time.Time
}

// ListIncidentsResult is returned by ListIncidents.
type ListIncidentsResult struct {
	Items      []IncidentSummary
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// TransitionInput carries an analyst-driven status change.
type TransitionInput struct {
	IncidentID string
	NextStatus string
	Notes      string
	Role       string
	TeamID     string
	Actor      string
}

// IncidentService defines use-case operations for incidents.
type IncidentService interface {
	CreateIncident(ctx context.Context, input CreateIncidentInput) (*IncidentResult, error)
	GetIncident(ctx context.Context, input GetIncidentInput) (*IncidentDetail, error)
	ListIncidents(ctx context.Context, input ListIncidentsInput) (*ListIncidentsResult, error)
	Transition(ctx context.Context, input TransitionInput) (*IncidentDetail, error)
}
