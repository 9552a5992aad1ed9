package ports

import (
	"context"
	"time"

	"github.com/smartcompute/monitoring-system/internal/core/domain"
)

// ListIncidentsFilter carries all query parameters for listing incidents.
// TeamID is always enforced by the service layer (RBAC).
type ListIncidentsFilter struct {
	TeamID   string    // empty = no filter (admin); non-empty = scoped to team
	Status   string    // optional: filter by incident status
	Severity string    // optional: filter by severity
	Category string    // optional: filter by threat category
	AssetID  string    // optional: filter by asset
	Search   string    // optional: partial match on incident_id or title
	DateFrom time.Time // optional: created_at >= DateFrom
	DateTo   time.Time // optional: created_at <= DateTo
	Page     int       // 1-based
	Limit    int       // max rows per page (capped at 100 by service)
}

// IncidentRepository defines persistence operations for incidents.
type IncidentRepository interface {
	Create(ctx context.Context, inc *domain.Incident) error
	// FindByIncidentID retrieves an incident by its public identifier.
	// When teamID is non-empty, the query is additionally filtered by team_id (for RBAC).
	FindByIncidentID(ctx context.Context, incidentID string, teamID string) (*domain.Incident, error)
	// FindOpenByAsset returns the non-terminal incident for (asset, category),
	// or ErrIncidentNotFound when none is open.
	FindOpenByAsset(ctx context.Context, assetID string, category domain.ThreatCategory) (*domain.Incident, error)
	// AppendEvent atomically increments the event count, updates last_event_at,
	// and raises severity/score (never lowers them).
	AppendEvent(ctx context.Context, incidentID string, severity domain.Severity, score float64, lastEventAt time.Time) error
	// UpdateStatus atomically sets the incident's new status and appends a
	// history entry.
	UpdateStatus(ctx context.Context, incidentID string, status domain.IncidentStatus, entry domain.StatusHistoryEntry) error
	// List returns a page of incidents matching filter and the total count.
	List(ctx context.Context, filter ListIncidentsFilter) ([]*domain.Incident, int64, error)
}
