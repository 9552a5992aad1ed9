package ports

import (
	"context"

	"github.com/smartcompute/monitoring-system/internal/core/domain"
)

// EventRepository persists the immutable audit trail of processed detections.
type EventRepository interface {
	// Insert persists an event to the security_events audit collection,
	// linked to the incident it was folded into.
	Insert(ctx context.Context, event *domain.SecurityEvent, incidentID string) error
}
