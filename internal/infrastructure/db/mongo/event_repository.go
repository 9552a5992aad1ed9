package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/smartcompute/monitoring-system/internal/core/domain"
	"github.com/smartcompute/monitoring-system/internal/core/ports"
)

const collectionEvents = "security_events"

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	db *mongo.Database
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) ports.EventRepository {
	return &EventRepository{db: db}
}

// Insert persists a security event to the audit collection, linked to the
// incident triage folded it into.
func (r *EventRepository) Insert(ctx context.Context, event *domain.SecurityEvent, incidentID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"event_id":     event.EventID,
		"incident_id":  incidentID,
		"asset_id":     event.AssetID,
		"category":     string(event.Category),
		"severity":     string(event.Severity),
		"confidence":   event.Confidence,
		"source":       event.Source,
		"timestamp":    event.Timestamp.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if event.Indicators != (domain.Indicators{}) {
		indicators := bson.M{}
		if event.Indicators.SrcIP != "" {
			indicators["src_ip"] = event.Indicators.SrcIP
		}
		if event.Indicators.DstIP != "" {
			indicators["dst_ip"] = event.Indicators.DstIP
		}
		if event.Indicators.ProcessName != "" {
			indicators["process_name"] = event.Indicators.ProcessName
		}
		if event.Indicators.FileHash != "" {
			indicators["file_hash"] = event.Indicators.FileHash
		}
		doc["indicators"] = indicators
	}

	_, err := r.db.Collection(collectionEvents).InsertOne(ctx, doc)
	return err
}
