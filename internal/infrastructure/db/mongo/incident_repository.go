package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/smartcompute/monitoring-system/internal/core/domain"
	"github.com/smartcompute/monitoring-system/internal/core/ports"
)

const collectionIncidents = "incidents"

// openStatuses are the lifecycle states an incident can still receive events in.
var openStatuses = []string{
	string(domain.StatusOpen),
	string(domain.StatusTriaged),
	string(domain.StatusContained),
}

type IncidentRepository struct {
	col *mongo.Collection
}

func NewIncidentRepository(db *mongo.Database) *IncidentRepository {
	return &IncidentRepository{col: db.Collection(collectionIncidents)}
}

// Create inserts a new incident document.
func (r *IncidentRepository) Create(ctx context.Context, inc *domain.Incident) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, inc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateIncident
		}
		return err
	}
	return nil
}

// FindByIncidentID retrieves an incident by its public identifier.
// When teamID is non-empty, an additional filter by team_id is applied.
func (r *IncidentRepository) FindByIncidentID(ctx context.Context, incidentID string, teamID string) (*domain.Incident, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"incident_id": incidentID}
	if teamID != "" {
		filter["team_id"] = teamID
	}

	var inc domain.Incident
	err := r.col.FindOne(ctx, filter).Decode(&inc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIncidentNotFound
		}
		return nil, err
	}
	return &inc, nil
}

// FindOpenByAsset returns the non-terminal incident tracking (asset, category).
func (r *IncidentRepository) FindOpenByAsset(ctx context.Context, assetID string, category domain.ThreatCategory) (*domain.Incident, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"asset_id": assetID,
		"category": string(category),
		"status":   bson.M{"$in": openStatuses},
	}

	var inc domain.Incident
	err := r.col.FindOne(ctx, filter).Decode(&inc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIncidentNotFound
		}
		return nil, err
	}
	return &inc, nil
}

// AppendEvent atomically folds one more event into the incident: bumps the
// event count, advances last_event_at, and raises the score via $max. The
// severity label is raised in a second conditional update because BSON string
// comparison does not follow severity order.
func (r *IncidentRepository) AppendEvent(ctx context.Context, incidentID string, severity domain.Severity, score float64, lastEventAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"incident_id": incidentID}
	update := bson.M{
		"$inc": bson.M{"event_count": 1},
		"$max": bson.M{"score": score},
		"$set": bson.M{"last_event_at": lastEventAt.UTC()},
	}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrIncidentNotFound
	}

	// Raise the severity label only when the stored one ranks lower.
	lower := lowerSeverities(severity)
	if len(lower) == 0 {
		return nil
	}
	_, err = r.col.UpdateOne(ctx,
		bson.M{"incident_id": incidentID, "severity": bson.M{"$in": lower}},
		bson.M{"$set": bson.M{"severity": string(severity)}},
	)
	return err
}

// lowerSeverities lists the severity labels strictly below s.
func lowerSeverities(s domain.Severity) []string {
	ordered := []domain.Severity{domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh, domain.SeverityCritical}
	var lower []string
	for _, candidate := range ordered {
		if candidate.Weight() < s.Weight() {
			lower = append(lower, string(candidate))
		}
	}
	return lower
}

// UpdateStatus atomically sets the incident's new status and appends a history entry.
func (r *IncidentRepository) UpdateStatus(ctx context.Context, incidentID string, status domain.IncidentStatus, entry domain.StatusHistoryEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	historyEntry := bson.M{
		"status":    string(entry.Status),
		"timestamp": entry.Timestamp.UTC(),
	}
	if entry.Actor != "" {
		historyEntry["actor"] = entry.Actor
	}
	if entry.Notes != "" {
		historyEntry["notes"] = entry.Notes
	}

	filter := bson.M{"incident_id": incidentID}
	update := bson.M{
		"$set":  bson.M{"status": string(status)},
		"$push": bson.M{"status_history": historyEntry},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrIncidentNotFound
	}
	return nil
}

// List returns a page of incidents matching filter and the total count.
func (r *IncidentRepository) List(ctx context.Context, f ports.ListIncidentsFilter) ([]*domain.Incident, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.TeamID != "" {
		filter["team_id"] = f.TeamID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Severity != "" {
		filter["severity"] = f.Severity
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.AssetID != "" {
		filter["asset_id"] = f.AssetID
	}
	if f.Search != "" {
		pattern := primitiveRegex(f.Search)
		filter["$or"] = bson.A{
			bson.M{"incident_id": pattern},
			bson.M{"title": pattern},
		}
	}
	dateFilter := bson.M{}
	if !f.DateFrom.IsZero() {
		dateFilter["$gte"] = f.DateFrom.UTC()
	}
	if !f.DateTo.IsZero() {
		dateFilter["$lte"] = f.DateTo.UTC()
	}
	if len(dateFilter) > 0 {
		filter["created_at"] = dateFilter
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var incidents []*domain.Incident
	if err := cursor.All(ctx, &incidents); err != nil {
		return nil, 0, err
	}
	return incidents, total, nil
}

// primitiveRegex builds a case-insensitive partial-match filter.
func primitiveRegex(search string) bson.M {
	return bson.M{"$regex": search, "$options": "i"}
}

// EnsureIndexes creates necessary indexes on the incidents collection.
func (r *IncidentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "incident_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "team_id", Value: 1}}},
		{Keys: bson.D{{Key: "asset_id", Value: 1}, {Key: "category", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
