package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/smartcompute/monitoring-system/internal/backup"
)

const collectionBackups = "backups"

// BackupCatalog implements backup.CatalogStore using MongoDB.
type BackupCatalog struct {
	col *mongo.Collection
}

func NewBackupCatalog(db *mongo.Database) *BackupCatalog {
	return &BackupCatalog{col: db.Collection(collectionBackups)}
}

func (c *BackupCatalog) Save(ctx context.Context, rec *backup.Record) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := c.col.InsertOne(ctx, rec)
	return err
}

func (c *BackupCatalog) Get(ctx context.Context, backupID string) (*backup.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rec backup.Record
	err := c.col.FindOne(ctx, bson.M{"backup_id": backupID}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, backup.ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Latest returns the most recent backup record, regardless of status.
func (c *BackupCatalog) Latest(ctx context.Context) (*backup.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var rec backup.Record
	err := c.col.FindOne(ctx, bson.M{}, opts).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, backup.ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}
