// Package backup implements the disaster-recovery engine: encrypted,
// checksum-verified archives of the operational collections, replicated to
// one or more region targets with retry semantics.
//
// A backup is only "complete" when every configured region holds a verified
// copy. Restores fail closed: any checksum or decryption mismatch aborts the
// import.
package backup

import (
	"context"
	"errors"
	"time"
)

// Status summarises the outcome of a backup run.
type Status string

const (
	StatusComplete Status = "complete" // archived and verified in every region
	StatusDegraded Status = "degraded" // archived, but one or more regions failed
	StatusFailed   Status = "failed"   // archive could not be produced
)

var ErrChecksumMismatch = errors.New("backup checksum mismatch")
var ErrRecordNotFound = errors.New("backup record not found")

// RegionResult records the replication outcome for a single region target.
type RegionResult struct {
	Region   string `json:"region" bson:"region"`
	OK       bool   `json:"ok" bson:"ok"`
	Attempts int    `json:"attempts" bson:"attempts"`
	Error    string `json:"error,omitempty" bson:"error,omitempty"`
}

// Record is the catalog entry for one backup run.
type Record struct {
	BackupID    string         `json:"backup_id" bson:"backup_id"`
	CreatedAt   time.Time      `json:"created_at" bson:"created_at"`
	SizeBytes   int64          `json:"size_bytes" bson:"size_bytes"`
	SHA256      string         `json:"sha256" bson:"sha256"`
	Collections []string       `json:"collections" bson:"collections"`
	Status      Status         `json:"status" bson:"status"`
	Regions     []RegionResult `json:"regions" bson:"regions"`
	Path        string         `json:"path" bson:"path"`
}

// CatalogStore persists backup records.
type CatalogStore interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, backupID string) (*Record, error)
	Latest(ctx context.Context) (*Record, error)
}

// Exporter dumps the operational collections as NDJSON files into dir and
// returns the collection names written.
type Exporter interface {
	Export(ctx context.Context, dir string) ([]string, error)
}

// Importer loads previously exported NDJSON files from dir back into the
// operational store.
type Importer interface {
	Import(ctx context.Context, dir string) error
}
