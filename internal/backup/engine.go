package backup

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartcompute/monitoring-system/internal/api/metrics"
)

// Config holds everything the engine needs to run.
type Config struct {
	// Dir is where finished archives are written before replication.
	Dir string
	// Regions are the replication target directories. Empty means local-only.
	Regions []string
	// KeyHex is the hex-encoded 256-bit archive encryption key.
	KeyHex string
	// MaxRetries caps per-region replication retries.
	MaxRetries uint64
}

// Engine produces and restores encrypted backups of the operational data.
type Engine struct {
	dir      string
	regions  []string
	key      []byte
	exporter Exporter
	importer Importer
	catalog  CatalogStore
	repl     *Replicator
	log      zerolog.Logger
	now      func() time.Time
}

func NewEngine(cfg Config, exporter Exporter, importer Importer, catalog CatalogStore, log zerolog.Logger) (*Engine, error) {
	key, err := ParseKey(cfg.KeyHex)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("backup dir: %w", err)
	}
	return &Engine{
		dir:      cfg.Dir,
		regions:  cfg.Regions,
		key:      key,
		exporter: exporter,
		importer: importer,
		catalog:  catalog,
		repl:     NewReplicator(cfg.MaxRetries, log),
		log:      log,
		now:      time.Now,
	}, nil
}

// Run executes one full backup: export → archive → encrypt → checksum →
// replicate → catalog. The returned record carries the per-region outcomes.
func (e *Engine) Run(ctx context.Context) (*Record, error) {
	start := e.now()
	backupID := fmt.Sprintf("bk-%s-%s", start.UTC().Format("20060102T150405"), uuid.NewString()[:8])
	log := e.log.With().Str("backup_id", backupID).Logger()

	stage, err := os.MkdirTemp("", "smartcompute-backup-*")
	if err != nil {
		return nil, fmt.Errorf("backup: stage dir: %w", err)
	}
	defer os.RemoveAll(stage)

	collections, err := e.exporter.Export(ctx, stage)
	if err != nil {
		metrics.BackupDuration.WithLabelValues(string(StatusFailed)).Observe(e.now().Sub(start).Seconds())
		return nil, fmt.Errorf("backup: export: %w", err)
	}
	log.Info().Strs("collections", collections).Msg("export complete")

	var buf bytes.Buffer
	if err := BuildArchive(stage, &buf); err != nil {
		metrics.BackupDuration.WithLabelValues(string(StatusFailed)).Observe(e.now().Sub(start).Seconds())
		return nil, fmt.Errorf("backup: %w", err)
	}

	sealed, err := Seal(e.key, buf.Bytes())
	if err != nil {
		metrics.BackupDuration.WithLabelValues(string(StatusFailed)).Observe(e.now().Sub(start).Seconds())
		return nil, fmt.Errorf("backup: %w", err)
	}

	path := filepath.Join(e.dir, backupID+".scbak")
	if err := os.WriteFile(path, sealed, 0o600); err != nil {
		metrics.BackupDuration.WithLabelValues(string(StatusFailed)).Observe(e.now().Sub(start).Seconds())
		return nil, fmt.Errorf("backup: write archive: %w", err)
	}

	sum, err := FileSHA256(path)
	if err != nil {
		metrics.BackupDuration.WithLabelValues(string(StatusFailed)).Observe(e.now().Sub(start).Seconds())
		return nil, fmt.Errorf("backup: %w", err)
	}

	regionResults := e.repl.Replicate(ctx, path, sum, e.regions)
	status := StatusComplete
	for _, res := range regionResults {
		if !res.OK {
			status = StatusDegraded
		}
	}

	rec := &Record{
		BackupID:    backupID,
		CreatedAt:   start.UTC(),
		SizeBytes:   int64(len(sealed)),
		SHA256:      sum,
		Collections: collections,
		Status:      status,
		Regions:     regionResults,
		Path:        path,
	}
	if err := e.catalog.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("backup: catalog: %w", err)
	}

	metrics.BackupDuration.WithLabelValues(string(status)).Observe(e.now().Sub(start).Seconds())
	if status == StatusComplete {
		metrics.BackupLastSuccessTimestamp.Set(float64(e.now().Unix()))
	}

	log.Info().
		Str("status", string(status)).
		Int64("size_bytes", rec.SizeBytes).
		Int("regions", len(regionResults)).
		Msg("backup finished")

	return rec, nil
}

// Restore verifies, decrypts, and unpacks the archive for backupID, then
// re-imports the collections. Any verification mismatch aborts before the
// import touches the store.
func (e *Engine) Restore(ctx context.Context, backupID string) error {
	rec, err := e.catalog.Get(ctx, backupID)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	sum, err := FileSHA256(rec.Path)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if sum != rec.SHA256 {
		return fmt.Errorf("restore %s: %w", backupID, ErrChecksumMismatch)
	}

	sealed, err := os.ReadFile(rec.Path)
	if err != nil {
		return fmt.Errorf("restore: read archive: %w", err)
	}
	plain, err := Open(e.key, sealed)
	if err != nil {
		return fmt.Errorf("restore %s: %w", backupID, err)
	}

	stage, err := os.MkdirTemp("", "smartcompute-restore-*")
	if err != nil {
		return fmt.Errorf("restore: stage dir: %w", err)
	}
	defer os.RemoveAll(stage)

	if err := ExtractArchive(bytes.NewReader(plain), stage); err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	if err := e.importer.Import(ctx, stage); err != nil {
		return fmt.Errorf("restore: import: %w", err)
	}

	e.log.Info().Str("backup_id", backupID).Msg("restore complete")
	return nil
}
