package backup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/smartcompute/monitoring-system/internal/api/metrics"
)

// Replicator copies a finished archive to every region target, retrying
// transient failures with exponential backoff and verifying each copy by
// checksum before declaring it good.
type Replicator struct {
	maxRetries uint64
	log        zerolog.Logger
}

func NewReplicator(maxRetries uint64, log zerolog.Logger) *Replicator {
	if maxRetries == 0 {
		maxRetries = 5
	}
	return &Replicator{maxRetries: maxRetries, log: log}
}

// Replicate fans out to all regions concurrently and returns one result per
// region in input order. It never returns an error: partial failure is a
// per-region outcome the engine folds into the backup status.
func (r *Replicator) Replicate(ctx context.Context, srcPath, wantSHA256 string, regions []string) []RegionResult {
	results := make([]RegionResult, len(regions))

	g, ctx := errgroup.WithContext(ctx)
	for i, region := range regions {
		g.Go(func() error {
			results[i] = r.replicateOne(ctx, srcPath, wantSHA256, region)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *Replicator) replicateOne(ctx context.Context, srcPath, wantSHA256, region string) RegionResult {
	res := RegionResult{Region: region}

	policy := backoff.WithContext(backoff.WithMaxRetries(newBackoff(), r.maxRetries), ctx)
	err := backoff.Retry(func() error {
		res.Attempts++
		if res.Attempts > 1 {
			metrics.BackupReplicationRetriesTotal.WithLabelValues(region).Inc()
		}
		return copyVerified(srcPath, wantSHA256, region)
	}, policy)

	if err != nil {
		res.Error = err.Error()
		r.log.Error().Err(err).Str("region", region).Int("attempts", res.Attempts).Msg("replication failed")
		return res
	}

	res.OK = true
	r.log.Info().Str("region", region).Int("attempts", res.Attempts).Msg("replica verified")
	return res
}

func newBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0 // retry count is the only cap
	return b
}

// copyVerified copies the archive into the region directory and re-hashes the
// copy. A short write or bit flip shows up as a checksum mismatch and is
// retried like any other transient failure.
func copyVerified(srcPath, wantSHA256, region string) error {
	if err := os.MkdirAll(region, 0o700); err != nil {
		return fmt.Errorf("replicate %s: %w", region, err)
	}
	dst := filepath.Join(region, filepath.Base(srcPath))

	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("replicate %s: open source: %w", region, err)
	}
	defer src.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("replicate %s: create: %w", region, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("replicate %s: copy: %w", region, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("replicate %s: close: %w", region, err)
	}

	sum, err := FileSHA256(dst)
	if err != nil {
		return err
	}
	if sum != wantSHA256 {
		return fmt.Errorf("replicate %s: %w", region, ErrChecksumMismatch)
	}
	return nil
}

// FileSHA256 returns the hex SHA-256 of the file at path.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("sha256 %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("sha256 %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
