package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func writeArchiveFixture(t *testing.T) (path, sum string) {
	t.Helper()
	dir := t.TempDir()
	path = filepath.Join(dir, "bk-test.scbak")
	require.NoError(t, os.WriteFile(path, []byte("sealed archive bytes"), 0o600))
	sum, err := FileSHA256(path)
	require.NoError(t, err)
	return path, sum
}

func TestReplicator_AllRegionsOK(t *testing.T) {
	src, sum := writeArchiveFixture(t)
	regions := []string{t.TempDir(), t.TempDir()}

	r := NewReplicator(1, zerolog.Nop())
	results := r.Replicate(context.Background(), src, sum, regions)

	require.Len(t, results, 2)
	for i, res := range results {
		require.True(t, res.OK, "region %s failed: %s", res.Region, res.Error)
		require.Equal(t, regions[i], res.Region)
		require.Equal(t, 1, res.Attempts)

		copySum, err := FileSHA256(filepath.Join(regions[i], filepath.Base(src)))
		require.NoError(t, err)
		require.Equal(t, sum, copySum)
	}
}

func TestReplicator_PartialFailure(t *testing.T) {
	src, sum := writeArchiveFixture(t)

	good := t.TempDir()
	// A regular file where the region directory should be makes MkdirAll fail
	// on every attempt.
	blocked := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(blocked, nil, 0o600))

	r := NewReplicator(1, zerolog.Nop())
	results := r.Replicate(context.Background(), src, sum, []string{good, blocked})

	require.True(t, results[0].OK)
	require.False(t, results[1].OK)
	require.NotEmpty(t, results[1].Error)
	require.Equal(t, 2, results[1].Attempts) // initial try plus one retry
}

func TestReplicator_NoRegions(t *testing.T) {
	src, sum := writeArchiveFixture(t)

	r := NewReplicator(1, zerolog.Nop())
	results := r.Replicate(context.Background(), src, sum, nil)
	require.Empty(t, results)
}
