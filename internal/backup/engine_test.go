package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// stubStore plays both exporter and importer over a flat map of file contents.
type stubStore struct {
	data      map[string]string // collection -> NDJSON content
	imported  map[string]string
	exportErr error
	importErr error
}

func newStubStore() *stubStore {
	return &stubStore{
		data: map[string]string{
			"incidents":       `{"incident_id":"SC-00000001"}` + "\n",
			"security_events": `{"event_id":"ev-1"}` + "\n",
		},
		imported: make(map[string]string),
	}
}

func (s *stubStore) Export(_ context.Context, dir string) ([]string, error) {
	if s.exportErr != nil {
		return nil, s.exportErr
	}
	names := make([]string, 0, len(s.data))
	for name, content := range s.data {
		if err := os.WriteFile(filepath.Join(dir, name+".ndjson"), []byte(content), 0o600); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (s *stubStore) Import(_ context.Context, dir string) error {
	if s.importErr != nil {
		return s.importErr
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		s.imported[entry.Name()] = string(content)
	}
	return nil
}

type stubCatalog struct {
	records map[string]*Record
	saveErr error
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{records: make(map[string]*Record)}
}

func (c *stubCatalog) Save(_ context.Context, rec *Record) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	c.records[rec.BackupID] = rec
	return nil
}

func (c *stubCatalog) Get(_ context.Context, backupID string) (*Record, error) {
	rec, ok := c.records[backupID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return rec, nil
}

func (c *stubCatalog) Latest(_ context.Context) (*Record, error) {
	var latest *Record
	for _, rec := range c.records {
		if latest == nil || rec.CreatedAt.After(latest.CreatedAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, ErrRecordNotFound
	}
	return latest, nil
}

func newTestEngine(t *testing.T, store *stubStore, catalog *stubCatalog, regions []string) *Engine {
	t.Helper()
	engine, err := NewEngine(Config{
		Dir:        t.TempDir(),
		Regions:    regions,
		KeyHex:     testKeyHex,
		MaxRetries: 1,
	}, store, store, catalog, zerolog.Nop())
	require.NoError(t, err)
	return engine
}

func TestEngine_Run_Complete(t *testing.T) {
	store := newStubStore()
	catalog := newStubCatalog()
	region := t.TempDir()
	engine := newTestEngine(t, store, catalog, []string{region})

	rec, err := engine.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, StatusComplete, rec.Status)
	require.ElementsMatch(t, []string{"incidents", "security_events"}, rec.Collections)
	require.NotEmpty(t, rec.SHA256)
	require.Greater(t, rec.SizeBytes, int64(0))

	// Archive exists locally and in the region, both matching the checksum.
	localSum, err := FileSHA256(rec.Path)
	require.NoError(t, err)
	require.Equal(t, rec.SHA256, localSum)

	regionSum, err := FileSHA256(filepath.Join(region, filepath.Base(rec.Path)))
	require.NoError(t, err)
	require.Equal(t, rec.SHA256, regionSum)

	require.Contains(t, catalog.records, rec.BackupID)
}

func TestEngine_Run_DegradedWhenRegionFails(t *testing.T) {
	store := newStubStore()
	catalog := newStubCatalog()
	blocked := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(blocked, nil, 0o600))
	engine := newTestEngine(t, store, catalog, []string{t.TempDir(), blocked})

	rec, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusDegraded, rec.Status)

	var failed int
	for _, res := range rec.Regions {
		if !res.OK {
			failed++
		}
	}
	require.Equal(t, 1, failed)
}

func TestEngine_Run_ExportFailure(t *testing.T) {
	store := newStubStore()
	store.exportErr = os.ErrPermission
	engine := newTestEngine(t, store, newStubCatalog(), nil)

	_, err := engine.Run(context.Background())
	require.Error(t, err)
}

func TestEngine_RunRestore_RoundTrip(t *testing.T) {
	store := newStubStore()
	catalog := newStubCatalog()
	engine := newTestEngine(t, store, catalog, nil)

	rec, err := engine.Run(context.Background())
	require.NoError(t, err)

	require.NoError(t, engine.Restore(context.Background(), rec.BackupID))
	require.Equal(t, store.data["incidents"], store.imported["incidents.ndjson"])
	require.Equal(t, store.data["security_events"], store.imported["security_events.ndjson"])
}

func TestEngine_Restore_FailsClosedOnTamper(t *testing.T) {
	store := newStubStore()
	catalog := newStubCatalog()
	engine := newTestEngine(t, store, catalog, nil)

	rec, err := engine.Run(context.Background())
	require.NoError(t, err)

	// Flip a byte in the stored archive. The checksum verification must stop
	// the restore before any import happens.
	raw, err := os.ReadFile(rec.Path)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(rec.Path, raw, 0o600))

	err = engine.Restore(context.Background(), rec.BackupID)
	require.ErrorIs(t, err, ErrChecksumMismatch)
	require.Empty(t, store.imported)
}

func TestEngine_Restore_UnknownBackup(t *testing.T) {
	engine := newTestEngine(t, newStubStore(), newStubCatalog(), nil)
	err := engine.Restore(context.Background(), "bk-missing")
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestNewEngine_RejectsBadKey(t *testing.T) {
	_, err := NewEngine(Config{Dir: t.TempDir(), KeyHex: "deadbeef"}, newStubStore(), newStubStore(), newStubCatalog(), zerolog.Nop())
	require.ErrorIs(t, err, ErrKeySize)
}
