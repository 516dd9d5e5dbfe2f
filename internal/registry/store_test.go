package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleSnapshot = Snapshot{
	"task":      {"collect_data": "01", "process_data": "02"},
	"condition": {"data_ready": "01"},
}

func TestFileStore_MissingFileLoadsEmpty(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "registry.json"))

	snap, err := fs.Load()
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "registry.json")
	fs := NewFileStore(path)

	require.NoError(t, fs.Save(sampleSnapshot))

	loaded, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot, loaded)

	// No stray temp file left behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_CorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewFileStore(path).Load()
	require.Error(t, err)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(sampleSnapshot))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot, loaded)
}

func TestSQLiteStore_SaveReplacesContents(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(sampleSnapshot))
	require.NoError(t, store.Save(Snapshot{"task": {"only_one": "09"}}))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Snapshot{"task": {"only_one": "09"}}, loaded)
}

func TestSQLiteStore_OnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(sampleSnapshot))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot, loaded)
}

func TestRegistryThroughFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	reg, err := New(NewFileStore(path), nil)
	require.NoError(t, err)
	require.NoError(t, reg.Bind("task", "alpha", "01"))

	// A second registry over the same file sees the binding and resumes
	// the counter past it.
	reg2, err := New(NewFileStore(path), nil)
	require.NoError(t, err)

	suffix, ok := reg2.Lookup("task", "alpha")
	assert.True(t, ok)
	assert.Equal(t, "01", suffix)
	assert.Equal(t, 2, reg2.Counter("task"))
}
