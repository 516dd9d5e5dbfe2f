package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists the registry as a JSON document on disk, the same
// category -> value -> suffix nesting the registry holds in memory.
type FileStore struct {
	path string
}

// NewFileStore creates a JSON file store at the given path. The file does
// not need to exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (fs *FileStore) Path() string {
	return fs.path
}

// Load reads the registry file. A missing file yields an empty snapshot.
func (fs *FileStore) Load() (Snapshot, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(Snapshot), nil
		}
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse registry file %s: %w", fs.path, err)
	}
	if snap == nil {
		snap = make(Snapshot)
	}
	return snap, nil
}

// Save writes the full snapshot, creating parent directories as needed.
// The write goes through a temp file and rename so a crash mid-write never
// leaves a truncated registry behind.
func (fs *FileStore) Save(snap Snapshot) error {
	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("failed to replace registry file: %w", err)
	}
	return nil
}
