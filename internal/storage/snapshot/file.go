package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultFileName is the snapshot file name inside the data directory.
const DefaultFileName = "petyard.snap"

// FileBackend keeps the snapshot in a single file. Writes go to a temp
// file in the same directory, are fsynced, then renamed over the target.
type FileBackend struct {
	path string
}

// NewFileBackend creates a backend for dir/DefaultFileName, creating dir
// if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, fmt.Errorf("snapshot: dir is required")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("snapshot: create dir: %w", err)
	}
	return &FileBackend{path: filepath.Join(dir, DefaultFileName)}, nil
}

// Name implements Backend.
func (b *FileBackend) Name() string { return "file" }

// Location implements Backend.
func (b *FileBackend) Location() string { return b.path }

// Read implements Backend.
func (b *FileBackend) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("snapshot: read %s: %w", b.path, err)
	}
	return data, nil
}

// Write implements Backend.
func (b *FileBackend) Write(ctx context.Context, blob []byte) error {
	dir := filepath.Dir(b.path)

	tmp, err := os.CreateTemp(dir, DefaultFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("snapshot: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("snapshot: close: %w", err)
	}
	if err := os.Rename(tmpPath, b.path); err != nil {
		return fmt.Errorf("snapshot: rename: %w", err)
	}

	// Persist the rename itself.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		d.Close()
	}
	return nil
}
