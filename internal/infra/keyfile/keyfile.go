// Package keyfile keeps small random secrets (message keys, salts) in
// files next to the data they protect.
package keyfile

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrSize is returned when an existing file does not hold the expected
// number of bytes.
var ErrSize = errors.New("keyfile: unexpected size")

// LoadOrCreate returns the size bytes stored at path. A missing file is
// created with fresh random bytes and mode 0600. Creation never replaces a
// file written concurrently by another process; the winner's bytes are
// returned instead.
func LoadOrCreate(path string, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("keyfile: invalid size %d", size)
	}

	data, err := Load(path, size)
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return data, err
	}

	secret := make([]byte, size)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("keyfile: generate: %w", err)
	}
	if err := create(path, secret); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return Load(path, size)
		}
		return nil, err
	}
	return secret, nil
}

// Load reads path and checks that it holds exactly size bytes.
func Load(path string, size int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keyfile: %w", err)
	}
	if len(data) != size {
		return nil, fmt.Errorf("%w: %s has %d bytes, want %d", ErrSize, path, len(data), size)
	}
	return data, nil
}

// create writes data to a temp file and hard-links it into place, which
// fails with fs.ErrExist if path appeared in the meantime.
func create(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("keyfile: create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("keyfile: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("keyfile: write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("keyfile: chmod %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("keyfile: sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("keyfile: close %s: %w", path, err)
	}
	if err := os.Link(tmp.Name(), path); err != nil {
		return fmt.Errorf("keyfile: %w", err)
	}
	return nil
}
