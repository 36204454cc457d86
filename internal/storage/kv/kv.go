package kv

import (
	"context"
	"errors"
	"time"
)

// Common errors.
var (
	ErrKeyNotFound = errors.New("kv: key not found")
	ErrClosed      = errors.New("kv: engine closed")
)

// Engine defines the interface for embedded key-value storage.
//
// Implementations must be safe for concurrent use and durable across
// process restarts.
type Engine interface {
	// Get retrieves a value by key.
	// Returns ErrKeyNotFound if the key doesn't exist.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set stores a key-value pair, replacing any previous value.
	Set(ctx context.Context, key, value []byte) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key []byte) error

	// GC triggers garbage collection and returns the number of value-log
	// rewrites performed.
	GC(ctx context.Context) (int, error)

	// Stats returns storage statistics.
	Stats(ctx context.Context) (*Stats, error)

	// Close gracefully shuts down the engine.
	Close() error
}

// Stats contains storage engine statistics.
type Stats struct {
	// LSMSize is the LSM tree size in bytes.
	LSMSize uint64

	// ValueLogSize is the value log size in bytes.
	ValueLogSize uint64

	// TotalSize is LSMSize + ValueLogSize.
	TotalSize uint64

	// LastGC is the time of the last completed GC run, zero if none.
	LastGC time.Time

	// GCRewrites is the total number of value-log files rewritten by GC.
	GCRewrites uint64
}

// Config configures a Badger engine.
type Config struct {
	// Dir is the storage directory.
	Dir string

	// GCInterval is the interval between automatic GC runs.
	// Zero disables the background GC loop.
	GCInterval time.Duration

	// GCDiscardRatio is the fraction of stale data in a value-log file
	// that makes it eligible for rewrite (0.0-1.0).
	GCDiscardRatio float64

	// CacheSize is the block cache size in bytes.
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	ValueLogFileSize int64

	// SyncWrites enables fsync after each write.
	SyncWrites bool
}

// DefaultConfig returns the default configuration rooted at dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:              dir,
		GCInterval:       10 * time.Minute,
		GCDiscardRatio:   0.5,
		CacheSize:        16 << 20, // 16MB
		ValueLogFileSize: 64 << 20, // 64MB
		SyncWrites:       true,
	}
}
