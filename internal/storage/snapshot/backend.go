package snapshot

import "context"

// Backend stores exactly one snapshot blob and replaces it atomically.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Location describes where the blob lives (path, key or URL).
	Location() string

	// Read returns the stored blob, or ErrNoSnapshot if none exists.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the stored blob. A failed write leaves the previous
	// blob intact.
	Write(ctx context.Context, blob []byte) error
}
