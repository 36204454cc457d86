package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/yndnr/petyard-go/internal/storage/kv"
)

// DefaultKVKey is the key holding the snapshot blob.
const DefaultKVKey = "petyard/snapshot/current"

// KVBackend keeps the snapshot under one key of an embedded KV engine.
// A single Set is atomic in Badger, so readers never see a partial blob.
type KVBackend struct {
	engine kv.Engine
	key    []byte
}

// NewKVBackend creates a backend over engine. An empty key selects
// DefaultKVKey.
func NewKVBackend(engine kv.Engine, key string) *KVBackend {
	if key == "" {
		key = DefaultKVKey
	}
	return &KVBackend{engine: engine, key: []byte(key)}
}

// Name implements Backend.
func (b *KVBackend) Name() string { return "badger" }

// Location implements Backend.
func (b *KVBackend) Location() string { return string(b.key) }

// Read implements Backend.
func (b *KVBackend) Read(ctx context.Context) ([]byte, error) {
	data, err := b.engine.Get(ctx, b.key)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("snapshot: kv get: %w", err)
	}
	return data, nil
}

// Write implements Backend.
func (b *KVBackend) Write(ctx context.Context, blob []byte) error {
	if err := b.engine.Set(ctx, b.key, blob); err != nil {
		return fmt.Errorf("snapshot: kv set: %w", err)
	}
	return nil
}
