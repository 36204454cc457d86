package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/petyard-go/internal/core/domain"
	"github.com/yndnr/petyard-go/internal/server/config"
	"github.com/yndnr/petyard-go/internal/storage/kv"
	"github.com/yndnr/petyard-go/internal/storage/snapshot"
	"github.com/yndnr/petyard-go/pkg/crypto/adaptive"
)

// BadgerDirName is the badger directory below storage.data_dir.
const BadgerDirName = "badger"

// StorageOptions carries process-level dependencies of OpenStorage.
type StorageOptions struct {
	Logger *slog.Logger

	// Registerer receives badger metrics. Nil skips them.
	Registerer prometheus.Registerer

	// Clock stamps snapshot headers. Nil uses the system clock.
	Clock domain.Clock
}

// Storage is an opened snapshot Store plus whatever it runs on.
type Storage struct {
	Store *snapshot.Store

	// KV is the badger engine behind the "badger" backend, nil otherwise.
	KV *kv.BadgerEngine
}

// Close releases the backend. It is safe to call on a nil Storage.
func (s *Storage) Close() error {
	if s == nil || s.KV == nil {
		return nil
	}
	return s.KV.Close()
}

// OpenStorage selects the backend named by cfg.Backend and wraps it in a
// snapshot Store with the configured codec, compression and encryption.
func OpenStorage(ctx context.Context, cfg *config.StorageSection, opts StorageOptions) (*Storage, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	st := &Storage{}
	var backend snapshot.Backend

	switch cfg.Backend {
	case config.BackendFile, "":
		fb, err := snapshot.NewFileBackend(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		backend = fb

	case config.BackendBadger:
		kvCfg := kv.DefaultConfig(filepath.Join(cfg.DataDir, BadgerDirName))
		kvCfg.GCInterval = cfg.Badger.GCInterval
		kvCfg.SyncWrites = cfg.Badger.SyncWrites

		engine, err := kv.NewBadgerEngine(kvCfg, opts.Logger.With("component", "badger"))
		if err != nil {
			return nil, err
		}
		if opts.Registerer != nil {
			engine.RegisterMetrics(opts.Registerer)
		}
		st.KV = engine
		backend = snapshot.NewKVBackend(engine, "")

	case config.BackendS3:
		client, err := snapshot.NewS3Client(ctx, snapshot.S3Config{
			Bucket:       cfg.S3.Bucket,
			Prefix:       cfg.S3.Prefix,
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			UsePathStyle: cfg.S3.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		s3b, err := snapshot.NewS3Backend(client, cfg.S3.Bucket, cfg.S3.Prefix)
		if err != nil {
			return nil, err
		}
		backend = s3b

	default:
		return nil, fmt.Errorf("bootstrap: unknown storage backend %q", cfg.Backend)
	}

	store, err := snapshot.NewStore(snapshot.Options{
		Backend:     backend,
		Codec:       cfg.Codec,
		Compression: cfg.Compression,
		Passphrase:  []byte(cfg.Passphrase),
		Cipher:      adaptive.CipherType(cfg.Cipher),
		Clock:       opts.Clock,
	})
	if err != nil {
		st.Close()
		return nil, err
	}
	st.Store = store

	opts.Logger.Info("snapshot store opened",
		"backend", backend.Name(),
		"location", backend.Location(),
		"codec", cfg.Codec,
		"compression", cfg.Compression,
		"encrypted", store.Encrypted())

	return st, nil
}
