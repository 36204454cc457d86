package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/yndnr/petyard-go/internal/storage/snapshot"
)

var snapshotFormats = []struct {
	name        string
	codec       string
	compression string
}{
	{"json", snapshot.CodecJSON, snapshot.CompressionNone},
	{"json_zstd", snapshot.CodecJSON, snapshot.CompressionZstd},
	{"cbor", snapshot.CodecCBOR, snapshot.CompressionNone},
	{"cbor_zstd", snapshot.CodecCBOR, snapshot.CompressionZstd},
}

func newFileStore(b *testing.B, codec, compression, passphrase string) *snapshot.Store {
	b.Helper()
	backend, err := snapshot.NewFileBackend(b.TempDir())
	if err != nil {
		b.Fatalf("file backend: %v", err)
	}
	store, err := snapshot.NewStore(snapshot.Options{
		Backend:     backend,
		Codec:       codec,
		Compression: compression,
		Passphrase:  []byte(passphrase),
	})
	if err != nil {
		b.Fatalf("new store: %v", err)
	}
	return store
}

// BenchmarkSnapshotEncode measures serialization alone, the part of a
// persist that runs under the gate.
func BenchmarkSnapshotEncode(b *testing.B) {
	for _, count := range UserCounts {
		pop := populate(b, count)
		for _, f := range snapshotFormats {
			b.Run(fmt.Sprintf("%s/users_%d", f.name, count), func(b *testing.B) {
				store := newFileStore(b, f.codec, f.compression, "")
				st := pop.repo.State()

				b.ResetTimer()
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					if _, err := store.Encode(st); err != nil {
						b.Fatalf("encode: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkSnapshotSave measures a full encode and file write.
func BenchmarkSnapshotSave(b *testing.B) {
	ctx := context.Background()
	for _, count := range UserCounts {
		pop := populate(b, count)
		for _, f := range snapshotFormats {
			b.Run(fmt.Sprintf("%s/users_%d", f.name, count), func(b *testing.B) {
				store := newFileStore(b, f.codec, f.compression, "")
				st := pop.repo.State()

				b.ResetTimer()
				b.ReportAllocs()
				var size int64
				for i := 0; i < b.N; i++ {
					info, err := store.Save(ctx, st)
					if err != nil {
						b.Fatalf("save: %v", err)
					}
					size = info.Size
				}
				b.ReportMetric(float64(size), "bytes/snapshot")
			})
		}
	}
}

// BenchmarkSnapshotLoad measures reading, verifying and decoding.
func BenchmarkSnapshotLoad(b *testing.B) {
	ctx := context.Background()
	for _, count := range UserCounts {
		pop := populate(b, count)
		for _, f := range snapshotFormats {
			b.Run(fmt.Sprintf("%s/users_%d", f.name, count), func(b *testing.B) {
				store := newFileStore(b, f.codec, f.compression, "")
				if _, err := store.Save(ctx, pop.repo.State()); err != nil {
					b.Fatalf("save: %v", err)
				}

				b.ResetTimer()
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					if _, _, err := store.Load(ctx); err != nil {
						b.Fatalf("load: %v", err)
					}
				}
				b.StopTimer()
				reportMemory(b, "mem")
			})
		}
	}
}

// BenchmarkSnapshotEncrypted compares plain and encrypted writes. The
// store caches its derived key, so only the first write pays for Argon2id.
func BenchmarkSnapshotEncrypted(b *testing.B) {
	ctx := context.Background()
	pop := populate(b, 1000)

	for _, passphrase := range []string{"", "correct horse battery"} {
		name := "plain"
		if passphrase != "" {
			name = "encrypted"
		}
		b.Run(name, func(b *testing.B) {
			store := newFileStore(b, snapshot.CodecCBOR, snapshot.CompressionZstd, passphrase)
			st := pop.repo.State()
			if _, err := store.Save(ctx, st); err != nil {
				b.Fatalf("warm up: %v", err)
			}

			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := store.Save(ctx, st); err != nil {
					b.Fatalf("save: %v", err)
				}
			}
		})
	}
}

// BenchmarkDeriveKey measures one Argon2id plus HKDF derivation.
func BenchmarkDeriveKey(b *testing.B) {
	salt, err := snapshot.NewSalt()
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := snapshot.DeriveKey([]byte("correct horse battery"), salt, "bench"); err != nil {
			b.Fatalf("derive: %v", err)
		}
	}
}
