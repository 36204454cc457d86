package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/yndnr/petyard-go/internal/storage/kv"
)

func TestFileBackend(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "data")

	b, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}
	if b.Location() != filepath.Join(dir, DefaultFileName) {
		t.Errorf("Location() = %q", b.Location())
	}

	if _, err := b.Read(ctx); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Read() on empty dir error = %v, want ErrNoSnapshot", err)
	}

	for _, blob := range [][]byte{[]byte("first"), []byte("second")} {
		if err := b.Write(ctx, blob); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		got, err := b.Read(ctx)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if !bytes.Equal(got, blob) {
			t.Errorf("Read() = %q, want %q", got, blob)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir holds %d entries, want only the snapshot file", len(entries))
	}
}

func TestNewFileBackend_EmptyDir(t *testing.T) {
	if _, err := NewFileBackend(""); err == nil {
		t.Error("expected error for empty dir")
	}
}

func TestFileBackend_StoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b, err := NewFileBackend(dir)
	if err != nil {
		t.Fatal(err)
	}
	s := newTestStore(t, b, Options{Codec: CodecCBOR, Compression: CompressionZstd})
	if _, err := s.Save(ctx, sampleState()); err != nil {
		t.Fatal(err)
	}

	// A fresh backend over the same dir sees the snapshot.
	b2, _ := NewFileBackend(dir)
	got, _, err := newTestStore(t, b2, Options{}).Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.Users) != 2 {
		t.Errorf("loaded %d users, want 2", len(got.Users))
	}
}

func TestKVBackend(t *testing.T) {
	ctx := context.Background()

	cfg := kv.DefaultConfig(t.TempDir())
	cfg.GCInterval = 0
	engine, err := kv.NewBadgerEngine(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	b := NewKVBackend(engine, "")
	if b.Location() != DefaultKVKey {
		t.Errorf("Location() = %q", b.Location())
	}
	if _, err := b.Read(ctx); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Read() error = %v, want ErrNoSnapshot", err)
	}

	s := newTestStore(t, b, Options{Compression: CompressionZstd})
	if _, err := s.Save(ctx, sampleState()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, info, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if info.Backend != "badger" || len(got.Pets) != 1 {
		t.Errorf("Load() info = %+v, pets = %d", info, len(got.Pets))
	}
}

// fakeS3 is an in-memory ObjectAPI.
type fakeS3 struct {
	objects map[string][]byte
	putErr  error
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if in.ContentLength == nil || *in.ContentLength != int64(len(data)) {
		return nil, errors.New("content length mismatch")
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func TestS3Backend(t *testing.T) {
	ctx := context.Background()
	api := &fakeS3{objects: map[string][]byte{}}

	b, err := NewS3Backend(api, "pets", "prod/state")
	if err != nil {
		t.Fatal(err)
	}
	if want := "s3://pets/prod/state/" + DefaultFileName; b.Location() != want {
		t.Errorf("Location() = %q, want %q", b.Location(), want)
	}

	if _, err := b.Read(ctx); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Read() error = %v, want ErrNoSnapshot", err)
	}

	s := newTestStore(t, b, Options{Codec: CodecCBOR})
	if _, err := s.Save(ctx, sampleState()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, ok := api.objects["pets/prod/state/"+DefaultFileName]; !ok {
		t.Error("object not stored under prefix")
	}
	if _, _, err := s.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	api.putErr = errors.New("access denied")
	if _, err := s.Save(ctx, sampleState()); err == nil {
		t.Error("Save() should surface put errors")
	}
}

func TestNewS3Backend_RequiresBucket(t *testing.T) {
	if _, err := NewS3Backend(&fakeS3{}, "", ""); err == nil {
		t.Error("expected error for empty bucket")
	}
}
