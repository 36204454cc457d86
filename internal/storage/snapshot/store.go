package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yndnr/petyard-go/internal/core/domain"
	"github.com/yndnr/petyard-go/pkg/crypto/adaptive"
)

// Options configures a Store.
type Options struct {
	// Backend receives the blobs. Required.
	Backend Backend

	// Codec is CodecJSON (default) or CodecCBOR.
	Codec string

	// Compression is CompressionNone (default) or CompressionZstd.
	Compression string

	// Passphrase enables encryption when non-empty.
	Passphrase []byte

	// Cipher selects the AEAD. Empty picks one for the host.
	Cipher adaptive.CipherType

	// Clock stamps CreatedAt. Defaults to the system clock.
	Clock domain.Clock
}

// Info describes a stored snapshot.
type Info struct {
	Header

	Backend  string `json:"backend"`
	Location string `json:"location"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
}

// Encoded is a state serialized by Store.Encode and not yet written.
type Encoded struct {
	createdAt int64
	counts    domain.Counts
	data      []byte
}

// Counts returns the entity counts of the encoded state.
func (e *Encoded) Counts() domain.Counts { return e.counts }

// Store serializes states into snapshot blobs and moves them through a
// Backend. Store is safe for concurrent use; callers that need ordering
// between writes serialize Write themselves.
type Store struct {
	backend     Backend
	codec       Codec
	compression string
	passphrase  []byte
	cipherType  adaptive.CipherType
	clock       domain.Clock

	// mu guards the cached write cipher. Key derivation is expensive, so
	// one salt and cipher are reused for every write of this Store.
	mu     sync.Mutex
	salt   []byte
	cipher adaptive.Cipher
}

// NewStore validates opts and creates a Store.
func NewStore(opts Options) (*Store, error) {
	if opts.Backend == nil {
		return nil, errors.New("snapshot: backend is required")
	}
	codec, err := CodecByName(opts.Codec)
	if err != nil {
		return nil, err
	}
	if err := validCompression(opts.Compression); err != nil {
		return nil, err
	}
	if err := ValidatePassphrase(opts.Passphrase); err != nil {
		return nil, err
	}
	if _, err := adaptive.NewWithType(make([]byte, adaptive.KeySize), opts.Cipher); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	compression := opts.Compression
	if compression == "" {
		compression = CompressionNone
	}
	clock := opts.Clock
	if clock == nil {
		clock = domain.SystemClock{}
	}

	return &Store{
		backend:     opts.Backend,
		codec:       codec,
		compression: compression,
		passphrase:  bytes.Clone(opts.Passphrase),
		cipherType:  opts.Cipher,
		clock:       clock,
	}, nil
}

// Backend returns the backend the store writes to.
func (s *Store) Backend() Backend {
	return s.backend
}

// Encrypted reports whether writes are encrypted.
func (s *Store) Encrypted() bool {
	return len(s.passphrase) > 0
}

// Encode serializes st with the configured codec. It only reads st, so
// callers holding a lock over st can release it as soon as Encode returns.
func (s *Store) Encode(st *domain.State) (*Encoded, error) {
	data, err := s.codec.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode state: %w", err)
	}
	return &Encoded{
		createdAt: s.clock.Now().UnixMilli(),
		counts:    st.Counts(),
		data:      data,
	}, nil
}

// Write compresses, encrypts, frames and stores enc.
func (s *Store) Write(ctx context.Context, enc *Encoded) (*Info, error) {
	hdr := Header{
		Version:     FormatVersion,
		CreatedAt:   enc.createdAt,
		Counts:      enc.counts,
		Codec:       s.codec.Name(),
		Compression: s.compression,
	}

	data, err := compress(s.compression, enc.data)
	if err != nil {
		return nil, err
	}

	if s.Encrypted() {
		c, salt, err := s.writeCipher()
		if err != nil {
			return nil, err
		}
		data, err = c.Encrypt(data, magicBytes)
		if err != nil {
			return nil, fmt.Errorf("snapshot: encrypt: %w", err)
		}
		hdr.Encrypted = true
		hdr.Cipher = string(c.Type())
		hdr.Salt = salt
	}

	blob, sum, err := encodeFrame(hdr, data)
	if err != nil {
		return nil, err
	}
	if err := s.backend.Write(ctx, blob); err != nil {
		return nil, err
	}

	return s.info(hdr, len(blob), sum), nil
}

// Save is Encode followed by Write.
func (s *Store) Save(ctx context.Context, st *domain.State) (*Info, error) {
	enc, err := s.Encode(st)
	if err != nil {
		return nil, err
	}
	return s.Write(ctx, enc)
}

// Load reads and decodes the stored snapshot.
//
// It returns ErrNoSnapshot when the backend holds nothing. Any other
// error means a snapshot exists but cannot be used.
func (s *Store) Load(ctx context.Context) (*domain.State, *Info, error) {
	blob, err := s.backend.Read(ctx)
	if err != nil {
		return nil, nil, err
	}
	f, err := decodeFrame(blob)
	if err != nil {
		return nil, nil, err
	}

	data := f.data
	if f.header.Encrypted {
		if !s.Encrypted() {
			return nil, nil, ErrPassphraseRequired
		}
		c, err := s.readCipher(f.header)
		if err != nil {
			return nil, nil, err
		}
		data, err = c.Decrypt(data, magicBytes)
		if err != nil {
			return nil, nil, ErrDecryptionFailed
		}
	}

	data, err = decompress(f.header.Compression, data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	codec, err := CodecByName(f.header.Codec)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	st := domain.NewState()
	if err := codec.Unmarshal(data, st); err != nil {
		return nil, nil, fmt.Errorf("%w: decode state: %v", ErrCorrupt, err)
	}
	st.Normalize()

	return st, s.info(f.header, len(blob), f.checksum), nil
}

// Inspect reads the snapshot header without decrypting or decoding the
// state. It needs no passphrase.
func (s *Store) Inspect(ctx context.Context) (*Info, error) {
	blob, err := s.backend.Read(ctx)
	if err != nil {
		return nil, err
	}
	f, err := decodeFrame(blob)
	if err != nil {
		return nil, err
	}
	return s.info(f.header, len(blob), f.checksum), nil
}

func (s *Store) info(hdr Header, size int, sum []byte) *Info {
	return &Info{
		Header:   hdr,
		Backend:  s.backend.Name(),
		Location: s.backend.Location(),
		Size:     int64(size),
		Checksum: checksumHex(sum),
	}
}

// writeCipher returns the cached write cipher, deriving it with a fresh
// salt on first use.
func (s *Store) writeCipher() (adaptive.Cipher, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cipher == nil {
		salt, err := NewSalt()
		if err != nil {
			return nil, nil, err
		}
		c, err := newCipher(s.passphrase, salt, s.cipherType)
		if err != nil {
			return nil, nil, err
		}
		s.salt, s.cipher = salt, c
	}
	return s.cipher, s.salt, nil
}

// readCipher returns a cipher for a stored header. When the header's
// salt and cipher match what this store would write with, the derived
// cipher is cached for later writes.
func (s *Store) readCipher(hdr Header) (adaptive.Cipher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cipher != nil && bytes.Equal(s.salt, hdr.Salt) && string(s.cipher.Type()) == hdr.Cipher {
		return s.cipher, nil
	}

	c, err := newCipher(s.passphrase, hdr.Salt, adaptive.CipherType(hdr.Cipher))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if s.cipher == nil && (s.cipherType == "" || s.cipherType == c.Type()) {
		s.salt, s.cipher = bytes.Clone(hdr.Salt), c
	}
	return c, nil
}
