package snapshot

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yndnr/petyard-go/internal/core/domain"
)

// magicBytes identifies snapshot blobs.
var magicBytes = []byte("PETYSNAP")

const (
	checksumSize = sha256.Size
	lenSize      = 4

	// FormatVersion is the header version written by this package.
	FormatVersion = 1
)

// Snapshot errors.
var (
	ErrNoSnapshot         = errors.New("snapshot: no snapshot available")
	ErrCorrupt            = errors.New("snapshot: corrupt snapshot")
	ErrUnsupportedVersion = errors.New("snapshot: unsupported format version")
)

// Header describes a snapshot blob. It is stored in clear so a snapshot
// can be inspected without the passphrase.
type Header struct {
	Version     int           `json:"version"`
	CreatedAt   int64         `json:"created_at"`
	Counts      domain.Counts `json:"counts"`
	Codec       string        `json:"codec"`
	Compression string        `json:"compression"`
	Encrypted   bool          `json:"encrypted"`
	Cipher      string        `json:"cipher,omitempty"`

	// Salt feeds passphrase key derivation. Present only when Encrypted.
	Salt []byte `json:"salt,omitempty"`
}

// frame holds a decoded blob.
type frame struct {
	header   Header
	data     []byte
	checksum []byte
}

// encodeFrame lays out magic, header, data and checksum trailer.
func encodeFrame(hdr Header, data []byte) ([]byte, []byte, error) {
	hdrJSON, err := json.Marshal(hdr)
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot: marshal header: %w", err)
	}

	size := len(magicBytes) + lenSize + len(hdrJSON) + lenSize + len(data) + checksumSize
	buf := bytes.NewBuffer(make([]byte, 0, size))

	buf.Write(magicBytes)
	var n [lenSize]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(hdrJSON)))
	buf.Write(n[:])
	buf.Write(hdrJSON)
	binary.BigEndian.PutUint32(n[:], uint32(len(data)))
	buf.Write(n[:])
	buf.Write(data)

	sum := sha256.Sum256(buf.Bytes())
	buf.Write(sum[:])

	return buf.Bytes(), sum[:], nil
}

// decodeFrame verifies the checksum trailer and splits the blob.
// Every structural failure is reported as ErrCorrupt.
func decodeFrame(blob []byte) (*frame, error) {
	if len(blob) < len(magicBytes)+2*lenSize+checksumSize {
		return nil, fmt.Errorf("%w: %d bytes is too short", ErrCorrupt, len(blob))
	}

	body := blob[:len(blob)-checksumSize]
	expected := blob[len(blob)-checksumSize:]
	sum := sha256.Sum256(body)
	if !bytes.Equal(sum[:], expected) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	if !bytes.Equal(body[:len(magicBytes)], magicBytes) {
		return nil, fmt.Errorf("%w: invalid magic bytes", ErrCorrupt)
	}
	rest := body[len(magicBytes):]

	hdrJSON, rest, err := readChunk(rest)
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}
	var hdr Header
	if err := json.Unmarshal(hdrJSON, &hdr); err != nil {
		return nil, fmt.Errorf("%w: unmarshal header: %v", ErrCorrupt, err)
	}
	if hdr.Version < 1 || hdr.Version > FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, hdr.Version)
	}

	data, rest, err := readChunk(rest)
	if err != nil {
		return nil, fmt.Errorf("%w: data: %v", ErrCorrupt, err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(rest))
	}

	return &frame{header: hdr, data: data, checksum: expected}, nil
}

func readChunk(b []byte) (chunk, rest []byte, err error) {
	if len(b) < lenSize {
		return nil, nil, errors.New("missing length prefix")
	}
	n := binary.BigEndian.Uint32(b[:lenSize])
	b = b[lenSize:]
	if uint64(n) > uint64(len(b)) {
		return nil, nil, fmt.Errorf("length %d exceeds remaining %d bytes", n, len(b))
	}
	return b[:n], b[n:], nil
}

func checksumHex(sum []byte) string {
	return hex.EncodeToString(sum)
}
