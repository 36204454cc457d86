package snapshot

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compression names.
const (
	CompressionNone = "none"
	CompressionZstd = "zstd"
)

// maxDecodedSize caps zstd output so a hostile blob cannot exhaust memory.
const maxDecodedSize = 1 << 30

// zstdEncoder and zstdDecoder are shared; EncodeAll and DecodeAll are
// safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("snapshot: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecodedSize))
	if err != nil {
		panic("snapshot: zstd decoder initialization failed: " + err.Error())
	}
}

// validCompression reports whether name is a known compression.
// An empty name means none.
func validCompression(name string) error {
	switch name {
	case "", CompressionNone, CompressionZstd:
		return nil
	default:
		return fmt.Errorf("snapshot: unsupported compression: %s", name)
	}
}

func compress(name string, data []byte) ([]byte, error) {
	switch name {
	case "", CompressionNone:
		return data, nil
	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
	default:
		return nil, fmt.Errorf("snapshot: unsupported compression: %s", name)
	}
}

func decompress(name string, data []byte) ([]byte, error) {
	switch name {
	case "", CompressionNone:
		return data, nil
	case CompressionZstd:
		out, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("snapshot: zstd decode: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("snapshot: unsupported compression: %s", name)
	}
}
