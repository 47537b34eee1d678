package compression

import (
	"errors"
	"fmt"

	"github.com/pierrec/lz4"
)

var (
	// ErrIncompressible is returned when compressing would not shrink the input.
	ErrIncompressible = errors.New("data is incompressible")
)

// Compressor defines the interface for compression algorithms.
type Compressor interface {
	// Name returns the name of the compression algorithm.
	Name() string

	// Compress compresses the input data.
	Compress(data []byte) ([]byte, error)

	// Decompress restores data whose uncompressed length is size.
	Decompress(data []byte, size int) ([]byte, error)
}

// ByName returns the compressor registered under name.
func ByName(name string) (Compressor, error) {
	switch name {
	case "", "none":
		return NoCompressor{}, nil
	case "lz4":
		return LZ4Compressor{}, nil
	}
	return nil, fmt.Errorf("unknown compressor: %s", name)
}

// NoCompressor implements a pass-through compressor that doesn't compress data.
type NoCompressor struct{}

func (NoCompressor) Name() string {
	return "none"
}

func (NoCompressor) Compress(data []byte) ([]byte, error) {
	return nil, ErrIncompressible
}

func (NoCompressor) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) != size {
		return nil, fmt.Errorf("expected %d bytes, got %d", size, len(data))
	}
	return append([]byte(nil), data...), nil
}

// LZ4Compressor implements LZ4 block compression.
type LZ4Compressor struct{}

func (LZ4Compressor) Name() string {
	return "lz4"
}

func (LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrIncompressible
	}

	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 || n >= len(data) {
		return nil, ErrIncompressible
	}
	return compressed[:n], nil
}

func (LZ4Compressor) Decompress(data []byte, size int) ([]byte, error) {
	decompressed := make([]byte, size)
	n, err := lz4.UncompressBlock(data, decompressed)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	if n != size {
		return nil, fmt.Errorf("lz4 decompression: expected %d bytes, got %d", size, n)
	}
	return decompressed, nil
}
