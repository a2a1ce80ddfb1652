// Package compression holds the codecs used for stored backup values.
package compression

import "fmt"

type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// ForName maps a configured codec name to a Compressor.
func ForName(name string) (Compressor, error) {
	switch name {
	case "zstd":
		return NewZstdCompressor()
	case "gzip":
		return GzipCompressor{}, nil
	case "", "none":
		return NopCompressor{}, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", name)
	}
}

type NopCompressor struct{}

func (NopCompressor) Compress(data []byte) ([]byte, error)   { return data, nil }
func (NopCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }
