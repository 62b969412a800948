package crypto

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
)

// Compression names the compression algorithm (or absence of one)
// applied to a message field before encryption.
type Compression string

const (
	CompressionNone    Compression = "none"
	CompressionDeflate Compression = "deflate"
	CompressionBrotli  Compression = "brotli"
)

// CompressionLevel selects a quality preset. The exact numeric level it
// maps to is algorithm-specific.
type CompressionLevel int

const (
	CompressionFast CompressionLevel = iota
	CompressionBalanced
	CompressionBest
)

// Compress applies the named algorithm at the given quality level.
// CompressionNone returns data unchanged.
func Compress(alg Compression, level CompressionLevel, data []byte) ([]byte, error) {
	switch alg {
	case CompressionNone, "":
		return data, nil

	case CompressionDeflate:
		var buf bytes.Buffer
		w, err := flate.NewWriter(&buf, deflateLevel(level))
		if err != nil {
			return nil, fmt.Errorf("deflate writer: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("deflate write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("deflate close: %w", err)
		}
		return buf.Bytes(), nil

	case CompressionBrotli:
		var buf bytes.Buffer
		opts := brotli.WriterOptions{Quality: brotliQuality(level)}
		if level == CompressionBest {
			opts.LGWin = 24
		}
		w := brotli.NewWriterOptions(&buf, opts)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("brotli write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("brotli close: %w", err)
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("unknown compression algorithm %q", alg)
	}
}

// Decompress reverses Compress for the same algorithm.
func Decompress(alg Compression, data []byte) ([]byte, error) {
	switch alg {
	case CompressionNone, "":
		return data, nil

	case CompressionDeflate:
		r := flate.NewReader(bytes.NewReader(data))
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("deflate read: %w", err)
		}
		return out, nil

	case CompressionBrotli:
		r := brotli.NewReader(bytes.NewReader(data))
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("brotli read: %w", err)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unknown compression algorithm %q", alg)
	}
}

func deflateLevel(level CompressionLevel) int {
	switch level {
	case CompressionFast:
		return flate.BestSpeed
	case CompressionBest:
		return flate.BestCompression
	default:
		return flate.DefaultCompression
	}
}

func brotliQuality(level CompressionLevel) int {
	switch level {
	case CompressionFast:
		return 0
	case CompressionBest:
		return 11
	default:
		return 6
	}
}
