// Package compression decides whether an uploaded payload is worth storing
// compressed and provides the symmetric decompression on download.
//
// Compression is an optimization, never a correctness requirement: every
// failure path falls back to the original bytes.
package compression

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/sajor2000/labmanager-sub005/internal/validation"
)

const (
	// Threshold is the minimum payload size before compression is attempted (1 MiB).
	Threshold = 1 << 20

	// adoptionRatio is the maximum compressed/original ratio at which the
	// compressed form is adopted. Anything at or above it saves 10% or less
	// and stays uncompressed.
	adoptionRatio = 0.9
)

var ErrNotCompressed = errors.New("payload is not zstd compressed")

// Result is the outcome of a compression attempt. When Compressed is false,
// Data is the caller's original slice and OriginalSize is zero.
type Result struct {
	Data         []byte
	Compressed   bool
	OriginalSize int64
}

// Codec wraps a shared zstd encoder/decoder pair. EncodeAll and DecodeAll are
// safe for concurrent use, so one Codec serves the whole process.
type Codec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
	log zerolog.Logger
}

// NewCodec builds the shared codec. Construction failure is surfaced so the
// caller can decide whether to run without compression.
func NewCodec(log zerolog.Logger) (*Codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Codec{enc: enc, dec: dec, log: log}, nil
}

// Compress returns the stored representation for the payload. The compressed
// form is adopted only when the MIME type is compressible, the payload is
// over Threshold, and the compressed length saves at least 10%. On any codec
// failure the original bytes are returned unchanged.
func (c *Codec) Compress(data []byte, mimeType string) Result {
	original := Result{Data: data}

	if !validation.Compressible(mimeType) || int64(len(data)) <= Threshold {
		return original
	}
	if c.enc == nil {
		c.log.Warn().Str("mime_type", mimeType).Msg("zstd encoder unavailable, storing uncompressed")
		return original
	}

	compressed := c.enc.EncodeAll(data, make([]byte, 0, len(data)))
	if float64(len(compressed)) >= adoptionRatio*float64(len(data)) {
		// Not enough savings to justify storing compression overhead.
		return original
	}

	return Result{
		Data:         compressed,
		Compressed:   true,
		OriginalSize: int64(len(data)),
	}
}

// Decompress restores the original payload of a compressed document.
func (c *Codec) Decompress(data []byte) ([]byte, error) {
	if c.dec == nil {
		return nil, ErrNotCompressed
	}
	raw, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return raw, nil
}
