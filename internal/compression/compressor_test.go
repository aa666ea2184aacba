package compression

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(zerolog.Nop())
	require.NoError(t, err)
	return c
}

// repetitiveText builds a highly compressible payload of the given size.
func repetitiveText(size int) []byte {
	line := []byte("sample,measurement,2024-01-15,approved,0.0042\n")
	return bytes.Repeat(line, size/len(line)+1)[:size]
}

func TestCompress_AdoptsWhenWorthwhile(t *testing.T) {
	c := newTestCodec(t)
	data := repetitiveText(2 << 20)

	res := c.Compress(data, "text/plain")

	assert.True(t, res.Compressed)
	assert.Equal(t, int64(len(data)), res.OriginalSize)
	assert.Less(t, float64(len(res.Data)), 0.9*float64(len(data)))
}

func TestCompress_SkipsNonCompressibleType(t *testing.T) {
	c := newTestCodec(t)
	data := repetitiveText(2 << 20)

	res := c.Compress(data, "image/png")

	assert.False(t, res.Compressed)
	assert.Equal(t, data, res.Data)
	assert.Zero(t, res.OriginalSize)
}

func TestCompress_SkipsBelowThreshold(t *testing.T) {
	c := newTestCodec(t)
	data := repetitiveText(Threshold) // not strictly greater, stays uncompressed

	res := c.Compress(data, "text/plain")

	assert.False(t, res.Compressed)
	assert.Equal(t, data, res.Data)
}

func TestCompress_SkipsWhenSavingsTooSmall(t *testing.T) {
	c := newTestCodec(t)
	data := make([]byte, 2<<20)
	_, err := rand.Read(data)
	require.NoError(t, err)

	// Random bytes do not compress; the original must be kept verbatim.
	res := c.Compress(data, "text/plain")

	assert.False(t, res.Compressed)
	assert.Equal(t, data, res.Data)
}

func TestCompressDecompress_RoundTrip(t *testing.T) {
	c := newTestCodec(t)
	data := repetitiveText(3 << 20)

	res := c.Compress(data, "application/pdf")
	assert.True(t, res.Compressed)

	raw, err := c.Decompress(res.Data)
	assert.NoError(t, err)
	assert.Equal(t, data, raw)
}

func TestDecompress_RejectsGarbage(t *testing.T) {
	c := newTestCodec(t)

	_, err := c.Decompress([]byte("definitely not a zstd frame"))
	assert.Error(t, err)
}

func TestCompress_NilEncoderFallsBack(t *testing.T) {
	c := &Codec{log: zerolog.Nop()}
	data := repetitiveText(2 << 20)

	res := c.Compress(data, "text/plain")

	assert.False(t, res.Compressed)
	assert.Equal(t, data, res.Data)
}
