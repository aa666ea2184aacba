// Package validation gates uploaded payloads on size and declared MIME type.
// It is pure: no I/O, no side effects.
package validation

import (
	"errors"
	"fmt"
)

// MaxFileSize is the hard upload limit (25 MiB).
const MaxFileSize = 25 << 20

var (
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// allowedTypes is the upload allow-list.
var allowedTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"text/plain": true,
	"text/csv":   true,
	"image/png":  true,
	"image/jpeg": true,
}

// compressibleTypes is the subset of allowed types worth running through the
// compressor. Image formats are excluded since they are already compressed.
var compressibleTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain": true,
	"text/csv":   true,
}

// Validate rejects payloads over MaxFileSize or with a declared MIME type
// outside the allow-list.
func Validate(payload []byte, declaredMimeType string) error {
	if int64(len(payload)) > MaxFileSize {
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrFileTooLarge, len(payload), int64(MaxFileSize))
	}
	if !allowedTypes[declaredMimeType] {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, declaredMimeType)
	}
	return nil
}

// Compressible reports whether documents of the given MIME type should be
// considered for compression.
func Compressible(mimeType string) bool {
	return compressibleTypes[mimeType]
}
