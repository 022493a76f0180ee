// Package codec compresses analysis reports on their way to disk.
package codec

import (
	"io"
	"path/filepath"
	"strings"
)

// Codec provides compression and decompression functionality.
type Codec interface {
	// Reader wraps r to decompress data read from it.
	Reader(r io.Reader) (io.ReadCloser, error)
	// Writer wraps w to compress data written to it. Closing the returned
	// writer flushes it but leaves w open.
	Writer(w io.Writer) (io.WriteCloser, error)
	// Extension returns the file extension without dot (e.g., "zst", "gz").
	// Returns empty string for no compression.
	Extension() string
}

// ForPath returns the codec among codecs whose extension matches path,
// or nil when none does.
func ForPath(path string, codecs ...Codec) Codec {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return nil
	}
	for _, c := range codecs {
		if c != nil && c.Extension() == ext {
			return c
		}
	}
	return nil
}
