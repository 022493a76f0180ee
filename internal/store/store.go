// Package store archives finished analysis reports in object storage.
package store

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrNotFound is returned when a report does not exist in the store.
var ErrNotFound = errors.New("store: report not found")

// Store defines the interface for report archives. Reports are stored as
// written; compression is the report writer's concern.
type Store interface {
	// Put stores the content of r under name, replacing any previous report.
	Put(ctx context.Context, name string, r io.Reader) error

	// Get opens the report stored under name.
	Get(ctx context.Context, name string) (io.ReadCloser, error)

	// Close releases any resources held by the store.
	Close() error
}

// JoinPrefix returns prefix with exactly one trailing slash, or "" for an
// empty prefix.
func JoinPrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
