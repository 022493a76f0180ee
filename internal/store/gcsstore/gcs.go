// Package gcsstore implements a Google Cloud Storage report store.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/discochess/evalbar/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a Google Cloud Storage backend.
type Store struct {
	client      *storage.Client
	bucket      *storage.BucketHandle
	prefix      string
	contentType string
}

// New creates a new GCS store.
// The bucket must already exist.
func New(ctx context.Context, bucketName string, opts ...Option) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	s := &Store{
		client:      client,
		bucket:      client.Bucket(bucketName),
		contentType: "application/x-ndjson",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = store.JoinPrefix(prefix)
	}
}

// WithContentType sets the content type of uploaded reports.
func WithContentType(ct string) Option {
	return func(s *Store) {
		s.contentType = ct
	}
}

// Put uploads r as the object name.
func (s *Store) Put(ctx context.Context, name string, r io.Reader) error {
	w := s.bucket.Object(s.key(name)).NewWriter(ctx)
	w.ContentType = s.contentType

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("uploading report: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finishing upload: %w", err)
	}
	return nil
}

// Get opens the object name for reading.
func (s *Store) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	reader, err := s.bucket.Object(s.key(name)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	return reader, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return s.client.Close()
}

// key returns the full object key for a report.
func (s *Store) key(name string) string {
	return s.prefix + name
}
