package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/discochess/evalbar/internal/store"
	"github.com/discochess/evalbar/internal/store/diskstore"
	"github.com/discochess/evalbar/internal/store/gcsstore"
	"github.com/discochess/evalbar/internal/store/s3store"
)

var (
	// Archive flags shared by analyze and report.
	s3Region   string
	s3Endpoint string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&s3Region, "s3-region", "", "AWS region for s3:// archives")
	rootCmd.PersistentFlags().StringVar(&s3Endpoint, "s3-endpoint", "", "custom endpoint for S3-compatible archives (e.g. MinIO)")
}

// archiveLocation is a parsed archive address: gs://bucket/path,
// s3://bucket/path, or a local path.
type archiveLocation struct {
	Scheme string
	Bucket string
	Path   string
}

// IsRemote reports whether the location names an object store.
func (l archiveLocation) IsRemote() bool {
	return l.Scheme != ""
}

func parseArchive(raw string) (archiveLocation, error) {
	if !strings.Contains(raw, "://") {
		if raw == "" {
			return archiveLocation{}, fmt.Errorf("empty archive location")
		}
		return archiveLocation{Path: raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return archiveLocation{}, fmt.Errorf("parsing archive %q: %w", raw, err)
	}
	switch u.Scheme {
	case "gs", "s3":
	default:
		return archiveLocation{}, fmt.Errorf("unsupported archive scheme %q (want gs or s3)", u.Scheme)
	}
	if u.Host == "" {
		return archiveLocation{}, fmt.Errorf("archive %q has no bucket", raw)
	}
	return archiveLocation{
		Scheme: u.Scheme,
		Bucket: u.Host,
		Path:   strings.Trim(u.Path, "/"),
	}, nil
}

// openArchive opens the store for a location. Remote stores are rooted at
// prefix inside the bucket; local stores are rooted at dir.
func openArchive(ctx context.Context, loc archiveLocation, prefix, dir string) (store.Store, error) {
	switch loc.Scheme {
	case "gs":
		return gcsstore.New(ctx, loc.Bucket, gcsstore.WithPrefix(prefix))
	case "s3":
		opts := []s3store.Option{s3store.WithPrefix(prefix)}
		if s3Region != "" {
			opts = append(opts, s3store.WithRegion(s3Region))
		}
		if s3Endpoint != "" {
			opts = append(opts, s3store.WithEndpoint(s3Endpoint))
		}
		return s3store.New(ctx, loc.Bucket, opts...)
	default:
		return diskstore.New(dir)
	}
}

// uploadReport copies the report file at reportFile into the archive at dest,
// keeping its base name. It returns the name the report was stored under.
func uploadReport(ctx context.Context, dest, reportFile string) (string, error) {
	loc, err := parseArchive(dest)
	if err != nil {
		return "", err
	}
	st, err := openArchive(ctx, loc, loc.Path, loc.Path)
	if err != nil {
		return "", fmt.Errorf("opening archive: %w", err)
	}
	defer st.Close()

	f, err := os.Open(reportFile)
	if err != nil {
		return "", fmt.Errorf("opening report: %w", err)
	}
	defer f.Close()

	name := filepath.Base(reportFile)
	if err := st.Put(ctx, name, f); err != nil {
		return "", fmt.Errorf("uploading %s: %w", name, err)
	}
	if loc.IsRemote() {
		return fmt.Sprintf("%s://%s/%s", loc.Scheme, loc.Bucket, path.Join(loc.Path, name)), nil
	}
	return filepath.Join(loc.Path, name), nil
}
