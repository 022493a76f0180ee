package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestParseArchive(t *testing.T) {
	tests := []struct {
		raw     string
		want    archiveLocation
		wantErr bool
	}{
		{"gs://bucket/reports/2024", archiveLocation{"gs", "bucket", "reports/2024"}, false},
		{"s3://bucket/", archiveLocation{"s3", "bucket", ""}, false},
		{"s3://bucket/a/game.jsonl.zst", archiveLocation{"s3", "bucket", "a/game.jsonl.zst"}, false},
		{"out/reports", archiveLocation{"", "", "out/reports"}, false},
		{"", archiveLocation{}, true},
		{"http://example.com/x", archiveLocation{}, true},
		{"gs:///no-bucket", archiveLocation{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseArchive(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseArchive(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseArchive(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestUploadReport_LocalDir(t *testing.T) {
	src := filepath.Join(t.TempDir(), "opera.jsonl")
	if err := os.WriteFile(src, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	dest := t.TempDir()

	got, err := uploadReport(context.Background(), dest, src)
	if err != nil {
		t.Fatalf("uploadReport() error = %v", err)
	}
	if got != filepath.Join(dest, "opera.jsonl") {
		t.Errorf("uploadReport() = %q", got)
	}
	data, err := os.ReadFile(got)
	if err != nil || string(data) != "{}\n" {
		t.Errorf("archived report = %q, %v", data, err)
	}
}
