package memstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/discochess/evalbar/internal/store"
)

func TestStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.Put(ctx, "game.jsonl", strings.NewReader("first")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Put(ctx, "game.jsonl", strings.NewReader("second")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	rc, err := s.Get(ctx, "game.jsonl")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "second" {
		t.Errorf("Get() = %q, want replaced content", got)
	}
}

func TestStore_NotFound(t *testing.T) {
	s := New()
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestStore_Names(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, name := range []string{"b", "a", "c"} {
		if err := s.Put(ctx, name, strings.NewReader(name)); err != nil {
			t.Fatal(err)
		}
	}
	got := strings.Join(s.Names(), ",")
	if got != "a,b,c" {
		t.Errorf("Names() = %s, want a,b,c", got)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
