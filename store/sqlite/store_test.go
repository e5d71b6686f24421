package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/etnz/sitebook/store"
	"github.com/google/go-cmp/cmp"
)

type record struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "book.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestGetMissingKey(t *testing.T) {
	s := openTestStore(t)
	var got []record
	err := s.Get(context.Background(), store.KeyMaterials, &got)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestSetThenGetOverwrites(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	first := []record{{ID: 1, Name: "cement"}}
	second := []record{{ID: 1, Name: "cement"}, {ID: 2, Name: "sand"}}
	if err := s.Set(ctx, store.KeyMaterials, first); err != nil {
		t.Fatalf("Set() first: %v", err)
	}
	if err := s.Set(ctx, store.KeyMaterials, second); err != nil {
		t.Fatalf("Set() second: %v", err)
	}

	var got []record
	if err := s.Get(ctx, store.KeyMaterials, &got); err != nil {
		t.Fatalf("Get(): %v", err)
	}
	if diff := cmp.Diff(second, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "book.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, store.KeyVendors, []record{{ID: 7, Name: "V1"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	var got []record
	if err := s.Get(ctx, store.KeyVendors, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "V1" {
		t.Errorf("Get() after reopen = %v", got)
	}
}
