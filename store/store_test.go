package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type record struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	dir, err := NewDir(filepath.Join(t.TempDir(), "book"))
	if err != nil {
		t.Fatal(err)
	}
	return map[string]Store{
		"memory": NewMemory(),
		"dir":    dir,
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			var missing []record
			if err := s.Get(ctx, KeyTransactions, &missing); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
			}

			want := []record{{ID: 1, Name: "cement", Amount: 5000}, {ID: 2, Name: "sand", Amount: 12.5}}
			if err := s.Set(ctx, KeyTransactions, want); err != nil {
				t.Fatalf("Set(): %v", err)
			}
			var got []record
			if err := s.Get(ctx, KeyTransactions, &got); err != nil {
				t.Fatalf("Get(): %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}

			// mutating the value that was set must not change the stored one.
			want[0].Name = "changed"
			got = nil
			if err := s.Get(ctx, KeyTransactions, &got); err != nil {
				t.Fatal(err)
			}
			if got[0].Name != "cement" {
				t.Errorf("stored value aliases the caller value: %v", got)
			}
		})
	}
}

func TestGetOptional(t *testing.T) {
	s := NewMemory()
	got := []record{{ID: 9}}
	if err := GetOptional(context.Background(), s, KeyVendors, &got); err != nil {
		t.Fatalf("GetOptional(missing) = %v, want nil", err)
	}
	if len(got) != 1 || got[0].ID != 9 {
		t.Errorf("GetOptional(missing) modified the value: %v", got)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Set(ctx, KeyVendors, []record{}); !errors.Is(err, context.Canceled) {
				t.Errorf("Set() with canceled context = %v", err)
			}
		})
	}
}

func TestDirFiles(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "book")
	d, err := NewDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Set(context.Background(), KeyCommissions, []record{{ID: 1}}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "commissions.json")); err != nil {
		t.Errorf("expected commissions.json to exist: %v", err)
	}
	keys, err := d.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{KeyCommissions}, keys); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	if err := d.Set(context.Background(), "../escape", 1); err == nil {
		t.Error("Set() accepted a key escaping the directory")
	}
}

func TestNewDirRequiresPath(t *testing.T) {
	if _, err := NewDir(""); err == nil {
		t.Error("NewDir(\"\") should fail")
	}
}
