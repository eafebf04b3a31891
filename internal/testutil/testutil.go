// Package testutil provides shared test helpers for setting up vaults,
// dataset databases, and blob stores.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/mkessler/ablage/internal/blob"
	"github.com/mkessler/ablage/internal/dataset"
	"github.com/mkessler/ablage/internal/vault"
)

// TestStore creates a temporary SQLite dataset database that is
// automatically cleaned up.
func TestStore(t *testing.T) *dataset.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "ablage-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	store, err := dataset.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestVault creates a temporary connected vault with the inbox/archive
// layout in place.
func TestVault(t *testing.T) *vault.FS {
	t.Helper()
	v, err := vault.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Connect(); err != nil {
		t.Fatal(err)
	}
	return v
}

// TestBlobs creates an in-memory blob store.
func TestBlobs(t *testing.T) *blob.MemStore {
	t.Helper()
	return blob.NewMemStore()
}

// Logger returns a silent logger for tests.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
