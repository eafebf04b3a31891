package blob

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkessler/ablage/internal/apperr"
)

// DirStore keeps each attachment as a file named by its ID under a flat
// directory. The original filename, when known, lives in an "<id>.name"
// sidecar.
type DirStore struct {
	dir string
}

// NewDirStore creates the backing directory if needed.
func NewDirStore(dir string) (*DirStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("blob: resolve dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create dir: %w", err)
	}
	return &DirStore{dir: abs}, nil
}

// safeID rejects IDs that could escape the store directory.
func (d *DirStore) safeID(id string) (string, error) {
	if id == "" || id != filepath.Base(filepath.Clean(id)) || strings.Contains(id, "..") {
		return "", fmt.Errorf("blob: invalid id: %q", id)
	}
	return filepath.Join(d.dir, id), nil
}

func (d *DirStore) Put(id string, data []byte) error {
	path, err := d.safeID(id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("blob: put %s: %w", id, err)
	}
	return nil
}

func (d *DirStore) Get(id string) ([]byte, error) {
	path, err := d.safeID(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("blob: get %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("blob: get %s: %w", id, err)
	}
	return data, nil
}

func (d *DirStore) SetFilename(id, name string) error {
	path, err := d.safeID(id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path+".name", []byte(name), 0o644); err != nil {
		return fmt.Errorf("blob: set filename %s: %w", id, err)
	}
	return nil
}

func (d *DirStore) Filename(id string) (string, error) {
	path, err := d.safeID(id)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path + ".name")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("blob: filename %s: %w", id, apperr.ErrNotFound)
		}
		return "", fmt.Errorf("blob: filename %s: %w", id, err)
	}
	return string(data), nil
}
