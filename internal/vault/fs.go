package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/mkessler/ablage/internal/apperr"
)

// Well-known top-level directories inside a vault.
const (
	InboxDir   = "_INBOX"
	ArchiveDir = "_ARCHIVE"
)

// Entry is one directory listing item.
type Entry struct {
	Name  string
	IsDir bool
}

// FS implements the vault file-system abstraction backed by a local
// directory tree. All paths are relative to the vault root.
type FS struct {
	root string // absolute path to vault directory
	perm Permission
}

// NewFS creates a new FS rooted at the given directory. The directory must
// already exist; Connect creates the inbox/archive layout inside it.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("vault: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("vault: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault: root is not a directory: %s", abs)
	}
	return &FS{root: abs, perm: PermUnchecked}, nil
}

// Root returns the absolute vault root path.
func (f *FS) Root() string { return f.root }

// Connect verifies readwrite access and ensures the _INBOX and _ARCHIVE
// directories exist.
func (f *FS) Connect() error {
	if err := f.ensureWritable(); err != nil {
		return err
	}
	for _, d := range []string{InboxDir, ArchiveDir} {
		if err := os.MkdirAll(filepath.Join(f.root, d), 0o755); err != nil {
			return fmt.Errorf("vault: create %s: %w", d, err)
		}
	}
	return nil
}

// safePath resolves a relative path against the vault root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("vault: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("vault: resolve path: %w", err)
	}
	// Ensure the resolved path is still under root.
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("vault: path escapes vault root: %s", rel)
	}
	return abs, nil
}

// ListEntries returns the immediate children of dir (relative to root).
func (f *FS) ListEntries(dir string) ([]Entry, error) {
	abs, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	dirents, err := os.ReadDir(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("vault: list %s: %w", dir, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("vault: list %s: %w", dir, err)
	}
	out := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		out = append(out, Entry{Name: d.Name(), IsDir: d.IsDir()})
	}
	return out, nil
}

// GetOrCreateDir joins the given segments under the vault root, creating
// missing directories, and returns the vault-relative path. A regular file
// occupying the target path is reported as ErrAlreadyExists.
func (f *FS) GetOrCreateDir(segments ...string) (string, error) {
	if err := f.ensureWritable(); err != nil {
		return "", err
	}
	rel := filepath.Join(segments...)
	abs, err := f.safePath(rel)
	if err != nil {
		return "", err
	}
	if info, statErr := os.Stat(abs); statErr == nil && !info.IsDir() {
		return "", fmt.Errorf("vault: mkdir %s: %w", rel, apperr.ErrAlreadyExists)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("vault: mkdir %s: %w", rel, err)
	}
	return rel, nil
}

// ReadFile returns the raw bytes of a vault file.
func (f *FS) ReadFile(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("vault: read %s: %w", path, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("vault: read %s: %w", path, err)
	}
	return data, nil
}

// Stat returns the file size in bytes, or ErrNotFound.
func (f *FS) Stat(path string) (int64, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("vault: stat %s: %w", path, apperr.ErrNotFound)
		}
		return 0, fmt.Errorf("vault: stat %s: %w", path, err)
	}
	return info.Size(), nil
}

// WriteFile atomically writes content: tmp file → fsync → rename.
func (f *FS) WriteFile(path string, content []byte) error {
	if err := f.ensureWritable(); err != nil {
		return err
	}
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("vault: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ablage-tmp-*")
	if err != nil {
		return fmt.Errorf("vault: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("vault: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("vault: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("vault: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("vault: rename: %w", err)
	}
	success = true
	return nil
}

// DeleteFile removes a file from the vault.
func (f *FS) DeleteFile(path string) error {
	if err := f.ensureWritable(); err != nil {
		return err
	}
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("vault: delete %s: %w", path, apperr.ErrNotFound)
		}
		return fmt.Errorf("vault: delete %s: %w", path, err)
	}
	return nil
}

// MoveFile relocates a file as an explicit two-phase write-then-delete.
// There is no native rename across the permissioned abstraction, so a crash
// between the phases can leave both copies on disk; callers must tolerate
// that window and re-scans must dedupe by target path.
func (f *FS) MoveFile(oldPath, newPath string) error {
	data, err := f.ReadFile(oldPath)
	if err != nil {
		return err
	}
	if err := f.WriteFile(newPath, data); err != nil {
		return err
	}
	return f.DeleteFile(oldPath)
}

// Resolve reads the file at path, falling back to a fuzzy directory search
// when the exact name misses. Fuzzy matching compares NFC-normalised,
// whitespace-trimmed names, which recovers files whose names differ only by
// Unicode composition form or trailing whitespace left by other tools.
func (f *FS) Resolve(path string) ([]byte, error) {
	data, err := f.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	parent := filepath.Dir(path)
	want := normalizeName(filepath.Base(path))
	entries, listErr := f.ListEntries(parent)
	if listErr != nil {
		return nil, fmt.Errorf("vault: resolve %s: %w", path, apperr.ErrNotFound)
	}
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		if normalizeName(e.Name) == want {
			return f.ReadFile(filepath.Join(parent, e.Name))
		}
	}
	return nil, fmt.Errorf("vault: resolve %s: %w", path, apperr.ErrNotFound)
}

func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
