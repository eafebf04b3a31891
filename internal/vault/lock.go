package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mkessler/ablage/internal/apperr"
)

const lockFileName = ".ablage.lock"

// Lock is an advisory per-vault lock. Scans, reindexes and restores take it
// so that two invocations cannot interleave relocations on the same root.
type Lock struct {
	path string
}

// AcquireLock creates the lock file for this vault. A second acquisition on
// the same root fails with apperr.ErrVaultLocked.
func (f *FS) AcquireLock() (*Lock, error) {
	path := filepath.Join(f.root, lockFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("vault: %s: %w", f.root, apperr.ErrVaultLocked)
		}
		return nil, fmt.Errorf("vault: acquire lock: %w", err)
	}
	_, _ = file.WriteString(strconv.Itoa(os.Getpid()))
	_ = file.Close()
	return &Lock{path: path}, nil
}

// Release removes the lock file. Safe to call once per acquired lock.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("vault: release lock: %w", err)
	}
	return nil
}
