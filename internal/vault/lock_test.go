package vault

import (
	"errors"
	"testing"

	"github.com/mkessler/ablage/internal/apperr"
)

func TestLockExcludesSecondHolder(t *testing.T) {
	s := tempVault(t)
	lock, err := s.AcquireLock()
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	if _, err := s.AcquireLock(); !errors.Is(err, apperr.ErrVaultLocked) {
		t.Errorf("second acquire err = %v, want ErrVaultLocked", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	relock, err := s.AcquireLock()
	if err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
	_ = relock.Release()
}
