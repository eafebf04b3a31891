// Package vault provides the permissioned vault file-system abstraction:
// a hierarchical store rooted at a user-granted directory with an _INBOX
// drop zone and an _ARCHIVE/<Year>/<Category>[/<SubCategory>] tree.
package vault

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkessler/ablage/internal/apperr"
)

// Permission is the readwrite grant state for a vault root.
type Permission int

const (
	PermUnchecked Permission = iota
	PermGranted
	PermDenied
)

func (p Permission) String() string {
	switch p {
	case PermGranted:
		return "granted"
	case PermDenied:
		return "denied"
	default:
		return "unchecked"
	}
}

// VerifyPermission checks readwrite access without prompting. The check is
// not read-only: it creates a scratch file ".ablage-perm-probe" directly
// under the root and removes it again. Callers inspecting a vault they must
// not touch should stat the root themselves instead of calling this.
func (f *FS) VerifyPermission() Permission {
	probe := filepath.Join(f.root, ".ablage-perm-probe")
	file, err := os.OpenFile(probe, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		f.perm = PermDenied
		return f.perm
	}
	_ = file.Close()
	_ = os.Remove(probe)
	f.perm = PermGranted
	return f.perm
}

// RequestPermission re-runs the probe. On a local file system there is no
// prompt to show; a denied result means the process lacks write access to
// the root and the user has to fix ownership or mode bits out of band.
func (f *FS) RequestPermission() Permission {
	return f.VerifyPermission()
}

// ensureWritable gates every mutating operation. A denied state surfaces as
// apperr.ErrPermissionDenied, distinct from generic I/O failures.
func (f *FS) ensureWritable() error {
	if f.perm == PermUnchecked {
		f.VerifyPermission()
	}
	if f.perm != PermGranted {
		return fmt.Errorf("vault: readwrite on %s: %w", f.root, apperr.ErrPermissionDenied)
	}
	return nil
}
