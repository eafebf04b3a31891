package vault

import (
	"errors"
	"os"
	"testing"

	"github.com/mkessler/ablage/internal/apperr"
)

func TestVerifyPermissionGranted(t *testing.T) {
	v, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if got := v.VerifyPermission(); got != PermGranted {
		t.Errorf("permission = %v, want granted", got)
	}
	// No probe leftovers.
	entries, err := os.ReadDir(v.Root())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("probe file left behind: %v", entries)
	}
}

func TestVerifyPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, mode bits are not enforced")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	v, err := NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := v.VerifyPermission(); got != PermDenied {
		t.Errorf("permission = %v, want denied", got)
	}

	// Mutations gate on the denied state.
	err = v.WriteFile("x.txt", []byte("x"))
	if !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", err)
	}

	// Fixing the mode and re-requesting recovers.
	if err := os.Chmod(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if got := v.RequestPermission(); got != PermGranted {
		t.Errorf("permission after fix = %v, want granted", got)
	}
	if err := v.WriteFile("x.txt", []byte("x")); err != nil {
		t.Errorf("WriteFile after grant: %v", err)
	}
}

func TestPermissionString(t *testing.T) {
	cases := map[Permission]string{
		PermUnchecked: "unchecked",
		PermGranted:   "granted",
		PermDenied:    "denied",
	}
	for p, want := range cases {
		if got := p.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", p, got, want)
		}
	}
}
