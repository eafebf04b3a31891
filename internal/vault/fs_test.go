package vault

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkessler/ablage/internal/apperr"
)

func tempVault(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	if err := fs.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return fs
}

func TestConnectCreatesLayout(t *testing.T) {
	s := tempVault(t)
	for _, d := range []string{InboxDir, ArchiveDir} {
		info, err := os.Stat(filepath.Join(s.Root(), d))
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s after Connect", d)
		}
	}
}

func TestWriteAndRead(t *testing.T) {
	s := tempVault(t)
	content := []byte("%PDF-1.4 test")
	if err := s.WriteFile("_INBOX/doc.pdf", content); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := s.ReadFile("_INBOX/doc.pdf")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestReadMissingIsNotFound(t *testing.T) {
	s := tempVault(t)
	_, err := s.ReadFile("_INBOX/nope.pdf")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetOrCreateDir(t *testing.T) {
	s := tempVault(t)
	rel, err := s.GetOrCreateDir(ArchiveDir, "2024", "Finanzen", "Bank")
	if err != nil {
		t.Fatalf("GetOrCreateDir: %v", err)
	}
	if rel != filepath.Join(ArchiveDir, "2024", "Finanzen", "Bank") {
		t.Errorf("rel = %q", rel)
	}
	info, err := os.Stat(filepath.Join(s.Root(), rel))
	if err != nil || !info.IsDir() {
		t.Errorf("expected created directory at %s", rel)
	}
}

func TestGetOrCreateDirBlockedByFile(t *testing.T) {
	s := tempVault(t)
	if err := s.WriteFile(filepath.Join(ArchiveDir, "2024"), []byte("not a dir")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := s.GetOrCreateDir(ArchiveDir, "2024")
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestMoveIsTwoPhase(t *testing.T) {
	s := tempVault(t)
	_ = s.WriteFile("_INBOX/old.pdf", []byte("data"))
	if err := s.MoveFile("_INBOX/old.pdf", "_ARCHIVE/2024/Finanzen/old.pdf"); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	got, err := s.ReadFile("_ARCHIVE/2024/Finanzen/old.pdf")
	if err != nil {
		t.Fatalf("ReadFile after move: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q", got)
	}
	if _, err := s.ReadFile("_INBOX/old.pdf"); !errors.Is(err, apperr.ErrNotFound) {
		t.Error("old path should not exist")
	}
}

func TestListEntries(t *testing.T) {
	s := tempVault(t)
	_ = s.WriteFile("_INBOX/a.pdf", []byte("a"))
	_ = s.WriteFile("_INBOX/b.txt", []byte("b"))
	_, _ = s.GetOrCreateDir(InboxDir, "sub")

	entries, err := s.ListEntries(InboxDir)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	dirs := 0
	for _, e := range entries {
		if e.IsDir {
			dirs++
		}
	}
	if dirs != 1 {
		t.Errorf("dirs = %d, want 1", dirs)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempVault(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.pdf",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.ReadFile(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.WriteFile(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteNoLeftoverTemp(t *testing.T) {
	s := tempVault(t)
	_ = s.WriteFile("_INBOX/atomic.pdf", []byte("original"))
	if err := s.WriteFile("_INBOX/atomic.pdf", []byte("updated")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, _ := s.ReadFile("_INBOX/atomic.pdf")
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.Root(), InboxDir, ".ablage-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestResolveExact(t *testing.T) {
	s := tempVault(t)
	_ = s.WriteFile("_ARCHIVE/2024/Finanzen/plain.pdf", []byte("x"))
	if _, err := s.Resolve("_ARCHIVE/2024/Finanzen/plain.pdf"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
}

func TestResolveUnicodeForms(t *testing.T) {
	s := tempVault(t)

	// Decomposed "ü" (u + combining diaeresis) on disk, precomposed lookup.
	decomposed := "Gehälter.pdf"
	precomposed := "Gehälter.pdf"
	_ = s.WriteFile(filepath.Join(ArchiveDir, "2024", "Arbeit", decomposed), []byte("nfc"))
	got, err := s.Resolve(filepath.Join(ArchiveDir, "2024", "Arbeit", precomposed))
	if err != nil {
		t.Fatalf("Resolve precomposed: %v", err)
	}
	if string(got) != "nfc" {
		t.Errorf("content = %q", got)
	}

	// Precomposed on disk, decomposed lookup.
	_ = s.WriteFile(filepath.Join(ArchiveDir, "2024", "Arbeit", "Vertrāge.pdf"), nil)
	_ = s.WriteFile(filepath.Join(ArchiveDir, "2023", "Arbeit", precomposed), []byte("nfd"))
	got, err = s.Resolve(filepath.Join(ArchiveDir, "2023", "Arbeit", decomposed))
	if err != nil {
		t.Fatalf("Resolve decomposed: %v", err)
	}
	if string(got) != "nfd" {
		t.Errorf("content = %q", got)
	}
}

func TestResolveTrailingWhitespace(t *testing.T) {
	s := tempVault(t)
	_ = s.WriteFile("_ARCHIVE/2024/Wohnen/Miete.pdf", []byte("x"))
	if _, err := s.Resolve("_ARCHIVE/2024/Wohnen/Miete.pdf "); err != nil {
		t.Fatalf("Resolve with trailing space: %v", err)
	}
}

func TestResolveNotFoundAfterBothPasses(t *testing.T) {
	s := tempVault(t)
	_, _ = s.GetOrCreateDir(ArchiveDir, "2024", "Finanzen")
	_, err := s.Resolve("_ARCHIVE/2024/Finanzen/missing.pdf")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/ablage-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}
