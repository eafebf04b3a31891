// Package reindex rebuilds the document index from the archive directory
// structure alone, the disaster-recovery path when the index database is
// lost or stale.
package reindex

import (
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkessler/ablage/internal/checksum"
	"github.com/mkessler/ablage/internal/dataset"
	"github.com/mkessler/ablage/internal/extract"
	"github.com/mkessler/ablage/internal/models"
	"github.com/mkessler/ablage/internal/vault"
)

// Indexer re-scans the archive tree.
type Indexer struct {
	vault     *vault.FS
	index     dataset.Index
	extractor *extract.Extractor
	logger    *slog.Logger
}

// New creates an Indexer.
func New(v *vault.FS, index dataset.Index, ex *extract.Extractor, logger *slog.Logger) *Indexer {
	return &Indexer{vault: v, index: index, extractor: ex, logger: logger}
}

// Rebuild walks _ARCHIVE with an explicit recursive descent carrying
// (year, category, subCategory) as accumulated parameters. The file's
// location is authoritative: path-derived metadata overrides whatever the
// content classifier would have said. Existing entries (matched by file
// path) are never overwritten; only missing ones are added. It returns the
// number of documents added.
func (ix *Indexer) Rebuild() (int, error) {
	lock, err := ix.vault.AcquireLock()
	if err != nil {
		return 0, err
	}
	defer lock.Release() //nolint:errcheck

	known, err := ix.index.AllFilePaths()
	if err != nil {
		return 0, err
	}

	years, err := ix.vault.ListEntries(vault.ArchiveDir)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, y := range years {
		if !y.IsDir {
			continue
		}
		year, convErr := strconv.Atoi(y.Name)
		if convErr != nil {
			ix.logger.Warn("reindex: unexpected year directory", slog.String("name", y.Name))
			continue
		}
		yearDir := filepath.Join(vault.ArchiveDir, y.Name)
		cats, listErr := ix.vault.ListEntries(yearDir)
		if listErr != nil {
			ix.logger.Warn("reindex: list failed", slog.String("dir", yearDir), slog.String("error", listErr.Error()))
			continue
		}
		for _, c := range cats {
			if !c.IsDir {
				continue
			}
			catDir := filepath.Join(yearDir, c.Name)
			added += ix.descend(catDir, year, models.Category(c.Name), "", known)
		}
	}

	ix.logger.Info("reindex: finished", slog.Int("added", added))
	return added, nil
}

// descend indexes the files of one category (or subcategory) directory.
// Directories below the subcategory level are ignored; the archive layout
// is exactly three levels deep.
func (ix *Indexer) descend(dir string, year int, category models.Category, subCategory string, known map[string]struct{}) int {
	entries, err := ix.vault.ListEntries(dir)
	if err != nil {
		ix.logger.Warn("reindex: list failed", slog.String("dir", dir), slog.String("error", err.Error()))
		return 0
	}

	added := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name, ".") {
			continue
		}
		if e.IsDir {
			if subCategory == "" {
				added += ix.descend(filepath.Join(dir, e.Name), year, category, e.Name, known)
			}
			continue
		}
		rel := filepath.Join(dir, e.Name)
		if _, ok := known[rel]; ok {
			continue
		}
		if ix.indexFile(rel, e.Name, year, category, subCategory) {
			known[rel] = struct{}{}
			added++
		}
	}
	return added
}

func (ix *Indexer) indexFile(rel, name string, year int, category models.Category, subCategory string) bool {
	data, err := ix.vault.ReadFile(rel)
	if err != nil {
		ix.logger.Warn("reindex: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return false
	}

	text, kind := ix.extractor.Extract(data, name)

	doc := models.NoteDocument{
		ID:          uuid.NewString(),
		Title:       strings.TrimSuffix(name, filepath.Ext(name)),
		Kind:        kind,
		Category:    category,
		SubCategory: subCategory,
		Year:        year,
		Created:     time.Now(),
		Content:     text,
		FileName:    name,
		FilePath:    rel,
		Tags:        []string{},
		Checksum:    checksum.Sum(data),
	}
	if err := ix.index.UpsertDocument(doc); err != nil {
		ix.logger.Warn("reindex: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		return false
	}
	ix.logger.Debug("reindex: indexed", slog.String("path", rel))
	return true
}
