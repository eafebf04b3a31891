package backup

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"

	"golang.org/x/sync/errgroup"

	"github.com/mkessler/ablage/internal/apperr"
	"github.com/mkessler/ablage/internal/blob"
	"github.com/mkessler/ablage/internal/models"
)

// restoreWorkers bounds concurrent attachment reinstalls.
const restoreWorkers = 4

// Restorer unpacks backup archives back into the dataset and blob store.
type Restorer struct {
	blobs  blob.Store
	logger *slog.Logger
}

// NewRestorer creates a Restorer.
func NewRestorer(blobs blob.Store, logger *slog.Logger) *Restorer {
	return &Restorer{blobs: blobs, logger: logger}
}

// Restore parses the archive and reinstalls every mapped attachment into
// the blob store under its original ID. A missing dataset document is a
// fatal apperr.ErrInvalidArchive; a missing mapping document just means no
// attachments are restored. Attachment reinstalls run concurrently and the
// call returns only after all of them have settled.
func (r *Restorer) Restore(archive []byte) (*models.Dataset, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("backup: open archive: %w", apperr.ErrInvalidArchive)
	}

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	dsFile, ok := entries[datasetEntry]
	if !ok {
		return nil, fmt.Errorf("backup: %s missing: %w", datasetEntry, apperr.ErrInvalidArchive)
	}
	dsBytes, err := readEntry(dsFile)
	if err != nil {
		return nil, fmt.Errorf("backup: read dataset: %w", apperr.ErrInvalidArchive)
	}
	ds := models.NewDataset()
	if err := json.Unmarshal(dsBytes, ds); err != nil {
		return nil, fmt.Errorf("backup: parse dataset: %w", apperr.ErrInvalidArchive)
	}

	mapping := map[string]string{}
	if mapFile, ok := entries[mappingEntry]; ok {
		mapBytes, err := readEntry(mapFile)
		if err == nil {
			if err := json.Unmarshal(mapBytes, &mapping); err != nil {
				r.logger.Warn("restore: mapping unreadable, skipping attachments",
					slog.String("error", err.Error()))
				mapping = map[string]string{}
			}
		}
	}

	var g errgroup.Group
	g.SetLimit(restoreWorkers)
	for id, archivePath := range mapping {
		g.Go(func() error {
			file, ok := entries[archivePath]
			if !ok {
				r.logger.Warn("restore: archive entry missing",
					slog.String("id", id),
					slog.String("path", archivePath))
				return nil
			}
			data, err := readEntry(file)
			if err != nil {
				r.logger.Warn("restore: read entry failed",
					slog.String("path", archivePath),
					slog.String("error", err.Error()))
				return nil
			}
			if err := r.blobs.Put(id, data); err != nil {
				r.logger.Warn("restore: blob put failed",
					slog.String("id", id),
					slog.String("error", err.Error()))
				return nil
			}
			if named, ok := r.blobs.(blob.NamedStore); ok {
				_ = named.SetFilename(id, path.Base(archivePath))
			}
			return nil
		})
	}
	// Per-attachment failures are logged skips, so Wait only joins.
	_ = g.Wait()

	return ds, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
