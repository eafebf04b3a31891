// Package backup bundles the structured dataset plus every resolvable
// attachment into one portable zip archive, and restores such archives.
//
// Archive layout:
//
//	TradeLog_Data.json                      full dataset (required)
//	file_mapping.json                       attachment ID → archive path
//	Steuern/<category>_<safeName>           tax receipts
//	Trades/<date>_img_<n>.<ext>             trade screenshots
//	Salary/<year>/<month>_<safeName>        salary documents
//	Documents/<year>/<category>/<safeName>  vault-synced documents
//	DailyExpenses/exp_<id>.<ext>            remaining daily-expense receipts
package backup

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strconv"

	"github.com/mkessler/ablage/internal/blob"
	"github.com/mkessler/ablage/internal/models"
	"github.com/mkessler/ablage/internal/vault"
)

const (
	datasetEntry = "TradeLog_Data.json"
	mappingEntry = "file_mapping.json"
)

// Archiver serializes datasets into portable archives. The vault may be nil
// when only blob-backed attachments exist.
type Archiver struct {
	blobs  blob.Store
	vault  *vault.FS
	logger *slog.Logger
}

// NewArchiver creates an Archiver.
func NewArchiver(blobs blob.Store, v *vault.FS, logger *slog.Logger) *Archiver {
	return &Archiver{blobs: blobs, vault: v, logger: logger}
}

// run tracks one archive creation: the zip writer, the ID→path mapping and
// the set of used archive paths (collision suffixing).
type run struct {
	zw      *zip.Writer
	mapping map[string]string
	used    map[string]struct{}
	parent  *Archiver
}

// Create produces the archive bytes for the given dataset. Unresolvable
// attachments are logged and skipped; they never abort the run.
func (a *Archiver) Create(ds *models.Dataset) ([]byte, error) {
	if ds == nil {
		return nil, fmt.Errorf("backup: nil dataset")
	}

	var buf bytes.Buffer
	r := &run{
		zw:      zip.NewWriter(&buf),
		mapping: map[string]string{},
		used:    map[string]struct{}{},
		parent:  a,
	}

	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("backup: marshal dataset: %w", err)
	}
	if err := r.writeEntry(datasetEntry, data); err != nil {
		return nil, err
	}

	// Stage order matters only for naming; the mapping is first writer
	// wins per attachment ID regardless of stage.
	r.addTaxReceipts(ds.TaxExpenses)
	r.addTradeImages(ds.Trades)
	r.addSalaryDocuments(ds.Salaries)
	r.addDocuments(ds.Documents)
	r.addDailyExpenseReceipts(ds.Expenses)

	mappingJSON, err := json.MarshalIndent(r.mapping, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("backup: marshal mapping: %w", err)
	}
	if err := r.writeEntry(mappingEntry, mappingJSON); err != nil {
		return nil, err
	}

	if err := r.zw.Close(); err != nil {
		return nil, fmt.Errorf("backup: close archive: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *run) addTaxReceipts(expenses []models.TaxExpense) {
	for _, e := range expenses {
		for _, id := range e.Receipts {
			data, ok := r.resolve(id, "")
			if !ok {
				continue
			}
			name := path.Join("Steuern", SafeName(e.Category)+"_"+SafeName(r.attachmentName(id, data)))
			r.place(id, name, data)
		}
	}
}

func (r *run) addTradeImages(trades []models.Trade) {
	for _, t := range trades {
		for i, id := range t.ImageIDs {
			data, ok := r.resolve(id, "")
			if !ok {
				continue
			}
			name := path.Join("Trades", fmt.Sprintf("%s_img_%d%s", SafeName(t.Date), i, sniffExt(data)))
			r.place(id, name, data)
		}
	}
}

func (r *run) addSalaryDocuments(salaries []models.SalaryEntry) {
	for _, s := range salaries {
		if s.PDFFilename == "" {
			continue
		}
		data, ok := r.resolve(s.PDFFilename, "")
		if !ok {
			continue
		}
		name := path.Join("Salary", strconv.Itoa(s.Year),
			fmt.Sprintf("%02d_%s", s.Month, SafeName(r.attachmentName(s.PDFFilename, data))))
		r.place(s.PDFFilename, name, data)
	}
}

func (r *run) addDocuments(docs []models.NoteDocument) {
	for _, d := range docs {
		if d.FilePath == "" && d.ID == "" {
			continue
		}
		data, ok := r.resolve(d.ID, d.FilePath)
		if !ok {
			continue
		}
		fileName := d.FileName
		if fileName == "" {
			fileName = d.ID + sniffExt(data)
		}
		name := path.Join("Documents", strconv.Itoa(d.Year), SafeName(string(d.Category)), SafeName(fileName))
		r.place(d.ID, name, data)
	}
}

func (r *run) addDailyExpenseReceipts(buckets map[string][]models.ExpenseEntry) {
	for _, bucket := range buckets {
		for _, e := range bucket {
			if e.ReceiptID == "" {
				continue
			}
			// Receipts already bundled by an earlier stage are skipped by
			// the first-writer-wins mapping check inside place.
			data, ok := r.resolve(e.ReceiptID, "")
			if !ok {
				continue
			}
			name := path.Join("DailyExpenses", "exp_"+SafeName(e.ID)+sniffExt(data))
			r.place(e.ReceiptID, name, data)
		}
	}
}

// resolve fetches attachment bytes, preferring the blob store and falling
// back to fuzzy vault resolution when a vault path is known.
func (r *run) resolve(id, filePath string) ([]byte, bool) {
	if id != "" {
		if data, err := r.parent.blobs.Get(id); err == nil {
			return data, true
		}
	}
	if filePath != "" && r.parent.vault != nil {
		if data, err := r.parent.vault.Resolve(filePath); err == nil {
			return data, true
		}
	}
	r.parent.logger.Warn("backup: attachment unresolvable",
		slog.String("id", id),
		slog.String("path", filePath))
	return nil, false
}

// attachmentName returns the stored original filename when the blob store
// keeps one, otherwise the ID with a sniffed extension.
func (r *run) attachmentName(id string, data []byte) string {
	if named, ok := r.parent.blobs.(blob.NamedStore); ok {
		if name, err := named.Filename(id); err == nil && name != "" {
			return name
		}
	}
	return id + sniffExt(data)
}

// place writes one attachment under archivePath and records the mapping.
// An already-mapped ID is skipped: the first writer for an ID wins within
// one backup run.
func (r *run) place(id, archivePath string, data []byte) {
	if id == "" {
		return
	}
	if _, mapped := r.mapping[id]; mapped {
		return
	}
	archivePath = r.dedupePath(archivePath)
	if err := r.writeEntry(archivePath, data); err != nil {
		r.parent.logger.Warn("backup: write attachment failed",
			slog.String("id", id),
			slog.String("error", err.Error()))
		return
	}
	r.mapping[id] = archivePath
}

// dedupePath suffixes the base name until the archive path is unused.
func (r *run) dedupePath(p string) string {
	if _, taken := r.used[p]; !taken {
		return p
	}
	ext := path.Ext(p)
	stem := p[:len(p)-len(ext)]
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, taken := r.used[candidate]; !taken {
			return candidate
		}
	}
}

func (r *run) writeEntry(name string, data []byte) error {
	w, err := r.zw.Create(name)
	if err != nil {
		return fmt.Errorf("backup: create entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("backup: write entry %s: %w", name, err)
	}
	r.used[name] = struct{}{}
	return nil
}
