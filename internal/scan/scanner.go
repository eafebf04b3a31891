// Package scan orchestrates one ingestion pass over the vault inbox:
// extract, optionally enrich, classify, relocate into the archive tree, and
// index. A failure on one file never aborts the batch.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkessler/ablage/internal/analyzer"
	"github.com/mkessler/ablage/internal/blob"
	"github.com/mkessler/ablage/internal/checksum"
	"github.com/mkessler/ablage/internal/classify"
	"github.com/mkessler/ablage/internal/dataset"
	"github.com/mkessler/ablage/internal/extract"
	"github.com/mkessler/ablage/internal/models"
	"github.com/mkessler/ablage/internal/vault"
)

// Files above this size stay in the inbox untouched.
const maxFileSize = 50 << 20 // 50 MB

// DefaultAnalyzerDelay is the cooperative rate-limit pause before each
// analyzer call.
const DefaultAnalyzerDelay = time.Second

// Report summarises one scan pass.
type Report struct {
	Moved            int
	NewDocuments     int
	NewTaxExpenses   int
	NewExpenses      int
	NewSalaryEntries int
	Skipped          int
}

// Scanner ingests inbox files. All collaborators are injected; Analyzer may
// be nil, in which case the built-in classifier decides alone.
type Scanner struct {
	vault     *vault.FS
	index     dataset.Index
	blobs     blob.Store
	extractor *extract.Extractor
	analyzer  analyzer.Analyzer
	rules     []classify.Rule
	delay     time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// Options tune a Scanner.
type Options struct {
	Analyzer      analyzer.Analyzer
	UserRules     []classify.Rule
	AnalyzerDelay time.Duration
	Now           func() time.Time
}

// New creates a Scanner.
func New(v *vault.FS, index dataset.Index, blobs blob.Store, ex *extract.Extractor, logger *slog.Logger, opts Options) *Scanner {
	if opts.AnalyzerDelay <= 0 {
		opts.AnalyzerDelay = DefaultAnalyzerDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scanner{
		vault:     v,
		index:     index,
		blobs:     blobs,
		extractor: ex,
		analyzer:  opts.Analyzer,
		rules:     opts.UserRules,
		delay:     opts.AnalyzerDelay,
		logger:    logger,
		now:       opts.Now,
	}
}

// Scan processes every inbox file sequentially and reports counts. It holds
// the advisory vault lock for the duration of the pass. Cancellation leaves
// already-relocated files in their new state; re-running the idempotent
// scan picks up the rest.
func (s *Scanner) Scan(ctx context.Context) (*Report, error) {
	lock, err := s.vault.AcquireLock()
	if err != nil {
		return nil, err
	}
	defer lock.Release() //nolint:errcheck

	entries, err := s.vault.ListEntries(vault.InboxDir)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if s.skipEntry(entry) {
			continue
		}
		if err := s.processFile(ctx, entry.Name, report); err != nil {
			report.Skipped++
			s.logger.Warn("scan: skipped",
				slog.String("file", entry.Name),
				slog.String("error", err.Error()))
		}
	}

	s.logger.Info("scan: finished",
		slog.Int("moved", report.Moved),
		slog.Int("documents", report.NewDocuments),
		slog.Int("skipped", report.Skipped))
	return report, nil
}

// skipEntry filters directory placeholders, hidden system files, and
// oversized files.
func (s *Scanner) skipEntry(entry vault.Entry) bool {
	if entry.IsDir || strings.HasPrefix(entry.Name, ".") {
		return true
	}
	size, err := s.vault.Stat(filepath.Join(vault.InboxDir, entry.Name))
	if err != nil {
		return true
	}
	if size > maxFileSize {
		s.logger.Warn("scan: file above size ceiling",
			slog.String("file", entry.Name),
			slog.Int64("size", size))
		return true
	}
	return false
}

// processFile runs one file through the full state machine:
// Discovered → Extracted → (Enriched) → Classified → Relocated → Indexed.
func (s *Scanner) processFile(ctx context.Context, name string, report *Report) error {
	inboxPath := filepath.Join(vault.InboxDir, name)
	data, err := s.vault.ReadFile(inboxPath)
	if err != nil {
		return err
	}

	text, kind := s.extractor.Extract(data, name)

	enrichment := s.enrich(ctx, data, name)

	category, subCategory, year, title := s.decide(enrichment, text, name)

	// Relocate only after classification succeeded. On failure the file
	// stays in the inbox for the next pass.
	segments := []string{vault.ArchiveDir, strconv.Itoa(year), string(category)}
	if subCategory != "" {
		segments = append(segments, subCategory)
	}
	dir, err := s.vault.GetOrCreateDir(segments...)
	if err != nil {
		return fmt.Errorf("scan: relocate %s: %w", name, err)
	}
	target := filepath.Join(dir, name)

	// A crash between the two move phases can leave the inbox copy behind;
	// an existing index entry for the target means this file was already
	// ingested, so only finish the delete.
	if exists, err := s.index.HasFilePath(target); err == nil && exists {
		_ = s.vault.DeleteFile(inboxPath)
		return nil
	}

	if err := s.vault.MoveFile(inboxPath, target); err != nil {
		return fmt.Errorf("scan: relocate %s: %w", name, err)
	}
	report.Moved++

	doc := models.NoteDocument{
		ID:          uuid.NewString(),
		Title:       title,
		Kind:        kind,
		Category:    category,
		SubCategory: subCategory,
		Year:        year,
		Created:     s.now(),
		Content:     text,
		FileName:    name,
		FilePath:    target,
		Tags:        []string{},
		Checksum:    checksum.Sum(data),
	}

	if err := s.blobs.Put(doc.ID, data); err != nil {
		s.logger.Warn("scan: blob put failed",
			slog.String("file", name),
			slog.String("error", err.Error()))
	} else if named, ok := s.blobs.(blob.NamedStore); ok {
		_ = named.SetFilename(doc.ID, name)
	}

	s.deriveSideRecords(enrichment, &doc, report)

	if err := s.index.UpsertDocument(doc); err != nil {
		return fmt.Errorf("scan: index %s: %w", name, err)
	}
	report.NewDocuments++
	s.logger.Info("scan: archived",
		slog.String("file", name),
		slog.String("path", target),
		slog.String("category", string(category)))
	return nil
}

// enrich calls the external analyzer, honoring the mandatory inter-file
// delay. Any failure degrades to nil; the built-in classifier takes over.
func (s *Scanner) enrich(ctx context.Context, data []byte, name string) *analyzer.Result {
	if s.analyzer == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return nil
	case <-time.After(s.delay):
	}
	res, err := s.analyzer.Analyze(ctx, data, name)
	if err != nil {
		s.logger.Warn("scan: analyzer failed",
			slog.String("file", name),
			slog.String("error", err.Error()))
		return nil
	}
	return res
}

// decide merges enrichment with the built-in classifier. Enrichment wins
// when it names a category; everything else falls back to keyword scoring.
func (s *Scanner) decide(enrichment *analyzer.Result, text, name string) (models.Category, string, int, string) {
	title := strings.TrimSuffix(name, filepath.Ext(name))
	category := classify.Classify(text, name, s.rules)
	subCategory := ""
	year := classify.Year(text, s.now())

	if enrichment != nil {
		if enrichment.Category != "" {
			category = enrichment.Category
		}
		subCategory = enrichment.SubCategory
		if !enrichment.Date.IsZero() {
			year = enrichment.Date.Year()
		}
		if enrichment.Title != "" {
			title = enrichment.Title
		}
	}
	return category, subCategory, year, title
}

// deriveSideRecords writes the tax/expense/salary ledger entries implied by
// enrichment. Salary facts take precedence: an income document is routed to
// the salary ledger only, never double-logged as an expense or deduction.
func (s *Scanner) deriveSideRecords(enrichment *analyzer.Result, doc *models.NoteDocument, report *Report) {
	if enrichment == nil {
		return
	}
	doc.TaxRelevant = enrichment.TaxRelevant
	if enrichment.Summary != "" && doc.Content == "" {
		doc.Content = enrichment.Summary
	}

	if salary, ok := enrichment.Salary(); ok {
		entry := models.SalaryEntry{
			Year:        salary.Year,
			Month:       salary.Month,
			NetIncome:   salary.NetIncome,
			GrossIncome: salary.GrossIncome,
			Deductions:  salary.Deductions,
			PDFFilename: doc.ID,
		}
		if err := s.index.AddSalary(entry); err != nil {
			s.logger.Warn("scan: add salary failed", slog.String("error", err.Error()))
			return
		}
		report.NewSalaryEntries++
		return
	}

	if expense, ok := enrichment.Expense(); ok {
		date := expense.Date
		if date.IsZero() {
			date = s.now()
		}
		entry := models.ExpenseEntry{
			ID:          uuid.NewString(),
			Date:        date,
			Merchant:    expense.Merchant,
			Amount:      expense.Amount,
			Currency:    expense.Currency,
			Rate:        1,
			Category:    string(doc.Category),
			ReceiptID:   doc.ID,
			TaxRelevant: enrichment.TaxRelevant,
		}
		if err := s.index.AddExpense(entry); err != nil {
			s.logger.Warn("scan: add expense failed", slog.String("error", err.Error()))
		} else {
			report.NewExpenses++
			doc.IsExpense = true
			doc.ExpenseID = entry.ID
		}
	}

	if tax, ok := enrichment.Tax(); ok {
		year := tax.Year
		if year == 0 {
			year = doc.Year
		}
		entry := models.TaxExpense{
			Description: tax.Description,
			Amount:      tax.Amount,
			Currency:    tax.Currency,
			Rate:        1,
			Category:    string(doc.Category),
			Year:        year,
			Receipts:    []string{doc.ID},
			TaxRelevant: true,
			NoteRef:     doc.ID,
		}
		if err := s.index.AddTaxExpense(entry); err != nil {
			s.logger.Warn("scan: add tax expense failed", slog.String("error", err.Error()))
		} else {
			report.NewTaxExpenses++
			doc.TaxRelevant = true
		}
	}
}
