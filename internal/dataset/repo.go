package dataset

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mkessler/ablage/internal/apperr"
	"github.com/mkessler/ablage/internal/models"
)

// UpsertDocument inserts or replaces a document and its FTS entry.
func (s *Store) UpsertDocument(d models.NoteDocument) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("dataset: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(nonNil(d.Tags))

	_, err = tx.Exec(`
		INSERT INTO documents (id, title, kind, category, sub_category, year, created,
			content, file_name, file_path, tags, checksum, tax_relevant, is_expense, expense_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title        = excluded.title,
			kind         = excluded.kind,
			category     = excluded.category,
			sub_category = excluded.sub_category,
			year         = excluded.year,
			content      = excluded.content,
			file_name    = excluded.file_name,
			file_path    = excluded.file_path,
			tags         = excluded.tags,
			checksum     = excluded.checksum,
			tax_relevant = excluded.tax_relevant,
			is_expense   = excluded.is_expense,
			expense_id   = excluded.expense_id
	`, d.ID, d.Title, string(d.Kind), string(d.Category), d.SubCategory, d.Year, d.Created,
		d.Content, d.FileName, d.FilePath, string(tagsJSON), d.Checksum,
		boolInt(d.TaxRelevant), boolInt(d.IsExpense), d.ExpenseID)
	if err != nil {
		return fmt.Errorf("dataset: upsert document: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, d.ID, d.Title, d.Content); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteDocument removes a document and its FTS entry. The attachment blob
// is deliberately left alone.
func (s *Store) DeleteDocument(id string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("dataset: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM documents WHERE id = ?`, id)

	return tx.Commit()
}

// GetDocument returns a document by ID, or apperr.ErrNotFound.
func (s *Store) GetDocument(id string) (*models.NoteDocument, error) {
	row := s.conn.QueryRow(`
		SELECT id, title, kind, category, sub_category, year, created, content,
			file_name, file_path, tags, checksum, tax_relevant, is_expense, expense_id
		FROM documents WHERE id = ?`, id)
	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("dataset: document %s: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return d, nil
}

// Recategorize updates category, subcategory, and file path after a manual
// move within the archive tree.
func (s *Store) Recategorize(id string, category models.Category, subCategory, filePath string) error {
	res, err := s.conn.Exec(`
		UPDATE documents SET category = ?, sub_category = ?, file_path = ? WHERE id = ?`,
		string(category), subCategory, filePath, id)
	if err != nil {
		return fmt.Errorf("dataset: recategorize: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("dataset: document %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// HasFilePath reports whether any document is already archived at path.
func (s *Store) HasFilePath(path string) (bool, error) {
	var one int
	err := s.conn.QueryRow(`SELECT 1 FROM documents WHERE file_path = ? LIMIT 1`, path).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("dataset: has file path: %w", err)
	}
	return true, nil
}

// AllFilePaths returns the set of archived file paths in the index.
func (s *Store) AllFilePaths() (map[string]struct{}, error) {
	rows, err := s.conn.Query(`SELECT file_path FROM documents WHERE file_path != ''`)
	if err != nil {
		return nil, fmt.Errorf("dataset: all file paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AddTaxExpense appends a tax expense record.
func (s *Store) AddTaxExpense(e models.TaxExpense) error {
	receipts, _ := json.Marshal(nonNil(e.Receipts))
	_, err := s.conn.Exec(`
		INSERT INTO tax_expenses (description, amount, currency, rate, cat, year, receipts, tax_relevant, note_ref)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Description, e.Amount, e.Currency, e.Rate, e.Category, e.Year,
		string(receipts), boolInt(e.TaxRelevant), e.NoteRef)
	if err != nil {
		return fmt.Errorf("dataset: add tax expense: %w", err)
	}
	return nil
}

// AddExpense appends a daily expense record.
func (s *Store) AddExpense(e models.ExpenseEntry) error {
	_, err := s.conn.Exec(`
		INSERT OR REPLACE INTO expenses (id, date, merchant, amount, currency, rate, category, receipt_id, tax_relevant)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date, e.Merchant, e.Amount, e.Currency, e.Rate, e.Category,
		e.ReceiptID, boolInt(e.TaxRelevant))
	if err != nil {
		return fmt.Errorf("dataset: add expense: %w", err)
	}
	return nil
}

// AddSalary upserts the salary entry for its (year, month).
func (s *Store) AddSalary(e models.SalaryEntry) error {
	deductions, _ := json.Marshal(e.Deductions)
	_, err := s.conn.Exec(`
		INSERT OR REPLACE INTO salary_entries (year, month, net_income, gross_income, deductions, pdf_filename)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Year, e.Month, e.NetIncome, e.GrossIncome, string(deductions), e.PDFFilename)
	if err != nil {
		return fmt.Errorf("dataset: add salary: %w", err)
	}
	return nil
}

// AddTrade upserts a trade record.
func (s *Store) AddTrade(t models.Trade) error {
	imageIDs, _ := json.Marshal(nonNil(t.ImageIDs))
	_, err := s.conn.Exec(`
		INSERT OR REPLACE INTO trades (id, date, symbol, image_ids) VALUES (?, ?, ?, ?)`,
		t.ID, t.Date, t.Symbol, string(imageIDs))
	if err != nil {
		return fmt.Errorf("dataset: add trade: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.NoteDocument, error) {
	var d models.NoteDocument
	var kind, category, tags string
	var taxRelevant, isExpense int
	err := row.Scan(&d.ID, &d.Title, &kind, &category, &d.SubCategory, &d.Year,
		&d.Created, &d.Content, &d.FileName, &d.FilePath, &tags, &d.Checksum,
		&taxRelevant, &isExpense, &d.ExpenseID)
	if err != nil {
		return nil, err
	}
	d.Kind = models.DocKind(kind)
	d.Category = models.Category(category)
	d.TaxRelevant = taxRelevant != 0
	d.IsExpense = isExpense != 0
	_ = json.Unmarshal([]byte(tags), &d.Tags)
	if d.Tags == nil {
		d.Tags = []string{}
	}
	return &d, nil
}

// Export reads the full structured dataset, the unit of one backup run.
func (s *Store) Export() (*models.Dataset, error) {
	ds := models.NewDataset()

	rows, err := s.conn.Query(`
		SELECT id, title, kind, category, sub_category, year, created, content,
			file_name, file_path, tags, checksum, tax_relevant, is_expense, expense_id
		FROM documents ORDER BY created`)
	if err != nil {
		return nil, fmt.Errorf("dataset: export documents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		ds.Documents = append(ds.Documents, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	taxRows, err := s.conn.Query(`
		SELECT description, amount, currency, rate, cat, year, receipts, tax_relevant, note_ref
		FROM tax_expenses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("dataset: export tax expenses: %w", err)
	}
	defer taxRows.Close()
	for taxRows.Next() {
		var e models.TaxExpense
		var receipts string
		var taxRelevant int
		if err := taxRows.Scan(&e.Description, &e.Amount, &e.Currency, &e.Rate,
			&e.Category, &e.Year, &receipts, &taxRelevant, &e.NoteRef); err != nil {
			return nil, err
		}
		e.TaxRelevant = taxRelevant != 0
		_ = json.Unmarshal([]byte(receipts), &e.Receipts)
		ds.TaxExpenses = append(ds.TaxExpenses, e)
	}
	if err := taxRows.Err(); err != nil {
		return nil, err
	}

	expRows, err := s.conn.Query(`
		SELECT id, date, merchant, amount, currency, rate, category, receipt_id, tax_relevant
		FROM expenses ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("dataset: export expenses: %w", err)
	}
	defer expRows.Close()
	for expRows.Next() {
		var e models.ExpenseEntry
		var taxRelevant int
		if err := expRows.Scan(&e.ID, &e.Date, &e.Merchant, &e.Amount, &e.Currency,
			&e.Rate, &e.Category, &e.ReceiptID, &taxRelevant); err != nil {
			return nil, err
		}
		e.TaxRelevant = taxRelevant != 0
		year := strconv.Itoa(e.Date.Year())
		ds.Expenses[year] = append(ds.Expenses[year], e)
	}
	if err := expRows.Err(); err != nil {
		return nil, err
	}

	salRows, err := s.conn.Query(`
		SELECT year, month, net_income, gross_income, deductions, pdf_filename
		FROM salary_entries ORDER BY year, month`)
	if err != nil {
		return nil, fmt.Errorf("dataset: export salaries: %w", err)
	}
	defer salRows.Close()
	for salRows.Next() {
		var e models.SalaryEntry
		var deductions string
		if err := salRows.Scan(&e.Year, &e.Month, &e.NetIncome, &e.GrossIncome,
			&deductions, &e.PDFFilename); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(deductions), &e.Deductions)
		ds.Salaries = append(ds.Salaries, e)
	}
	if err := salRows.Err(); err != nil {
		return nil, err
	}

	tradeRows, err := s.conn.Query(`SELECT id, date, symbol, image_ids FROM trades ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("dataset: export trades: %w", err)
	}
	defer tradeRows.Close()
	for tradeRows.Next() {
		var t models.Trade
		var imageIDs string
		if err := tradeRows.Scan(&t.ID, &t.Date, &t.Symbol, &imageIDs); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(imageIDs), &t.ImageIDs)
		ds.Trades = append(ds.Trades, t)
	}
	return ds, tradeRows.Err()
}

// Import loads a restored dataset into the store, replacing records with
// matching keys and leaving everything else in place.
func (s *Store) Import(ds *models.Dataset) error {
	if ds == nil {
		return fmt.Errorf("dataset: import nil dataset")
	}
	for _, d := range ds.Documents {
		if err := s.UpsertDocument(d); err != nil {
			return err
		}
	}
	for _, e := range ds.TaxExpenses {
		if err := s.AddTaxExpense(e); err != nil {
			return err
		}
	}
	for _, bucket := range ds.Expenses {
		for _, e := range bucket {
			if err := s.AddExpense(e); err != nil {
				return err
			}
		}
	}
	for _, e := range ds.Salaries {
		if err := s.AddSalary(e); err != nil {
			return err
		}
	}
	for _, t := range ds.Trades {
		if err := s.AddTrade(t); err != nil {
			return err
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
