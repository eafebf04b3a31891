package dataset

import "github.com/mkessler/ablage/internal/models"

// SearchResult is one full-text search hit.
type SearchResult struct {
	ID      string
	Title   string
	Snippet string
}

// Index is the surface the ingestion and backup pipelines depend on.
// Consumers should depend on this interface rather than the concrete *Store
// to facilitate testing with fakes.
type Index interface {
	UpsertDocument(d models.NoteDocument) error
	DeleteDocument(id string) error
	GetDocument(id string) (*models.NoteDocument, error)
	Recategorize(id string, category models.Category, subCategory, filePath string) error
	HasFilePath(path string) (bool, error)
	AllFilePaths() (map[string]struct{}, error)
	AddTaxExpense(e models.TaxExpense) error
	AddExpense(e models.ExpenseEntry) error
	AddSalary(e models.SalaryEntry) error
	AddTrade(t models.Trade) error
	Search(query string, limit int) ([]SearchResult, error)
	Export() (*models.Dataset, error)
	Import(ds *models.Dataset) error
	Close() error
}

// Verify *Store satisfies Index at compile time.
var _ Index = (*Store)(nil)
