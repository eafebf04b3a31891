// Package models defines the domain types for Ablage.
package models

import "time"

// DocKind identifies the broad content type of an ingested document.
type DocKind string

const (
	KindPDF   DocKind = "pdf"
	KindImage DocKind = "image"
	KindWord  DocKind = "word"
	KindExcel DocKind = "excel"
	KindNote  DocKind = "note"
	KindOther DocKind = "other"
)

// NoteDocument is an archived (or manually created) document in the index.
// FilePath is vault-relative and set iff the file has been relocated into
// the archive tree.
type NoteDocument struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Kind        DocKind   `json:"type"`
	Category    Category  `json:"category"`
	SubCategory string    `json:"subCategory,omitempty"`
	Year        int       `json:"year"`
	Created     time.Time `json:"created"`
	Content     string    `json:"content"`
	FileName    string    `json:"fileName,omitempty"`
	FilePath    string    `json:"filePath,omitempty"`
	Tags        []string  `json:"tags"`
	Checksum    string    `json:"checksum,omitempty"`
	TaxRelevant bool      `json:"taxRelevant,omitempty"`
	IsExpense   bool      `json:"isExpense,omitempty"`
	ExpenseID   string    `json:"expenseId,omitempty"`
}

// TaxExpense is a deductible expense derived from an ingested receipt or
// entered through the tax-import toggle. Receipts holds attachment IDs.
type TaxExpense struct {
	Description string   `json:"desc"`
	Amount      float64  `json:"amount"`
	Currency    string   `json:"currency"`
	Rate        float64  `json:"rate"`
	Category    string   `json:"cat"`
	Year        int      `json:"year"`
	Receipts    []string `json:"receipts"`
	TaxRelevant bool     `json:"taxRelevant"`
	NoteRef     string   `json:"noteRef,omitempty"`
}

// ExpenseEntry is a daily expense, bucketed by year in the dataset.
type ExpenseEntry struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Merchant    string    `json:"merchant"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Rate        float64   `json:"rate"`
	Category    string    `json:"category"`
	ReceiptID   string    `json:"receiptId,omitempty"`
	TaxRelevant bool      `json:"isTaxRelevant"`
}

// SalaryEntry is one month of income. PDFFilename is the attachment ID of
// the underlying payslip document.
type SalaryEntry struct {
	Year        int                `json:"year"`
	Month       int                `json:"month"`
	NetIncome   float64            `json:"netIncome"`
	GrossIncome float64            `json:"grossIncome"`
	Deductions  map[string]float64 `json:"deductions,omitempty"`
	PDFFilename string             `json:"pdfFilename,omitempty"`
}

// Trade is a logged trade with zero or more screenshot attachment IDs.
type Trade struct {
	ID       string   `json:"id"`
	Date     string   `json:"date"` // YYYY-MM-DD
	Symbol   string   `json:"symbol,omitempty"`
	ImageIDs []string `json:"imageIds,omitempty"`
}
