// Package analyzer defines the optional external document analyzer that can
// enrich ingestion with categories, summaries, and structured facts.
package analyzer

import (
	"context"
	"time"

	"github.com/mkessler/ablage/internal/models"
)

// Analyzer is the external enrichment capability. Implementations return
// (nil, nil) when they have nothing to say about a document.
type Analyzer interface {
	Analyze(ctx context.Context, data []byte, filename string) (*Result, error)
}

// Fact is a structured finding extracted from a document. Exactly the
// recognised variants below exist; payloads are validated at the boundary
// before entering the pipeline.
type Fact interface {
	isFact()
}

// SalaryFact routes a document to the salary ledger.
type SalaryFact struct {
	Year        int
	Month       int
	NetIncome   float64
	GrossIncome float64
	Deductions  map[string]float64
}

// ExpenseFact routes a document to the daily-expense ledger.
type ExpenseFact struct {
	Date     time.Time
	Merchant string
	Amount   float64
	Currency string
}

// TaxFact routes a document to the tax-expense ledger.
type TaxFact struct {
	Description string
	Amount      float64
	Currency    string
	Year        int
}

func (SalaryFact) isFact()  {}
func (ExpenseFact) isFact() {}
func (TaxFact) isFact()     {}

// Result is a validated analyzer response.
type Result struct {
	Title       string
	Summary     string
	Category    models.Category
	SubCategory string
	Date        time.Time
	TaxRelevant bool
	Facts       []Fact
}

// Salary returns the first salary fact, if any. Salary facts take priority
// over expense and tax facts: a document recognised as income goes to the
// salary ledger only.
func (r *Result) Salary() (SalaryFact, bool) {
	for _, f := range r.Facts {
		if s, ok := f.(SalaryFact); ok {
			return s, true
		}
	}
	return SalaryFact{}, false
}

// Expense returns the first expense fact, if any.
func (r *Result) Expense() (ExpenseFact, bool) {
	for _, f := range r.Facts {
		if e, ok := f.(ExpenseFact); ok {
			return e, true
		}
	}
	return ExpenseFact{}, false
}

// Tax returns the first tax fact, if any.
func (r *Result) Tax() (TaxFact, bool) {
	for _, f := range r.Facts {
		if t, ok := f.(TaxFact); ok {
			return t, true
		}
	}
	return TaxFact{}, false
}
