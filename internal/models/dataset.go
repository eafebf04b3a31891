package models

// Dataset is the full structured application state: everything that goes
// into one backup archive and everything a restore brings back.
type Dataset struct {
	Documents   []NoteDocument            `json:"documents"`
	TaxExpenses []TaxExpense              `json:"taxExpenses"`
	Expenses    map[string][]ExpenseEntry `json:"expenses"` // keyed by year, e.g. "2024"
	Salaries    []SalaryEntry             `json:"salaries"`
	Trades      []Trade                   `json:"trades"`
}

// NewDataset returns an empty dataset with non-nil collections.
func NewDataset() *Dataset {
	return &Dataset{
		Documents:   []NoteDocument{},
		TaxExpenses: []TaxExpense{},
		Expenses:    map[string][]ExpenseEntry{},
		Salaries:    []SalaryEntry{},
		Trades:      []Trade{},
	}
}
