package analyzer

import (
	"testing"
	"time"

	"github.com/mkessler/ablage/internal/models"
)

func TestParseWireFullAnswer(t *testing.T) {
	raw := `{
		"title": "Gehaltsabrechnung Juni 2024",
		"category": "Arbeit",
		"subCategory": "Gehalt",
		"date": "2024-06-28",
		"summary": "Monatliche Gehaltsabrechnung.",
		"isTaxRelevant": false,
		"salaryData": {"year":2024,"month":6,"netIncome":2800.5,"grossIncome":4200,"deductions":{"Lohnsteuer":700}}
	}`
	res, err := parseWire(raw)
	if err != nil {
		t.Fatalf("parseWire: %v", err)
	}
	if res.Title != "Gehaltsabrechnung Juni 2024" || res.Category != models.CategoryArbeit {
		t.Errorf("res = %+v", res)
	}
	if res.Date != time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC) {
		t.Errorf("date = %v", res.Date)
	}
	salary, ok := res.Salary()
	if !ok {
		t.Fatal("salary fact missing")
	}
	if salary.NetIncome != 2800.5 || salary.Deductions["Lohnsteuer"] != 700 {
		t.Errorf("salary = %+v", salary)
	}
}

func TestParseWireStripsFences(t *testing.T) {
	raw := "```json\n{\"title\":\"Rechnung\",\"category\":\"Finanzen\"}\n```"
	res, err := parseWire(raw)
	if err != nil {
		t.Fatalf("parseWire: %v", err)
	}
	if res.Title != "Rechnung" || res.Category != models.CategoryFinanzen {
		t.Errorf("res = %+v", res)
	}
}

func TestParseWireRejectsGarbage(t *testing.T) {
	if _, err := parseWire("sorry, I cannot help with that"); err == nil {
		t.Fatal("non-JSON answer should fail")
	}
}

func TestParseWireDropsInvalidFacts(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"salary month out of range", `{"salaryData":{"year":2024,"month":13,"netIncome":1}}`},
		{"salary year missing", `{"salaryData":{"year":0,"month":6,"netIncome":1}}`},
		{"expense amount zero", `{"dailyExpenseData":{"merchant":"X","amount":0}}`},
		{"tax amount negative", `{"taxData":{"desc":"X","amount":-5}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := parseWire(tc.raw)
			if err != nil {
				t.Fatalf("parseWire: %v", err)
			}
			if len(res.Facts) != 0 {
				t.Errorf("facts = %+v, want none", res.Facts)
			}
		})
	}
}

func TestParseWireEmptyCategoryStaysEmpty(t *testing.T) {
	res, err := parseWire(`{"title":"Irgendwas"}`)
	if err != nil {
		t.Fatalf("parseWire: %v", err)
	}
	if res.Category != "" {
		t.Errorf("category = %q, want empty so the classifier decides", res.Category)
	}
}

func TestParseWireInvalidDateIgnored(t *testing.T) {
	res, err := parseWire(`{"date":"ungefähr Juni"}`)
	if err != nil {
		t.Fatalf("parseWire: %v", err)
	}
	if !res.Date.IsZero() {
		t.Errorf("date = %v, want zero", res.Date)
	}
}

func TestFactAccessorsPreferSalary(t *testing.T) {
	res := &Result{Facts: []Fact{
		TaxFact{Description: "x", Amount: 1},
		SalaryFact{Year: 2024, Month: 1},
		ExpenseFact{Merchant: "y", Amount: 2},
	}}
	if _, ok := res.Salary(); !ok {
		t.Error("salary fact not found")
	}
	if _, ok := res.Expense(); !ok {
		t.Error("expense fact not found")
	}
	if _, ok := res.Tax(); !ok {
		t.Error("tax fact not found")
	}
}
