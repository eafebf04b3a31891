package classify

import (
	"testing"
	"time"

	"github.com/mkessler/ablage/internal/models"
)

func TestClassifyKeywordMatch(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		filename string
		want     models.Category
	}{
		{"invoice", "Ihre Rechnung vom 03.02.2024", "scan.pdf", models.CategoryFinanzen},
		{"tax notice", "Finanzamt München, Steuerbescheid", "brief.pdf", models.CategorySteuern},
		{"insurance", "Beitragsrechnung Ihrer Haftpflicht", "x.pdf", models.CategoryVersicherung},
		{"filename only", "", "lohnabrechnung_januar.pdf", models.CategoryArbeit},
		{"case insensitive", "RECHNUNG", "X.PDF", models.CategoryFinanzen},
		{"no match", "Lorem ipsum dolor sit amet", "scan001.pdf", DefaultCategory},
		{"empty", "", "", DefaultCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.text, tc.filename, nil); got != tc.want {
				t.Errorf("Classify = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestClassifyLongerKeywordOutweighs(t *testing.T) {
	// "steuerbescheid" (14) beats "rechnung" (8) even though both match.
	got := Classify("Rechnung zum Steuerbescheid", "x.pdf", nil)
	if got != models.CategorySteuern {
		t.Errorf("Classify = %v, want %v", got, models.CategorySteuern)
	}
}

func TestClassifyCumulativeScore(t *testing.T) {
	// Two Wohnen hits (miete 5 + strom 5 = 10) beat one Finanzen hit
	// (rechnung 8).
	got := Classify("Rechnung über Miete und Strom", "x.pdf", nil)
	if got != models.CategoryWohnen {
		t.Errorf("Classify = %v, want %v", got, models.CategoryWohnen)
	}
}

func TestClassifyTieKeepsFirstEncountered(t *testing.T) {
	// Equal scores: the category whose rule appears first in the table wins.
	rules := []Rule{
		{"zzzz", models.CategoryGesundheit},
	}
	got := Classify("depot zzzz", "x", rules) // depot=5 (Finanzen) vs zzzz=4
	if got != models.CategoryFinanzen {
		t.Fatalf("Classify = %v, want %v", got, models.CategoryFinanzen)
	}

	// Exact tie between a builtin and a user rule of equal length: builtin
	// rules are applied first, so Finanzen is encountered first.
	rules = []Rule{{"xyzab", models.CategoryGesundheit}}
	got = Classify("depot xyzab", "x", rules) // 5 vs 5
	if got != models.CategoryFinanzen {
		t.Errorf("Classify = %v, want %v", got, models.CategoryFinanzen)
	}
}

func TestClassifyUserRules(t *testing.T) {
	rules := []Rule{
		{"acme gmbh", models.CustomCategory("Acme")},
	}
	got := Classify("Lieferschein der ACME GmbH", "x.pdf", rules)
	if got != models.CustomCategory("Acme") {
		t.Errorf("Classify = %v, want Acme", got)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	text := "Rechnung Miete Strom Vertrag Steuer Gehalt"
	first := Classify(text, "multi.pdf", nil)
	for i := 0; i < 50; i++ {
		if got := Classify(text, "multi.pdf", nil); got != first {
			t.Fatalf("run %d: Classify = %v, first run = %v", i, got, first)
		}
	}
}

func TestYear(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		text string
		want int
	}{
		{"plain year", "Abrechnung für 2023", 2023},
		{"first of several", "2021 und 2024", 2021},
		{"word boundary", "Artikel 120233 ohne Jahr", 2026},
		{"nineties ignored", "Bescheid von 1999", 2026},
		{"missing", "kein Jahr hier", 2026},
		{"in date", "Stand: 15.03.2025", 2025},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Year(tc.text, now); got != tc.want {
				t.Errorf("Year(%q) = %d, want %d", tc.text, got, tc.want)
			}
		})
	}
}
