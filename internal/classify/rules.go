package classify

import "github.com/mkessler/ablage/internal/models"

// Rule maps a keyword to a category. Longer keywords score higher, so the
// most specific terms come first only for readability; scoring is order
// independent, tie-breaking is not (first category encountered wins).
type Rule struct {
	Keyword  string
	Category models.Category
}

// builtinRules is the fixed rule table. The slice order defines the
// deterministic tie-break order.
var builtinRules = []Rule{
	{"rechnung", models.CategoryFinanzen},
	{"kontoauszug", models.CategoryFinanzen},
	{"überweisung", models.CategoryFinanzen},
	{"invoice", models.CategoryFinanzen},
	{"mahnung", models.CategoryFinanzen},
	{"depot", models.CategoryFinanzen},
	{"kredit", models.CategoryFinanzen},
	{"steuerbescheid", models.CategorySteuern},
	{"finanzamt", models.CategorySteuern},
	{"steuererklärung", models.CategorySteuern},
	{"steuer", models.CategorySteuern},
	{"umsatzsteuer", models.CategorySteuern},
	{"versicherung", models.CategoryVersicherung},
	{"police", models.CategoryVersicherung},
	{"haftpflicht", models.CategoryVersicherung},
	{"beitragsrechnung", models.CategoryVersicherung},
	{"arztbericht", models.CategoryGesundheit},
	{"rezept", models.CategoryGesundheit},
	{"impfung", models.CategoryGesundheit},
	{"krankenkasse", models.CategoryGesundheit},
	{"befund", models.CategoryGesundheit},
	{"mietvertrag", models.CategoryWohnen},
	{"miete", models.CategoryWohnen},
	{"nebenkosten", models.CategoryWohnen},
	{"betriebskosten", models.CategoryWohnen},
	{"strom", models.CategoryWohnen},
	{"hausverwaltung", models.CategoryWohnen},
	{"lohnabrechnung", models.CategoryArbeit},
	{"gehaltsabrechnung", models.CategoryArbeit},
	{"gehalt", models.CategoryArbeit},
	{"arbeitsvertrag", models.CategoryArbeit},
	{"arbeitgeber", models.CategoryArbeit},
	{"zeugnis", models.CategoryArbeit},
	{"fahrzeugschein", models.CategoryFahrzeug},
	{"tüv", models.CategoryFahrzeug},
	{"werkstatt", models.CategoryFahrzeug},
	{"kfz", models.CategoryFahrzeug},
	{"geburtsurkunde", models.CategoryFamilie},
	{"heiratsurkunde", models.CategoryFamilie},
	{"schule", models.CategoryFamilie},
	{"kita", models.CategoryFamilie},
	{"kündigung", models.CategoryVertraege},
	{"vertrag", models.CategoryVertraege},
	{"mitgliedschaft", models.CategoryVertraege},
	{"abo", models.CategoryVertraege},
}
