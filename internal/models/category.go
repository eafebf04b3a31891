package models

import "strings"

// Category is a document bucket in the archive taxonomy. The built-in set
// below is closed; anything else is a user-defined custom category created
// through CustomCategory.
type Category string

const (
	CategoryFinanzen     Category = "Finanzen"
	CategorySteuern      Category = "Steuern"
	CategoryVersicherung Category = "Versicherung"
	CategoryGesundheit   Category = "Gesundheit"
	CategoryWohnen       Category = "Wohnen"
	CategoryArbeit       Category = "Arbeit"
	CategoryFahrzeug     Category = "Fahrzeug"
	CategoryFamilie      Category = "Familie"
	CategoryVertraege    Category = "Vertraege"
	CategorySonstiges    Category = "Sonstiges"
)

// BuiltinCategories lists the closed taxonomy in its canonical order.
var BuiltinCategories = []Category{
	CategoryFinanzen,
	CategorySteuern,
	CategoryVersicherung,
	CategoryGesundheit,
	CategoryWohnen,
	CategoryArbeit,
	CategoryFahrzeug,
	CategoryFamilie,
	CategoryVertraege,
	CategorySonstiges,
}

// Builtin reports whether c is part of the closed built-in taxonomy.
func (c Category) Builtin() bool {
	for _, b := range BuiltinCategories {
		if c == b {
			return true
		}
	}
	return false
}

// CustomCategory normalises a free-text category name so that typos in
// whitespace cannot create orphan archive buckets. An empty name maps to
// CategorySonstiges.
func CustomCategory(name string) Category {
	name = strings.TrimSpace(name)
	if name == "" {
		return CategorySonstiges
	}
	return Category(name)
}
