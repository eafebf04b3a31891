// Package classify implements the deterministic keyword-weighted document
// categorizer and year derivation.
package classify

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mkessler/ablage/internal/models"
)

// DefaultCategory is the sentinel bucket when no keyword matches.
const DefaultCategory = models.CategorySonstiges

var yearRe = regexp.MustCompile(`\b(20\d{2})\b`)

// Classify scores every built-in and user rule against the lower-cased
// haystack "text filename". A matching keyword adds len(keyword) to its
// category, so longer, more specific keywords outweigh shorter ones. The
// strictly highest cumulative score wins; ties keep the category that was
// encountered first in rule order.
func Classify(text, filename string, userRules []Rule) models.Category {
	haystack := strings.ToLower(text + " " + filename)

	scores := make(map[models.Category]int)
	var order []models.Category

	apply := func(rules []Rule) {
		for _, r := range rules {
			kw := strings.ToLower(r.Keyword)
			if kw == "" || !strings.Contains(haystack, kw) {
				continue
			}
			if _, seen := scores[r.Category]; !seen {
				order = append(order, r.Category)
			}
			scores[r.Category] += len(kw)
		}
	}
	apply(builtinRules)
	apply(userRules)

	best := DefaultCategory
	bestScore := 0
	for _, cat := range order {
		if scores[cat] > bestScore {
			best, bestScore = cat, scores[cat]
		}
	}
	return best
}

// Year returns the first 20xx token found in text, or the current calendar
// year when absent.
func Year(text string, now time.Time) int {
	if m := yearRe.FindString(text); m != "" {
		year, err := strconv.Atoi(m)
		if err == nil {
			return year
		}
	}
	return now.Year()
}
