// Package sites classifies neighbourhoods as treatment (CTS host) or control
// areas against the static reference tables.
package sites

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds a neighbourhood name to its comparison key: case-folded,
// diacritics stripped, and every non-alphanumeric character removed. So
// "South Riverdale", "south-riverdale" and "SOUTH RIVERDALE!" share a key.
func Normalize(name string) string {
	if name == "" {
		return ""
	}
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), cases.Fold())
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = strings.ToLower(name)
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
