package qualify

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransform strips combining marks after NFD decomposition, so that
// "MÉDIA" and "MEDIA" (or "SÃO PAULO" and "SAO PAULO") compare equal.
var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldUpper returns s uppercased with diacritics removed.
func foldUpper(s string) string {
	out, _, err := transform.String(foldTransform, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(out)
}

// containsFold reports whether haystack contains needle, ignoring case
// and diacritics.
func containsFold(haystack, needle string) bool {
	return strings.Contains(foldUpper(haystack), foldUpper(needle))
}

// digitsOnly strips every non-digit rune from s.
func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
