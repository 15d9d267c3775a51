// Package textmatch provides the text canonicalization and approximate string
// matching primitives used by fuzzy search and recommendation scoring.
package textmatch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes free text for comparison: lower-case, strip combining
// diacritical marks, trim surrounding whitespace. It is pure, total and
// idempotent; an empty or all-whitespace input yields "".
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		// NFD decomposition does not fail on valid UTF-8; fall back to the
		// untransformed input rather than dropping the text.
		out = s
	}
	return strings.TrimSpace(strings.ToLower(out))
}
