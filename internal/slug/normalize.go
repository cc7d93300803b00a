// internal/slug/normalize.go
//
// Slug normalisation.
//
// Normalize(name) turns a free-text display name into a URL-safe candidate
// restricted to ASCII a-z, 0-9 and “-”.
//
// Rules
// -----
//  1. Trim surrounding whitespace.  Blank input yields "".
//  2. NFC-compose, then transliterate letter-by-letter to ASCII Latin
//     (Cyrillic, Greek, Latin diacritics) through gosimple/unidecode.
//     Symbols are not spelled out: "&", "@", and "'" separate words.
//  3. Lower-case everything.
//  4. Convert any run of characters outside [a-z0-9-] to one “-”.
//  5. Collapse consecutive “-” and trim leading / trailing “-”.
//
// Notes
// -----
// • Pure and deterministic.  Normalize(Normalize(s)) == Normalize(s).
// • An empty result is legal here; the resolver substitutes Fallback.

package slug

import (
	"regexp"
	"strings"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/unicode/norm"
)

// Separator joins words and numeric suffixes.
const Separator = "-"

var (
	nonSlugChars   = regexp.MustCompile(`[^a-z0-9-]+`)
	repeatedDashes = regexp.MustCompile(`-{2,}`)
)

// Normalize converts name → lower-kebab ASCII.
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	// unidecode keeps ASCII punctuation and case; both are folded below so
	// the output alphabet is exactly [a-z0-9-].
	out := unidecode.Unidecode(norm.NFC.String(name))
	out = strings.ToLower(out)
	out = nonSlugChars.ReplaceAllString(out, Separator)
	out = repeatedDashes.ReplaceAllString(out, Separator)
	return strings.Trim(out, Separator)
}

// Valid reports whether s is already in normal form and non-empty.
func Valid(s string) bool {
	return s != "" && Normalize(s) == s
}
