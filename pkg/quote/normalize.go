package quote

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases and strips accents (e.g. Nutrição -> nutricao).
// Every header and category comparison goes through it.
func Normalize(s string) string {
	result, _, _ := transform.String(stripAccents, strings.ToLower(s))
	return result
}

// normalizeKey is Normalize plus surrounding whitespace removal.
func normalizeKey(s string) string {
	return strings.TrimSpace(Normalize(s))
}

// titleWords upper-cases the first letter of every whitespace-separated word
// and lower-cases the rest, keeping the original spacing.
// "biologico  ESPECIAL" -> "Biologico  Especial".
func titleWords(s string) string {
	upper := cases.Upper(language.BrazilianPortuguese)
	lower := cases.Lower(language.BrazilianPortuguese)

	var b strings.Builder
	b.Grow(len(s))
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		word := s[start:end]
		_, size := utf8.DecodeRuneInString(word)
		b.WriteString(upper.String(word[:size]))
		b.WriteString(lower.String(word[size:]))
		start = -1
	}
	for i, r := range s {
		if unicode.IsSpace(r) {
			flush(i)
			b.WriteRune(r)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(s))
	return b.String()
}
