package facematch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeName trims an operator supplied identity name, collapses inner whitespace
// and converts it to NFC so the same name typed on different keyboards maps to one key.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.Join(strings.Fields(name), " "))
}

// NameKey derives the enrollment file key from a normalized name.
// Path separators and control characters are replaced, leading dots are dropped.
func NameKey(name string) string {
	key := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, NormalizeName(name))
	return strings.TrimLeft(key, ".")
}

// SameName compares two identity names ignoring case and diacritics.
func SameName(a, b string) bool {
	return strings.EqualFold(RemoveDiacritics(NormalizeName(a)), RemoveDiacritics(NormalizeName(b)))
}
