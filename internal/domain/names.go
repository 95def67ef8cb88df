package domain

import (
	"strings"
	"unicode"
)

// SameName compares usernames and topic titles the way every store does: case-insensitively.
// It agrees with NormalizeName, so in-memory lookups and indexed keys never disagree.
func SameName(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}

// NormalizeName folds a name into the key form used by indexed backends.
// Every rune is replaced by the least lower-case member of its simple
// case-folding orbit (the orbits strings.EqualFold walks), or the least member
// when the orbit has no lower-case rune.
func NormalizeName(name string) string {
	return strings.Map(foldRune, name)
}

func foldRune(r rune) rune {
	least, lower := r, rune(-1)
	for f, first := r, true; first || f != r; f, first = unicode.SimpleFold(f), false {
		if f < least {
			least = f
		}
		if unicode.IsLower(f) && (lower < 0 || f < lower) {
			lower = f
		}
	}
	if lower >= 0 {
		return lower
	}
	return least
}

// ValidField reports whether s can be stored as one field of a delimited record:
// non-empty, with no '|' separator and no line breaks.
func ValidField(s string) bool {
	return s != "" && !strings.ContainsAny(s, "|\r\n")
}
