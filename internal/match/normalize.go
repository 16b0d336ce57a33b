package match

import (
	"strings"
	"unicode"
)

// NormalizeName normalizes a namespace or identifier for fuzzy matching.
// The pipeline:
//  1. Case-fold to lower.
//  2. Strip separators (_, -, ., spaces).
//
// Examples:
//   - "Named" -> "named"
//   - "hashed_mojmap" -> "hashedmojmap"
//   - "Official-Names" -> "officialnames"
func NormalizeName(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		if isSeparator(r) {
			continue
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// isSeparator returns true if the rune is a common separator.
func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
}

// TokenizeName splits a name on separators and lower/upper case transitions,
// returning lowercase tokens.
//   - "hashedMojmap" -> ["hashed", "mojmap"]
//   - "official_v2" -> ["official", "v2"]
func TokenizeName(s string) []string {
	var (
		tokens  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()

			continue
		}

		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]) {
			flush()
		}

		current.WriteRune(r)
	}

	flush()

	return tokens
}
