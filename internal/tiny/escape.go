package tiny

import (
	"errors"
	"strings"
)

var errBadEscape = errors.New("invalid escape sequence")

const escapable = "\\\n\r\t\x00"

// needsEscape reports whether s contains a character that must be escaped.
func needsEscape(s string) bool {
	return strings.ContainsAny(s, escapable)
}

// escape replaces backslash, newline, carriage return, tab and NUL with
// their two-character escapes.
func escape(s string) string {
	if !needsEscape(s) {
		return s
	}

	var b strings.Builder

	b.Grow(len(s) + 8)

	for i := range len(s) {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

// unescape reverses escape.
func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	var b strings.Builder

	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)

			continue
		}

		i++
		if i == len(s) {
			return "", errBadEscape
		}

		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		default:
			return "", errBadEscape
		}
	}

	return b.String(), nil
}
