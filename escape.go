package regen

import (
	"strings"

	"github.com/magnetde/starlark-regen/util"
)

// metaBytes contains all bytes with a special meaning inside a pattern.
const metaBytes = `\.+*?()|[]{}^$`

// special reports whether byte `b` needs to be escaped by escapePattern.
func special(b byte) bool {
	return b < ' ' || b == 0x7f || strings.IndexByte(metaBytes, b) >= 0
}

// escapePattern returns a pattern matching exactly the literal text `s`.
// Metacharacters are prefixed with a backslash and ASCII control characters are replaced by
// escape sequences. All other bytes, including non-ASCII ones, are copied as they are.
func escapePattern(s string) string {
	// A byte loop is correct because all metacharacters are ASCII.
	var i int
	for i = 0; i < len(s); i++ {
		if special(s[i]) {
			break
		}
	}

	// No meta characters found, so return original string.
	if i >= len(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	b.WriteString(s[:i])

	for ; i < len(s); i++ {
		c := s[i]

		switch {
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\v':
			b.WriteString(`\v`)
		case c == '\f':
			b.WriteString(`\f`)
		case c == '\r':
			b.WriteString(`\r`)
		case c < ' ' || c == 0x7f:
			b.WriteString(`\x`)
			b.WriteByte(util.HexDigits[c>>4])
			b.WriteByte(util.HexDigits[c&0xf])
		case special(c):
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}
