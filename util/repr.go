package util

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// HexDigits are the lowercase hexadecimal digits, used for escapes.
const HexDigits = "0123456789abcdef"

// Repr returns the Python-like representation of a string literal.
// The `isString` parameter determines whether the string should be treated as a string or a bytes object;
// bytes get a "b" prefix and every byte outside of printable ASCII is escaped.
func Repr(s string, isString bool) string {
	return ReprLimit(s, isString, -1)
}

// ReprLimit works like Repr, but stops after `limit` characters of `s`, if `limit` is not negative.
// The quotes are always closed.
func ReprLimit(s string, isString bool, limit int) string {
	var b strings.Builder
	b.Grow(len(s) + 3)

	quote := byte('\'')
	if strings.IndexByte(s, '\'') >= 0 && strings.IndexByte(s, '"') < 0 {
		quote = '"'
	}

	if !isString {
		b.WriteByte('b')
	}
	b.WriteByte(quote)

	n := 0
	for len(s) > 0 && (limit < 0 || n < limit) {
		ch, size := rune(s[0]), 1
		if isString {
			ch, size = utf8.DecodeRuneInString(s)
		}

		switch {
		case ch == utf8.RuneError && size == 1: // invalid UTF-8
			escapeHex(&b, rune(s[0]))
		case ch == rune(quote) || ch == '\\':
			b.WriteByte('\\')
			b.WriteByte(byte(ch))
		case ch == '\t':
			b.WriteString(`\t`)
		case ch == '\n':
			b.WriteString(`\n`)
		case ch == '\r':
			b.WriteString(`\r`)
		case ch < ' ' || ch == unicode.MaxASCII:
			escapeHex(&b, ch)
		case !unicode.IsPrint(ch) || (!isString && ch > unicode.MaxASCII):
			escapeHex(&b, ch)
		default:
			b.WriteRune(ch)
		}

		s = s[size:]
		n++
	}

	b.WriteByte(quote)

	return b.String()
}

// escapeHex writes the shortest of the escapes '\xhh', '\uhhhh' and '\Uhhhhhhhh'.
func escapeHex(b *strings.Builder, ch rune) {
	var digits int

	b.WriteByte('\\')
	switch {
	case ch <= 0xff:
		b.WriteByte('x')
		digits = 2
	case ch <= 0xffff:
		b.WriteByte('u')
		digits = 4
	default:
		b.WriteByte('U')
		digits = 8
	}

	for shift := 4 * (digits - 1); shift >= 0; shift -= 4 {
		b.WriteByte(HexDigits[(ch>>shift)&0xf])
	}
}
