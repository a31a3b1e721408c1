package regex

import (
	"regexp/syntax"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/magnetde/starlark-regen/util"
)

// parse parses the pattern and returns the simplified syntax tree.
// Errors of the parser are returned unchanged.
func parse(pattern string, flags uint32) (*syntax.Regexp, error) {
	if flags&FlagBytes != 0 {
		pattern = escapeLatin1(pattern)
	}

	re, err := syntax.Parse(pattern, syntaxFlags(flags))
	if err != nil {
		return nil, err
	}

	return re.Simplify(), nil
}

// parseAll parses all patterns. If more than one pattern exists, errors are annotated with the index
// of the pattern.
func parseAll(patterns []string, flags uint32) ([]*syntax.Regexp, error) {
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}
	if flags&^supportedFlags != 0 {
		return nil, errors.Wrapf(ErrUnsupportedFlags, "flags %#x", flags&^supportedFlags)
	}

	res := make([]*syntax.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := parse(p, flags)
		if err != nil {
			if len(patterns) > 1 {
				return nil, errors.Wrapf(err, "pattern %d", i)
			}
			return nil, err
		}

		res[i] = re
	}

	return res, nil
}

// escapeLatin1 replaces all non-ASCII bytes of a byte pattern with the escape sequence `\x{hh}`,
// so that the pattern becomes valid UTF-8 and each byte is interpreted as one character.
// An escaped non-ASCII byte (backslash followed by the byte) is replaced the same way.
func escapeLatin1(s string) string {
	if isASCIIString(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)

	for i := 0; i < len(s); i++ {
		c := s[i]

		if c == '\\' && i+1 < len(s) {
			i++
			if s[i] < utf8.RuneSelf {
				b.WriteByte('\\')
				b.WriteByte(s[i])
				continue
			}
			c = s[i]
		}

		if c < utf8.RuneSelf {
			b.WriteByte(c)
			continue
		}

		b.WriteString(`\x{`)
		b.WriteByte(util.HexDigits[c>>4])
		b.WriteByte(util.HexDigits[c&0xf])
		b.WriteByte('}')
	}

	return b.String()
}

// isASCIIString checks, if the string only contains ASCII characters.
func isASCIIString(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
