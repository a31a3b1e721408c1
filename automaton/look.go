package automaton

import "fmt"

// Look is a zero-width assertion.
type Look uint8

const (
	LookStart             Look = iota // start of input
	LookEnd                           // end of input
	LookStartLF                       // start of line (\n)
	LookEndLF                         // end of line (\n)
	LookStartCRLF                     // start of line (\r or \n)
	LookEndCRLF                       // end of line (\r or \n)
	LookWordASCII                     // ASCII word boundary
	LookWordASCIINegate               // not an ASCII word boundary
	LookWordUnicode                   // Unicode word boundary
	LookWordUnicodeNegate             // not a Unicode word boundary
)

var lookNames = [...]string{
	LookStart:             "start",
	LookEnd:               "end",
	LookStartLF:           "start-lf",
	LookEndLF:             "end-lf",
	LookStartCRLF:         "start-crlf",
	LookEndCRLF:           "end-crlf",
	LookWordASCII:         "word-ascii",
	LookWordASCIINegate:   "word-ascii-negate",
	LookWordUnicode:       "word-unicode",
	LookWordUnicodeNegate: "word-unicode-negate",
}

func (l Look) String() string {
	if int(l) < len(lookNames) {
		return lookNames[l]
	}
	return fmt.Sprintf("look(%d)", uint8(l))
}

// IsWordBoundary reports whether the assertion depends on word characters.
func (l Look) IsWordBoundary() bool {
	return l >= LookWordASCII && l <= LookWordUnicodeNegate
}

// IsEnd reports whether the assertion looks at the input following the current position.
func (l Look) IsEnd() bool {
	return l == LookEnd || l == LookEndLF || l == LookEndCRLF
}

// IsWordByte reports whether `b` is an ASCII word character ([0-9A-Za-z_]).
func IsWordByte(b byte) bool {
	return b == '_' ||
		('0' <= b && b <= '9') ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z')
}
