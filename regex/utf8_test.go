package regex

import (
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

func seq(ranges ...byte) utf8Sequence {
	s := make(utf8Sequence, len(ranges)/2)
	for i := range s {
		s[i] = byteRange{ranges[2*i], ranges[2*i+1]}
	}
	return s
}

func TestUTF8Sequences(t *testing.T) {
	tests := []struct {
		lo, hi   rune
		expected []utf8Sequence
	}{
		{'a', 'z', []utf8Sequence{seq('a', 'z')}},
		{0, utf8.MaxRune, []utf8Sequence{
			seq(0x00, 0x7f),
			seq(0xc2, 0xdf, 0x80, 0xbf),
			seq(0xe0, 0xe0, 0xa0, 0xbf, 0x80, 0xbf),
			seq(0xe1, 0xec, 0x80, 0xbf, 0x80, 0xbf),
			seq(0xed, 0xed, 0x80, 0x9f, 0x80, 0xbf),
			seq(0xee, 0xef, 0x80, 0xbf, 0x80, 0xbf),
			seq(0xf0, 0xf0, 0x90, 0xbf, 0x80, 0xbf, 0x80, 0xbf),
			seq(0xf1, 0xf3, 0x80, 0xbf, 0x80, 0xbf, 0x80, 0xbf),
			seq(0xf4, 0xf4, 0x80, 0x8f, 0x80, 0xbf, 0x80, 0xbf),
		}},
		{0xe4, 0xe4, []utf8Sequence{seq(0xc3, 0xc3, 0xa4, 0xa4)}},
		{0x1001, 0x1fff, []utf8Sequence{
			seq(0xe1, 0xe1, 0x80, 0x80, 0x81, 0xbf),
			seq(0xe1, 0xe1, 0x81, 0xbf, 0x80, 0xbf),
		}},
		{0xd800, 0xdfff, nil},
		{0xd900, 0xe000, []utf8Sequence{seq(0xee, 0xee, 0x80, 0x80, 0x80, 0x80)}},
	}

	for _, tt := range tests {
		got := utf8Sequences(tt.lo, tt.hi)
		if diff := cmp.Diff(tt.expected, got, cmp.AllowUnexported(byteRange{})); diff != "" {
			t.Errorf("utf8Sequences(%#x, %#x) mismatch (-want +got):\n%s", tt.lo, tt.hi, diff)
		}
	}
}

// TestUTF8SequencesExhaustive checks that the sequences of a range match exactly the encodings
// of the characters in the range.
func TestUTF8SequencesExhaustive(t *testing.T) {
	ranges := [][2]rune{{0x70, 0x900}, {0x7ff, 0x801}, {0xfff0, 0x10010}, {0xd700, 0xe100}}

	for _, r := range ranges {
		seqs := utf8Sequences(r[0], r[1])

		var buf [utf8.UTFMax]byte
		for c := r[0]; c <= r[1]; c++ {
			valid := !inRange(surrogateMin, surrogateMax, c)
			n := utf8.EncodeRune(buf[:], c)

			matched := 0
			for _, s := range seqs {
				if s.matches(buf[:n]) {
					matched++
				}
			}

			if valid && matched != 1 {
				t.Fatalf("%U matched by %d sequences", c, matched)
			}
			if !valid && matched != 0 {
				t.Fatalf("surrogate %U matched", c)
			}
		}
	}
}

func (s utf8Sequence) matches(b []byte) bool {
	if len(s) != len(b) {
		return false
	}
	for i, r := range s {
		if b[i] < r.lo || b[i] > r.hi {
			return false
		}
	}
	return true
}
