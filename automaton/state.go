package automaton

import (
	"fmt"
	"strings"
)

// Kind is the variant tag of an NFA state.
type Kind uint8

const (
	KindFail      Kind = iota // no transitions
	KindByteRange             // one byte range, stored in Trans[0]
	KindSparse                // sorted, disjoint byte ranges
	KindDense                 // one target per byte value
	KindLook                  // zero-width assertion
	KindUnion                 // epsilon alternation in priority order
	KindCapture               // capture group boundary
	KindMatch                 // accepting state
)

var kindNames = [...]string{
	KindFail:      "fail",
	KindByteRange: "byte-range",
	KindSparse:    "sparse",
	KindDense:     "dense",
	KindLook:      "look",
	KindUnion:     "union",
	KindCapture:   "capture",
	KindMatch:     "match",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Transition moves to Next on every byte in [Lo, Hi].
type Transition struct {
	Lo   byte
	Hi   byte
	Next StateID
}

// Matches reports whether byte `b` lies in the range of the transition.
func (t Transition) Matches(b byte) bool {
	return t.Lo <= b && b <= t.Hi
}

func (t Transition) String() string {
	if t.Lo == t.Hi {
		return fmt.Sprintf("%s => %d", escapeByte(t.Lo), t.Next)
	}
	return fmt.Sprintf("%s-%s => %d", escapeByte(t.Lo), escapeByte(t.Hi), t.Next)
}

// State is a single NFA state. Only the fields belonging to Kind are set:
//
//	KindByteRange  Trans (exactly one element)
//	KindSparse     Trans
//	KindDense      Dense (256 entries; targets of kind KindFail mean "no transition")
//	KindLook       Look, Next
//	KindUnion      Alts
//	KindCapture    Slot, Next
//	KindMatch      Pattern
type State struct {
	Kind    Kind
	Trans   []Transition
	Dense   []StateID
	Look    Look
	Alts    []StateID
	Next    StateID
	Slot    int
	Pattern int
}

func (s *State) String() string {
	var b strings.Builder
	b.WriteString(s.Kind.String())

	switch s.Kind {
	case KindByteRange, KindSparse:
		b.WriteByte('(')
		for i, t := range s.Trans {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(t.String())
		}
		b.WriteByte(')')
	case KindDense:
		fmt.Fprintf(&b, "(%d entries)", len(s.Dense))
	case KindLook:
		fmt.Fprintf(&b, "(%s) => %d", s.Look, s.Next)
	case KindUnion:
		fmt.Fprintf(&b, "%v", s.Alts)
	case KindCapture:
		fmt.Fprintf(&b, "(slot=%d) => %d", s.Slot, s.Next)
	case KindMatch:
		fmt.Fprintf(&b, "(%d)", s.Pattern)
	}

	return b.String()
}

func escapeByte(c byte) string {
	if c >= 0x21 && c <= 0x7e {
		return string(rune(c))
	}
	return fmt.Sprintf(`\x%02x`, c)
}
