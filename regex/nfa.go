package regex

import (
	"fmt"
	"strings"

	"github.com/magnetde/starlark-regen/automaton"
)

// NFA is a byte-level Thompson automaton compiled from one or more patterns.
// State 0 is always a fail state. NFA is immutable and implements automaton.NFA.
type NFA struct {
	states   []automaton.State
	start    automaton.StateID
	patterns int
	utf8     bool
	looks    uint16 // bit set of the look assertions used
}

var _ automaton.NFA = (*NFA)(nil)

// NewNFA compiles the patterns into an NFA. If more than one pattern is given, the automaton
// matches the union of the patterns and each match state carries the index of its pattern.
func NewNFA(cfg Config, patterns ...string) (*NFA, error) {
	res, err := parseAll(patterns, cfg.Flags)
	if err != nil {
		return nil, err
	}

	c := newCompiler(cfg.isBytes())
	nfa, err := c.compileAll(res)
	if err != nil {
		return nil, err
	}

	cfg.logger().Debug("compiled NFA",
		slogPatterns(patterns),
		"states", len(nfa.states),
		"utf8", nfa.utf8,
	)

	return nfa, nil
}

// StartAnchored returns the start state of an anchored search.
func (n *NFA) StartAnchored() automaton.StateID {
	return n.start
}

// State returns the state with the given ID.
func (n *NFA) State(id automaton.StateID) *automaton.State {
	return &n.states[id]
}

// IsUTF8 reports whether the NFA only matches valid UTF-8.
func (n *NFA) IsUTF8() bool {
	return n.utf8
}

// Len returns the number of states.
func (n *NFA) Len() int {
	return len(n.states)
}

// PatternLen returns the number of patterns compiled into the NFA.
func (n *NFA) PatternLen() int {
	return n.patterns
}

// HasLook reports whether the NFA contains the look assertion `l`.
func (n *NFA) HasLook(l automaton.Look) bool {
	return n.looks&(1<<l) != 0
}

// hasAnyLook reports whether the NFA contains any look assertion.
func (n *NFA) hasAnyLook() bool {
	return n.looks != 0
}

func (n *NFA) String() string {
	var b strings.Builder
	for i := range n.states {
		marker := ' '
		if automaton.StateID(i) == n.start {
			marker = '>'
		}
		fmt.Fprintf(&b, "%c%06d: %s\n", marker, i, n.states[i].String())
	}
	return b.String()
}
