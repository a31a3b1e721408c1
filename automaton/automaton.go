// Package automaton defines the read-only view of compiled regular expression
// automata that the enumerators in package enum operate on.
//
// Any compiler can be plugged in by implementing DFA or NFA. The compiler in
// package regex provides implementations of both.
package automaton

// StateID identifies a state of an automaton. IDs are only meaningful for the
// automaton that produced them.
type StateID uint32

// DFA is a deterministic automaton with explicit dead and match states.
type DFA interface {
	// StartAnchored returns the start state for an anchored search with no
	// look-behind context.
	StartAnchored() StateID

	// NextState returns the state reached from `s` on byte `b`.
	NextState(s StateID, b byte) StateID

	// NextEOIState returns the state reached from `s` at end of input.
	NextEOIState(s StateID) StateID

	// IsDeadState reports whether no string leads from `s` to a match.
	IsDeadState(s StateID) bool

	// IsMatchState reports whether `s` is a match state.
	IsMatchState(s StateID) bool

	// ByteClasses returns the byte equivalence classes of the automaton.
	ByteClasses() ByteClasses

	// IsUTF8 reports whether every string accepted by the automaton is valid UTF-8.
	IsUTF8() bool
}

// NFA is a Thompson-style automaton whose states are tagged variants.
type NFA interface {
	// StartAnchored returns the start state for an anchored search.
	StartAnchored() StateID

	// State returns the state with the given ID.
	State(id StateID) *State

	// IsUTF8 reports whether every string accepted by the automaton is valid UTF-8.
	IsUTF8() bool
}
