// Package enum enumerates all strings matched by a regular expression automaton.
//
// The enumerators perform an anchored iterative deepening depth-first search over the states
// of a DFA or an NFA. Strings are produced lazily, one per call of Next, so infinite languages
// can be enumerated as long as the caller stops pulling eventually. For finite languages, the
// enumerators detect when every string was produced and stop.
//
// Strings produced by a DFA are unique, sorted by length and, within the same length, sorted
// lexicographically. An NFA may produce the same string more than once, if it is reachable
// through different paths.
package enum

import (
	"context"
	"iter"

	"github.com/pkg/errors"

	"github.com/magnetde/starlark-regen/regex"
)

var (
	// ErrUnsupported is returned if an NFA contains a word boundary assertion.
	ErrUnsupported = errors.New("enum: unsupported construct")

	// ErrInvalidForUTF8 is returned if an automaton may match strings, that are not valid UTF-8.
	ErrInvalidForUTF8 = errors.New("enum: automaton can match invalid UTF-8")
)

// checkInterval is the number of search steps between two checks of the context.
const checkInterval = 1 << 12

// ByteIterator is implemented by the DFA and the NFA enumerators.
type ByteIterator interface {
	// Next returns the next string as a new slice.
	Next() ([]byte, bool)

	// Borrow returns the next string. The slice is only valid until the next call.
	Borrow() ([]byte, bool)

	// IsUTF8 reports whether the automaton only matches valid UTF-8.
	IsUTF8() bool

	// Err returns the error, that stopped the enumeration, if any.
	Err() error

	// SetContext sets the context, that stops the enumeration when it is done.
	SetContext(ctx context.Context)
}

var (
	_ ByteIterator = (*DFAIter)(nil)
	_ ByteIterator = (*NFAIter)(nil)
)

// CompileDFA compiles the patterns with the default configuration and returns a DFA enumerator.
func CompileDFA(patterns ...string) (*DFAIter, error) {
	return CompileDFAConfig(regex.DefaultConfig(), patterns...)
}

// CompileDFAConfig compiles the patterns and returns a DFA enumerator.
func CompileDFAConfig(cfg regex.Config, patterns ...string) (*DFAIter, error) {
	d, err := regex.NewDFA(cfg, patterns...)
	if err != nil {
		return nil, err
	}
	return NewDFA(d), nil
}

// CompileNFA compiles the patterns with the default configuration and returns an NFA enumerator.
func CompileNFA(patterns ...string) (*NFAIter, error) {
	return CompileNFAConfig(regex.DefaultConfig(), patterns...)
}

// CompileNFAConfig compiles the patterns and returns an NFA enumerator.
func CompileNFAConfig(cfg regex.Config, patterns ...string) (*NFAIter, error) {
	n, err := regex.NewNFA(cfg, patterns...)
	if err != nil {
		return nil, err
	}
	return NewNFA(n)
}

// all returns an iterator over the owned results of `next`.
func all(next func() ([]byte, bool)) iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for {
			b, ok := next()
			if !ok || !yield(b) {
				return
			}
		}
	}
}

// Take returns the next `n` strings of the iterator. Fewer strings are returned if the
// iterator is exhausted.
func Take(it ByteIterator, n int) [][]byte {
	var res [][]byte
	for len(res) < n {
		b, ok := it.Next()
		if !ok {
			break
		}
		res = append(res, b)
	}
	return res
}
