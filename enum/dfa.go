package enum

import (
	"context"
	"iter"
	"slices"

	"github.com/magnetde/starlark-regen/automaton"
)

// dfaFrame is a node of the search stack of the DFA enumerator.
// The byte is the one consumed to reach the state; the start frame carries a placeholder byte.
type dfaFrame struct {
	state automaton.StateID
	b     byte
	depth int
}

// DFAIter enumerates the strings matched by a DFA.
// The zero value is not usable; create a DFAIter with NewDFA.
type DFAIter struct {
	dfa     automaton.DFA
	classes automaton.ByteClasses
	start   automaton.StateID
	ctx     context.Context
	steps   int

	depth    int // maximum depth of the current pass
	maxDepth int // maximum depth seen so far
	done     bool
	err      error

	stack []dfaFrame
	buf   []byte // current path, including the placeholder byte of the start frame
}

// NewDFA returns an enumerator over the strings matched by the DFA, starting at its anchored start state.
func NewDFA(dfa automaton.DFA) *DFAIter {
	start := dfa.StartAnchored()

	classes := dfa.ByteClasses()
	if classes.Len() == 0 {
		classes = automaton.SingletonClasses()
	}

	return &DFAIter{
		dfa:     dfa,
		classes: classes,
		start:   start,
		ctx:     context.Background(),
		stack:   []dfaFrame{{state: start}},
	}
}

// SetContext sets the context, that stops the enumeration when it is done.
func (it *DFAIter) SetContext(ctx context.Context) {
	it.ctx = ctx
}

// Next returns the next matching string. The second result is false, if all strings were enumerated
// or the context is done; see Err.
func (it *DFAIter) Next() ([]byte, bool) {
	b, ok := it.Borrow()
	if !ok {
		return nil, false
	}
	return slices.Clone(b), true
}

// Borrow is like Next, but returns a slice of an internal buffer, that is only valid until the next call.
func (it *DFAIter) Borrow() ([]byte, bool) {
	if it.done {
		return nil, false
	}

	for {
		if len(it.stack) == 0 {
			// The last pass did not get any deeper, so there is nothing left to find.
			if it.maxDepth < it.depth {
				it.finish(nil)
				return nil, false
			}

			if err := it.ctx.Err(); err != nil {
				it.finish(err)
				return nil, false
			}

			it.depth++
			it.stack = append(it.stack, dfaFrame{state: it.start})
			continue
		}

		if it.steps++; it.steps%checkInterval == 0 {
			if err := it.ctx.Err(); err != nil {
				it.finish(err)
				return nil, false
			}
		}

		f := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]

		it.maxDepth = max(it.maxDepth, f.depth)
		it.buf = append(it.buf[:f.depth], f.b)

		if f.depth < it.depth {
			it.expand(f)
		} else if it.dfa.IsMatchState(it.dfa.NextEOIState(f.state)) {
			return it.buf[1:], true
		}
	}
}

// finish stops the enumeration.
func (it *DFAIter) finish(err error) {
	it.done = true
	it.err = err
	it.stack = nil
	it.buf = nil
}

// expand pushes the successors of the frame in descending byte order, so that they are
// popped in ascending order. The transition of each byte class is only computed once.
func (it *DFAIter) expand(f dfaFrame) {
	last := -1
	var next automaton.StateID

	// With one class per byte, there is nothing to share.
	single := it.classes.IsSingleton()

	for b := 255; b >= 0; b-- {
		if c := it.classes.Get(byte(b)); single || c != last {
			next = it.dfa.NextState(f.state, byte(b))
			last = c
		}

		if !it.dfa.IsDeadState(next) {
			it.stack = append(it.stack, dfaFrame{state: next, b: byte(b), depth: f.depth + 1})
		}
	}
}

// All returns an iterator over the remaining strings.
func (it *DFAIter) All() iter.Seq[[]byte] {
	return all(it.Next)
}

// IsUTF8 reports whether the DFA only matches valid UTF-8.
func (it *DFAIter) IsUTF8() bool {
	return it.dfa.IsUTF8()
}

// Err returns the error of the context, if it stopped the enumeration.
func (it *DFAIter) Err() error {
	return it.err
}
