package enum

import (
	"context"
	"iter"
	"slices"

	"github.com/pkg/errors"

	"github.com/magnetde/starlark-regen/automaton"
	"github.com/magnetde/starlark-regen/util"
)

// nfaFrame is a node of the search stack of the NFA enumerator.
//
// Byte-consuming states are visited once per candidate byte: the frame is pushed again with the
// cursor advanced before descending, so that the next byte is tried after the current subtree
// is finished. For sparse states, `index` is the transition containing the cursor.
type nfaFrame struct {
	state     automaton.StateID
	index     uint16
	cursor    uint16
	byteDepth int // number of consumed bytes
	depth     int // number of steps, including epsilon transitions
}

// NFAIter enumerates the strings matched by an NFA.
// Strings, that are matched through different paths, are produced multiple times.
// The zero value is not usable; create an NFAIter with NewNFA.
type NFAIter struct {
	nfa   automaton.NFA
	start automaton.StateID
	live  *util.BitSet // states, from which a match state is reachable
	ctx   context.Context
	steps int

	depth    int // maximum search depth of the current pass
	maxDepth int // maximum search depth seen so far
	done     bool
	err      error

	stack []nfaFrame
	buf   []byte
}

// NewNFA returns an enumerator over the strings matched by the NFA, starting at its anchored start state.
// It fails with ErrUnsupported, if a word boundary assertion is reachable from the start state.
func NewNFA(nfa automaton.NFA) (*NFAIter, error) {
	start := nfa.StartAnchored()

	live, err := checkNFA(nfa, start)
	if err != nil {
		return nil, err
	}

	it := &NFAIter{
		nfa:   nfa,
		start: start,
		live:  live,
		ctx:   context.Background(),
	}
	it.push(start, 0, 0)

	return it, nil
}

// checkNFA rejects NFAs with word boundary assertions, which cannot be decided on the prefix alone.
// It returns the set of states reachable from `start`, that can reach a match state.
func checkNFA(nfa automaton.NFA, start automaton.StateID) (*util.BitSet, error) {
	preds := map[automaton.StateID][]automaton.StateID{start: nil}
	queue := []automaton.StateID{start}
	var matches []automaton.StateID
	last := start

	visit := func(from, id automaton.StateID) {
		if _, ok := preds[id]; !ok {
			queue = append(queue, id)
			last = max(last, id)
		}
		preds[id] = append(preds[id], from)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		s := nfa.State(id)
		switch s.Kind {
		case automaton.KindByteRange, automaton.KindSparse:
			for _, t := range s.Trans {
				visit(id, t.Next)
			}
		case automaton.KindDense:
			for _, next := range s.Dense {
				visit(id, next)
			}
		case automaton.KindLook:
			if s.Look.IsWordBoundary() {
				return nil, errors.Wrapf(ErrUnsupported, "%s assertion in state %d", s.Look, id)
			}
			visit(id, s.Next)
		case automaton.KindUnion:
			for _, alt := range s.Alts {
				visit(id, alt)
			}
		case automaton.KindCapture:
			visit(id, s.Next)
		case automaton.KindMatch:
			matches = append(matches, id)
		}
	}

	// Walk the transitions backwards from the match states.
	live := util.NewBitSet(int(last) + 1)
	for _, id := range matches {
		live.Add(int(id))
	}
	for len(matches) > 0 {
		id := matches[len(matches)-1]
		matches = matches[:len(matches)-1]

		for _, p := range preds[id] {
			if live.Add(int(p)) {
				matches = append(matches, p)
			}
		}
	}

	return live, nil
}

// SetContext sets the context, that stops the enumeration when it is done.
// The context is checked at the start of every pass and periodically while searching,
// since a pass may run for a long time without producing a string.
func (it *NFAIter) SetContext(ctx context.Context) {
	it.ctx = ctx
}

// push pushes a new frame for the state with the cursor at its first candidate byte.
// States, that cannot reach a match, are skipped.
func (it *NFAIter) push(id automaton.StateID, byteDepth, depth int) {
	if !it.live.Has(int(id)) {
		return
	}

	f := nfaFrame{state: id, byteDepth: byteDepth, depth: depth}

	if s := it.nfa.State(id); s.Kind == automaton.KindByteRange || s.Kind == automaton.KindSparse {
		if len(s.Trans) > 0 {
			f.cursor = uint16(s.Trans[0].Lo)
		}
	}

	it.stack = append(it.stack, f)
}

// Next returns the next matching string. The second result is false, if all strings were enumerated
// or the enumeration failed; see Err.
func (it *NFAIter) Next() ([]byte, bool) {
	b, ok := it.Borrow()
	if !ok {
		return nil, false
	}
	return slices.Clone(b), true
}

// Borrow is like Next, but returns a slice of an internal buffer, that is only valid until the next call.
func (it *NFAIter) Borrow() ([]byte, bool) {
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
			it.push(it.start, 0, 0)
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
		it.buf = it.buf[:f.byteDepth]

		s := it.nfa.State(f.state)

		if f.depth < it.depth {
			if err := it.expand(f, s); err != nil {
				it.finish(err)
				return nil, false
			}
		} else if s.Kind == automaton.KindMatch {
			return it.buf, true
		}
	}
}

// finish stops the enumeration.
func (it *NFAIter) finish(err error) {
	it.done = true
	it.err = err
	it.stack = nil
	it.buf = nil
}

// expand pushes the successors of the frame. The first successor is pushed last, so that it
// is explored first.
func (it *NFAIter) expand(f nfaFrame, s *automaton.State) error {
	switch s.Kind {
	case automaton.KindByteRange:
		t := s.Trans[0]
		if f.cursor < uint16(t.Hi) {
			it.revisit(f, f.index, f.cursor+1)
		}
		it.descend(f, byte(f.cursor), t.Next)

	case automaton.KindSparse:
		if int(f.index) >= len(s.Trans) {
			return nil
		}

		t := s.Trans[f.index]
		if f.cursor < uint16(t.Hi) {
			it.revisit(f, f.index, f.cursor+1)
		} else if int(f.index)+1 < len(s.Trans) {
			it.revisit(f, f.index+1, uint16(s.Trans[f.index+1].Lo))
		}
		it.descend(f, byte(f.cursor), t.Next)

	case automaton.KindDense:
		c := int(f.cursor)
		for c < len(s.Dense) && it.nfa.State(s.Dense[c]).Kind == automaton.KindFail {
			c++
		}
		if c >= len(s.Dense) {
			return nil
		}

		if c+1 < len(s.Dense) {
			it.revisit(f, 0, uint16(c+1))
		}
		it.descend(f, byte(c), s.Dense[c])

	case automaton.KindLook:
		ok, err := it.lookHolds(s.Look, f.byteDepth)
		if err != nil {
			return err
		}
		if ok {
			it.push(s.Next, f.byteDepth, f.depth+1)
		}

	case automaton.KindUnion:
		for i := len(s.Alts) - 1; i >= 0; i-- {
			it.push(s.Alts[i], f.byteDepth, f.depth+1)
		}

	case automaton.KindCapture:
		it.push(s.Next, f.byteDepth, f.depth+1)

	case automaton.KindFail, automaton.KindMatch:
	}

	return nil
}

// revisit pushes the frame again with the cursor moved to the next candidate byte.
func (it *NFAIter) revisit(f nfaFrame, index, cursor uint16) {
	f.index = index
	f.cursor = cursor
	it.stack = append(it.stack, f)
}

// descend consumes byte `c` and pushes the target state.
func (it *NFAIter) descend(f nfaFrame, c byte, next automaton.StateID) {
	it.buf = append(it.buf, c)
	it.push(next, f.byteDepth+1, f.depth+1)
}

// lookHolds evaluates an assertion on the current prefix.
// End assertions always hold, since the rest of the string is not known yet.
func (it *NFAIter) lookHolds(l automaton.Look, byteDepth int) (bool, error) {
	if l.IsEnd() {
		return true, nil
	}

	switch l {
	case automaton.LookStart:
		return byteDepth == 0, nil
	case automaton.LookStartLF:
		return byteDepth == 0 || it.buf[byteDepth-1] == '\n', nil
	case automaton.LookStartCRLF:
		return byteDepth == 0 || it.buf[byteDepth-1] == '\n' || it.buf[byteDepth-1] == '\r', nil
	default:
		return false, errors.Wrapf(ErrUnsupported, "%s assertion", l)
	}
}

// All returns an iterator over the remaining strings.
func (it *NFAIter) All() iter.Seq[[]byte] {
	return all(it.Next)
}

// IsUTF8 reports whether the NFA only matches valid UTF-8.
func (it *NFAIter) IsUTF8() bool {
	return it.nfa.IsUTF8()
}

// Err returns the error, that stopped the enumeration, if any.
// This is ErrUnsupported for unsupported assertions or the error of the context.
func (it *NFAIter) Err() error {
	return it.err
}
