package regex

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/magnetde/starlark-regen/automaton"
	"github.com/magnetde/starlark-regen/util"
)

const (
	// deadState is the ID of the dead state of every DFA.
	deadState automaton.StateID = 0

	// matchState is the ID of the match state, which is only reachable by the end-of-input transition.
	matchState automaton.StateID = 1

	// firstState is the ID of the first regular state.
	firstState = 2
)

// DFA is a dense deterministic automaton, built by subset construction from an NFA.
// Every state, that cannot reach a match, is merged into the dead state.
// DFA is immutable and implements automaton.DFA.
type DFA struct {
	trans   []automaton.StateID // transitions; row-major, one row of `stride` entries per state
	eoi     []bool              // whether the end of input leads to a match
	stride  int
	classes automaton.ByteClasses
	start   automaton.StateID
	utf8    bool
}

var _ automaton.DFA = (*DFA)(nil)

// NewDFA compiles the patterns into a DFA.
func NewDFA(cfg Config, patterns ...string) (*DFA, error) {
	nfa, err := NewNFA(cfg, patterns...)
	if err != nil {
		return nil, err
	}

	return BuildDFA(cfg, nfa)
}

// BuildDFA builds a DFA from the NFA. The DFA matches the union of all patterns of the NFA.
// Look assertions are resolved exactly.
func BuildDFA(cfg Config, nfa *NFA) (*DFA, error) {
	if nfa.HasLook(automaton.LookWordUnicode) || nfa.HasLook(automaton.LookWordUnicodeNegate) {
		return nil, errors.Wrap(ErrUnsupported, "unicode word boundary")
	}

	b := newDFABuilder(cfg, nfa)
	if err := b.build(); err != nil {
		return nil, err
	}

	d := b.finish()

	if cfg.Minimize {
		d = minimize(d)
	}

	cfg.logger().Debug("compiled DFA",
		"patterns", nfa.PatternLen(),
		"nfa_states", nfa.Len(),
		"states", d.Len(),
		"classes", d.classes.Len(),
		"minimized", cfg.Minimize,
	)

	return d, nil
}

// StartAnchored returns the start state of an anchored search.
func (d *DFA) StartAnchored() automaton.StateID {
	return d.start
}

// NextState returns the state reached from `s` on byte `b`.
func (d *DFA) NextState(s automaton.StateID, b byte) automaton.StateID {
	return d.trans[int(s)*d.stride+d.classes.Get(b)]
}

// NextEOIState returns the match state if the end of input is accepted in `s`, else the dead state.
func (d *DFA) NextEOIState(s automaton.StateID) automaton.StateID {
	if d.eoi[s] {
		return matchState
	}
	return deadState
}

// IsDeadState reports whether `s` is the dead state.
func (d *DFA) IsDeadState(s automaton.StateID) bool {
	return s == deadState
}

// IsMatchState reports whether `s` is the match state.
func (d *DFA) IsMatchState(s automaton.StateID) bool {
	return s == matchState
}

// ByteClasses returns the byte equivalence classes.
func (d *DFA) ByteClasses() automaton.ByteClasses {
	return d.classes
}

// IsUTF8 reports whether the DFA only matches valid UTF-8.
func (d *DFA) IsUTF8() bool {
	return d.utf8
}

// Len returns the number of states, including the dead and the match state.
func (d *DFA) Len() int {
	return len(d.eoi)
}

// IsFinite reports whether the DFA matches a finite number of strings.
func (d *DFA) IsFinite() bool {
	const (
		white = iota
		grey
		black
	)

	color := make([]uint8, d.Len())

	type frame struct {
		state automaton.StateID
		class int
	}

	if d.start == deadState {
		return true
	}

	stack := []frame{{state: d.start}}
	color[d.start] = grey

	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.class == d.stride {
			color[f.state] = black
			stack = stack[:len(stack)-1]
			continue
		}

		next := d.trans[int(f.state)*d.stride+f.class]
		f.class++

		if next == deadState {
			continue
		}

		switch color[next] {
		case grey:
			return false
		case white:
			color[next] = grey
			stack = append(stack, frame{state: next})
		}
	}

	return true
}

func (d *DFA) String() string {
	var b strings.Builder
	reps := d.classes.Representatives()

	for s := firstState; s < d.Len(); s++ {
		marker := ' '
		if automaton.StateID(s) == d.start {
			marker = '>'
		}
		if d.eoi[s] {
			marker = '*'
		}

		fmt.Fprintf(&b, "%c%06d:", marker, s)
		for c, rep := range reps {
			next := d.trans[s*d.stride+c]
			if next != deadState {
				fmt.Fprintf(&b, " %s => %d", escapeByteString(rep), next)
			}
		}
		b.WriteByte('\n')
	}

	return b.String()
}

// escapeByteString returns a readable representation of a byte.
func escapeByteString(c byte) string {
	if c >= 0x21 && c <= 0x7e {
		return string(rune(c))
	}
	return fmt.Sprintf(`\x%02x`, c)
}

// Bits of the look-behind context of a DFA state.
const (
	ctxStart uint8 = 1 << iota // no byte consumed yet
	ctxLF                      // previous byte is '\n'
	ctxCR                      // previous byte is '\r'
	ctxWord                    // previous byte is a word character
)

// eoiByte is passed to the closure instead of a byte at the end of the input.
const eoiByte = -1

// dfaBuilder performs the subset construction.
// A DFA state is identified by the sorted set of NFA states reached after the last byte together with
// the look-behind context. The epsilon closure is computed for every byte class, because look
// assertions depend on the following byte.
type dfaBuilder struct {
	nfa       *NFA
	maxStates int
	looks     bool

	classes automaton.ByteClasses
	reps    []byte
	stride  int

	index map[string]automaton.StateID
	sets  [][]automaton.StateID
	ctxs  []uint8
	trans []automaton.StateID
	eoi   []bool

	// scratch space
	visited *util.BitSet
	seen    *util.BitSet
	stack   []automaton.StateID
	closure []automaton.StateID
	next    []automaton.StateID
	key     []byte
}

// newDFABuilder creates a builder, that already contains the dead and the match state.
func newDFABuilder(cfg Config, nfa *NFA) *dfaBuilder {
	classes := byteClasses(nfa, cfg.ByteClasses)

	b := &dfaBuilder{
		nfa:       nfa,
		maxStates: cfg.MaxStates,
		looks:     nfa.hasAnyLook(),
		classes:   classes,
		reps:      classes.Representatives(),
		stride:    classes.Len(),
		index:     make(map[string]automaton.StateID),
		visited:   util.NewBitSet(nfa.Len()),
		seen:      util.NewBitSet(nfa.Len()),
	}

	b.newState(nil, 0) // dead
	b.newState(nil, 0) // match

	return b
}

// build runs the subset construction starting at the anchored start state.
func (b *dfaBuilder) build() error {
	var startCtx uint8
	if b.looks {
		startCtx = ctxStart
	}

	if _, err := b.state([]automaton.StateID{b.nfa.StartAnchored()}, startCtx); err != nil {
		return err
	}

	// New states are appended while iterating.
	for id := firstState; id < len(b.sets); id++ {
		seeds, ctx := b.sets[id], b.ctxs[id]

		if !b.looks {
			b.computeClosure(seeds, ctx, eoiByte)
		}

		for c, rep := range b.reps {
			if b.looks {
				b.computeClosure(seeds, ctx, int(rep))
			}

			next, err := b.step(rep, nextCtx(b.looks, rep))
			if err != nil {
				return err
			}

			b.trans[id*b.stride+c] = next
		}

		if b.looks {
			b.computeClosure(seeds, ctx, eoiByte)
		}
		b.eoi[id] = b.closureMatches()
	}

	return nil
}

// nextCtx returns the look-behind context after consuming byte `c`.
func nextCtx(looks bool, c byte) uint8 {
	if !looks {
		return 0
	}

	var ctx uint8
	switch {
	case c == '\n':
		ctx |= ctxLF
	case c == '\r':
		ctx |= ctxCR
	case automaton.IsWordByte(c):
		ctx |= ctxWord
	}
	return ctx
}

// newState appends a state without computing its transitions.
func (b *dfaBuilder) newState(seeds []automaton.StateID, ctx uint8) automaton.StateID {
	id := automaton.StateID(len(b.sets))
	b.sets = append(b.sets, seeds)
	b.ctxs = append(b.ctxs, ctx)
	b.eoi = append(b.eoi, false)
	b.trans = append(b.trans, make([]automaton.StateID, b.stride)...)
	return id
}

// state returns the ID of the DFA state for the seeds and the context and creates it if necessary.
// The seeds must be sorted.
func (b *dfaBuilder) state(seeds []automaton.StateID, ctx uint8) (automaton.StateID, error) {
	if len(seeds) == 0 {
		return deadState, nil
	}

	b.key = append(b.key[:0], ctx)
	for _, s := range seeds {
		b.key = binary.LittleEndian.AppendUint32(b.key, uint32(s))
	}

	if id, ok := b.index[string(b.key)]; ok {
		return id, nil
	}

	if b.maxStates > 0 && len(b.sets) >= b.maxStates {
		return 0, errors.Wrapf(ErrTooManyStates, "limit %d", b.maxStates)
	}

	id := b.newState(slices.Clone(seeds), ctx)
	b.index[string(b.key)] = id

	return id, nil
}

// computeClosure computes the epsilon closure of the seeds into `b.closure`.
// Look assertions are evaluated with the context and the following byte `next`, which is
// eoiByte at the end of the input. Only byte-consuming and match states are kept.
func (b *dfaBuilder) computeClosure(seeds []automaton.StateID, ctx uint8, next int) {
	b.visited.Clear()
	b.closure = b.closure[:0]
	b.stack = append(b.stack[:0], seeds...)

	for len(b.stack) > 0 {
		id := b.stack[len(b.stack)-1]
		b.stack = b.stack[:len(b.stack)-1]

		if !b.visited.Add(int(id)) {
			continue
		}

		s := b.nfa.State(id)
		switch s.Kind {
		case automaton.KindByteRange, automaton.KindSparse, automaton.KindDense, automaton.KindMatch:
			b.closure = append(b.closure, id)
		case automaton.KindUnion:
			for i := len(s.Alts) - 1; i >= 0; i-- {
				b.stack = append(b.stack, s.Alts[i])
			}
		case automaton.KindCapture:
			b.stack = append(b.stack, s.Next)
		case automaton.KindLook:
			if lookHolds(s.Look, ctx, next) {
				b.stack = append(b.stack, s.Next)
			}
		}
	}
}

// closureMatches reports whether the current closure contains a match state.
func (b *dfaBuilder) closureMatches() bool {
	for _, id := range b.closure {
		if b.nfa.State(id).Kind == automaton.KindMatch {
			return true
		}
	}
	return false
}

// step follows byte `c` from all states of the current closure and returns the resulting DFA state.
func (b *dfaBuilder) step(c byte, ctx uint8) (automaton.StateID, error) {
	b.seen.Clear()

	for _, id := range b.closure {
		target := byteTarget(b.nfa.State(id), c)
		if target == failState || b.nfa.State(target).Kind == automaton.KindFail {
			continue
		}
		b.seen.Add(int(target))
	}

	// the targets are collected in ascending order
	b.next = b.next[:0]
	for id := range b.seen.All() {
		b.next = append(b.next, automaton.StateID(id))
	}

	return b.state(b.next, ctx)
}

// byteTarget returns the state reached from the NFA state `s` on byte `c` or the fail state.
func byteTarget(s *automaton.State, c byte) automaton.StateID {
	switch s.Kind {
	case automaton.KindByteRange:
		if s.Trans[0].Matches(c) {
			return s.Trans[0].Next
		}
	case automaton.KindSparse:
		for _, t := range s.Trans {
			if c < t.Lo {
				break
			}
			if c <= t.Hi {
				return t.Next
			}
		}
	case automaton.KindDense:
		return s.Dense[c]
	}
	return failState
}

// lookHolds evaluates a look assertion with the look-behind context and the following byte.
func lookHolds(l automaton.Look, ctx uint8, next int) bool {
	eoi := next == eoiByte

	switch l {
	case automaton.LookStart:
		return ctx&ctxStart != 0
	case automaton.LookEnd:
		return eoi
	case automaton.LookStartLF:
		return ctx&(ctxStart|ctxLF) != 0
	case automaton.LookEndLF:
		return eoi || next == '\n'
	case automaton.LookStartCRLF:
		return ctx&(ctxStart|ctxLF) != 0 || (ctx&ctxCR != 0 && next != '\n')
	case automaton.LookEndCRLF:
		return eoi || next == '\r' || (next == '\n' && ctx&ctxCR == 0)
	case automaton.LookWordASCII, automaton.LookWordASCIINegate:
		before := ctx&ctxWord != 0
		after := !eoi && automaton.IsWordByte(byte(next))
		return (before != after) == (l == automaton.LookWordASCII)
	default:
		return false
	}
}

// byteClasses computes the byte equivalence classes of the NFA. If look assertions exist,
// line terminators and word characters get classes of their own.
func byteClasses(nfa *NFA, enabled bool) automaton.ByteClasses {
	if !enabled {
		return automaton.SingletonClasses()
	}

	var bounds [256]bool
	mark := func(lo, hi byte) {
		bounds[lo] = true
		if hi < 0xff {
			bounds[hi+1] = true
		}
	}

	for i := range nfa.states {
		s := &nfa.states[i]
		switch s.Kind {
		case automaton.KindByteRange, automaton.KindSparse:
			for _, t := range s.Trans {
				mark(t.Lo, t.Hi)
			}
		case automaton.KindDense:
			for c := 1; c < len(s.Dense); c++ {
				if s.Dense[c] != s.Dense[c-1] {
					bounds[c] = true
				}
			}
		}
	}

	if nfa.hasAnyLook() {
		mark('\n', '\n')
		mark('\r', '\r')
		mark('0', '9')
		mark('A', 'Z')
		mark('_', '_')
		mark('a', 'z')
	}

	return automaton.NewByteClasses(&bounds)
}

// finish prunes all states, that cannot reach a match, and renumbers the remaining states
// in breadth-first order.
func (b *dfaBuilder) finish() *DFA {
	d := &DFA{
		trans:   b.trans,
		eoi:     b.eoi,
		stride:  b.stride,
		classes: b.classes,
		start:   firstState,
		utf8:    b.nfa.IsUTF8(),
	}

	live := d.liveStates()

	repr := make([]automaton.StateID, d.Len())
	for s := firstState; s < d.Len(); s++ {
		if live[s] {
			repr[s] = automaton.StateID(s)
		}
	}

	return d.remap(repr)
}

// liveStates returns for each state, whether a match is reachable from it.
func (d *DFA) liveStates() []bool {
	n := d.Len()

	// Reverse edges.
	preds := make([][]automaton.StateID, n)
	for s := firstState; s < n; s++ {
		for c := 0; c < d.stride; c++ {
			t := d.trans[s*d.stride+c]
			if t != deadState {
				preds[t] = append(preds[t], automaton.StateID(s))
			}
		}
	}

	live := make([]bool, n)
	var queue []automaton.StateID
	for s := firstState; s < n; s++ {
		if d.eoi[s] {
			live[s] = true
			queue = append(queue, automaton.StateID(s))
		}
	}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]

		for _, p := range preds[s] {
			if !live[p] {
				live[p] = true
				queue = append(queue, p)
			}
		}
	}

	return live
}

// remap builds a new DFA, in which every state `s` is replaced by `repr[s]`.
// A representative of 0 means that the state is dead. Only states reachable from the
// start state are kept; they are numbered in breadth-first order.
func (d *DFA) remap(repr []automaton.StateID) *DFA {
	res := &DFA{
		stride:  d.stride,
		classes: d.classes,
		utf8:    d.utf8,
	}

	ids := make(map[automaton.StateID]automaton.StateID)
	var order []automaton.StateID

	visit := func(s automaton.StateID) automaton.StateID {
		r := repr[s]
		if r == deadState {
			return deadState
		}

		id, ok := ids[r]
		if !ok {
			id = automaton.StateID(firstState + len(order))
			ids[r] = id
			order = append(order, r)
		}
		return id
	}

	res.start = visit(d.start)

	// dead and match state
	res.trans = make([]automaton.StateID, firstState*d.stride, (firstState+len(repr))*d.stride)
	res.eoi = make([]bool, firstState, firstState+len(repr))

	for i := 0; i < len(order); i++ {
		old := order[i]

		res.eoi = append(res.eoi, d.eoi[old])
		for c := 0; c < d.stride; c++ {
			res.trans = append(res.trans, visit(d.trans[int(old)*d.stride+c]))
		}
	}

	return res
}
