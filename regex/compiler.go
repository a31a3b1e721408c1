package regex

import (
	"encoding/binary"
	"regexp/syntax"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/magnetde/starlark-regen/automaton"
)

// failState is the ID of the fail state, which is always the first state.
const failState automaton.StateID = 0

// compiler compiles syntax trees into a Thompson NFA.
// States are built from the end of a pattern to its start: every subexpression is compiled
// with the ID of the state that follows it.
type compiler struct {
	states []automaton.State
	bytes  bool   // Latin-1 mode
	high   bool   // some transition contains a byte >= 0x80
	looks  uint16 // look assertions used

	// cache maps the transitions of byte states to their IDs, so that equal suffixes are shared.
	cache map[string]automaton.StateID
	key   []byte
}

// newCompiler returns a compiler, that already contains the fail state.
func newCompiler(bytes bool) *compiler {
	c := &compiler{
		bytes: bytes,
		cache: make(map[string]automaton.StateID),
	}
	c.add(automaton.State{Kind: automaton.KindFail})
	return c
}

// compileAll compiles the parsed patterns into one NFA.
func (c *compiler) compileAll(res []*syntax.Regexp) (*NFA, error) {
	starts := make([]automaton.StateID, len(res))
	for i, re := range res {
		match := c.add(automaton.State{Kind: automaton.KindMatch, Pattern: i})

		start, err := c.compile(re, match)
		if err != nil {
			return nil, err
		}

		starts[i] = start
	}

	start := starts[0]
	if len(starts) > 1 {
		start = c.union(starts...)
	}

	nfa := &NFA{
		states:   c.states,
		start:    start,
		patterns: len(res),
		utf8:     !c.bytes || !c.high,
		looks:    c.looks,
	}

	return nfa, nil
}

// add appends a new state and returns its ID.
func (c *compiler) add(s automaton.State) automaton.StateID {
	id := automaton.StateID(len(c.states))
	c.states = append(c.states, s)
	return id
}

// union adds a union state over the alternatives.
func (c *compiler) union(alts ...automaton.StateID) automaton.StateID {
	return c.add(automaton.State{Kind: automaton.KindUnion, Alts: alts})
}

// look adds a look-around assertion.
func (c *compiler) look(l automaton.Look, next automaton.StateID) automaton.StateID {
	c.looks |= 1 << l
	return c.add(automaton.State{Kind: automaton.KindLook, Look: l, Next: next})
}

// compile compiles `re` so that a match of it continues at `next` and returns the first state.
func (c *compiler) compile(re *syntax.Regexp, next automaton.StateID) (automaton.StateID, error) {
	switch re.Op {
	case syntax.OpNoMatch:
		return failState, nil

	case syntax.OpEmptyMatch:
		return next, nil

	case syntax.OpLiteral:
		fold := re.Flags&syntax.FoldCase != 0

		var err error
		for i := len(re.Rune) - 1; i >= 0; i-- {
			next, err = c.literal(re.Rune[i], fold, next)
			if err != nil {
				return 0, err
			}
		}

		return next, nil

	case syntax.OpCharClass:
		return c.class(re.Rune, next), nil

	case syntax.OpAnyCharNotNL:
		return c.class([]rune{0, '\n' - 1, '\n' + 1, unicode.MaxRune}, next), nil

	case syntax.OpAnyChar:
		return c.class([]rune{0, unicode.MaxRune}, next), nil

	case syntax.OpBeginLine:
		return c.look(automaton.LookStartLF, next), nil

	case syntax.OpEndLine:
		return c.look(automaton.LookEndLF, next), nil

	case syntax.OpBeginText:
		return c.look(automaton.LookStart, next), nil

	case syntax.OpEndText:
		return c.look(automaton.LookEnd, next), nil

	case syntax.OpWordBoundary:
		return c.look(automaton.LookWordASCII, next), nil

	case syntax.OpNoWordBoundary:
		return c.look(automaton.LookWordASCIINegate, next), nil

	case syntax.OpCapture:
		end := c.add(automaton.State{Kind: automaton.KindCapture, Slot: 2*re.Cap + 1, Next: next})

		body, err := c.compile(re.Sub[0], end)
		if err != nil {
			return 0, err
		}

		return c.add(automaton.State{Kind: automaton.KindCapture, Slot: 2 * re.Cap, Next: body}), nil

	case syntax.OpConcat:
		var err error
		for i := len(re.Sub) - 1; i >= 0; i-- {
			next, err = c.compile(re.Sub[i], next)
			if err != nil {
				return 0, err
			}
		}

		return next, nil

	case syntax.OpAlternate:
		alts := make([]automaton.StateID, len(re.Sub))
		for i, sub := range re.Sub {
			alt, err := c.compile(sub, next)
			if err != nil {
				return 0, err
			}

			alts[i] = alt
		}

		return c.union(alts...), nil

	case syntax.OpQuest:
		body, err := c.compile(re.Sub[0], next)
		if err != nil {
			return 0, err
		}

		return c.union(c.order(re, body, next)...), nil

	case syntax.OpStar:
		// The union is created first, so that the body can loop back to it.
		loop := c.union()

		body, err := c.compile(re.Sub[0], loop)
		if err != nil {
			return 0, err
		}

		c.states[loop].Alts = c.order(re, body, next)
		return loop, nil

	case syntax.OpPlus:
		loop := c.union()

		body, err := c.compile(re.Sub[0], loop)
		if err != nil {
			return 0, err
		}

		c.states[loop].Alts = c.order(re, body, next)
		return body, nil

	default:
		return 0, errors.Wrapf(ErrUnsupported, "operator %s", re.Op)
	}
}

// order returns the alternatives of a repetition in priority order.
func (c *compiler) order(re *syntax.Regexp, body, next automaton.StateID) []automaton.StateID {
	if re.Flags&syntax.NonGreedy != 0 {
		return []automaton.StateID{next, body}
	}
	return []automaton.StateID{body, next}
}

// literal compiles a single character.
func (c *compiler) literal(r rune, fold bool, next automaton.StateID) (automaton.StateID, error) {
	if c.bytes && r > maxLatin1 {
		return 0, errors.Wrapf(ErrRuneOutOfRange, "character %U", r)
	}

	if fold {
		return c.class(foldClass(r, c.bytes), next), nil
	}

	if c.bytes || r < utf8.RuneSelf {
		return c.byteState([]automaton.Transition{{Lo: byte(r), Hi: byte(r), Next: next}}), nil
	}

	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	for i := n - 1; i >= 0; i-- {
		next = c.byteState([]automaton.Transition{{Lo: buf[i], Hi: buf[i], Next: next}})
	}

	return next, nil
}

// class compiles a sorted character class given as pairs of ranges.
func (c *compiler) class(r []rune, next automaton.StateID) automaton.StateID {
	if c.bytes {
		r = clipClass(r, maxLatin1)

		trans := make([]automaton.Transition, 0, len(r)/2)
		for i := 0; i+1 < len(r); i += 2 {
			trans = append(trans, automaton.Transition{Lo: byte(r[i]), Hi: byte(r[i+1]), Next: next})
		}

		return c.byteState(trans)
	}

	var t trie
	for i := 0; i+1 < len(r); i += 2 {
		for _, seq := range utf8Sequences(r[i], r[i+1]) {
			t.insert(seq)
		}
	}

	return c.compileTrie(&t.root, next)
}

// compileTrie compiles a node of the byte trie of a character class.
func (c *compiler) compileTrie(n *trieNode, next automaton.StateID) automaton.StateID {
	trans := make([]automaton.Transition, len(n.trans))
	for i, t := range n.trans {
		target := next
		if t.child != nil {
			target = c.compileTrie(t.child, next)
		}

		trans[i] = automaton.Transition{Lo: t.lo, Hi: t.hi, Next: target}
	}

	return c.byteState(trans)
}

// byteState returns a state, that consumes one byte and follows the matching transition.
// The transitions must be sorted and disjoint. States with equal transitions are shared.
func (c *compiler) byteState(trans []automaton.Transition) automaton.StateID {
	if len(trans) == 0 {
		return failState
	}

	c.key = c.key[:0]
	for _, t := range trans {
		c.key = append(c.key, t.Lo, t.Hi)
		c.key = binary.LittleEndian.AppendUint32(c.key, uint32(t.Next))
	}

	if id, ok := c.cache[string(c.key)]; ok {
		return id
	}

	if trans[len(trans)-1].Hi >= utf8.RuneSelf {
		c.high = true
	}

	var s automaton.State
	switch {
	case len(trans) == 1:
		s = automaton.State{Kind: automaton.KindByteRange, Trans: trans}
	case len(trans) > denseThreshold:
		s = automaton.State{Kind: automaton.KindDense, Dense: denseTable(trans)}
	default:
		s = automaton.State{Kind: automaton.KindSparse, Trans: trans}
	}

	id := c.add(s)
	c.cache[string(c.key)] = id

	return id
}

// denseTable converts sorted transitions into a table with one entry per byte.
// Bytes without transition lead to the fail state.
func denseTable(trans []automaton.Transition) []automaton.StateID {
	table := make([]automaton.StateID, 256)
	for _, t := range trans {
		for b := int(t.Lo); b <= int(t.Hi); b++ {
			table[b] = t.Next
		}
	}
	return table
}

// trie is a trie of byte ranges, built from sorted UTF-8 sequences.
// Sequences sharing a prefix of equal ranges share the nodes of the prefix.
type trie struct {
	root trieNode
}

type trieNode struct {
	trans []trieTrans
}

// trieTrans is an edge of the trie; a nil child marks the end of a sequence.
type trieTrans struct {
	lo, hi byte
	child  *trieNode
}

// insert adds a sequence. Sequences must be inserted in ascending order.
func (t *trie) insert(seq utf8Sequence) {
	n := &t.root
	for i, r := range seq {
		last := len(n.trans) - 1
		if last >= 0 && n.trans[last].lo == r.lo && n.trans[last].hi == r.hi && n.trans[last].child != nil {
			n = n.trans[last].child
			continue
		}

		if i == len(seq)-1 {
			n.trans = append(n.trans, trieTrans{lo: r.lo, hi: r.hi})
			return
		}

		child := &trieNode{}
		n.trans = append(n.trans, trieTrans{lo: r.lo, hi: r.hi, child: child})
		n = child
	}
}
