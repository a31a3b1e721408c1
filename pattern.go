package regen

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/magnetde/starlark-regen/enum"
	"github.com/magnetde/starlark-regen/regex"
	"github.com/magnetde/starlark-regen/util"
)

// Pattern is a starlark representation of a compiled regular expression.
// Exactly one of the automata is set, depending on the engine.
type Pattern struct {
	pattern strOrBytes
	flags   int
	engine  string

	dfa    *regex.DFA
	nfa    *regex.NFA
	finite bool // only valid for DFAs
}

// newPattern compiles the pattern into the automaton of the engine.
func newPattern(cfg regex.Config, pattern strOrBytes, flags int, engine string) (*Pattern, error) {
	if flags&^supportedFlags != 0 {
		return nil, errors.Errorf("unsupported flags 0x%x", flags&^supportedFlags)
	}

	cfg.Flags = uint32(flags)
	if !pattern.isString {
		cfg.Flags |= regex.FlagBytes
	}

	p := Pattern{
		pattern: pattern,
		flags:   flags,
		engine:  engine,
	}

	var err error

	switch engine {
	case engineDFA:
		p.dfa, err = regex.NewDFA(cfg, pattern.value)
		if err == nil {
			p.finite = p.dfa.IsFinite()
		}
	case engineNFA:
		p.nfa, err = regex.NewNFA(cfg, pattern.value)
		if err == nil {
			// fail early for assertions, that the enumerator cannot handle
			_, err = enum.NewNFA(p.nfa)
		}
	default:
		return nil, errors.Errorf("unknown engine %q; want %q or %q", engine, engineDFA, engineNFA)
	}

	if err != nil {
		if e, ok := strings.CutPrefix(err.Error(), "error parsing regexp: "); ok {
			err = errors.New(e)
		}

		return nil, err
	}

	return &p, nil
}

// Check, if the type satiesfies the interfaces.
var (
	_ starlark.Value      = (*Pattern)(nil)
	_ starlark.HasAttrs   = (*Pattern)(nil)
	_ starlark.Comparable = (*Pattern)(nil)
	_ starlark.Iterable   = (*Pattern)(nil)
)

// patternValue returns the original pattern string.
func (p *Pattern) patternValue() starlark.String { return starlark.String(p.pattern.value) }

func (p *Pattern) String() string {
	var b strings.Builder
	b.WriteString("regen.compile(")
	b.WriteString(util.ReprLimit(p.pattern.value, p.pattern.isString, maxReprLength))
	p.writeflags(&b)
	if p.engine != engineDFA {
		b.WriteString(", engine=")
		b.WriteString(util.Repr(p.engine, true))
	}
	b.WriteByte(')')
	return b.String()
}

func (p *Pattern) writeflags(b *strings.Builder) {
	flags := p.flags
	if flags == 0 {
		return
	}

	first := true

	for _, f := range flagNames {
		if flags&f.flag == 0 {
			continue
		}
		if first {
			b.WriteString(", ")
			first = false
		} else {
			b.WriteByte('|')
		}
		b.WriteString("regen.")
		b.WriteString(f.name)
		flags &= ^f.flag
	}

	if flags != 0 {
		if first {
			b.WriteString(", ")
		} else {
			b.WriteByte('|')
		}
		b.WriteString("0x")
		b.WriteString(strconv.FormatUint(uint64(flags), 16))
	}
}

func (p *Pattern) Type() string          { return "pattern" }
func (p *Pattern) Freeze()               {}
func (p *Pattern) Truth() starlark.Bool  { return p.pattern.value != "" }
func (p *Pattern) Hash() (uint32, error) { return p.patternValue().Hash() }

// Methods of the pattern object.
var patternMethods = map[string]*starlark.Builtin{
	"take":  starlark.NewBuiltin("take", patternTake),
	"first": starlark.NewBuiltin("first", patternFirst),
}

// patternMembers contains members of the pattern object.
var patternMembers = map[string]func(p *Pattern) starlark.Value{
	"pattern": func(p *Pattern) starlark.Value { return p.pattern.asType(p.pattern.value) },
	"flags":   func(p *Pattern) starlark.Value { return starlark.MakeInt(p.flags) },
	"engine":  func(p *Pattern) starlark.Value { return starlark.String(p.engine) },
	"utf8":    func(p *Pattern) starlark.Value { return starlark.Bool(p.isUTF8()) },
	"finite": func(p *Pattern) starlark.Value {
		if p.dfa == nil {
			return starlark.None // undecided for NFAs
		}

		return starlark.Bool(p.finite)
	},
}

// Attr gets a value for a string attribute.
func (p *Pattern) Attr(name string) (starlark.Value, error) {
	if o, ok := patternMethods[name]; ok {
		return o.BindReceiver(p), nil
	}

	if o, ok := patternMembers[name]; ok {
		return o(p), nil
	}

	return nil, nil
}

// AttrNames lists available dot expression strings.
func (p *Pattern) AttrNames() []string {
	names := make([]string, 0, len(patternMethods)+len(patternMembers))

	for name := range patternMethods {
		names = append(names, name)
	}
	for name := range patternMembers {
		names = append(names, name)
	}

	slices.Sort(names)
	return names
}

func (p *Pattern) CompareSameType(op syntax.Token, y starlark.Value, _ int) (bool, error) {
	o := y.(*Pattern)

	switch op {
	case syntax.EQL:
		return patternEquals(p, o), nil
	case syntax.NEQ:
		return !patternEquals(p, o), nil
	default:
		return false, fmt.Errorf("%s %s %s not implemented", p.Type(), op, o.Type())
	}
}

func patternEquals(x, y *Pattern) bool {
	return x.pattern == y.pattern && x.flags == y.flags && x.engine == y.engine
}

// Iterate returns an iterator over all strings of the pattern.
// Every iteration starts a new enumeration, so the pattern itself never changes.
// Iterators have no access to the thread and are not stopped by its context.
func (p *Pattern) Iterate() starlark.Iterator {
	g, err := p.generator(context.Background())
	if err != nil {
		// already checked by newPattern
		panic(err)
	}

	return &patternIterator{g: g}
}

func (p *Pattern) isUTF8() bool {
	if p.dfa != nil {
		return p.dfa.IsUTF8()
	}

	return p.nfa.IsUTF8()
}

// generator starts a new enumeration of the pattern, that stops once `ctx` is done.
func (p *Pattern) generator(ctx context.Context) (*generator, error) {
	var it enum.ByteIterator

	if p.dfa != nil {
		it = enum.NewDFA(p.dfa)
	} else {
		n, err := enum.NewNFA(p.nfa)
		if err != nil {
			return nil, err
		}

		it = n
	}

	it.SetContext(ctx)

	g := generator{it: it}

	// String patterns are always compiled to UTF-8 automata.
	if p.pattern.isString {
		u, err := enum.NewUTF8(it)
		if err != nil {
			return nil, err
		}

		g.str = u
	}

	return &g, nil
}

// take returns a list of the next `n` strings of a new enumeration.
func (p *Pattern) take(ctx context.Context, n int) (starlark.Value, error) {
	if n < 0 {
		return nil, errors.Errorf("negative count: %d", n)
	}

	g, err := p.generator(ctx)
	if err != nil {
		return nil, err
	}

	l := make([]starlark.Value, 0, min(n, 64))
	for len(l) < n {
		v, ok := g.next()
		if !ok {
			break
		}

		l = append(l, v)
	}

	if err := g.err(); err != nil {
		return nil, err
	}

	return starlark.NewList(l), nil
}

// patternTake - see `regenGenerate`.
func patternTake(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var n int
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "n", &n); err != nil {
		return nil, err
	}

	p := b.Receiver().(*Pattern)
	return p.take(threadContext(thread), n)
}

// patternFirst returns the first string of the pattern or `None`, if the pattern matches nothing.
func patternFirst(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}

	p := b.Receiver().(*Pattern)

	g, err := p.generator(threadContext(thread))
	if err != nil {
		return nil, err
	}

	v, ok := g.next()
	if !ok {
		if err := g.err(); err != nil {
			return nil, err
		}

		return starlark.None, nil
	}

	return v, nil
}

// generator produces the strings of a pattern as Starlark values:
// strings for string patterns and bytes for byte patterns.
type generator struct {
	it  enum.ByteIterator
	str *enum.UTF8Iter // only set for string patterns
}

func (g *generator) next() (starlark.Value, bool) {
	if g.str != nil {
		s, ok := g.str.Next()
		if !ok {
			return nil, false
		}

		return starlark.String(s), true
	}

	b, ok := g.it.Borrow()
	if !ok {
		return nil, false
	}

	return starlark.Bytes(b), true
}

func (g *generator) err() error {
	return g.it.Err()
}

// patternIterator implements starlark.Iterator.
type patternIterator struct {
	g *generator
}

func (it *patternIterator) Next(p *starlark.Value) bool {
	v, ok := it.g.next()
	if ok {
		*p = v
	}

	return ok
}

func (it *patternIterator) Done() {}
