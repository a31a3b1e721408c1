// Package regen provides a Starlark module, that generates the strings matched by a regular expression.
//
// The module is used like this:
//
//	p = regen.compile(r"[a-c]{2}|x+")
//	p.take(5)           # ["x", "aa", "ab", "ac", "ba"]
//	regen.generate(b"\xff|a", 2)
//
// String patterns produce strings, byte patterns produce bytes.
// Strings are generated in the order of an iterative deepening search, so for the DFA engine,
// shorter strings always come first.
package regen

import (
	"container/list"
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.starlark.net/starlark"

	"github.com/magnetde/starlark-regen/regex"
)

var zeroInt = starlark.MakeInt(0)

// SetContext sets the context of the thread. Enumerations started by builtins of the thread
// stop with the error of the context, once it is done.
// Thread.Cancel is not visible to builtins, so hosts, that cancel the thread, should cancel
// this context as well.
func SetContext(thread *starlark.Thread, ctx context.Context) {
	thread.SetLocal(contextKey, ctx)
}

// threadContext returns the context of the thread or the background context.
func threadContext(thread *starlark.Thread) context.Context {
	if ctx, ok := thread.Local(contextKey).(context.Context); ok {
		return ctx
	}

	return context.Background()
}

// Module is a module type used for the regen module.
// A new type is implemented instead of using the `starlarkstruct.Module` type,
// since the module contains a LRU cache for compiled patterns.
// The cache is implemented with a map and a linked list.
// When the cache exceeds the maximum size, the oldest used element is purged.
// The cache is not thread safe, so a module must not be shared between threads.
type Module struct {
	members starlark.StringDict
	config  regex.Config

	list  *list.List                 // Least recent used patterns
	cache map[cacheKey]*list.Element // Mapping of patterns to list elements
}

// cacheKey is a type, that is used for cache key, containing the pattern, the flags and the engine.
type cacheKey struct {
	pattern string
	isStr   bool
	flags   int
	engine  string
}

// Is necessary, because each list element needs to store the key in the map.
type cacheValue struct {
	pattern *Pattern
	key     cacheKey
}

// NewModule creates a new regen module with the default compiler configuration.
func NewModule() *Module {
	return NewModuleConfig(regex.DefaultConfig())
}

// NewModuleConfig creates a new regen module, that compiles patterns with the given configuration.
// The flags of the configuration are replaced by the flags of each pattern.
func NewModuleConfig(cfg regex.Config) *Module {
	members := starlark.StringDict{
		"I":          starlark.MakeInt(reFlagIgnoreCase),
		"IGNORECASE": starlark.MakeInt(reFlagIgnoreCase),
		"M":          starlark.MakeInt(reFlagMultiline),
		"MULTILINE":  starlark.MakeInt(reFlagMultiline),
		"S":          starlark.MakeInt(reFlagDotAll),
		"DOTALL":     starlark.MakeInt(reFlagDotAll),
		"NOFLAG":     zeroInt,

		"compile":  starlark.NewBuiltin("compile", regenCompile),
		"generate": starlark.NewBuiltin("generate", regenGenerate),
		"purge":    starlark.NewBuiltin("purge", regenPurge),
		"escape":   starlark.NewBuiltin("escape", regenEscape),
	}

	cfg.Flags = 0

	m := Module{
		members: members,
		config:  cfg,
		list:    list.New(),
		cache:   make(map[cacheKey]*list.Element),
	}

	return &m
}

// Check, if the type satisfies the interfaces.
var (
	_ starlark.Value    = (*Module)(nil)
	_ starlark.HasAttrs = (*Module)(nil)
)

func (m *Module) Freeze()               { m.members.Freeze() }
func (m *Module) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable: %s", m.Type()) }
func (m *Module) String() string        { return "<module regen>" }
func (m *Module) Truth() starlark.Bool  { return true }
func (m *Module) Type() string          { return "module" }

func (m *Module) Attr(name string) (starlark.Value, error) {
	if v, ok := m.members[name]; ok {
		if b, ok := v.(*starlark.Builtin); ok {
			return b.BindReceiver(m), nil
		}

		return v, nil
	}

	return nil, nil
}
func (m *Module) AttrNames() []string { return m.members.Keys() }

// compile compiles a pattern. If the pattern is already in the cache,
// the compiled pattern is returned from the cache.
// Else, the pattern is compiled and then added to the cache.
// If the cache exceeds a certain size (`maxPatternCacheSize`), the oldest element is purged from the cache.
func (m *Module) compile(pattern strOrBytes, flags int, engine string) (*Pattern, error) {
	key := cacheKey{
		pattern.value,
		pattern.isString,
		flags,
		engine,
	}

	if e, ok := m.cache[key]; ok { // pattern found in the cache
		m.list.MoveToFront(e) // "refresh" the pattern in the linked list
		return e.Value.(*cacheValue).pattern, nil
	}

	p, err := newPattern(m.config, pattern, flags, engine)
	if err != nil {
		return nil, err
	}

	// purge elements, if the size exceeds a certain threshold
	if m.list.Len() >= maxPatternCacheSize {
		last := m.list.Back() // determine the oldest element

		delete(m.cache, last.Value.(*cacheValue).key)
		m.list.Remove(last)
	}

	v := &cacheValue{
		pattern: p,
		key:     key,
	}

	m.cache[key] = m.list.PushFront(v)

	return p, nil
}

// purge clears the pattern cache.
func (m *Module) purge() {
	m.list.Init()
	clear(m.cache)
}

// regenCompile compiles a pattern into a pattern object, which can be used to generate strings
// using its `take` and `first` methods, or by iterating over it.
// Because `generate` caches compiled patterns too, this function is only necessary, if the strings
// should be generated lazily or the number of patterns exceeds the maximum cache size.
func regenCompile(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern patternParam
		flags   int
		engine  string
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "flags?", &flags, "engine?", &engine); err != nil {
		return nil, err
	}

	return compilePattern(b, pattern, flags, engine)
}

// regenGenerate returns a list of the first `n` strings matched by the pattern.
// The list is shorter, if the pattern matches less than `n` strings.
func regenGenerate(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern patternParam
		n       int
		flags   int
		engine  string
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "n", &n, "flags?", &flags, "engine?", &engine); err != nil {
		return nil, err
	}

	p, err := compilePattern(b, pattern, flags, engine)
	if err != nil {
		return nil, err
	}

	return p.take(threadContext(thread), n)
}

// regenPurge clears the pattern cache.
func regenPurge(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}

	m := b.Receiver().(*Module)
	m.purge()

	return starlark.None, nil
}

// regenEscape escapes all metacharacters of the pattern, so the result only matches the pattern itself.
func regenEscape(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pattern strOrBytes
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern); err != nil {
		return nil, err
	}

	escaped := escapePattern(pattern.value)
	return pattern.asType(escaped), nil
}

// compilePattern compiles a pattern using the cache of the module.
// The builtin receiver of the first parameter must be of type `*Module`.
// See also `Module.compile`.
func compilePattern(b *starlark.Builtin, p patternParam, flags int, engine string) (*Pattern, error) {
	if p.compiled != nil {
		if flags != 0 || engine != "" {
			return nil, errors.New("cannot process flags or engine argument with a compiled pattern")
		}

		return p.compiled, nil
	}

	if engine == "" {
		engine = engineDFA
	}

	return b.Receiver().(*Module).compile(p.raw, flags, engine)
}

// patternParam is a Starlark type, representing the possible types of the pattern parameter.
type patternParam struct {
	compiled *Pattern
	raw      strOrBytes
}

type strOrBytes struct {
	value    string
	isString bool
}

var (
	_ starlark.Unpacker = (*strOrBytes)(nil)
	_ starlark.Unpacker = (*patternParam)(nil)
)

func (p *patternParam) Unpack(v starlark.Value) error {
	if c, ok := v.(*Pattern); ok {
		p.compiled = c
		return nil
	}

	err := p.raw.Unpack(v)
	if err != nil {
		return errors.New("first argument must be string, bytes or compiled pattern")
	}

	return nil
}

func (s *strOrBytes) Unpack(v starlark.Value) error {
	switch t := v.(type) {
	case starlark.String:
		s.value = string(t)
		s.isString = true
	case starlark.Bytes:
		s.value = string(t)
		s.isString = false
	default:
		return fmt.Errorf("got %s, want str or bytes", v.Type())
	}

	return nil
}

func (s *strOrBytes) asType(v string) starlark.Value {
	if s.isString {
		return starlark.String(v)
	}

	return starlark.Bytes(v)
}
