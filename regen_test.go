package regen

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarktest"
	"go.starlark.net/syntax"

	"github.com/magnetde/starlark-regen/regex"
)

//go:embed regen_test.star
var regenScript string

// TestRegen runs the Starlark tests of the `regen_test.star` file.
func TestRegen(t *testing.T) {
	assert, err := starlarktest.LoadAssertModule()
	require.NoError(t, err)

	predeclared := starlark.StringDict{
		"regen":  NewModule(),
		"assert": assert["assert"],
	}

	helpers := map[string]func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error){
		"same": sameHelper,
	}

	for name, fn := range helpers {
		predeclared[name] = starlark.NewBuiltin(name, fn)
	}

	opts := syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
		Recursion:       true,
	}

	_, prog, err := starlark.SourceProgramOptions(&opts, "regen_test.star", regenScript, predeclared.Has)
	if err != nil {
		t.Fatal(err)
	}

	thread := &starlark.Thread{
		Name: "test regen",
		Print: func(thread *starlark.Thread, msg string) {
			t.Log(msg)
		},
	}
	starlarktest.SetReporter(thread, t)

	_, err = prog.Init(thread, predeclared)
	if err != nil {
		if e, ok := err.(*starlark.EvalError); ok {
			t.Fatal(e.Backtrace())
		}

		t.Fatal(err)
	}
}

func sameHelper(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var x, y starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &x, &y); err != nil {
		return nil, err
	}

	return starlark.Bool(x == y), nil
}

func TestEscapePattern(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{``, ``},
		{`abc`, `abc`},
		{`a.b`, `a\.b`},
		{`\.+*?()|[]{}^$`, `\\\.\+\*\?\(\)\|\[\]\{\}\^\$`},
		{"a\tb\n", `a\tb\n`},
		{"\x00\x7f\v\f\r", `\x00\x7f\v\f\r`},
		{"-&~# äö", "-&~# äö"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.out, escapePattern(tt.in), "%q", tt.in)
	}
}

func TestCache(t *testing.T) {
	m := NewModule()

	first, err := m.compile(strOrBytes{"a", true}, 0, engineDFA)
	require.NoError(t, err)

	again, err := m.compile(strOrBytes{"a", true}, 0, engineDFA)
	require.NoError(t, err)
	require.Same(t, first, again)

	for i := 0; i < maxPatternCacheSize; i++ {
		_, err := m.compile(strOrBytes{fmt.Sprintf("x{%d}", i), true}, 0, engineDFA)
		require.NoError(t, err)
	}

	require.Equal(t, maxPatternCacheSize, m.list.Len())
	require.Len(t, m.cache, maxPatternCacheSize)

	// "a" was the least recently used pattern.
	again, err = m.compile(strOrBytes{"a", true}, 0, engineDFA)
	require.NoError(t, err)
	require.NotSame(t, first, again)
	require.True(t, patternEquals(first, again))

	// Failed compilations are not cached.
	_, err = m.compile(strOrBytes{"(", true}, 0, engineDFA)
	require.Error(t, err)
	require.Equal(t, maxPatternCacheSize, m.list.Len())

	m.purge()
	require.Zero(t, m.list.Len())
	require.Empty(t, m.cache)
}

func TestModuleConfig(t *testing.T) {
	var buf bytes.Buffer

	cfg := regex.DefaultConfig()
	cfg.MaxStates = 4
	cfg.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m := NewModuleConfig(cfg)

	_, err := m.compile(strOrBytes{"[a-z]{8}", true}, 0, engineDFA)
	require.ErrorIs(t, err, regex.ErrTooManyStates)

	// The NFA is not limited.
	p, err := m.compile(strOrBytes{"[a-z]{8}", true}, 0, engineNFA)
	require.NoError(t, err)
	require.Nil(t, p.dfa)
	require.Contains(t, buf.String(), "compiled NFA")
}

func TestPatternTake(t *testing.T) {
	m := NewModule()

	p, err := m.compile(strOrBytes{"[ab]{2}", false}, 0, engineDFA)
	require.NoError(t, err)
	require.True(t, p.finite)

	v, err := p.take(context.Background(), 10)
	require.NoError(t, err)

	l := v.(*starlark.List)
	require.Equal(t, 4, l.Len())
	require.Equal(t, starlark.Bytes("aa"), l.Index(0))
	require.Equal(t, starlark.Bytes("bb"), l.Index(3))
}

func TestContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	thread := &starlark.Thread{Name: "test context"}
	SetContext(thread, ctx)

	m := NewModule()
	generate, err := m.Attr("generate")
	require.NoError(t, err)

	args := starlark.Tuple{starlark.String("a*"), starlark.MakeInt(3)}
	kwargs := []starlark.Tuple{{starlark.String("engine"), starlark.String("nfa")}}

	v, err := starlark.Call(thread, generate, args, kwargs)
	require.NoError(t, err)
	require.Equal(t, 3, v.(*starlark.List).Len())

	cancel()

	// The assertion never holds after a byte, so no string is ever found.
	args[0] = starlark.String("a*b^")
	_, err = starlark.Call(thread, generate, args, kwargs)
	require.ErrorIs(t, err, context.Canceled)

	p, err := m.compile(strOrBytes{"a*b^", true}, 0, engineNFA)
	require.NoError(t, err)

	first, err := p.Attr("first")
	require.NoError(t, err)
	_, err = starlark.Call(thread, first, nil, nil)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, context.Background(), threadContext(&starlark.Thread{}))
}
