package enum

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/magnetde/starlark-regen/automaton"
	"github.com/magnetde/starlark-regen/regex"
)

func TestDFAFinite(t *testing.T) {
	it, err := CompileDFA(`[0-1]{4}-[0-1]{2}-[0-1]{2}`)
	require.NoError(t, err)

	res := collect(t, it)
	require.Len(t, res, 256)

	seen := make(map[string]bool)
	for _, s := range res {
		require.Len(t, s, 10)
		require.False(t, seen[s], "duplicate %q", s)
		seen[s] = true
	}

	// exhausted for good
	for i := 0; i < 3; i++ {
		_, ok := it.Next()
		require.False(t, ok)
		_, ok = it.Borrow()
		require.False(t, ok)
	}
}

func TestDFARepeated(t *testing.T) {
	it, err := CompileDFA(`a+(0|1)`)
	require.NoError(t, err)

	var expected []string
	for i := 1; i <= 10; i++ {
		prefix := string(bytes.Repeat([]byte("a"), i))
		expected = append(expected, prefix+"0", prefix+"1")
	}

	require.Equal(t, expected, strs(Take(it, 20)))
}

func TestDFAComplex(t *testing.T) {
	it, err := CompileDFA(`(a+|b+)*`)
	require.NoError(t, err)

	require.Equal(t,
		[]string{"", "a", "b", "aa", "ab", "ba", "bb", "aaa"},
		strs(Take(it, 8)),
	)
}

func TestDFASet(t *testing.T) {
	it, err := CompileDFA(`foo|(bar){1,2}|quux`)
	require.NoError(t, err)

	require.Equal(t, []string{"bar", "foo", "quux", "barbar"}, collect(t, it))
}

func TestDFAMany(t *testing.T) {
	it, err := CompileDFA(`[0-1]+`, `^[a-b]+`)
	require.NoError(t, err)

	require.Equal(t,
		[]string{"0", "1", "a", "b", "00", "01", "10", "11", "aa", "ab", "ba", "bb"},
		strs(Take(it, 12)),
	)
}

func TestDFAEmail(t *testing.T) {
	it, err := CompileDFA("[a-zA-Z0-9.!#$%&’*+/=?^_`{|}~-]+@[a-zA-Z0-9-]+(?:\\.[a-zA-Z0-9-]+)*")
	require.NoError(t, err)

	for i := 0; i < 100_000; i++ {
		_, ok := it.Borrow()
		require.True(t, ok)
	}

	s, ok := it.Borrow()
	require.True(t, ok)
	require.Equal(t, "0@hI", string(s))
}

func TestDFAOrder(t *testing.T) {
	for _, p := range oraclePatterns {
		it, err := CompileDFA(p)
		require.NoError(t, err)

		res := Take(it, 500)
		seen := make(map[string]bool)

		for i, s := range res {
			require.False(t, seen[string(s)], "%q: duplicate %q", p, s)
			seen[string(s)] = true

			if i == 0 {
				continue
			}

			prev := res[i-1]
			require.GreaterOrEqual(t, len(s), len(prev), "%q: length decreased", p)
			if len(s) == len(prev) {
				require.Negative(t, bytes.Compare(prev, s), "%q: %q before %q", p, prev, s)
			}
		}
	}
}

func TestDFAConfigsAgree(t *testing.T) {
	configs := map[string]regex.Config{
		"default":    regex.DefaultConfig(),
		"singletons": {ByteClasses: false},
		"minimized":  {ByteClasses: true, Minimize: true},
	}

	for _, p := range oraclePatterns {
		var expected []string
		for name, cfg := range configs {
			it, err := CompileDFAConfig(cfg, p)
			require.NoError(t, err, name)

			res := strs(Take(it, 300))
			if expected == nil {
				expected = res
				continue
			}
			require.Equal(t, expected, res, "%q with config %s", p, name)
		}
	}
}

func TestDFAAssertions(t *testing.T) {
	tests := []struct {
		pattern  string
		expected []string
	}{
		{`^abc$`, []string{"abc"}},
		{`a$b`, nil},
		{`a^b`, nil},
		{`\bfoo\b`, []string{"foo"}},
		{`a\bb`, nil},
		{`a\Bb`, []string{"ab"}},
		{`(?m)a$\n^b`, []string{"a\nb"}},
		{`(?m)^a$`, []string{"a"}},
		{`(a|\n)\b(b|-)`, []string{"\nb", "a-"}},
	}

	for _, tt := range tests {
		it, err := CompileDFA(tt.pattern)
		require.NoError(t, err, tt.pattern)
		require.Equal(t, tt.expected, collect(t, it), tt.pattern)
	}
}

func TestDFAEmptyLanguage(t *testing.T) {
	it, err := CompileDFA(`[^\x00-\x{10FFFF}]`)
	require.NoError(t, err)

	require.Empty(t, collect(t, it))
}

func TestDFAEmptyString(t *testing.T) {
	it, err := CompileDFA(``)
	require.NoError(t, err)

	require.Equal(t, []string{""}, collect(t, it))
}

func TestDFABytes(t *testing.T) {
	cfg := regex.DefaultConfig()
	cfg.Flags = regex.FlagBytes

	it, err := CompileDFAConfig(cfg, "[\xfe-\xff]a")
	require.NoError(t, err)
	require.False(t, it.IsUTF8())

	require.Equal(t, []string{"\xfea", "\xffa"}, collect(t, it))
}

// fakeDFA accepts exactly the strings in `accept`. States are the indices of the
// prefixes of the accepted strings, offset by 2.
type fakeDFA struct {
	prefixes []string
	accept   map[string]bool
	utf8     bool
}

func newFakeDFA(utf8 bool, accept ...string) *fakeDFA {
	d := &fakeDFA{accept: make(map[string]bool), utf8: utf8}

	seen := make(map[string]bool)
	for _, s := range accept {
		d.accept[s] = true
		for i := 0; i <= len(s); i++ {
			if p := s[:i]; !seen[p] {
				seen[p] = true
				d.prefixes = append(d.prefixes, p)
			}
		}
	}

	return d
}

func (d *fakeDFA) find(p string) automaton.StateID {
	for i, q := range d.prefixes {
		if p == q {
			return automaton.StateID(i + 2)
		}
	}
	return 0
}

func (d *fakeDFA) StartAnchored() automaton.StateID {
	return d.find("")
}

func (d *fakeDFA) NextState(s automaton.StateID, b byte) automaton.StateID {
	if s < 2 {
		return 0
	}
	return d.find(d.prefixes[s-2] + string([]byte{b}))
}

func (d *fakeDFA) NextEOIState(s automaton.StateID) automaton.StateID {
	if s >= 2 && d.accept[d.prefixes[s-2]] {
		return 1
	}
	return 0
}

func (d *fakeDFA) IsDeadState(s automaton.StateID) bool {
	return s == 0
}

func (d *fakeDFA) IsMatchState(s automaton.StateID) bool {
	return s == 1
}

func (d *fakeDFA) ByteClasses() automaton.ByteClasses {
	return automaton.SingletonClasses()
}

func (d *fakeDFA) IsUTF8() bool {
	return d.utf8
}

func TestDFACustomAutomaton(t *testing.T) {
	it := NewDFA(newFakeDFA(false, "zz", "b", "", "ab", "\xff"))

	require.Equal(t, []string{"", "b", "\xff", "ab", "zz"}, collect(t, it))
	require.False(t, it.IsUTF8())
	require.NoError(t, it.Err())
}
