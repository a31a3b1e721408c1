package enum

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/magnetde/starlark-regen/regex"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// strs converts the results of an enumerator to strings for readable failure messages.
func strs(res [][]byte) []string {
	s := make([]string, len(res))
	for i, b := range res {
		s[i] = string(b)
	}
	return s
}

// collect returns all strings of a finite enumeration.
func collect(t *testing.T, it ByteIterator) []string {
	t.Helper()

	var res []string
	for i := 0; ; i++ {
		require.Less(t, i, 1_000_000, "enumeration does not terminate")

		b, ok := it.Next()
		if !ok {
			break
		}
		res = append(res, string(b))
	}

	require.NoError(t, it.Err())
	return res
}

// matcher returns a function, that checks whether a string is fully matched by the pattern.
// The check uses an independent regex engine.
func matcher(t *testing.T, pattern string) func(s []byte) bool {
	t.Helper()

	re, err := regexp2.Compile(`\A(?:`+pattern+`)\z`, regexp2.RE2)
	require.NoError(t, err)

	return func(s []byte) bool {
		ok, err := re.MatchString(string(s))
		require.NoError(t, err)
		return ok
	}
}

var oraclePatterns = []string{
	`a+(0|1)`,
	`foo|(bar){1,2}|quux`,
	`[0-1]{4}-[0-1]{2}`,
	`(a+|b+)*`,
	`x[^a-y]?z`,
	`(?i)ab?c`,
	`[acegikmoqs]x*`,
	`(foo|foobar)(baz)?`,
	`\d{2,3}`,
	`ä+ö?`,
}

func TestMatchesOracle(t *testing.T) {
	for _, p := range oraclePatterns {
		match := matcher(t, p)

		dfa, err := CompileDFA(p)
		require.NoError(t, err, p)
		for _, s := range Take(dfa, 200) {
			require.True(t, match(s), "dfa %q produced %q", p, s)
		}

		nfa, err := CompileNFA(p)
		require.NoError(t, err, p)
		for _, s := range Take(nfa, 200) {
			require.True(t, match(s), "nfa %q produced %q", p, s)
		}
	}
}

func TestBorrowEqualsNext(t *testing.T) {
	const n = 300

	for _, p := range oraclePatterns {
		a, err := CompileDFA(p)
		require.NoError(t, err)
		b, err := CompileDFA(p)
		require.NoError(t, err)
		requireSameSequence(t, a, b, n)

		c, err := CompileNFA(p)
		require.NoError(t, err)
		d, err := CompileNFA(p)
		require.NoError(t, err)
		requireSameSequence(t, c, d, n)
	}
}

// requireSameSequence compares the first `n` results of `owned` pulled with Next
// against the results of `borrowed` pulled with Borrow.
func requireSameSequence(t *testing.T, owned, borrowed ByteIterator, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		x, ok1 := owned.Next()
		y, ok2 := borrowed.Borrow()
		require.Equal(t, ok1, ok2)
		if !ok1 {
			return
		}

		y = bytes.Clone(y)
		require.Equal(t, string(x), string(y), "item %d", i)
	}
}

func TestTake(t *testing.T) {
	it, err := CompileDFA(`a|b`)
	require.NoError(t, err)

	require.Equal(t, []string{"a"}, strs(Take(it, 1)))
	require.Equal(t, []string{"b"}, strs(Take(it, 5)))
	require.Empty(t, Take(it, 5))
}

func TestAll(t *testing.T) {
	it, err := CompileNFA(`a+`)
	require.NoError(t, err)

	var res []string
	for s := range it.All() {
		res = append(res, string(s))
		if len(res) == 3 {
			break
		}
	}
	require.Equal(t, []string{"a", "aa", "aaa"}, res)

	// The iterator continues where the loop stopped.
	s, ok := it.Next()
	require.True(t, ok)
	require.Equal(t, "aaaa", string(s))
}

func TestCompileErrors(t *testing.T) {
	_, err := CompileDFA(`(`)
	require.Error(t, err)

	_, err = CompileNFA(`a`, `[`)
	require.Error(t, err)

	_, err = CompileDFA()
	require.ErrorIs(t, err, regex.ErrNoPatterns)

	cfg := regex.DefaultConfig()
	cfg.MaxStates = 3
	_, err = CompileDFAConfig(cfg, `[ab]{10}`)
	require.ErrorIs(t, err, regex.ErrTooManyStates)
}

func TestContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d, err := CompileDFA(`a+`)
	require.NoError(t, err)
	d.SetContext(ctx)

	_, ok := d.Next()
	require.False(t, ok)
	require.ErrorIs(t, d.Err(), context.Canceled)

	// Every prefix of a* is extended, but the assertion never holds after a byte.
	n, err := CompileNFA(`a*b^`)
	require.NoError(t, err)

	u, err := NewUTF8(n)
	require.NoError(t, err)
	u.SetContext(ctx)

	_, ok = u.Next()
	require.False(t, ok)
	require.ErrorIs(t, u.Err(), context.Canceled)

	_, ok = u.Next()
	require.False(t, ok)
}

func TestContextTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	it, err := CompileNFA(`(a|b)*c^`)
	require.NoError(t, err)
	it.SetContext(ctx)

	_, ok := it.Next()
	require.False(t, ok)
	require.ErrorIs(t, it.Err(), context.DeadlineExceeded)
}
