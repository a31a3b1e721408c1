package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRepr(t *testing.T) {
	tests := []struct {
		s        string
		isString bool
		expected string
	}{
		{"abc", true, `'abc'`},
		{"abc", false, `b'abc'`},
		{"it's", true, `"it's"`},
		{`it's "quoted"`, true, `'it\'s "quoted"'`},
		{"a\nb\t\\", true, `'a\nb\t\\'`},
		{"ä", true, `'ä'`},
		{"\xe4", false, `b'\xe4'`},
		{"\xff", true, `'\xff'`},
		{"\x00\x7f", true, `'\x00\x7f'`},
		{"\u2028", true, `'\u2028'`},
		{"😀", true, `'😀'`},
		{"\U000e0001", true, `'\U000e0001'`},
	}

	for _, tt := range tests {
		require.Equal(t, tt.expected, Repr(tt.s, tt.isString), "%q", tt.s)
	}
}

func TestReprLimit(t *testing.T) {
	require.Equal(t, `'äö'`, ReprLimit("äöü", true, 2))
	require.Equal(t, `b'\xc3\xa4'`, ReprLimit("äöü", false, 2))
	require.Equal(t, `''`, ReprLimit("abc", true, 0))
	require.Equal(t, `'abc'`, ReprLimit("abc", true, 10))
}
