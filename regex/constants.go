package regex

import "regexp/syntax"

// Possible flags for the flag parameter.
// The values are the ones of Python's `re` module, see also https://docs.python.org/3/library/re.html#flags.
// Note, that the flag `FlagBytes` is specific for this implementation: if set, the pattern is interpreted
// as a Latin-1 byte pattern instead of an UTF-8 pattern.
const (
	_ uint32 = 1 << iota // TEMPLATE; unused
	FlagIgnoreCase
	_ // LOCALE; unsupported
	FlagMultiline
	FlagDotAll
	_ // UNICODE; implied for string patterns
	_ // VERBOSE; unsupported
	_ // DEBUG; unsupported
	_ // ASCII; unsupported
	FlagBytes

	// Flags supported by the compiler.
	supportedFlags = FlagIgnoreCase | FlagMultiline | FlagDotAll | FlagBytes
)

const (
	// defaultMaxStates is the default limit for the number of DFA states.
	defaultMaxStates = 10000

	// denseThreshold is the number of byte ranges above which a state is compiled into a dense state.
	denseThreshold = 8

	// maxLatin1 is the largest rune, that can be represented in a byte pattern.
	maxLatin1 = 0xff
)

// syntaxFlags converts the flags into the parse flags of package `regexp/syntax`.
func syntaxFlags(flags uint32) syntax.Flags {
	f := syntax.Perl
	if flags&FlagIgnoreCase != 0 {
		f |= syntax.FoldCase
	}
	if flags&FlagMultiline != 0 {
		f &^= syntax.OneLine
	}
	if flags&FlagDotAll != 0 {
		f |= syntax.DotNL
	}
	return f
}
