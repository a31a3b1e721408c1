package regen

import "github.com/magnetde/starlark-regen/regex"

const (
	// Maximum cache size; 32 should be more than enough, because Starlark scripts stay relatively small.
	maxPatternCacheSize = 32

	// Maximum number of pattern characters in the representation of a compiled pattern.
	maxReprLength = 200

	// Thread-local key of the context, that stops enumerations.
	contextKey = "regen.context"
)

// Possible flags for the flag parameter. The values are shared with the `regex` package.
const (
	reFlagIgnoreCase = int(regex.FlagIgnoreCase)
	reFlagMultiline  = int(regex.FlagMultiline)
	reFlagDotAll     = int(regex.FlagDotAll)

	supportedFlags = reFlagIgnoreCase | reFlagMultiline | reFlagDotAll
)

// flagNames is ordered by flag value.
var flagNames = []struct {
	flag int
	name string
}{
	{reFlagIgnoreCase, "IGNORECASE"},
	{reFlagMultiline, "MULTILINE"},
	{reFlagDotAll, "DOTALL"},
}

// Automata, that can be selected with the `engine` parameter.
const (
	engineDFA = "dfa"
	engineNFA = "nfa"
)
