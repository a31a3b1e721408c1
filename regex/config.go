package regex

import "log/slog"

// Config holds the options of the automaton compiler.
type Config struct {
	// Flags is a combination of FlagIgnoreCase, FlagMultiline, FlagDotAll and FlagBytes.
	Flags uint32

	// MaxStates is the maximum number of DFA states. A value <= 0 means no limit.
	MaxStates int

	// ByteClasses enables byte equivalence classes for the DFA. If disabled,
	// every byte value is its own class.
	ByteClasses bool

	// Minimize merges equivalent DFA states after construction.
	Minimize bool

	// Logger receives debug output about the compiled automata. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxStates:   defaultMaxStates,
		ByteClasses: true,
	}
}

// logger returns the configured logger or the default logger.
func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// isBytes reports whether patterns are compiled as Latin-1 byte patterns.
func (c *Config) isBytes() bool {
	return c.Flags&FlagBytes != 0
}

// slogPatterns returns the logging attribute for a list of patterns.
func slogPatterns(patterns []string) slog.Attr {
	return slog.Any("patterns", patterns)
}
