package regex

import "github.com/pkg/errors"

var (
	// ErrTooManyStates is returned if the DFA exceeds Config.MaxStates.
	ErrTooManyStates = errors.New("regex: too many DFA states")

	// ErrUnsupported is returned for constructs the compiler cannot represent.
	ErrUnsupported = errors.New("regex: unsupported construct")

	// ErrUnsupportedFlags is returned for unknown or unsupported flags.
	ErrUnsupportedFlags = errors.New("regex: unsupported flags")

	// ErrRuneOutOfRange is returned if a byte pattern contains a character above U+00FF.
	ErrRuneOutOfRange = errors.New("regex: character out of range for bytes pattern")

	// ErrNoPatterns is returned if no pattern was given.
	ErrNoPatterns = errors.New("regex: no patterns")
)
