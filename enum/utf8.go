package enum

import (
	"context"
	"fmt"
	"iter"
	"unicode/utf8"
)

// UTF8Iter wraps a byte enumerator and produces strings.
// It can only be created for automata, that exclusively match valid UTF-8.
type UTF8Iter struct {
	it ByteIterator
}

// NewUTF8 wraps the enumerator. It fails with ErrInvalidForUTF8, if the automaton of the enumerator
// may match invalid UTF-8.
func NewUTF8(it ByteIterator) (*UTF8Iter, error) {
	if !it.IsUTF8() {
		return nil, ErrInvalidForUTF8
	}
	return &UTF8Iter{it: it}, nil
}

// Next returns the next matching string. The second result is false, if all strings were enumerated.
func (u *UTF8Iter) Next() (string, bool) {
	b, ok := u.Borrow()
	if !ok {
		return "", false
	}
	return string(b), true
}

// Borrow returns the next matching string as a slice of an internal buffer, that is only valid until
// the next call. The slice is always valid UTF-8.
func (u *UTF8Iter) Borrow() ([]byte, bool) {
	b, ok := u.it.Borrow()
	if !ok {
		return nil, false
	}

	if !utf8.Valid(b) {
		// The automaton claimed to only match UTF-8.
		panic(fmt.Sprintf("enum: automaton produced invalid UTF-8 %q", b))
	}

	return b, true
}

// All returns an iterator over the remaining strings.
func (u *UTF8Iter) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			s, ok := u.Next()
			if !ok || !yield(s) {
				return
			}
		}
	}
}

// SetContext sets the context of the wrapped enumerator.
func (u *UTF8Iter) SetContext(ctx context.Context) {
	u.it.SetContext(ctx)
}

// Err returns the error of the wrapped enumerator.
func (u *UTF8Iter) Err() error {
	return u.it.Err()
}
