package tokenizer

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrEmptyDelimiter = errors.New("delimiter must not be empty")
	ErrSameDelimiters = errors.New("begin and end delimiters must differ")
)

// Kind tells whether a token opens or closes a directive
type Kind int

const (
	OPEN Kind = iota
	CLOSE
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case OPEN:
		return "OPEN"
	case CLOSE:
		return "CLOSE"
	default:
		return "UNKNOWN"
	}
}

// Token is one occurrence of a delimiter in the parsed string.
// Start and End are byte indexes (End exclusive).
type Token struct {
	Start int
	End   int
	Kind  Kind
}

// String returns the string representation of Token
func (t Token) String() string {
	return fmt.Sprintf("%s[%d:%d]", t.Kind, t.Start, t.End)
}

// Shift returns the token moved by delta bytes
func (t Token) Shift(delta int) Token {
	t.Start += delta
	t.End += delta
	return t
}
