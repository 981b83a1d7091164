package tokenizer

import (
	"fmt"
	"iter"
	"strings"
)

// Default delimiters
const (
	DefaultBegin    = "{% "
	DefaultEnd      = " %}"
	DefaultEndBlock = "end"
)

// TokenIterator yields the delimiter tokens of a string in scanning order.
type TokenIterator iter.Seq[Token]

// Delimiters are the literal strings that surround directives.
// EndBlock is the prefix of the tag closing a block: with the defaults a
// "repeat" block is closed by "{% endrepeat %}".
type Delimiters struct {
	Begin    string
	End      string
	EndBlock string
}

// DefaultDelimiters returns "{% ", " %}" and "end".
func DefaultDelimiters() Delimiters {
	return Delimiters{
		Begin:    DefaultBegin,
		End:      DefaultEnd,
		EndBlock: DefaultEndBlock,
	}
}

// With returns a copy using other begin and end tokens. Empty values keep
// the current ones.
func (d Delimiters) With(begin, end string) Delimiters {
	if begin != "" {
		d.Begin = begin
	}
	if end != "" {
		d.End = end
	}
	return d
}

// Validate checks that the delimiters can be told apart.
func (d Delimiters) Validate() error {
	if d.Begin == "" || d.End == "" {
		return fmt.Errorf("%w: begin=%q end=%q", ErrEmptyDelimiter, d.Begin, d.End)
	}
	if d.Begin == d.End {
		return fmt.Errorf("%w: %q", ErrSameDelimiters, d.Begin)
	}
	return nil
}

// Tokens returns an iterator over every occurrence of the begin and end
// delimiters, in order of appearance. When an OPEN and a CLOSE token start
// at the same index, the CLOSE token comes first.
func (d Delimiters) Tokens(s string) TokenIterator {
	return func(yield func(Token) bool) {
		opens := occurrences(s, d.Begin, OPEN)
		closes := occurrences(s, d.End, CLOSE)

		nextOpen, okOpen := opens()
		nextClose, okClose := closes()
		for okOpen || okClose {
			var token Token
			if okClose && (!okOpen || nextClose.Start <= nextOpen.Start) {
				token = nextClose
				nextClose, okClose = closes()
			} else {
				token = nextOpen
				nextOpen, okOpen = opens()
			}
			if !yield(token) {
				return
			}
		}
	}
}

// Find returns all tokens of s as a slice.
func (d Delimiters) Find(s string) []Token {
	tokens := make([]Token, 0, 16)
	for token := range d.Tokens(s) {
		tokens = append(tokens, token)
	}
	return tokens
}

// occurrences returns a generator of the non-overlapping literal
// occurrences of delim in s.
func occurrences(s, delim string, kind Kind) func() (Token, bool) {
	pos := 0
	return func() (Token, bool) {
		if delim == "" || pos > len(s) {
			return Token{}, false
		}
		i := strings.Index(s[pos:], delim)
		if i == -1 {
			pos = len(s) + 1
			return Token{}, false
		}
		start := pos + i
		pos = start + len(delim)
		return Token{Start: start, End: pos, Kind: kind}, true
	}
}

// FindMatchingPair returns the index of the first OPEN token directly
// followed by a CLOSE token, that is the first innermost directive.
// It returns -1 when there is no such pair.
func FindMatchingPair(tokens []Token) int {
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i].Kind == OPEN && tokens[i+1].Kind == CLOSE {
			return i
		}
	}
	return -1
}
