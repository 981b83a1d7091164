package conditions

import (
	"strings"
	"unicode"
)

// Lex splits a condition into tokens: words, quoted strings (quotes kept),
// parentheses and the comparison operators "==" and "!=". Whitespace only
// separates tokens.
//
//	allo=(d))not(b and c)  =>  [allo= ( d ) ) not ( b and c )]
func Lex(s string) []string {
	var (
		tokens  []string
		current strings.Builder
	)
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c < 0x80 && unicode.IsSpace(rune(c)):
			flush()
			i++
		case c == '(' || c == ')':
			flush()
			tokens = append(tokens, string(c))
			i++
		case strings.HasPrefix(s[i:], "==") || strings.HasPrefix(s[i:], "!="):
			flush()
			tokens = append(tokens, s[i:i+2])
			i += 2
		case c == '"':
			flush()
			end := closingQuote(s, i+1)
			tokens = append(tokens, s[i:end])
			i = end
		default:
			current.WriteByte(c)
			i++
		}
	}
	flush()

	return tokens
}

// closingQuote returns the index just after the string starting before
// from, or len(s) when it is not terminated.
func closingQuote(s string, from int) int {
	for i := from; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return len(s)
}
