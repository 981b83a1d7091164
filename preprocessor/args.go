package preprocessor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var integerPattern = regexp.MustCompile(`^-?\s*[0-9]+(?:[_0-9]*[0-9])?$`)

// SplitArgs splits args on whitespace like a shell does. Double quoted
// strings are kept as one argument with their escape sequences decoded, and
// a backslash outside of strings escapes the next character:
//
//	foo -bar "some string" escaped\ space  =>  [foo -bar "some string" "escaped space"]
func SplitArgs(args string) ([]string, error) {
	var (
		result  []string
		current strings.Builder
		started bool
	)
	flush := func() {
		if started {
			result = append(result, current.String())
			current.Reset()
			started = false
		}
	}

	for i := 0; i < len(args); {
		r, size := utf8.DecodeRuneInString(args[i:])
		switch {
		case r == '\\':
			i += size
			if i < len(args) {
				next, nextSize := utf8.DecodeRuneInString(args[i:])
				current.WriteRune(next)
				i += nextSize
			}
			started = true
			continue
		case r == '"':
			end, ok := closingQuote(args, i+1)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnterminatedString, args[i:])
			}
			current.WriteString(Unescape(args[i+1 : end]))
			started = true
			i = end + 1
			continue
		case unicode.IsSpace(r):
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
		i += size
	}
	flush()

	return result, nil
}

// closingQuote returns the index of the first unescaped '"' at or after from.
func closingQuote(s string, from int) (int, bool) {
	for i := from; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i, true
		}
	}
	return -1, false
}

// SplitArgs splits args and reports unterminated strings as an
// invalid-argument error of the current context.
func (p *Preprocessor) SplitArgs(args string) ([]string, error) {
	split, err := SplitArgs(args)
	if err != nil {
		return nil, p.SendError(ErrInvalidArgument, "unterminated string \"... in arguments.")
	}
	return split, nil
}

var simpleEscapes = map[byte]string{
	'n':  "\n",
	't':  "\t",
	'r':  "\r",
	'a':  "\a",
	'b':  "\b",
	'f':  "\f",
	'v':  "\v",
	'0':  "\x00",
	'\\': "\\",
	'"':  "\"",
	'\'': "'",
}

// Unescape decodes backslash escape sequences: \n \t \r \a \b \f \v \0 \\
// \" \' \xHH \uHHHH and \UHHHHHHHH. Unknown sequences are kept as written.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		c := s[i+1]
		if repl, ok := simpleEscapes[c]; ok {
			b.WriteString(repl)
			i++
			continue
		}

		width := 0
		switch c {
		case 'x':
			width = 2
		case 'u':
			width = 4
		case 'U':
			width = 8
		}
		if width > 0 && i+2+width <= len(s) {
			if v, err := strconv.ParseUint(s[i+2:i+2+width], 16, 32); err == nil {
				if c == 'x' {
					b.WriteByte(byte(v))
				} else {
					b.WriteRune(rune(v))
				}
				i += 1 + width
				continue
			}
		}
		b.WriteByte('\\')
	}

	return b.String()
}

// IsInteger reports whether s (surrounding space ignored) is an integer
// literal such as "12", "-3" or "1_000".
func IsInteger(s string) bool {
	return integerPattern.MatchString(strings.TrimSpace(s))
}

// ParseInteger converts a literal accepted by IsInteger.
func ParseInteger(s string) (int, error) {
	s = strings.TrimSpace(s)
	if !integerPattern.MatchString(s) {
		return 0, fmt.Errorf("%w: not an integer %q", ErrInvalidArgument, s)
	}
	s = strings.NewReplacer(" ", "", "\t", "", "\n", "", "_", "").Replace(s)
	return strconv.Atoi(s)
}
