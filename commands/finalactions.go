package commands

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/shibukawa/mlpproc/location"
	"github.com/shibukawa/mlpproc/preprocessor"
)

var (
	emptyLinesPattern         = regexp2.MustCompile(`\n\s*\n`, regexp2.None)
	leadingWhitespacePattern  = regexp2.MustCompile(`^[ \t]+`, regexp2.Multiline)
	trailingWhitespacePattern = regexp2.MustCompile(`[ \t]+$`, regexp2.Multiline)

	// \1 style back references of the replace command
	backReference = regexp.MustCompile(`\\([0-9]+)`)
)

// finalActionCommand builds a command that takes no argument and queues
// action for the current block.
func finalActionCommand(name string, action preprocessor.FinalAction) preprocessor.CommandFunc {
	return func(p *preprocessor.Preprocessor, _ location.Position, args string) (string, error) {
		if err := noArguments(p, name, args); err != nil {
			return "", err
		}
		p.AddFinalAction(action, preprocessor.CurrentLevel)
		return "", nil
	}
}

// StripEmptyLines removes lines containing only whitespace.
func StripEmptyLines(p *preprocessor.Preprocessor, s string) (string, error) {
	return p.ReplaceAll(s, emptyLinesPattern, "\n", 0)
}

// StripLeadingWhitespace removes the indentation of every line.
func StripLeadingWhitespace(p *preprocessor.Preprocessor, s string) (string, error) {
	return p.ReplaceAll(s, leadingWhitespacePattern, "", 0)
}

// StripTrailingWhitespace removes spaces and tabs at the end of every line.
func StripTrailingWhitespace(p *preprocessor.Preprocessor, s string) (string, error) {
	return p.ReplaceAll(s, trailingWhitespacePattern, "", 0)
}

// FixLastLine makes a non empty text end with exactly one line break.
func FixLastLine(p *preprocessor.Preprocessor, s string) (string, error) {
	if s == "" {
		return s, nil
	}
	if s[len(s)-1] != '\n' {
		s, _ = p.ReplaceString(len(s), len(s), s, "\n", nil)
		return s, nil
	}
	keep := len(strings.TrimRight(s, "\n")) + 1
	s, _ = p.ReplaceString(keep, len(s), s, "", nil)
	return s, nil
}

// FixFirstLine removes the leading lines containing only whitespace.
func FixFirstLine(p *preprocessor.Preprocessor, s string) (string, error) {
	cut := 0
	for cut < len(s) {
		i := strings.IndexByte(s[cut:], '\n')
		if i == -1 {
			if strings.TrimSpace(s[cut:]) == "" {
				cut = len(s)
			}
			break
		}
		if strings.TrimSpace(s[cut:cut+i+1]) != "" {
			break
		}
		cut += i + 1
	}
	if cut > 0 {
		s, _ = p.ReplaceString(0, cut, s, "", nil)
	}
	return s, nil
}

type replaceOptions struct {
	regex      bool
	ignoreCase bool
	wholeWord  bool
	count      int
}

// compileReplace builds the regular expression and the regexp2 replacement
// of a replace command.
func compileReplace(pattern, replacement string, opts replaceOptions) (*regexp2.Regexp, string, error) {
	flags := regexp2.RegexOptions(regexp2.Multiline)
	if opts.ignoreCase {
		flags |= regexp2.IgnoreCase
	}
	if opts.regex {
		replacement = backReference.ReplaceAllString(replacement, `$${$1}`)
	} else {
		pattern = regexp2.Escape(pattern)
		if opts.wholeWord {
			pattern = wholeWord(pattern)
		}
		replacement = strings.ReplaceAll(replacement, "$", "$$")
	}

	re, err := regexp2.Compile(pattern, flags)
	if err != nil {
		return nil, "", err
	}
	return re, replacement, nil
}

func cmdReplace(p *preprocessor.Preprocessor, pos location.Position, args string) (string, error) {
	const usage = "replace [-r|--regex] [-i|--ignore-case] [-w|--whole-word]\n" +
		"               [-c|--count <number>] pattern replacement [text]"
	fs := newFlagSet("replace")
	var opts replaceOptions
	fs.BoolVarP(&opts.regex, "regex", "r", false, "pattern is a regular expression")
	fs.BoolVarP(&opts.ignoreCase, "ignore-case", "i", false, "ignore case when matching")
	fs.BoolVarP(&opts.wholeWord, "whole-word", "w", false, "only match whole words")
	fs.IntVarP(&opts.count, "count", "c", 0, "number of occurrences to replace (default all)")
	rest, err := parseFlags(p, fs, args, usage)
	if err != nil {
		return "", err
	}
	if len(rest) < 2 || len(rest) > 3 {
		return "", p.SendError(preprocessor.ErrInvalidArgument, "invalid argument.\nusage: %s", usage)
	}
	if opts.regex && opts.wholeWord {
		return "", p.SendError(preprocessor.ErrInvalidArgument, "incompatible arguments: --regex and --whole-word.")
	}
	if opts.count < 0 {
		return "", p.SendError(preprocessor.ErrInvalidArgument, "invalid argument.\nthe replace --count argument must be positive.")
	}

	re, replacement, err := compileReplace(rest[0], rest[1], opts)
	if err != nil {
		return "", p.SendError(preprocessor.ErrInvalidArgument, "replace regex error: %s.", err)
	}

	if len(rest) == 3 {
		count := opts.count
		if count == 0 {
			count = -1
		}
		out, err := re.ReplaceFunc(rest[2], func(m regexp2.Match) string {
			return preprocessor.ExpandReplacement(&m, replacement)
		}, -1, count)
		if err != nil {
			return "", p.SendError(preprocessor.ErrInvalidArgument, "replace regex error: %s.", err)
		}
		return out, nil
	}

	cmdBegin := pos.CmdBegin
	p.AddFinalAction(func(p *preprocessor.Preprocessor, s string) (string, error) {
		out, err := p.ReplaceAll(s, re, replacement, opts.count)
		if err != nil {
			p.Context().Update(cmdBegin, "")
			defer p.Context().Pop()
			return "", p.SendError(preprocessor.ErrInvalidArgument, "replace regex error: %s.", err)
		}
		return out, nil
	}, preprocessor.CurrentLevel)

	return "", nil
}

// caseConversion converts a whole text, or one rune at a time for final
// actions. wordStart is true for the first rune and for runes following a
// character that cannot be part of a word.
type caseConversion struct {
	text func(s string) string
	char func(r rune, first, wordStart bool) string
}

var (
	upperCase = caseConversion{
		text: Upper,
		char: func(r rune, _, _ bool) string { return Upper(string(r)) },
	}
	lowerCase = caseConversion{
		text: Lower,
		char: func(r rune, _, _ bool) string { return Lower(string(r)) },
	}
	capitalizeCase = caseConversion{
		text: Capitalize,
		char: func(r rune, first, _ bool) string {
			if first {
				return string(unicode.ToUpper(r))
			}
			return Lower(string(r))
		},
	}
	titleCase = caseConversion{
		text: Title,
		char: func(r rune, _, wordStart bool) string {
			if wordStart {
				return Title(string(r))
			}
			return Lower(string(r))
		},
	}
)

// caseCommand builds upper, lower, capitalize and title: with an argument
// the converted argument is printed, otherwise the conversion is queued for
// the current block.
func caseCommand(conv caseConversion) preprocessor.CommandFunc {
	return func(p *preprocessor.Preprocessor, _ location.Position, args string) (string, error) {
		if text := strings.TrimSpace(args); text != "" {
			return conv.text(unquote(text)), nil
		}
		p.AddFinalAction(func(p *preprocessor.Preprocessor, s string) (string, error) {
			return convertRunes(p, s, conv.char), nil
		}, preprocessor.CurrentLevel)
		return "", nil
	}
}

// convertRunes converts s rune by rune. Runes whose conversion changes
// their length are spliced with ReplaceString so labels move with them.
func convertRunes(p *preprocessor.Preprocessor, s string, convert func(r rune, first, wordStart bool) string) string {
	type edit struct {
		start, end int
		text       string
	}

	var (
		b     strings.Builder
		edits []edit
	)
	b.Grow(len(s))
	prev := rune(-1)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		piece := s[i : i+size]
		if r != utf8.RuneError || size > 1 {
			piece = convert(r, i == 0, prev == -1 || !isWordRune(prev))
		}
		if len(piece) == size {
			b.WriteString(piece)
		} else {
			b.WriteString(s[i : i+size])
			edits = append(edits, edit{start: i, end: i + size, text: piece})
		}
		prev = r
		i += size
	}

	out := b.String()
	for i := len(edits) - 1; i >= 0; i-- {
		out, _ = p.ReplaceString(edits[i].start, edits[i].end, out, edits[i].text, nil)
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '\'' || r == '’'
}

// Upper converts s to UPPER CASE.
func Upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

// Lower converts s to lower case.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Capitalize upper cases the first character of s and lower cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + Lower(s[size:])
}

// Title upper cases the first letter of every word.
func Title(s string) string {
	return cases.Title(language.English).String(s)
}
