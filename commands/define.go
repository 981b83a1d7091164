package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/shibukawa/mlpproc/location"
	"github.com/shibukawa/mlpproc/preprocessor"
	"github.com/shibukawa/mlpproc/tokenizer"
)

// Macro is a command created by def. Params is nil for plain definitions.
type Macro struct {
	Name   string
	Params []string
	Body   string

	patterns []*regexp2.Regexp
}

// ParseMacro parses the arguments of def:
//
//	name replacement
//	name "replacement with \"escapes\" "
//	name(a, b) replacement using a and b
func ParseMacro(args string) (*Macro, error) {
	name, text, _ := tokenizer.IdentifierName(args)
	if name == "" {
		return nil, fmt.Errorf("invalid identifier.\ndef needs a valid identifier, got %q", args)
	}
	m := &Macro{Name: name}

	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "(") {
		end := strings.IndexByte(text, ')')
		if end == -1 {
			return nil, errors.New("no matching closing \")\" in macro definition.\nenclose the body in quotes to start it with a parenthesis")
		}
		m.Params = []string{}
		if params := strings.TrimSpace(text[1:end]); params != "" {
			for param := range strings.SplitSeq(params, ",") {
				param = strings.TrimSpace(param)
				if !tokenizer.IsIdentifier(param) {
					return nil, fmt.Errorf("in def %s: invalid macro parameter name %q", name, param)
				}
				for _, seen := range m.Params {
					if seen == param {
						return nil, fmt.Errorf("in def %s: multiple macro parameters with same name %q", name, param)
					}
				}
				m.Params = append(m.Params, param)
			}
		}
		text = strings.TrimSpace(text[end+1:])
	}

	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		text = preprocessor.Unescape(text[1 : len(text)-1])
	}
	m.Body = text

	for _, param := range m.Params {
		re, err := regexp2.Compile(wholeWord(regexp2.Escape(param)), regexp2.Multiline)
		if err != nil {
			return nil, err
		}
		m.patterns = append(m.patterns, re)
	}

	return m, nil
}

// wholeWord wraps pattern so that it only matches identifiers.
func wholeWord(pattern string) string {
	return `(?<![_a-zA-Z0-9])(?:` + pattern + `)(?![_a-zA-Z0-9])`
}

// Usage returns "name param..."
func (m *Macro) Usage() string {
	return strings.TrimSpace(m.Name + " " + strings.Join(m.Params, " "))
}

// Expand substitutes the parameters of m with args. Every parameter is
// first replaced by a placeholder so that arguments are never rescanned.
func (m *Macro) Expand(args []string) (string, error) {
	if m.Params == nil {
		return m.Body, nil
	}
	if len(args) != len(m.Params) {
		return "", fmt.Errorf("invalid number of arguments for macro (expected %d got %d).\nusage: %s",
			len(m.Params), len(args), m.Usage())
	}

	body := m.Body
	for i, re := range m.patterns {
		replaced, err := re.Replace(body, placeholder(i), -1, -1)
		if err != nil {
			return "", err
		}
		body = replaced
	}
	pairs := make([]string, 0, 2*len(args))
	for i, arg := range args {
		pairs = append(pairs, placeholder(i), arg)
	}

	return strings.NewReplacer(pairs...).Replace(body), nil
}

func placeholder(i int) string {
	return "\x00" + strconv.Itoa(i) + "\x00"
}

// Call expands the macro and parses the result at the call site.
func (m *Macro) Call(p *preprocessor.Preprocessor, pos location.Position, args string) (string, error) {
	var split []string
	if m.Params != nil {
		var err error
		split, err = p.SplitArgs(args)
		if err != nil {
			return "", err
		}
	}
	body, err := m.Expand(split)
	if err != nil {
		return "", p.SendError(preprocessor.ErrInvalidArgument, "%s", err)
	}

	return p.ParseAt(pos.CmdArgBegin, "in expansion of defined command "+m.Name, body)
}

func cmdDef(p *preprocessor.Preprocessor, _ location.Position, args string) (string, error) {
	m, err := ParseMacro(args)
	if err != nil {
		return "", p.SendError(preprocessor.ErrInvalidArgument, "%s", err)
	}
	p.Registry().DefineCommand(m.Name, m, "defined command for "+m.Usage())

	return "", nil
}

func cmdUndef(p *preprocessor.Preprocessor, _ location.Position, args string) (string, error) {
	name, rest, _ := tokenizer.IdentifierName(args)
	if name == "" {
		return "", p.SendError(preprocessor.ErrInvalidArgument, "invalid identifier.\nundef needs a valid identifier, got %q", args)
	}
	if strings.TrimSpace(rest) != "" {
		if err := p.SendWarning(preprocessor.ErrExtraArguments, "undef takes a single name."); err != nil {
			return "", err
		}
	}
	p.Registry().Undefine(name)

	return "", nil
}

// List is a command created by deflist.
type List struct {
	Name     string
	Text     string
	Elements []string
}

// Call prints the list, or one element when called with an index.
// Negative indexes count from the end.
func (l *List) Call(p *preprocessor.Preprocessor, _ location.Position, args string) (string, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return l.Text, nil
	}
	if !preprocessor.IsInteger(args) {
		return "", p.SendError(preprocessor.ErrInvalidArgument,
			"invalid argument for defined list %q.\nusage: %s [<number>]", args, l.Name)
	}
	index, err := preprocessor.ParseInteger(args)
	if err != nil {
		return "", p.SendError(preprocessor.ErrInvalidArgument, "invalid index %q.", args)
	}
	n := len(l.Elements)
	if index < -n || index >= n {
		return "", p.SendError(preprocessor.ErrInvalidArgument,
			"invalid index.\ndefined list %s has length %d, can't access element %d.", l.Name, n, index)
	}
	if index < 0 {
		index += n
	}

	return l.Elements[index], nil
}

func cmdDeflist(p *preprocessor.Preprocessor, _ location.Position, args string) (string, error) {
	name, text, _ := tokenizer.IdentifierName(args)
	if name == "" {
		return "", p.SendError(preprocessor.ErrInvalidArgument,
			"invalid identifier.\ndeflist needs a valid identifier, got %q", args)
	}
	elements, err := p.SplitArgs(text)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	p.Registry().DefineCommand(name, &List{Name: name, Text: text, Elements: elements}, "defined list "+name)

	return "", nil
}
