package commands

import (
	"bytes"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/shibukawa/mlpproc/location"
	"github.com/shibukawa/mlpproc/preprocessor"
	"github.com/shibukawa/mlpproc/tokenizer"
)

var rangePattern = regexp.MustCompile(`^range\s*\((.*)\)$`)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// parseContents parses the contents of a block at their source position.
func parseContents(p *preprocessor.Preprocessor, pos location.Position, contents string) (string, error) {
	return p.ParseAt(pos.End, "", contents)
}

func blockVoid(p *preprocessor.Preprocessor, pos location.Position, args, contents string) (string, error) {
	if err := noArguments(p, "void", args); err != nil {
		return "", err
	}
	if _, err := parseContents(p, pos, contents); err != nil {
		return "", err
	}
	return "", nil
}

func blockBlock(p *preprocessor.Preprocessor, pos location.Position, args, contents string) (string, error) {
	if err := noArguments(p, "block", args); err != nil {
		return "", err
	}
	return parseContents(p, pos, contents)
}

func blockVerbatim(p *preprocessor.Preprocessor, _ location.Position, args, contents string) (string, error) {
	if err := noArguments(p, "verbatim", args); err != nil {
		return "", err
	}
	return contents, nil
}

func blockRepeat(p *preprocessor.Preprocessor, pos location.Position, args, contents string) (string, error) {
	args = strings.TrimSpace(args)
	n, err := strconv.Atoi(args)
	if err != nil || n <= 0 || args[0] == '+' {
		return "", p.SendError(preprocessor.ErrInvalidArgument, "invalid argument.\nusage: repeat <uint > 0>")
	}
	text, err := parseContents(p, pos, contents)
	if err != nil {
		return "", err
	}
	return strings.Repeat(text, n), nil
}

func blockMarkdown(p *preprocessor.Preprocessor, pos location.Position, args, contents string) (string, error) {
	if err := noArguments(p, "markdown", args); err != nil {
		return "", err
	}
	text, err := parseContents(p, pos, contents)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "", p.SendError(preprocessor.ErrInternalError, "markdown rendering failed.\n%s", err)
	}
	return buf.String(), nil
}

// loopValues parses the part of a for block after "in": either
// range(stop), range(start, stop) or range(start, stop, step) with Python
// semantics, or a list of shell-like words.
func loopValues(p *preprocessor.Preprocessor, source string) ([]string, error) {
	source = strings.TrimSpace(source)
	m := rangePattern.FindStringSubmatch(source)
	if m == nil {
		return p.SplitArgs(source)
	}

	var bounds []int
	for field := range strings.SplitSeq(m[1], ",") {
		v, err := preprocessor.ParseInteger(field)
		if err != nil {
			return nil, p.SendError(preprocessor.ErrInvalidArgument, "invalid range argument %q.", strings.TrimSpace(field))
		}
		bounds = append(bounds, v)
	}

	start, stop, step := 0, 0, 1
	switch len(bounds) {
	case 1:
		stop = bounds[0]
	case 2:
		start, stop = bounds[0], bounds[1]
	case 3:
		start, stop, step = bounds[0], bounds[1], bounds[2]
	default:
		return nil, p.SendError(preprocessor.ErrInvalidArgument, "invalid range.\nusage: range([start,] stop [, step])")
	}
	if step == 0 {
		return nil, p.SendError(preprocessor.ErrInvalidArgument, "invalid range.\nrange step must not be zero")
	}

	var values []string
	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		values = append(values, strconv.Itoa(i))
	}
	return values, nil
}

type loopVariable string

func (v loopVariable) Call(*preprocessor.Preprocessor, location.Position, string) (string, error) {
	return string(v), nil
}

func blockFor(p *preprocessor.Preprocessor, pos location.Position, args, contents string) (string, error) {
	const usage = "for <ident> in range([start,] stop [, step])\n       for <ident> in <space separated list>"
	name, rest, _ := tokenizer.IdentifierName(args)
	rest = strings.TrimLeft(rest, " \t\r\n")
	in, source, _ := tokenizer.IdentifierName(rest)
	if name == "" || in != "in" {
		return "", p.SendError(preprocessor.ErrInvalidArgument, "invalid argument.\nusage: %s", usage)
	}
	values, err := loopValues(p, source)
	if err != nil {
		return "", err
	}

	registry := p.Registry()
	previous, hadPrevious := registry.Command(name)
	_, previousDoc, _ := registry.Doc(name)
	defer func() {
		if hadPrevious {
			registry.DefineCommand(name, previous, previousDoc)
		} else {
			registry.UndefineCommand(name)
		}
	}()

	// labels of each iteration are made relative to the start of the output
	child := p.Depth() + 1
	var out strings.Builder
	for _, value := range values {
		registry.DefineCommand(name, loopVariable(value), "loop variable of a for block")
		p.Labels().DilateLevel(child, math.MinInt, -out.Len())
		text, err := parseContents(p, pos, contents)
		if err != nil {
			return "", err
		}
		p.Labels().DilateLevel(child, math.MinInt, out.Len())
		out.WriteString(text)
	}

	return out.String(), nil
}
