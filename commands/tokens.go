package commands

import (
	"strconv"
	"strings"

	"github.com/shibukawa/mlpproc/location"
	"github.com/shibukawa/mlpproc/preprocessor"
)

// tokenLevel parses the optional [uint] argument of begin and end.
func tokenLevel(p *preprocessor.Preprocessor, name, args string) (int, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return 0, nil
	}
	level, err := strconv.Atoi(args)
	if err != nil || level < 0 || args[0] == '+' {
		return 0, p.SendError(preprocessor.ErrInvalidArgument, "invalid argument.\nusage: %s [uint]", name)
	}
	return level, nil
}

func cmdBegin(p *preprocessor.Preprocessor, _ location.Position, args string) (string, error) {
	level, err := tokenLevel(p, "begin", args)
	if err != nil {
		return "", err
	}
	d := p.Delimiters()
	if level == 0 {
		return d.Begin, nil
	}
	return d.Begin + "begin " + strconv.Itoa(level-1) + d.End, nil
}

func cmdEnd(p *preprocessor.Preprocessor, _ location.Position, args string) (string, error) {
	level, err := tokenLevel(p, "end", args)
	if err != nil {
		return "", err
	}
	d := p.Delimiters()
	if level == 0 {
		return d.End, nil
	}
	return d.Begin + "end " + strconv.Itoa(level-1) + d.End, nil
}

func cmdCall(p *preprocessor.Preprocessor, _ location.Position, args string) (string, error) {
	d := p.Delimiters()
	return d.Begin + strings.TrimSpace(args) + d.End, nil
}
