package commands

import (
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/shibukawa/mlpproc/preprocessor"
)

// newFlagSet creates a silent flag set for the arguments of a directive.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	return fs
}

// parseFlags splits args like a shell and parses them with fs. Failures are
// reported as invalid-argument errors carrying usage.
func parseFlags(p *preprocessor.Preprocessor, fs *flag.FlagSet, args, usage string) ([]string, error) {
	split, err := p.SplitArgs(args)
	if err != nil {
		return nil, err
	}
	if err := fs.Parse(split); err != nil {
		return nil, p.SendError(preprocessor.ErrInvalidArgument,
			"invalid argument: %s.\nusage: %s", err, usage)
	}

	return fs.Args(), nil
}

// noArguments warns when a directive that takes no argument got some.
func noArguments(p *preprocessor.Preprocessor, name, args string) error {
	if strings.TrimSpace(args) == "" {
		return nil
	}
	return p.SendWarning(preprocessor.ErrExtraArguments, "the %s directive takes no arguments.", name)
}

// unquote removes one pair of surrounding double quotes.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
