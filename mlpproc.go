// Package mlpproc builds preprocessors from a configuration.
package mlpproc

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/shibukawa/mlpproc/commands"
	"github.com/shibukawa/mlpproc/preprocessor"
	"github.com/shibukawa/mlpproc/tokenizer"
)

// New creates a preprocessor with the built-in directives, configured by
// config. opts are applied after the configuration.
func New(config *Config, opts ...preprocessor.Option) (*preprocessor.Preprocessor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	warnings, err := config.WarningMode()
	if err != nil {
		return nil, err
	}

	registry := commands.Defaults()
	for _, name := range slices.Sorted(maps.Keys(config.Defines)) {
		if !tokenizer.IsIdentifier(name) {
			return nil, fmt.Errorf("%w: invalid define name '%s'", ErrConfigValidation, name)
		}
		m := &commands.Macro{Name: name, Body: config.Defines[name]}
		registry.DefineCommand(name, m, "defined command for "+m.Usage())
	}

	p := preprocessor.New(registry, append([]preprocessor.Option{
		preprocessor.WithDelimiters(config.Delimiters()),
		preprocessor.WithMaxRecursionDepth(config.MaxRecursionDepth),
		preprocessor.WithSafeCalls(config.IsSafeCalls()),
		preprocessor.WithWarningMode(warnings),
		preprocessor.WithIncludePaths(config.IncludePaths...),
	}, opts...)...)
	p.WarnUnmatchedClose = config.WarnUnmatchedClose

	return p, nil
}

// Process expands the directives of s with a default preprocessor.
func Process(s, filename string) (string, error) {
	p, err := New(nil)
	if err != nil {
		return "", err
	}

	return p.Process(s, filename)
}

// ParseDefine splits a command line define "name" or "name=value".
func ParseDefine(define string) (name, value string, err error) {
	name, value, _ = strings.Cut(define, "=")
	name = strings.TrimSpace(name)
	if !tokenizer.IsIdentifier(name) {
		return "", "", fmt.Errorf("%w '%s': expected name or name=value", ErrInvalidDefine, define)
	}

	return name, value, nil
}
