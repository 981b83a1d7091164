package preprocessor

import (
	"errors"
	"fmt"
	"strings"
)

// Diagnostic kinds. Every *Error unwraps to one of them.
var (
	// Engine errors
	ErrUnmatchedOpenToken     = errors.New("unmatched open token")
	ErrUnmatchedCloseToken    = errors.New("unmatched close token")
	ErrNoMatchingPair         = errors.New("no matching pair")
	ErrInvalidCommandName     = errors.New("invalid command name")
	ErrUndefinedCommand       = errors.New("undefined command")
	ErrNoMatchingEndblock     = errors.New("no matching endblock")
	ErrRecursionDepthExceeded = errors.New("recursion depth exceeded")
	ErrInternalError          = errors.New("internal error")
	ErrInternalWarning        = errors.New("internal warning")

	// Handler errors
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrExtraArguments   = errors.New("extra arguments")
	ErrFileNotFound     = errors.New("file not found")
	ErrUserError        = errors.New("user error")
	ErrUserWarning      = errors.New("user warning")
	ErrUndefinedLabel   = errors.New("undefined label")
	ErrInvalidCondition = errors.New("invalid condition")
	ErrUndefinedClip    = errors.New("undefined clipboard")
	ErrUndefinedEnv     = errors.New("undefined environment variable")

	// ErrUnterminatedString is returned by SplitArgs
	ErrUnterminatedString = errors.New("unterminated string")
)

// Error is a located diagnostic. Warnings use the same type with Warning set.
type Error struct {
	Kind    error
	Message string
	File    string
	Line    int
	Char    int
	// Trace lists the enclosing contexts, outermost first, one per line.
	Trace   string
	Warning bool
}

func (e *Error) label() string {
	if e.Warning {
		return "warning"
	}
	return "error"
}

// Error returns "file:line:char: error: message".
func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", e.File, e.Line, e.Char, e.label(), e.Message)
}

// Unwrap returns the diagnostic kind
func (e *Error) Unwrap() error {
	return e.Kind
}

// Render renders the diagnostic the way it is printed on the terminal:
// the context trace followed by the located, indented message.
func (e *Error) Render(label func(a ...any) string) string {
	if label == nil {
		label = fmt.Sprint
	}
	msg := strings.ReplaceAll(e.Message, "\n", "\n  ")
	return fmt.Sprintf("%s%s:%d:%d: %s: %s\n", e.Trace, e.File, e.Line, e.Char, label(e.label()), msg)
}

// IsWarning reports whether err carries a warning diagnostic.
func IsWarning(err error) bool {
	var diag *Error
	if errors.As(err, &diag) {
		return diag.Warning
	}
	return false
}
