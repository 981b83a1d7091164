package preprocessor

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
)

var (
	errorLabel   = color.New(color.FgRed, color.Bold).SprintFunc()
	warningLabel = color.New(color.FgMagenta, color.Bold).SprintFunc()
)

func (p *Preprocessor) diagnostic(kind error, msg string, warning bool) *Error {
	file, line, char := p.context.Location()
	return &Error{
		Kind:    kind,
		Message: msg,
		File:    file,
		Line:    line,
		Char:    char,
		Trace:   p.context.Trace(),
		Warning: warning,
	}
}

func (p *Preprocessor) print(diag *Error) {
	if p.Stderr == nil {
		return
	}
	label := errorLabel
	if diag.Warning {
		label = warningLabel
	}
	fmt.Fprint(p.Stderr, diag.Render(label))
}

// SendError builds an error located at the innermost context. It is printed
// unless the error mode is Raise, and always returned: handlers must return
// it to abort the run.
func (p *Preprocessor) SendError(kind error, format string, args ...any) error {
	diag := p.diagnostic(kind, fmt.Sprintf(format, args...), false)
	if p.ErrorMode != Raise {
		p.print(diag)
	}
	return diag
}

// SendWarning builds a warning located at the innermost context and applies
// the warning mode. It returns nil when the warning was hidden or only
// printed, otherwise an error the handler must return.
func (p *Preprocessor) SendWarning(kind error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	switch p.WarningMode {
	case WarningHide:
		return nil
	case WarningPrint:
		p.print(p.diagnostic(kind, msg, true))
		return nil
	case WarningPrintAndRaise:
		diag := p.diagnostic(kind, msg, true)
		p.print(diag)
		return diag
	case WarningAsError:
		return p.SendError(kind, "%s", msg)
	default:
		return p.diagnostic(kind, msg, true)
	}
}

// sendErrorAt reports an engine error located at index rel of the string
// being parsed.
func (p *Preprocessor) sendErrorAt(rel int, kind error, format string, args ...any) error {
	p.context.Update(p.context.Top().TruePosition(rel), "")
	defer p.context.Pop()

	return p.SendError(kind, format, args...)
}

func (p *Preprocessor) sendWarningAt(rel int, kind error, format string, args ...any) error {
	p.context.Update(p.context.Top().TruePosition(rel), "")
	defer p.context.Pop()

	return p.SendWarning(kind, format, args...)
}

// safeCall runs a handler. With SafeCalls, panics and errors that are not
// diagnostics become internal errors located at the handler's context. A
// foreign error returned together with output is an internal warning and
// the output is kept.
func (p *Preprocessor) safeCall(fn func() (string, error)) (result string, err error) {
	if !p.SafeCalls {
		return fn()
	}

	frames := p.context.Len()
	depth := p.depth
	defer func() {
		if r := recover(); r != nil {
			for p.context.Len() > frames {
				p.context.Pop()
			}
			p.depth = depth
			result = ""
			err = p.SendError(ErrInternalError, "internal error.\n%v", r)
		}
	}()

	result, err = fn()
	if err != nil {
		var diag *Error
		if errors.As(err, &diag) {
			return "", err
		}
		if result == "" {
			return "", p.SendError(ErrInternalError, "internal error.\n%s", err)
		}
		if werr := p.SendWarning(ErrInternalWarning, "internal warning.\n%s", err); werr != nil {
			return "", werr
		}
	}

	return result, nil
}
