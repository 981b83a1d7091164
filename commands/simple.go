package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shibukawa/mlpproc/location"
	"github.com/shibukawa/mlpproc/preprocessor"
)

// now is replaced in tests
var now = time.Now

const defaultDateFormat = "YYYY-MM-DD"

func cmdError(p *preprocessor.Preprocessor, _ location.Position, args string) (string, error) {
	if msg := strings.TrimSpace(args); msg != "" {
		return "", p.SendError(preprocessor.ErrUserError, "raised by error command.\n%s", msg)
	}
	return "", p.SendError(preprocessor.ErrUserError, "raised by error command.")
}

func cmdWarning(p *preprocessor.Preprocessor, _ location.Position, args string) (string, error) {
	if msg := strings.TrimSpace(args); msg != "" {
		return "", p.SendWarning(preprocessor.ErrUserWarning, "raised by warning command.\n%s", msg)
	}
	return "", p.SendWarning(preprocessor.ErrUserWarning, "raised by warning command.")
}

func cmdVersion(p *preprocessor.Preprocessor, _ location.Position, args string) (string, error) {
	if err := noArguments(p, "version", args); err != nil {
		return "", err
	}
	return preprocessor.Version, nil
}

func cmdFile(p *preprocessor.Preprocessor, _ location.Position, args string) (string, error) {
	if err := noArguments(p, "file", args); err != nil {
		return "", err
	}
	return p.Context().Top().File.Name, nil
}

func cmdLine(p *preprocessor.Preprocessor, pos location.Position, args string) (string, error) {
	if err := noArguments(p, "line", args); err != nil {
		return "", err
	}
	line, _ := p.Context().Top().File.LineNumber(pos.Begin)
	return strconv.Itoa(line), nil
}

func cmdEnv(p *preprocessor.Preprocessor, _ location.Position, args string) (string, error) {
	split, err := p.SplitArgs(args)
	if err != nil {
		return "", err
	}
	if len(split) == 0 || len(split) > 2 {
		return "", p.SendError(preprocessor.ErrInvalidArgument, "invalid argument.\nusage: env <name> [<default>]")
	}
	if value, ok := os.LookupEnv(split[0]); ok {
		return value, nil
	}
	if len(split) == 2 {
		return split[1], nil
	}
	return "", p.SendWarning(preprocessor.ErrUndefinedEnv, "undefined environment variable %q.", split[0])
}

func cmdUUID(p *preprocessor.Preprocessor, _ location.Position, args string) (string, error) {
	if err := noArguments(p, "uuid", args); err != nil {
		return "", err
	}
	return uuid.NewString(), nil
}

var dateFields = []string{"YYYY", "YY", "Y", "MM", "M", "DD", "D", "hh", "h", "mm", "m", "ss", "s"}

// FormatDate renders t with a format where YYYY, YY and Y stand for the
// year, MM and M the month, DD and D the day, hh and h the hour, mm and m
// the minutes, ss and s the seconds. Doubled letters are zero padded.
func FormatDate(format string, t time.Time) string {
	values := map[string]string{
		"YYYY": fmt.Sprintf("%04d", t.Year()),
		"YY":   fmt.Sprintf("%02d", t.Year()%100),
		"Y":    strconv.Itoa(t.Year()),
		"MM":   fmt.Sprintf("%02d", int(t.Month())),
		"M":    strconv.Itoa(int(t.Month())),
		"DD":   fmt.Sprintf("%02d", t.Day()),
		"D":    strconv.Itoa(t.Day()),
		"hh":   fmt.Sprintf("%02d", t.Hour()),
		"h":    strconv.Itoa(t.Hour()),
		"mm":   fmt.Sprintf("%02d", t.Minute()),
		"m":    strconv.Itoa(t.Minute()),
		"ss":   fmt.Sprintf("%02d", t.Second()),
		"s":    strconv.Itoa(t.Second()),
	}
	// longest field first at each position
	pairs := make([]string, 0, 2*len(dateFields))
	for _, field := range dateFields {
		pairs = append(pairs, field, values[field])
	}

	return strings.NewReplacer(pairs...).Replace(format)
}

func cmdDate(_ *preprocessor.Preprocessor, _ location.Position, args string) (string, error) {
	format := strings.TrimSpace(args)
	if format == "" {
		format = defaultDateFormat
	}
	return FormatDate(unquote(format), now()), nil
}

func cmdEval(p *preprocessor.Preprocessor, _ location.Position, args string) (string, error) {
	expr := strings.TrimSpace(args)
	if expr == "" {
		return "", p.SendError(preprocessor.ErrInvalidArgument, "invalid argument.\nusage: eval <expression>")
	}

	result, err := evalExpression(expr)
	if err != nil {
		return "", p.SendError(preprocessor.ErrInvalidArgument, "invalid expression %q.\n%s", expr, err)
	}
	return result, nil
}

// evalExpression evaluates a CEL expression. The process environment is
// available as the env map.
func evalExpression(expr string) (string, error) {
	env, err := cel.NewEnv(cel.Variable("env", cel.MapType(cel.StringType, cel.StringType)))
	if err != nil {
		return "", err
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return "", issues.Err()
	}
	prg, err := env.Program(ast)
	if err != nil {
		return "", err
	}

	environ := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			environ[k] = v
		}
	}
	out, _, err := prg.Eval(map[string]any{"env": environ})
	if err != nil {
		return "", err
	}

	switch v := out.(type) {
	case types.Double:
		return decimal.NewFromFloat(float64(v)).String(), nil
	case types.String:
		return string(v), nil
	}
	return fmt.Sprint(out.Value()), nil
}
