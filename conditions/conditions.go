// Package conditions evaluates the conditions of if and elif blocks.
//
// A condition combines words with "and", "or", "not" and parentheses:
//
//	def NAME       true when NAME is a defined command or block
//	ndef NAME      true when NAME is not defined
//	a == b, a != b string comparison
//	word           false for "", "0" and "false", true otherwise
//
// Conditions are translated to CEL and evaluated with cel-go.
package conditions

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/shibukawa/mlpproc/preprocessor"
)

// Sentinel errors
var (
	ErrEmptyCondition   = errors.New("empty condition")
	ErrUnexpectedToken  = errors.New("unexpected token")
	ErrUnexpectedEnd    = errors.New("unexpected end of condition")
	ErrEvaluationFailed = errors.New("condition evaluation failed")
)

// Defined reports whether a command or block name exists.
type Defined func(name string) bool

// Expression is a condition translated to CEL with its bound values.
type Expression struct {
	Source string
	CEL    string
	Vars   map[string]any

	decls []cel.EnvOption
}

// Translate parses condition. def/ndef tests are resolved immediately
// with defined.
func Translate(condition string, defined Defined) (*Expression, error) {
	tokens := Lex(condition)
	if len(tokens) == 0 {
		return nil, ErrEmptyCondition
	}

	t := &translator{
		tokens:  tokens,
		defined: defined,
		expr:    &Expression{Source: condition, Vars: make(map[string]any)},
	}
	result, err := t.or()
	if err != nil {
		return nil, err
	}
	if t.pos < len(t.tokens) {
		return nil, fmt.Errorf("%w %q", ErrUnexpectedToken, t.tokens[t.pos])
	}
	t.expr.CEL = result

	return t.expr, nil
}

// Eval evaluates the translated expression
func (e *Expression) Eval() (bool, error) {
	env, err := cel.NewEnv(e.decls...)
	if err != nil {
		return false, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(e.CEL)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("%w: %w", ErrEvaluationFailed, issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrEvaluationFailed, err)
	}

	out, _, err := prg.Eval(e.Vars)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrEvaluationFailed, err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: result is %T", ErrEvaluationFailed, out.Value())
	}

	return result, nil
}

// Eval translates and evaluates condition.
func Eval(condition string, defined Defined) (bool, error) {
	expr, err := Translate(condition, defined)
	if err != nil {
		return false, err
	}
	return expr.Eval()
}

// Truthy tells how a bare word evaluates.
func Truthy(word string) bool {
	switch strings.ToLower(word) {
	case "", "0", "false":
		return false
	}
	return true
}

type translator struct {
	tokens  []string
	pos     int
	defined Defined
	expr    *Expression
}

func (t *translator) peek() string {
	if t.pos < len(t.tokens) {
		return t.tokens[t.pos]
	}
	return ""
}

func (t *translator) next() (string, error) {
	if t.pos >= len(t.tokens) {
		return "", ErrUnexpectedEnd
	}
	t.pos++
	return t.tokens[t.pos-1], nil
}

func (t *translator) bind(value any) string {
	name := "v" + strconv.Itoa(len(t.expr.Vars))
	t.expr.Vars[name] = value
	switch value.(type) {
	case bool:
		t.expr.decls = append(t.expr.decls, cel.Variable(name, cel.BoolType))
	default:
		t.expr.decls = append(t.expr.decls, cel.Variable(name, cel.StringType))
	}
	return name
}

func (t *translator) or() (string, error) {
	left, err := t.and()
	if err != nil {
		return "", err
	}
	for t.peek() == "or" {
		t.pos++
		right, err := t.and()
		if err != nil {
			return "", err
		}
		left = left + " || " + right
	}
	return left, nil
}

func (t *translator) and() (string, error) {
	left, err := t.not()
	if err != nil {
		return "", err
	}
	for t.peek() == "and" {
		t.pos++
		right, err := t.not()
		if err != nil {
			return "", err
		}
		left = left + " && " + right
	}
	return left, nil
}

func (t *translator) not() (string, error) {
	if t.peek() == "not" {
		t.pos++
		operand, err := t.not()
		if err != nil {
			return "", err
		}
		return "!" + operand, nil
	}
	return t.atom()
}

func isWord(token string) bool {
	switch token {
	case "", "(", ")", "==", "!=", "and", "or", "not":
		return false
	}
	return true
}

func (t *translator) atom() (string, error) {
	token, err := t.next()
	if err != nil {
		return "", err
	}

	switch {
	case token == "(":
		inner, err := t.or()
		if err != nil {
			return "", err
		}
		closing, err := t.next()
		if err != nil {
			return "", err
		}
		if closing != ")" {
			return "", fmt.Errorf("%w %q, expected \")\"", ErrUnexpectedToken, closing)
		}
		return "(" + inner + ")", nil
	case (token == "def" || token == "ndef") && isWord(t.peek()):
		name := t.tokens[t.pos]
		t.pos++
		found := t.defined != nil && t.defined(name)
		return t.bind(found == (token == "def")), nil
	case !isWord(token):
		return "", fmt.Errorf("%w %q", ErrUnexpectedToken, token)
	}

	op := t.peek()
	if op != "==" && op != "!=" {
		return t.bind(Truthy(value(token))), nil
	}
	t.pos++
	rhs, err := t.next()
	if err != nil {
		return "", err
	}
	if !isWord(rhs) {
		return "", fmt.Errorf("%w %q after %q", ErrUnexpectedToken, rhs, op)
	}
	return "(" + t.bind(value(token)) + " " + op + " " + t.bind(value(rhs)) + ")", nil
}

// value strips the quotes of a string token and decodes its escapes.
func value(token string) string {
	if len(token) >= 2 && token[0] == '"' && token[len(token)-1] == '"' {
		return preprocessor.Unescape(token[1 : len(token)-1])
	}
	return token
}
