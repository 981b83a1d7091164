package tokenizer

import (
	"regexp"
)

// Identifier patterns shared with the directive handlers
const (
	IdentifierPattern    = `[_a-zA-Z][_a-zA-Z0-9]*`
	IdentifierEndPattern = `$|[^_a-zA-Z0-9]`
)

var (
	identifierName = regexp.MustCompile(`^\s*(` + IdentifierPattern + `)(?:` + IdentifierEndPattern + `)`)
	identifierOnly = regexp.MustCompile(`^` + IdentifierPattern + `$`)
)

// IdentifierName finds the identifier at the start of s, after optional
// whitespace. It returns the identifier, the rest of the string and the
// index where the rest starts, or ("", "", -1) when s does not start with an
// identifier.
func IdentifierName(s string) (ident, rest string, restStart int) {
	m := identifierName.FindStringSubmatchIndex(s)
	if m == nil {
		return "", "", -1
	}
	return s[m[2]:m[3]], s[m[3]:], m[3]
}

// IsIdentifier reports whether s is exactly one identifier.
func IsIdentifier(s string) bool {
	return identifierOnly.MatchString(s)
}
