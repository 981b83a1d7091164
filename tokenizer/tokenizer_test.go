package tokenizer

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

var parens = Delimiters{Begin: "(", End: ")", EndBlock: "e"}

func TestFindTokens(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected []Token
	}{
		{
			name:     "single pair",
			src:      "()",
			expected: []Token{{0, 1, OPEN}, {1, 2, CLOSE}},
		},
		{
			name:     "spaced pair",
			src:      " ( ) ",
			expected: []Token{{1, 2, OPEN}, {3, 4, CLOSE}},
		},
		{
			name: "nested",
			src:  "((()()))",
			expected: []Token{
				{0, 1, OPEN},
				{1, 2, OPEN},
				{2, 3, OPEN},
				{3, 4, CLOSE},
				{4, 5, OPEN},
				{5, 6, CLOSE},
				{6, 7, CLOSE},
				{7, 8, CLOSE},
			},
		},
		{
			name:     "no tokens",
			src:      "plain text",
			expected: []Token{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parens.Find(tt.src))
		})
	}
}

func TestFindTokensDefaultDelimiters(t *testing.T) {
	d := DefaultDelimiters()

	tokens := d.Find("a{% foo %}b{% bar {% baz %} %}")
	assert.Equal(t, []Token{
		{1, 4, OPEN},
		{7, 10, CLOSE},
		{11, 14, OPEN},
		{18, 21, OPEN},
		{24, 27, CLOSE},
		{27, 30, CLOSE},
	}, tokens)
}

func TestFindTokensCloseFirstOnTie(t *testing.T) {
	d := Delimiters{Begin: "<<", End: "<", EndBlock: "end"}

	// "<" and "<<" both start at 0: CLOSE sorts first
	tokens := d.Find("<<")
	assert.Equal(t, []Token{{0, 1, CLOSE}, {0, 2, OPEN}, {1, 2, CLOSE}}, tokens)
}

func TestFindTokensRegexMetacharacters(t *testing.T) {
	d := Delimiters{Begin: "[*", End: "*]", EndBlock: "end"}
	tokens := d.Find("a [* b *] c")
	assert.Equal(t, []Token{{2, 4, OPEN}, {7, 9, CLOSE}}, tokens)
}

func TestTokenIteratorEarlyTermination(t *testing.T) {
	count := 0
	for token := range parens.Tokens("()()()()") {
		count++
		if token.Start >= 3 {
			break
		}
	}
	assert.Equal(t, 4, count)
}

func TestFindMatchingPair(t *testing.T) {
	tests := []struct {
		name     string
		tokens   []Token
		expected int
	}{
		{"simple", []Token{{0, 1, OPEN}, {1, 2, CLOSE}}, 0},
		{"offset", []Token{{1, 2, OPEN}, {3, 4, CLOSE}}, 0},
		{"extra open", []Token{{0, 1, OPEN}, {1, 2, OPEN}, {2, 3, CLOSE}}, 1},
		{
			"innermost first",
			[]Token{
				{0, 1, OPEN},
				{1, 2, OPEN},
				{2, 3, OPEN},
				{3, 4, CLOSE},
				{4, 5, OPEN},
				{5, 6, CLOSE},
				{6, 7, CLOSE},
				{7, 8, CLOSE},
			},
			2,
		},
		{"close before open", []Token{{0, 1, CLOSE}, {1, 2, OPEN}}, -1},
		{"empty", nil, -1},
		{"single", []Token{{0, 1, OPEN}}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FindMatchingPair(tt.tokens))
		})
	}
}

// Balanced, properly nested token lists always reduce to nothing when the
// innermost pair is removed repeatedly.
func TestPairingReducesBalancedTokens(t *testing.T) {
	srcs := []string{
		"()",
		"(()())",
		"((()()))",
		"(()(()()))()(())",
	}
	for _, src := range srcs {
		tokens := parens.Find(src)
		for len(tokens) > 0 {
			i := FindMatchingPair(tokens)
			assert.NotEqual(t, -1, i, "no pair in %v (from %q)", tokens, src)
			tokens = append(tokens[:i], tokens[i+2:]...)
		}
	}
}

func TestIdentifierName(t *testing.T) {
	tests := []struct {
		src   string
		ident string
		rest  string
		start int
	}{
		{"21", "", "", -1},
		{"+*", "", "", -1},
		{"", "", "", -1},
		{"hello21+3", "hello21", "+3", 7},
		{"\t\n name ", "name", " ", 7},
		{"    _hidden_12||", "_hidden_12", "||", 14},
		{"def nom jean", "def", " nom jean", 3},
		{"begin", "begin", "", 5},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			ident, rest, start := IdentifierName(tt.src)
			assert.Equal(t, tt.ident, ident)
			assert.Equal(t, tt.rest, rest)
			assert.Equal(t, tt.start, start)
		})
	}
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("foo_1"))
	assert.True(t, IsIdentifier("_"))
	assert.False(t, IsIdentifier("1foo"))
	assert.False(t, IsIdentifier("foo bar"))
	assert.False(t, IsIdentifier(""))
}

func TestFindMatchingEndblock(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		begin int
		end   int
	}{
		{"direct", "(ei)", 0, 4},
		{"after content", "content (i args) content (ei) more content (ei)", 43, 47},
		{"nested pairs", "(i) (ei)(i args) (i) (ei)(ei) more content (ei)", 43, 47},
		{"other blocks", "(i) foo (b) bar (eb) ctnt  (ei) more foo   (ei)", 43, 47},
		{"start tag inside args", "content (i (i arges) blah (ei) args) (ei)t (ei)", 43, 47},
		{"empty", "", -1, -1},
		{"unbalanced", "(i) (ei)", -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			begin, end := parens.FindMatchingEndblock("i", tt.src)
			assert.Equal(t, tt.begin, begin)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestFindMatchingEndblockDefaultDelimiters(t *testing.T) {
	d := DefaultDelimiters()

	// text following "{% repeat 2 %}"
	src := "{% repeat 1 %}x{% endrepeat %}{% endrepeat %}"
	begin, end := d.FindMatchingEndblock("repeat", src)
	assert.Equal(t, 30, begin)
	assert.Equal(t, len(src), end)

	// whitespace tolerant, other names ignored
	src = "a{% repeater %}{%   endrepeat\t %}"
	begin, end = d.FindMatchingEndblock("repeat", src)
	assert.Equal(t, 15, begin)
	assert.Equal(t, len(src), end)

	assert.Equal(t, "{% endrepeat %}", d.EndTag("repeat"))
}

func TestDelimitersValidate(t *testing.T) {
	assert.NoError(t, DefaultDelimiters().Validate())
	assert.IsError(t, Delimiters{Begin: "", End: "x"}.Validate(), ErrEmptyDelimiter)
	assert.IsError(t, Delimiters{Begin: "x", End: "x"}.Validate(), ErrSameDelimiters)
}

func TestTokenString(t *testing.T) {
	assert.Equal(t, "OPEN[0:3]", Token{0, 3, OPEN}.String())
	assert.Equal(t, "CLOSE[5:8]", Token{0, 3, CLOSE}.Shift(5).String())
	assert.Equal(t, "UNKNOWN", Kind(7).String())
}
