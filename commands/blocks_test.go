package commands

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/mlpproc/preprocessor"
	"github.com/shibukawa/mlpproc/tokenizer"
)

func TestBlocks(t *testing.T) {
	runProcessTests(t, "test_block", []processTest{
		{"void", "text{% void %}{% def name john %}hello this is a comment{% endvoid %}\n{% name %}", "text\njohn"},
		{"verbatim", "{% verbatim %}{% hello %}{% endverbatim %}", "{% hello %}"},
		{"nested verbatim",
			"{% verbatim %}some text with {% verbatim %}nested verbatim{% endverbatim %}{% endverbatim %}",
			"some text with {% verbatim %}nested verbatim{% endverbatim %}"},
		{"repeat", "{% repeat 5 %}yo{% endrepeat %}", "yoyoyoyoyo"},
		{"nested repeat", "{% repeat 2 %}{% repeat 1 %}x{% endrepeat %}{% endrepeat %}", "xx"},
		{"repeat renders once", "{% def n 0 %}{% repeat 3 %}{% n %}{% def n 1 %}{% endrepeat %}", "000"},
		{"block", "a{% block %}b{% endblock %}c", "abc"},
	})
}

func TestAtlabel(t *testing.T) {
	runProcessTests(t, "test_atlabel", []processTest{
		{"before and after", "{% label foo %}lala{% atlabel foo %}bar{% endatlabel %}yoyo{% label foo %}oups", "barlalayoyobaroups"},
		{"label after block", "{% atlabel yo %}bonjour{% endatlabel %}{% label yo %}", "bonjour"},
		{"two labels", "{% atlabel yo %}bjr{% endatlabel %}{% label yo %}..{% label yo %}", "bjr..bjr"},
		{"label in block", "{% atlabel yo %}bjrst{% endatlabel %}{% block %}hi{% label yo %}yy{% endblock %}", "hibjrstyy"},
		{"nested labels",
			"{% atlabel yo %}bonjour{% endatlabel %}{% label yo %}***\n\n{% block %}nested:{% label yo %}{% endblock %}\n" +
				"{% repeat 2 %}{% label yo %}{% endrepeat %}***{% label yo %}",
			"bonjour***\n\nnested:bonjour\nbonjour***bonjour"},
		{"two atlabels", "{% label a %}-{% label b %}{% atlabel b %}B{% endatlabel %}{% atlabel a %}A{% endatlabel %}", "A-B"},
		{"rendered contents", "{% atlabel l %}{% upper x %}{% endatlabel %}[{% label l %}]", "[X]"},
		{"labels in loops", "{% atlabel l %}!{% endatlabel %}{% for i in a b %}{% i %}{% label l %}{% endfor %}", "a!b!"},
		{"labels in if", "{% atlabel l %}!{% endatlabel %}{% if def if %}x{% label l %}y{% endif %}", "x!y"},
	})
}

func TestAtlabelErrors(t *testing.T) {
	_, err := New().Process("{% atlabel yo %}a{% endatlabel %}", "test_atlabel")
	assert.IsError(t, err, preprocessor.ErrUndefinedLabel)
	assert.True(t, preprocessor.IsWarning(err))

	out, err := New(preprocessor.WithWarningMode(preprocessor.WarningHide)).
		Process("x{% atlabel yo %}a{% endatlabel %}", "test_atlabel")
	assert.NoError(t, err)
	assert.Equal(t, "x", out)

	_, err = New().Process("{% atlabel yo %}a{% endatlabel %}{% atlabel yo %}b{% endatlabel %}", "test_atlabel")
	assert.IsError(t, err, preprocessor.ErrInvalidArgument)

	_, err = New().Process("{% atlabel %}a{% endatlabel %}", "test_atlabel")
	assert.IsError(t, err, preprocessor.ErrInvalidArgument)
}

func TestEngineCanBeReused(t *testing.T) {
	p := New()
	for range 2 {
		out, err := p.Process("{% atlabel yo %}a{% endatlabel %}{% label yo %}", "test_reuse")
		assert.NoError(t, err)
		assert.Equal(t, "a", out)
	}

	_, err := p.Process("{% atlabel yo %}a{% endatlabel %}{% error %}", "test_reuse")
	assert.IsError(t, err, preprocessor.ErrUserError)
	out, err := p.Process("{% atlabel yo %}b{% endatlabel %}{% label yo %}", "test_reuse")
	assert.NoError(t, err)
	assert.Equal(t, "b", out)
}

func TestForDeflist(t *testing.T) {
	runProcessTests(t, "test_for_deflist", []processTest{
		{"range", "{% for x in range(10) %}{% x %},{% endfor %}", "0,1,2,3,4,5,6,7,8,9,"},
		{"range start", "{% for x in range(2,10) %}{% x %},{% endfor %}", "2,3,4,5,6,7,8,9,"},
		{"empty range", "{% for x in range(2_0,10) %}{% x %},{% endfor %}", ""},
		{"negative step", "{% for x in range(2_0,10,-1) %}{% x %},{% endfor %}", "20,19,18,17,16,15,14,13,12,11,"},
		{"step", "{% for x in range(0, 10, 3) %}{% x %};{% endfor %}", "0;3;6;9;"},
		{"words", "{% for x in  a\n b c \" def \" %}'{% x %}',{% endfor %}", "'a','b','c',' def ',"},
		{"lists",
			"{% deflist list a b c d %}{% deflist list2 1 2 3 4 %}" +
				"{% for x in range(4) %}{% list {% x %} %}{% list2 {% x %} %}{% endfor %}",
			"a1b2c3d4"},
		{"table",
			"{% deflist names alice john frank %}{% deflist ages 23 31 19 %}\n" +
				"{% for i in range(3) %}{% names {% i %} %} (age {% ages {% i %} %})\n{% endfor %}",
			"\nalice (age 23)\njohn (age 31)\nfrank (age 19)\n"},
		{"nested", "{% for i in range(2) %}{% for j in a b %}{% i %}{% j %} {% endfor %}{% endfor %}", "0a 0b 1a 1b "},
		{"variable is restored", "{% def x old %}{% for x in new %}{% x %}{% endfor %}{% x %}", "newold"},
		{"variable is removed", "{% for x in a %}{% endfor %}{% if ndef x %}ok{% endif %}", "ok"},
	})
}

func TestForErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no variable", "{% for in a %}{% endfor %}"},
		{"no in", "{% for x a b %}{% endfor %}"},
		{"zero step", "{% for x in range(0, 3, 0) %}{% endfor %}"},
		{"too many bounds", "{% for x in range(0, 3, 1, 2) %}{% endfor %}"},
		{"invalid bound", "{% for x in range(a) %}{% endfor %}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Process(tt.input, "test_for")
			assert.IsError(t, err, preprocessor.ErrInvalidArgument)
		})
	}
}

func TestCutPaste(t *testing.T) {
	runProcessTests(t, "test_cut_paste", []processTest{
		{"cut", "{% cut %}hello there!{% endcut %}hello:{% paste %}", "hello:hello there!"},
		{"named", "{% cut a %}content a{% endcut %}{% cut b %}content b{% endcut %}{% paste a %}{% paste b %}",
			"content acontent b"},
		{"rendered at paste", "{% def foo hi %}{% cut %}{% def foo bar1 %}{% endcut %}{% foo %}{% paste %}{% foo %}",
			"hibar1"},
		{"pre-render", "{% def foo hi %}{% cut --pre-render %}{% def foo bar1 %}{% endcut %}{% foo %}{% paste %}{% foo %}",
			"bar1bar1"},
		{"verbatim", "{% def foo hi %}{% cut %}{% def foo bar1 %}{% endcut %}{% foo %}{% paste --verbatim %}{% foo %}",
			"hi{% def foo bar1 %}hi"},
		{"pasted twice",
			"{% cut %}foo is {% foo %}{% endcut %}\n" +
				"{% def foo bar %}\n" +
				"first paste: {% paste %}\n" +
				"{% def foo notbar %}\n" +
				"second paste: {% paste %}",
			"\n\nfirst paste: foo is bar\n\nsecond paste: foo is notbar"},
	})
}

func TestPasteErrors(t *testing.T) {
	_, err := New().Process("{% paste nothing %}", "test_paste")
	assert.IsError(t, err, preprocessor.ErrUndefinedClip)

	_, err = New().Process("{% paste a b %}", "test_paste")
	assert.IsError(t, err, preprocessor.ErrInvalidArgument)

	_, err = New().Process("{% cut %}\n\n{% oops %}{% endcut %}{% paste %}", "test_paste")
	assert.IsError(t, err, preprocessor.ErrUndefinedCommand)
	var diag *preprocessor.Error
	assert.True(t, errors.As(err, &diag))
	assert.Equal(t, 3, diag.Line)
	assert.Contains(t, diag.Trace, "in pasted text")
}

func TestFindBranch(t *testing.T) {
	d := tokenizer.DefaultDelimiters()
	tests := []struct {
		input    string
		expected Branch
		found    bool
	}{
		{"qmldkf", Branch{}, false},
		{"abcd{% else %}defg", Branch{Begin: 4, End: 14, Else: true}, true},
		{"abcd{%  else\t\n %}defg", Branch{Begin: 4, End: 17, Else: true}, true},
		{"{% if something %}blad{%  else\t\n %}defg{% endif %}", Branch{}, false},
		{"{% if something %}{% else %}{% endif %}{% else %}", Branch{Begin: 39, End: 49, Else: true}, true},
		{"{% elif something %}", Branch{Begin: 0, End: 20, Condition: " something"}, true},
		{"{% elif {% a %} == b %}", Branch{Begin: 0, End: 23, Condition: " {% a %} == b"}, true},
		{"{% elsewhere %}{% else %}", Branch{Begin: 15, End: 25, Else: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			branch, found := FindBranch(d, tt.input)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.expected, branch)
		})
	}
}

func TestIf(t *testing.T) {
	runProcessTests(t, "test_if", []processTest{
		{"def", "{% if def if %}hello{% endif %}", "hello"},
		{"not def", "{% if not def if %}hello{% endif %}", ""},
		{"equal", "{% def foo bar %}{% if {% foo %}==bar %}yes{% def foo nn %}{% endif %}{% foo %}", "yesnn"},
		{"not equal", "{% def foo bar %}{% if {% foo %}!=bar %}yes{% def foo nn %}{% endif %}{% foo %}", "bar"},
		{"else", "{% if ndef if %}hello{% else %}there{% endif %}", "there"},
		{"elif", "{% if ndef if %}hello{% elif ndef def %}there{% elif def if %}general{% else %}kenobi{% endif %}", "general"},
		{"line in elif", "\n{% if ndef if %}\n\n{% elif ndef def %}\n\n{% elif def if %}{% line %}\n{% else %}kenobi{% endif %}", "\n6\n"},
		{"line after long branch",
			"\n{% if ndef if %}\n\n{% elif ndef def %}some long test because reasons\n\n{% elif def if %}{% line %}\n{% else %}kenobi{% endif %}",
			"\n6\n"},
		{"nested",
			"{% def foo bar %}{% if def foo %}{% if {% foo %}!=bar %}{% def foo si %}{% else %}{% def foo la %}{% endif %}{% else %}no foo{% endif %}{% foo %}",
			"la"},
		{"no branch taken", "a{% if 0 %}b{% elif false %}c{% endif %}d", "ad"},
		{"elif condition is expanded", "{% def v 2 %}{% if v == 1 %}one{% elif {% v %} == 2 %}two{% endif %}", "two"},
		{"strings", "{% if \"a b\" == \"a b\" and not \"\" %}same{% endif %}", "same"},
	})
}

func TestIfErrors(t *testing.T) {
	_, err := New().Process("{% if %}a{% endif %}", "test_if")
	assert.IsError(t, err, preprocessor.ErrInvalidCondition)

	_, err = New().Process("{% if a and %}a{% endif %}", "test_if")
	assert.IsError(t, err, preprocessor.ErrInvalidCondition)

	_, err = New().Process("{% if a %}a{% else %}b{% elif c %}c{% endif %}", "test_if")
	assert.IsError(t, err, preprocessor.ErrInvalidArgument)

	_, err = New().Process("{% if a %}a", "test_if")
	assert.IsError(t, err, preprocessor.ErrNoMatchingEndblock)
}

func TestMarkdown(t *testing.T) {
	runProcessTests(t, "test_markdown", []processTest{
		{"heading", "{% markdown %}# Title{% endmarkdown %}", "<h1>Title</h1>\n"},
		{"expanded first", "{% def who world %}{% markdown %}hello **{% who %}**{% endmarkdown %}", "<p>hello <strong>world</strong></p>\n"},
		{"strikethrough", "{% markdown %}~~old~~ new{% endmarkdown %}", "<p><del>old</del> new</p>\n"},
	})
}
