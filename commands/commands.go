// Package commands provides the built-in commands, blocks and final actions
// of mlpproc.
package commands

import (
	"github.com/shibukawa/mlpproc/preprocessor"
)

type commandDef struct {
	name    string
	command preprocessor.CommandFunc
	doc     string
}

type blockDef struct {
	name  string
	block preprocessor.BlockFunc
	doc   string
}

var builtinCommands = []commandDef{
	{"error", cmdError, `
raises an error.
usage: error [msg]`},
	{"warning", cmdWarning, `
raises a warning.
usage: warning [msg]`},
	{"version", cmdVersion, `
prints the preprocessor version.`},
	{"file", cmdFile, `
prints the name of the current file.`},
	{"line", cmdLine, `
prints the current line number.`},
	{"env", cmdEnv, `
prints an environment variable.
usage: env <name> [<default>]`},
	{"uuid", cmdUUID, `
prints a random UUID.`},
	{"date", cmdDate, `
prints the current date.
usage: date [format=YYYY-MM-DD]
  format specifies year with YYYY or YY, month with MM or M,
  day with DD or D, hour with hh or h, minutes with mm or m
  and seconds with ss or s`},
	{"eval", cmdEval, `
evaluates a CEL expression and prints the result.
usage: eval <expression>
  environment variables are available as env["NAME"]`},
	{"def", cmdDef, `
defines a command, inspired by the C preprocessor's define.
usage:
  def <ident> <replacement>
    leading and trailing spaces are removed
  def <ident> " replacement with leading/trailing spaces "
    the string is unescaped
  def <ident>(<param1>, <param2>) replacement
    defines a macro, parameters are substituted as whole words
    call it with {% ident arg1 arg2 %}`},
	{"undef", cmdUndef, `
removes a command or block.
usage: undef <name>`},
	{"deflist", cmdDeflist, `
defines a list.
usage: deflist <name> space separated "list of" elements
  <name> prints the list
  <name> <index> prints one element, negative indexes count from the end`},
	{"begin", cmdBegin, `
prints the begin token.
usage: begin [uint]
  begin 0 is begin, begin <n> prints the call of begin <n-1>`},
	{"end", cmdEnd, `
prints the end token.
usage: end [uint]
  end 0 is end, end <n> prints the call of end <n-1>`},
	{"call", cmdCall, `
prints its arguments between the begin and end tokens.
usage: call <args>`},
	{"label", cmdLabel, `
places a label, used by atlabel blocks.
usage: label <name>`},
	{"paste", cmdPaste, `
pastes the contents of a cut block.
usage: paste [-v|--verbatim] [<clipboard_name>]
  --verbatim pastes without parsing`},
	{"include", cmdInclude, `
places the contents of a file.
usage: include [-v|--verbatim] [-b|--begin <str>] [-e|--end <str>] <file_path>
  the file is searched as given, next to the current file,
  then in the include directories.
  --verbatim includes the file without parsing it
  --begin and --end change the tokens while parsing the file`},
	{"strip_empty_lines", finalActionCommand("strip_empty_lines", StripEmptyLines), `
removes empty lines (lines containing only whitespace)
from the current block.`},
	{"strip_leading_whitespace", finalActionCommand("strip_leading_whitespace", StripLeadingWhitespace), `
removes leading whitespace (indentation) from the current block.`},
	{"strip_trailing_whitespace", finalActionCommand("strip_trailing_whitespace", StripTrailingWhitespace), `
removes trailing whitespace from the current block.`},
	{"fix_last_line", finalActionCommand("fix_last_line", FixLastLine), `
ensures the current block ends with a single line break
(unless it is empty).`},
	{"fix_first_line", finalActionCommand("fix_first_line", FixFirstLine), `
removes the blank lines at the start of the current block.`},
	{"replace", cmdReplace, `
finds and replaces text.
usage: replace [--options] pattern replacement [text]
  if text is present, replacement takes place in text,
  else it takes place in the current block.
options:
  -c --count <number> number of occurrences to replace (default all)
  -i --ignore-case    pattern search ignores case
  -w --whole-word     pattern only matches whole words, occurrences not
                      preceded or followed by a letter, digit or underscore
  -r --regex          pattern is a regular expression, capture groups
                      can be placed in replacement with \1, \2...
                      incompatible with --whole-word`},
	{"upper", caseCommand(upperCase), `
converts text to UPPER CASE.
usage: upper [text]
  without text, converts the current block`},
	{"lower", caseCommand(lowerCase), `
converts text to lower case.
usage: lower [text]
  without text, converts the current block`},
	{"capitalize", caseCommand(capitalizeCase), `
converts text to Capitalized case.
usage: capitalize [text]
  without text, converts the current block`},
	{"title", caseCommand(titleCase), `
converts text to Title Case.
usage: title [text]
  without text, converts the current block`},
}

var builtinBlocks = []blockDef{
	{"void", blockVoid, `
processes its contents but prints nothing.`},
	{"block", blockBlock, `
processes its contents, final actions queued inside
do not affect the rest of the document.`},
	{"verbatim", blockVerbatim, `
prints its contents without processing them.
stops at the first endverbatim not matching a nested verbatim.`},
	{"repeat", blockRepeat, `
renders its contents once and prints them several times.
usage: repeat <uint > 0>`},
	{"atlabel", blockAtlabel, `
renders its contents and places them at every label of the same name.
usage: atlabel <label>`},
	{"cut", blockCut, `
stores its contents for paste instead of printing them.
usage: cut [--pre-render] [<clipboard_name>]
  --pre-render renders the contents when cutting`},
	{"for", blockFor, `
repeats its contents for each value of a variable.
usage:
  for <ident> in range([start,] stop [, step])
  for <ident> in space separated "list of" values
  the value is printed by the command <ident>`},
	{"if", blockIf, `
renders its contents when a condition holds.
usage: if <condition> ... [elif <condition> ...] [else ...] endif
  conditions combine words with and, or, not and parentheses:
    def <name>, ndef <name>   tests whether a command is defined
    a == b, a != b            compares words or "strings"
    word                      false for "", 0 and false`},
	{"markdown", blockMarkdown, `
renders its contents as markdown (GitHub flavored) to HTML.`},
}

// Defaults returns a registry with every built-in command, block and the
// atlabel final action.
func Defaults() *preprocessor.Registry {
	r := preprocessor.NewRegistry()
	for _, c := range builtinCommands {
		r.DefineCommand(c.name, c.command, c.doc)
	}
	for _, b := range builtinBlocks {
		r.DefineBlock(b.name, b.block, b.doc)
	}
	r.AddFinalAction(placeAtlabels, preprocessor.CurrentLevel)

	return r
}

// New creates a preprocessor with the built-in directives.
func New(opts ...preprocessor.Option) *preprocessor.Preprocessor {
	return preprocessor.New(Defaults(), opts...)
}
