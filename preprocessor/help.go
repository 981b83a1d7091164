package preprocessor

import (
	"fmt"
	"strings"

	"github.com/shibukawa/mlpproc/tokenizer"
)

const programHelp = `%[1]s version %[2]s
Simple program to preprocess files inspired by the C preprocessor

Files to process can contain:
 - preprocessor commands "%[3]scommand_name [args]%[4]s"
 - preprocessor blocks "%[3]sblock_name [args]%[4]s... %[3]sendblock_name%[4]s"
A list of commands and blocks can be obtained with "--doc commands"

Usage: %[1]s [--flags] [input_file]
  default input_file is stdin

Options:
  -o --output <file>      write output to file (default stdout)
  -w --warnings <mode>    hide, print or error (default print)
  -b --begin <string>     change the begin token (default "%[3]s")
  -e --end <string>       change the end token (default "%[4]s")
  -d --define <name>[=<value>]
                          define a command printing value
                          can be used multiple times
  -i --include <path>     add a directory to the include path
                          can be used multiple times
     --config <file>      configuration file (default mlpproc.yaml)
     --env-file <file>    environment file loaded before processing
     --doc [topic]        show this help, "commands" or a command's help
     --version            show version and exit
`

// Help returns the program help for topic "", the list of commands and
// blocks for "commands", or the documentation of one directive.
func (p *Preprocessor) Help(topic string) string {
	switch topic {
	case "":
		return fmt.Sprintf(programHelp, Name, Version, tokenizer.DefaultBegin, tokenizer.DefaultEnd)
	case "commands":
		return "Commands:\n  " + strings.Join(p.registry.CommandNames(), "\n  ") +
			"\n\nBlocks:\n  " + strings.Join(p.registry.BlockNames(), "\n  ") + "\n"
	}

	kind, doc, ok := p.registry.Doc(topic)
	if !ok {
		return fmt.Sprintf("%s help:\nunknown command or block %q\n", Name, topic)
	}
	doc = strings.TrimSpace(doc)
	if doc == "" {
		doc = "no help available"
	}
	return fmt.Sprintf("%s: help on %s %s:\n  %s\n", Name, kind, topic, strings.ReplaceAll(doc, "\n", "\n  "))
}
