package tokenizer

import (
	"regexp"
)

// endblockMatcher holds the start and end tag expressions of one block name.
type endblockMatcher struct {
	start *regexp.Regexp
	end   *regexp.Regexp
}

func (d Delimiters) endblockMatcher(name string) endblockMatcher {
	begin := regexp.QuoteMeta(d.Begin)
	end := regexp.QuoteMeta(d.End)
	quotedName := regexp.QuoteMeta(name)

	return endblockMatcher{
		start: regexp.MustCompile(`(?m)` + begin + `\s*` + quotedName + `(?:` + end + `|` + IdentifierEndPattern + `)`),
		end:   regexp.MustCompile(`(?m)` + begin + `\s*` + regexp.QuoteMeta(d.EndBlock) + quotedName + `\s*` + end),
	}
}

// EndTag returns the canonical closing tag of a block, e.g. "{% endrepeat %}".
func (d Delimiters) EndTag(name string) string {
	return d.Begin + d.EndBlock + name + d.End
}

// FindMatchingEndblock finds the closing tag of block name in s, the text
// that follows the block's opening tag. Opening tags of blocks with the same
// name found on the way must be closed first. It returns the start and end
// index of the closing tag, or (-1, -1) if the block is never closed.
func (d Delimiters) FindMatchingEndblock(name, s string) (int, int) {
	m := d.endblockMatcher(name)

	pos := 0
	depth := 0
	for {
		endLoc := m.end.FindStringIndex(s[pos:])
		if endLoc == nil {
			return -1, -1
		}
		startLoc := m.start.FindStringIndex(s[pos:])

		if startLoc != nil && startLoc[0] < endLoc[0] {
			depth++
			pos += startLoc[1]
			continue
		}

		depth--
		if depth == -1 {
			return pos + endLoc[0], pos + endLoc[1]
		}
		pos += endLoc[1]
	}
}
