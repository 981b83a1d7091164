package commands

import (
	"strings"

	"github.com/shibukawa/mlpproc/conditions"
	"github.com/shibukawa/mlpproc/location"
	"github.com/shibukawa/mlpproc/preprocessor"
	"github.com/shibukawa/mlpproc/tokenizer"
)

// Branch tag of an if block
type Branch struct {
	Begin     int
	End       int
	Else      bool
	Condition string
}

// FindBranch returns the first "else" or "elif cond" tag of s that is not
// inside a nested if block, or ok false.
func FindBranch(d tokenizer.Delimiters, s string) (branch Branch, ok bool) {
	tokens := d.Find(s)
	ifDepth := 0
	tagDepth := 0
	tagStart := 0
	for _, token := range tokens {
		if token.Kind == tokenizer.OPEN {
			if tagDepth == 0 {
				tagStart = token.Start
			}
			tagDepth++
			continue
		}
		if tagDepth == 0 {
			continue
		}
		tagDepth--
		if tagDepth > 0 {
			continue
		}

		body := s[tagStart+len(d.Begin) : max(token.Start, tagStart+len(d.Begin))]
		name, args, _ := tokenizer.IdentifierName(body)
		switch {
		case name == "if":
			ifDepth++
		case name == d.EndBlock+"if":
			ifDepth--
		case ifDepth == 0 && name == "else":
			return Branch{Begin: tagStart, End: token.End, Else: true}, true
		case ifDepth == 0 && name == "elif":
			return Branch{Begin: tagStart, End: token.End, Condition: args}, true
		}
	}
	return Branch{}, false
}

type ifBranch struct {
	condition string
	// offsets in the block contents
	conditionAt int
	textAt      int
	text        string
	isElse      bool
}

// splitBranches cuts the contents of an if block on its top level else and
// elif tags.
func splitBranches(p *preprocessor.Preprocessor, condition, contents string) ([]ifBranch, error) {
	d := p.Delimiters()
	branches := []ifBranch{{condition: condition}}
	offset := 0
	for {
		rest := contents[offset:]
		tag, ok := FindBranch(d, rest)
		if !ok {
			branches[len(branches)-1].text = rest
			return branches, nil
		}
		last := &branches[len(branches)-1]
		last.text = rest[:tag.Begin]
		if last.isElse {
			return nil, p.SendError(preprocessor.ErrInvalidArgument, "invalid if block.\nno else or elif tag may follow the else tag.")
		}
		branches = append(branches, ifBranch{
			condition:   tag.Condition,
			conditionAt: offset + tag.Begin + len(d.Begin),
			textAt:      offset + tag.End,
			isElse:      tag.Else,
		})
		offset += tag.End
	}
}

func blockIf(p *preprocessor.Preprocessor, pos location.Position, args, contents string) (string, error) {
	branches, err := splitBranches(p, args, contents)
	if err != nil {
		return "", err
	}

	for i, branch := range branches {
		if !branch.isElse {
			condition := branch.condition
			if i > 0 {
				// elif conditions were not expanded with the tag of the block
				condition, err = p.ParseAt(pos.End+branch.conditionAt, "in condition", condition)
				if err != nil {
					return "", err
				}
			}
			ok, err := conditions.Eval(condition, p.Defined)
			if err != nil {
				return "", p.SendError(preprocessor.ErrInvalidCondition, "invalid condition %q.\n%s", strings.TrimSpace(condition), err)
			}
			if !ok {
				continue
			}
		}
		return p.ParseAt(pos.End+branch.textAt, "", branch.text)
	}

	return "", nil
}
