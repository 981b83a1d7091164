package preprocessor

import (
	"github.com/shibukawa/mlpproc/location"
	"github.com/shibukawa/mlpproc/tokenizer"
)

// Parse expands every directive of s and runs the final actions of this
// level. Handlers call it to expand nested text; the caller should push a
// context whose offset is the source position of s[0].
func (p *Preprocessor) Parse(s string) (string, error) {
	p.depth++
	defer func() {
		p.depth--
		if p.depth == -1 {
			p.labels.Reset()
		}
	}()

	if p.depth >= p.MaxRecursionDepth {
		return "", p.SendError(ErrRecursionDepthExceeded,
			"recursion depth exceeded.\nmaximum depth is %d", p.MaxRecursionDepth)
	}
	if p.labels.Height() <= p.depth {
		p.labels.NewLevel()
	}

	if p.context.Empty() {
		p.context.New(location.NewFile(location.NoFile, s), 0, "")
		defer p.context.Reset()
	} else {
		p.context.Update(p.context.Top().Offset, "")
		defer p.context.Pop()
	}
	frame := p.context.Top()

	tokens := p.delimiters.Find(s)
	preserved := len(p.finalActions)

	for len(tokens) > 1 {
		i := tokenizer.FindMatchingPair(tokens)
		if i == -1 {
			return "", p.sendErrorAt(tokens[0].Start, ErrNoMatchingPair,
				"no matching open/close pair found.")
		}

		relBegin := tokens[i].Start
		relCmdBegin := tokens[i].End
		relCmdEnd := max(tokens[i+1].Start, relCmdBegin)
		relEnd := max(tokens[i+1].End, relCmdEnd)
		offset := frame.TruePosition(relBegin) - relBegin
		pos := location.NewPosition(offset, relBegin, relCmdBegin, relCmdEnd, relEnd)

		substring := s[relCmdBegin:relCmdEnd]
		ident, args, argStart := tokenizer.IdentifierName(substring)
		if ident == "" {
			return "", p.sendErrorAt(relBegin, ErrInvalidCommandName,
				"invalid command name: %q.", substring)
		}
		pos.CmdArgBegin = pos.CmdBegin + argStart

		replaceEnd := relEnd
		var out string
		var err error
		if command, ok := p.registry.Command(ident); ok {
			p.context.Update(pos.CmdBegin, "in command "+ident)
			out, err = p.safeCall(func() (string, error) {
				return command.Call(p, pos, args)
			})
			p.context.Pop()
		} else if block, ok := p.registry.Block(ident); ok {
			begin, end := p.delimiters.FindMatchingEndblock(ident, s[relEnd:])
			if begin == -1 {
				return "", p.sendErrorAt(relBegin, ErrNoMatchingEndblock,
					"no matching endblock for %s block.\nadd %q to close it.", ident, p.delimiters.EndTag(ident))
			}
			pos.EndblockBegin = pos.End + begin
			pos.EndblockEnd = pos.End + end
			contents := s[relEnd : relEnd+begin]
			replaceEnd = relEnd + end

			p.context.Update(pos.CmdBegin, "in block "+ident)
			out, err = p.safeCall(func() (string, error) {
				return block.Call(p, pos, args, contents)
			})
			p.context.Pop()
		} else {
			return "", p.sendErrorAt(relBegin, ErrUndefinedCommand,
				"undefined command or block: %q.", ident)
		}
		if err != nil {
			return "", err
		}

		s, tokens = p.ReplaceString(relBegin, replaceEnd, s, out, tokens)
		tokens, err = p.removeLeadingCloseTokens(tokens)
		if err != nil {
			return "", err
		}
	}

	if len(tokens) == 1 {
		return "", p.unmatchedToken(tokens[0])
	}

	return p.runFinalActions(preserved, s)
}

// ParseAt parses s under a new context of the current file: offset is the
// source position of s[0] and description, when not empty, shows up in
// error traces.
func (p *Preprocessor) ParseAt(offset int, description, s string) (string, error) {
	p.context.Update(offset, description)
	defer p.context.Pop()

	return p.Parse(s)
}

func (p *Preprocessor) unmatchedToken(token tokenizer.Token) error {
	d := p.delimiters
	if token.Kind == tokenizer.OPEN {
		return p.sendErrorAt(token.Start, ErrUnmatchedOpenToken,
			"unmatched %q token.\nadd matching %q or use \"%sbegin%s\" to place it.", d.Begin, d.End, d.Begin, d.End)
	}
	return p.sendErrorAt(token.Start, ErrUnmatchedCloseToken,
		"unmatched %q token.\nadd matching %q or use \"%send%s\" to place it.", d.End, d.Begin, d.Begin, d.End)
}

// ReplaceString returns s with s[start:end] replaced by replacement and
// keeps the bookkeeping consistent: tokens overlapping [start, end) are
// dropped, later ones shifted, the change is recorded in the current context
// and the labels of the current level move with the text. A label level left
// by a nested parse is merged into the current one at start.
func (p *Preprocessor) ReplaceString(start, end int, s, replacement string, tokens []tokenizer.Token) (string, []tokenizer.Token) {
	delta := len(replacement) - (end - start)

	kept := tokens[:0]
	for _, token := range tokens {
		if token.Start < end && token.End > start {
			continue
		}
		if token.Start >= end {
			token = token.Shift(delta)
		}
		kept = append(kept, token)
	}

	if top := p.context.Top(); top != nil {
		top.AddReplacement(start, end, len(replacement))
	}
	p.labels.DilateLevel(p.depth, end, delta)
	if p.labels.Height() > p.depth+1 {
		p.labels.PopLevel(start)
	}

	return s[:start] + replacement + s[end:], kept
}

func (p *Preprocessor) removeLeadingCloseTokens(tokens []tokenizer.Token) ([]tokenizer.Token, error) {
	for len(tokens) > 0 && tokens[0].Kind == tokenizer.CLOSE {
		token := tokens[0]
		tokens = tokens[1:]
		if p.WarnUnmatchedClose {
			err := p.sendWarningAt(token.Start, ErrUnmatchedCloseToken,
				"unmatched closing token %q.", p.delimiters.End)
			if err != nil {
				return nil, err
			}
		}
	}
	return tokens, nil
}

// runFinalActions runs the queued actions that apply to the current level,
// then keeps the inherited actions (the first preserved ones) and those
// that outlive their level.
func (p *Preprocessor) runFinalActions(preserved int, s string) (string, error) {
	p.context.Update(p.context.Top().Offset, "in final actions")
	defer p.context.Pop()

	kept := make([]finalAction, 0, len(p.finalActions))
	for i := 0; i < len(p.finalActions); i++ {
		fa := p.finalActions[i]
		if p.runsAtCurrentLevel(fa) {
			out, err := p.safeCall(func() (string, error) {
				return fa.action(p, s)
			})
			if err != nil {
				return "", err
			}
			s = out
		}

		switch {
		case i < preserved || fa.runAt.Has(ParallelChildren):
			kept = append(kept, fa)
		case fa.runAt.Has(StrictParentLevels):
			fa.level--
			kept = append(kept, fa)
		}
	}
	p.finalActions = kept

	return s, nil
}

func (p *Preprocessor) runsAtCurrentLevel(fa finalAction) bool {
	switch {
	case fa.level == p.depth:
		return fa.runAt.Has(CurrentLevel)
	case fa.level < p.depth:
		return fa.runAt.Has(StrictSubLevels)
	default:
		return fa.runAt.Has(StrictParentLevels)
	}
}
