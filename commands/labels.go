package commands

import (
	"strings"

	"github.com/shibukawa/mlpproc/location"
	"github.com/shibukawa/mlpproc/preprocessor"
)

// Keys of the handler state stored in Preprocessor.Vars
const (
	atlabelKey   = "atlabel"
	clipboardKey = "clipboard"
)

type atlabelEntry struct {
	label string
	text  string
}

// atlabelStore keeps the rendered atlabel blocks in document order.
type atlabelStore struct {
	entries []atlabelEntry
}

func (s *atlabelStore) has(label string) bool {
	for _, e := range s.entries {
		if e.label == label {
			return true
		}
	}
	return false
}

func atlabels(p *preprocessor.Preprocessor) *atlabelStore {
	if s, ok := p.Vars[atlabelKey].(*atlabelStore); ok {
		return s
	}
	s := &atlabelStore{}
	p.Vars[atlabelKey] = s
	return s
}

type clip struct {
	file   *location.File
	offset int
	text   string
}

func clipboard(p *preprocessor.Preprocessor) map[string]clip {
	if c, ok := p.Vars[clipboardKey].(map[string]clip); ok {
		return c
	}
	c := make(map[string]clip)
	p.Vars[clipboardKey] = c
	return c
}

func cmdLabel(p *preprocessor.Preprocessor, pos location.Position, args string) (string, error) {
	label := strings.TrimSpace(args)
	if label == "" {
		return "", p.SendError(preprocessor.ErrInvalidArgument, "empty label name.")
	}
	p.Labels().Add(label, pos.RelBegin())

	return "", nil
}

func blockAtlabel(p *preprocessor.Preprocessor, pos location.Position, args, contents string) (string, error) {
	label := strings.TrimSpace(args)
	if label == "" {
		return "", p.SendError(preprocessor.ErrInvalidArgument, "empty label name.")
	}
	store := atlabels(p)
	if store.has(label) {
		return "", p.SendError(preprocessor.ErrInvalidArgument, "multiple atlabel blocks with same label %q.", label)
	}

	text, err := p.ParseAt(pos.End, "", contents)
	if err != nil {
		return "", err
	}
	store.entries = append(store.entries, atlabelEntry{label: label, text: text})

	return "", nil
}

// placeAtlabels inserts the text of every atlabel block at each matching
// label of the current level.
func placeAtlabels(p *preprocessor.Preprocessor, s string) (string, error) {
	store, ok := p.Vars[atlabelKey].(*atlabelStore)
	if !ok {
		return s, nil
	}
	delete(p.Vars, atlabelKey)

	labels := p.Labels()
	for _, e := range store.entries {
		if !labels.Has(e.label) {
			if err := p.SendWarning(preprocessor.ErrUndefinedLabel, "no matching label for atlabel block %q.", e.label); err != nil {
				return "", err
			}
			continue
		}
		// positions move as text is inserted
		positions := labels.Positions(e.label)
		for i := range positions {
			at := min(max(positions[i], 0), len(s))
			s, _ = p.ReplaceString(at, at, s, e.text, nil)
		}
		labels.Delete(e.label)
	}

	return s, nil
}

func blockCut(p *preprocessor.Preprocessor, pos location.Position, args, contents string) (string, error) {
	const usage = "cut [--pre-render] [<clipboard_name>]"
	fs := newFlagSet("cut")
	preRender := fs.BoolP("pre-render", "p", false, "render the contents before storing them")
	rest, err := parseFlags(p, fs, args, usage)
	if err != nil {
		return "", err
	}
	if len(rest) > 1 {
		return "", p.SendError(preprocessor.ErrInvalidArgument, "invalid argument.\nusage: %s", usage)
	}
	name := ""
	if len(rest) == 1 {
		name = rest[0]
	}

	text := contents
	if *preRender {
		text, err = p.ParseAt(pos.End, "", contents)
		if err != nil {
			return "", err
		}
	}
	clipboard(p)[name] = clip{file: p.Context().Top().File, offset: pos.End, text: text}

	return "", nil
}

func cmdPaste(p *preprocessor.Preprocessor, _ location.Position, args string) (string, error) {
	const usage = "paste [-v|--verbatim] [<clipboard_name>]"
	fs := newFlagSet("paste")
	verbatim := fs.BoolP("verbatim", "v", false, "paste without parsing")
	rest, err := parseFlags(p, fs, args, usage)
	if err != nil {
		return "", err
	}
	if len(rest) > 1 {
		return "", p.SendError(preprocessor.ErrInvalidArgument, "invalid argument.\nusage: %s", usage)
	}
	name := ""
	if len(rest) == 1 {
		name = rest[0]
	}

	c, ok := clipboard(p)[name]
	if !ok {
		return "", p.SendWarning(preprocessor.ErrUndefinedClip, "trying to paste undefined clipboard %q.", name)
	}
	if *verbatim {
		return c.text, nil
	}

	p.Context().New(c.file, c.offset, "in pasted text")
	defer p.Context().Pop()

	return p.Parse(c.text)
}
