package preprocessor

import (
	"maps"
	"slices"

	"github.com/shibukawa/mlpproc/location"
)

// Command is a handler for "{% name args %}". The returned string replaces
// the whole directive.
type Command interface {
	Call(p *Preprocessor, pos location.Position, args string) (string, error)
}

// Block is a handler for "{% name args %}contents{% endname %}". The
// returned string replaces everything from the opening to the closing tag.
type Block interface {
	Call(p *Preprocessor, pos location.Position, args, contents string) (string, error)
}

// CommandFunc adapts a function to Command
type CommandFunc func(p *Preprocessor, pos location.Position, args string) (string, error)

func (f CommandFunc) Call(p *Preprocessor, pos location.Position, args string) (string, error) {
	return f(p, pos, args)
}

// BlockFunc adapts a function to Block
type BlockFunc func(p *Preprocessor, pos location.Position, args, contents string) (string, error)

func (f BlockFunc) Call(p *Preprocessor, pos location.Position, args, contents string) (string, error) {
	return f(p, pos, args, contents)
}

// FinalAction transforms the fully expanded text of one parse level.
type FinalAction func(p *Preprocessor, s string) (string, error)

// RunAt selects the recursion levels a final action runs at, relative to
// the level it was queued at.
type RunAt uint8

const (
	CurrentLevel RunAt = 1 << iota
	StrictSubLevels
	StrictParentLevels
	// ParallelChildren keeps the action queued after its level finished, so
	// it also runs in later sibling parses.
	ParallelChildren

	CurrentAndSubLevels    = CurrentLevel | StrictSubLevels
	CurrentAndParentLevels = CurrentLevel | StrictParentLevels
	AllLevels              = CurrentLevel | StrictSubLevels | StrictParentLevels
)

// Has reports whether every bit of flag is set
func (r RunAt) Has(flag RunAt) bool {
	return r&flag == flag
}

type commandEntry struct {
	command Command
	doc     string
}

type blockEntry struct {
	block Block
	doc   string
}

type defaultAction struct {
	action FinalAction
	runAt  RunAt
}

// Registry maps directive names to handlers. Engines clone the registry
// they are built from, so definitions made while processing a document never
// leak into the source table.
type Registry struct {
	commands     map[string]commandEntry
	blocks       map[string]blockEntry
	finalActions []defaultAction
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]commandEntry),
		blocks:   make(map[string]blockEntry),
	}
}

// DefineCommand registers (or replaces) a command.
func (r *Registry) DefineCommand(name string, command Command, doc string) {
	r.commands[name] = commandEntry{command: command, doc: doc}
}

// DefineBlock registers (or replaces) a block.
func (r *Registry) DefineBlock(name string, block Block, doc string) {
	r.blocks[name] = blockEntry{block: block, doc: doc}
}

// AddFinalAction registers an action queued at level 0 of every run.
func (r *Registry) AddFinalAction(action FinalAction, runAt RunAt) {
	r.finalActions = append(r.finalActions, defaultAction{action: action, runAt: runAt})
}

// Command looks a command up
func (r *Registry) Command(name string) (Command, bool) {
	e, ok := r.commands[name]
	return e.command, ok
}

// Block looks a block up
func (r *Registry) Block(name string) (Block, bool) {
	e, ok := r.blocks[name]
	return e.block, ok
}

// IsDefined reports whether name is a command or a block.
func (r *Registry) IsDefined(name string) bool {
	_, isCommand := r.commands[name]
	_, isBlock := r.blocks[name]
	return isCommand || isBlock
}

// Undefine removes the command and the block called name. It reports
// whether anything was removed.
func (r *Registry) Undefine(name string) bool {
	found := r.IsDefined(name)
	delete(r.commands, name)
	delete(r.blocks, name)
	return found
}

// UndefineCommand removes the command called name and keeps a block of
// the same name.
func (r *Registry) UndefineCommand(name string) bool {
	_, found := r.commands[name]
	delete(r.commands, name)
	return found
}

// CommandNames returns the sorted command names
func (r *Registry) CommandNames() []string {
	return slices.Sorted(maps.Keys(r.commands))
}

// BlockNames returns the sorted block names
func (r *Registry) BlockNames() []string {
	return slices.Sorted(maps.Keys(r.blocks))
}

// Doc returns the kind ("command" or "block") and the help text of name.
func (r *Registry) Doc(name string) (kind, doc string, ok bool) {
	if e, found := r.commands[name]; found {
		return "command", e.doc, true
	}
	if e, found := r.blocks[name]; found {
		return "block", e.doc, true
	}
	return "", "", false
}

// Clone returns an independent copy. Handlers themselves are shared.
func (r *Registry) Clone() *Registry {
	clone := NewRegistry()
	maps.Copy(clone.commands, r.commands)
	maps.Copy(clone.blocks, r.blocks)
	clone.finalActions = slices.Clone(r.finalActions)

	return clone
}
