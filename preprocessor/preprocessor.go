package preprocessor

import (
	"io"
	"os"
	"slices"

	"github.com/shibukawa/mlpproc/location"
	"github.com/shibukawa/mlpproc/tokenizer"
)

// Program identity
const (
	Name    = "mlpproc"
	Version = "1.0.0"
)

// DefaultMaxRecursionDepth bounds nested parses
const DefaultMaxRecursionDepth = 20

// ExitCode is used by PrintAndExit
const ExitCode = 2

// ErrorMode selects what SendError does besides returning the error.
type ErrorMode int

const (
	Raise ErrorMode = iota
	PrintAndRaise
	// PrintAndExit prints the error; Process then exits with ExitCode.
	PrintAndExit
)

// WarningMode selects what SendWarning does.
type WarningMode int

const (
	WarningHide WarningMode = iota
	WarningPrint
	WarningRaise
	WarningPrintAndRaise
	WarningAsError
)

type finalAction struct {
	level  int
	runAt  RunAt
	action FinalAction
}

// Preprocessor expands the directives of a document. One value processes
// one document at a time and is not safe for concurrent use.
type Preprocessor struct {
	MaxRecursionDepth  int
	SafeCalls          bool
	ErrorMode          ErrorMode
	WarningMode        WarningMode
	WarnUnmatchedClose bool
	IncludePaths       []string
	Stderr             io.Writer

	// Vars holds per-engine state of the directive handlers.
	Vars map[string]any

	registry     *Registry
	delimiters   tokenizer.Delimiters
	depth        int
	finalActions []finalAction
	labels       LabelStack
	context      location.Stack
	exit         func(code int)
}

// Option is a function that configures Preprocessor
type Option func(*Preprocessor)

// WithDelimiters sets the begin, end and endblock tokens
func WithDelimiters(d tokenizer.Delimiters) Option {
	return func(p *Preprocessor) {
		p.delimiters = d
	}
}

// WithMaxRecursionDepth sets the nesting limit
func WithMaxRecursionDepth(depth int) Option {
	return func(p *Preprocessor) {
		p.MaxRecursionDepth = depth
	}
}

// WithErrorMode sets the error mode
func WithErrorMode(mode ErrorMode) Option {
	return func(p *Preprocessor) {
		p.ErrorMode = mode
	}
}

// WithWarningMode sets the warning mode
func WithWarningMode(mode WarningMode) Option {
	return func(p *Preprocessor) {
		p.WarningMode = mode
	}
}

// WithSafeCalls enables or disables panic and foreign error conversion
func WithSafeCalls(safe bool) Option {
	return func(p *Preprocessor) {
		p.SafeCalls = safe
	}
}

// WithStderr sets where printed diagnostics go
func WithStderr(w io.Writer) Option {
	return func(p *Preprocessor) {
		p.Stderr = w
	}
}

// WithIncludePaths sets the directories searched by include
func WithIncludePaths(paths ...string) Option {
	return func(p *Preprocessor) {
		p.IncludePaths = append(p.IncludePaths, paths...)
	}
}

// WithExitFunc replaces os.Exit for PrintAndExit
func WithExitFunc(exit func(code int)) Option {
	return func(p *Preprocessor) {
		p.exit = exit
	}
}

// New creates a preprocessor using a private copy of registry.
func New(registry *Registry, opts ...Option) *Preprocessor {
	if registry == nil {
		registry = NewRegistry()
	}
	p := &Preprocessor{
		MaxRecursionDepth: DefaultMaxRecursionDepth,
		SafeCalls:         true,
		ErrorMode:         Raise,
		WarningMode:       WarningRaise,
		Stderr:            os.Stderr,
		Vars:              make(map[string]any),
		registry:          registry.Clone(),
		delimiters:        tokenizer.DefaultDelimiters(),
		depth:             -1,
		exit:              os.Exit,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.resetFinalActions()

	return p
}

func (p *Preprocessor) resetFinalActions() {
	p.finalActions = p.finalActions[:0]
	for _, d := range p.registry.finalActions {
		p.finalActions = append(p.finalActions, finalAction{level: 0, runAt: d.runAt, action: d.action})
	}
}

// Registry returns the engine's own command table.
func (p *Preprocessor) Registry() *Registry {
	return p.registry
}

// Delimiters returns the current tokens
func (p *Preprocessor) Delimiters() tokenizer.Delimiters {
	return p.delimiters
}

// SetDelimiters changes the tokens used by subsequent parses.
func (p *Preprocessor) SetDelimiters(d tokenizer.Delimiters) error {
	if err := d.Validate(); err != nil {
		return err
	}
	p.delimiters = d
	return nil
}

// Context returns the diagnostic context stack.
func (p *Preprocessor) Context() *location.Stack {
	return &p.context
}

// Labels returns the label stack.
func (p *Preprocessor) Labels() *LabelStack {
	return &p.labels
}

// Depth returns the current recursion depth, -1 outside of Parse.
func (p *Preprocessor) Depth() int {
	return p.depth
}

// AddFinalAction queues action at the current recursion level.
func (p *Preprocessor) AddFinalAction(action FinalAction, runAt RunAt) {
	p.finalActions = append(p.finalActions, finalAction{level: p.depth, runAt: runAt, action: action})
}

// PendingFinalActions returns how many final actions are queued.
func (p *Preprocessor) PendingFinalActions() int {
	return len(p.finalActions)
}

// Process parses a whole document read from filename. The engine state
// (contexts, labels, queued actions) is reset afterwards. In PrintAndExit
// mode a failure terminates the process.
func (p *Preprocessor) Process(s, filename string) (string, error) {
	if err := p.delimiters.Validate(); err != nil {
		return "", err
	}
	p.context.Reset()
	p.context.New(location.NewFile(filename, s), 0, "")

	out, err := p.Parse(s)
	p.reset()
	if err != nil {
		if p.ErrorMode == PrintAndExit && !IsWarning(err) {
			p.exit(ExitCode)
		}
		return "", err
	}

	return out, nil
}

func (p *Preprocessor) reset() {
	p.context.Reset()
	p.labels.Reset()
	p.depth = -1
	p.resetFinalActions()
	clear(p.Vars)
}

// Defined reports whether name is a command or block of this engine.
func (p *Preprocessor) Defined(name string) bool {
	return p.registry.IsDefined(name)
}

// IncludeSearchPath returns the include directories, in search order.
func (p *Preprocessor) IncludeSearchPath() []string {
	return slices.Clone(p.IncludePaths)
}
