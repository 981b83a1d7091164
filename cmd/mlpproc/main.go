package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/shibukawa/mlpproc"
	"github.com/shibukawa/mlpproc/location"
	"github.com/shibukawa/mlpproc/preprocessor"
)

const (
	stdinName  = "stdin"
	stdoutName = "stdout"
)

var errorLabel = color.New(color.FgRed, color.Bold).SprintFunc()

// CLI represents the command-line interface
type CLI struct {
	Input    string           `arg:"" optional:"" help:"File to preprocess (default stdin)"`
	Output   string           `help:"Write output to file (default stdout)" short:"o" placeholder:"FILE"`
	Warnings string           `help:"Warning mode: hide, print or error (default print)" short:"w" placeholder:"MODE"`
	Begin    string           `help:"Change the begin token" short:"b" placeholder:"STRING"`
	End      string           `help:"Change the end token" short:"e" placeholder:"STRING"`
	Define   []string         `help:"Define a command printing value, can be repeated" short:"d" placeholder:"NAME[=VALUE]" sep:"none"`
	Include  []string         `help:"Add a directory to the include path, can be repeated" short:"i" placeholder:"DIR" sep:"none"`
	Config   string           `help:"Configuration file path" default:"mlpproc.yaml"`
	EnvFile  []string         `help:"Environment file loaded before processing, can be repeated" placeholder:"FILE" sep:"none"`
	Doc      string           `help:"Show help on a topic: help, commands or a command name" placeholder:"TOPIC"`
	Version  kong.VersionFlag `help:"Show version information"`
}

// Streams are the standard streams used by a run
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], Streams{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}))
}

// run parses args and processes the input, returning the exit code.
func run(args []string, streams Streams) int {
	var cli CLI

	exitCode := -1
	parser, err := kong.New(&cli,
		kong.Name(preprocessor.Name),
		kong.Description("Simple program to preprocess files inspired by the C preprocessor"),
		kong.Vars{"version": preprocessor.Name + " version " + preprocessor.Version},
		kong.Writers(streams.Stdout, streams.Stderr),
		kong.Exit(func(code int) {
			if exitCode < 0 {
				exitCode = code
			}
		}),
	)
	if err != nil {
		printError(streams.Stderr, err)
		return preprocessor.ExitCode
	}

	_, err = parser.Parse(args)
	if exitCode >= 0 {
		// --help or --version
		return exitCode
	}
	if err != nil {
		printError(streams.Stderr, err)
		return preprocessor.ExitCode
	}

	if err := cli.Run(streams); err != nil {
		var diag *preprocessor.Error
		if !errors.As(err, &diag) {
			// diagnostics were printed by the preprocessor
			printError(streams.Stderr, err)
		}
		return preprocessor.ExitCode
	}

	return 0
}

// Run preprocesses the input
func (cli *CLI) Run(streams Streams) error {
	for _, path := range cli.EnvFile {
		if err := mlpproc.LoadEnvFile(path); err != nil {
			return err
		}
	}

	config, err := mlpproc.LoadConfig(cli.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cli.applyTo(config); err != nil {
		return err
	}

	p, err := mlpproc.New(config,
		preprocessor.WithErrorMode(preprocessor.PrintAndRaise),
		preprocessor.WithStderr(streams.Stderr),
	)
	if err != nil {
		return err
	}

	if cli.Doc != "" {
		topic := cli.Doc
		if topic == "help" {
			topic = ""
		}
		_, err := io.WriteString(streams.Stdout, p.Help(topic))
		return err
	}

	inputName, outputName := cli.Input, cli.Output
	if inputName == "" {
		inputName = stdinName
	}
	if outputName == "" {
		outputName = stdoutName
	}
	p.Registry().DefineCommand("input", nameCommand(inputName), "prints the input file name.")
	p.Registry().DefineCommand("output", nameCommand(outputName), "prints the output file name.")

	input, err := cli.readInput(streams.Stdin)
	if err != nil {
		return err
	}

	out, err := p.Process(input, inputName)
	if err != nil {
		return err
	}

	if cli.Output == "" {
		_, err = io.WriteString(streams.Stdout, out)
		return err
	}
	if err := os.WriteFile(cli.Output, []byte(out), 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	return nil
}

// applyTo overrides config with the command line flags
func (cli *CLI) applyTo(config *mlpproc.Config) error {
	if cli.Warnings != "" {
		config.Warnings = cli.Warnings
	}
	if cli.Begin != "" {
		config.Begin = cli.Begin
	}
	if cli.End != "" {
		config.End = cli.End
	}
	for _, define := range cli.Define {
		name, value, err := mlpproc.ParseDefine(define)
		if err != nil {
			return err
		}
		config.Defines[name] = value
	}
	config.AddIncludePaths(cli.Include...)

	return nil
}

func (cli *CLI) readInput(stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if cli.Input == "" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(cli.Input)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	return string(data), nil
}

type nameCommand string

func (n nameCommand) Call(*preprocessor.Preprocessor, location.Position, string) (string, error) {
	return string(n), nil
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s: %s: %v\n", preprocessor.Name, errorLabel("error"), err)
}
