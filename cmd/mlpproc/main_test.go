package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/shibukawa/mlpproc/preprocessor"
	"github.com/shibukawa/mlpproc/testhelper"
)

func init() {
	color.NoColor = true
}

type result struct {
	code   int
	stdout string
	stderr string
}

// runIn runs the CLI in a fresh working directory
func runIn(t *testing.T, dir, stdin string, args ...string) result {
	t.Helper()
	t.Chdir(dir)

	var stdout, stderr bytes.Buffer
	code := run(args, Streams{
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
	})

	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRun_Stdin(t *testing.T) {
	r := runIn(t, t.TempDir(), "{% def x 1 %}x={% x %} from {% input %} to {% output %}")
	require.Equal(t, 0, r.code)
	require.Equal(t, "x=1 from stdin to stdout", r.stdout)
	require.Empty(t, r.stderr)
}

func TestRun_Files(t *testing.T) {
	dir := t.TempDir()
	input := testhelper.WriteFile(t, dir, "input.txt", "{% include header.txt %}{% input %}")
	testhelper.WriteFile(t, dir, "inc/header.txt", "header: ")
	output := filepath.Join(dir, "output.txt")

	r := runIn(t, dir, "", "-i", "inc", "-o", output, input)
	require.Equal(t, 0, r.code, r.stderr)
	require.Empty(t, r.stdout)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Equal(t, "header: "+input, string(data))
}

func TestRun_Defines(t *testing.T) {
	r := runIn(t, t.TempDir(), "{% name %}/{% flag %}/{% eq %}", "-d", "name=world", "--define", "flag", "-d", "eq=a=b")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "world//a=b", r.stdout)
}

func TestRun_Delimiters(t *testing.T) {
	r := runIn(t, t.TempDir(), "<<def a b>><<a>>{% a %}", "-b", "<<", "-e", ">>")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "b{% a %}", r.stdout)
}

func TestRun_Config(t *testing.T) {
	dir := t.TempDir()
	testhelper.WriteFile(t, dir, "mlpproc.yaml", "defines:\n  greeting: hello\nwarnings: hide\n")

	r := runIn(t, dir, "{% greeting %}{% warning %}")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "hello", r.stdout)
	require.Empty(t, r.stderr)

	testhelper.WriteFile(t, dir, "other.yaml", "defines:\n  greeting: bye\n")
	r = runIn(t, dir, "{% greeting %}", "--config", "other.yaml")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "bye", r.stdout)
}

func TestRun_EnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MLPPROC_CLI_TEST", "")
	os.Unsetenv("MLPPROC_CLI_TEST")
	testhelper.WriteFile(t, dir, "vars.env", "MLPPROC_CLI_TEST=from file\n")

	r := runIn(t, dir, "{% env MLPPROC_CLI_TEST %}", "--env-file", "vars.env")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "from file", r.stdout)

	r = runIn(t, dir, "", "--env-file", "missing.env")
	require.Equal(t, preprocessor.ExitCode, r.code)
	require.Contains(t, r.stderr, "failed to load environment file")
}

func TestRun_Warnings(t *testing.T) {
	dir := t.TempDir()

	r := runIn(t, dir, "a{% warning careful %}b")
	require.Equal(t, 0, r.code)
	require.Equal(t, "ab", r.stdout)
	require.Equal(t, "stdin:1:5: in command warning\nstdin:1:5: warning: raised by warning command.\n  careful\n", r.stderr)

	r = runIn(t, dir, "a{% warning %}b", "-w", "hide")
	require.Equal(t, 0, r.code)
	require.Empty(t, r.stderr)

	r = runIn(t, dir, "a{% warning %}b", "-w", "error")
	require.Equal(t, preprocessor.ExitCode, r.code)
	require.Empty(t, r.stdout)
	require.Equal(t, "stdin:1:5: in command warning\nstdin:1:5: error: raised by warning command.\n", r.stderr)

	r = runIn(t, dir, "", "-w", "loud")
	require.Equal(t, preprocessor.ExitCode, r.code)
	require.Contains(t, r.stderr, "invalid warnings mode 'loud'")
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	testhelper.WriteFile(t, dir, "main.txt", "line\n{% include sub.txt %}")
	testhelper.WriteFile(t, dir, "sub.txt", "\n  {% nope %}")

	r := runIn(t, dir, "", "main.txt")
	require.Equal(t, preprocessor.ExitCode, r.code)
	require.Empty(t, r.stdout)
	require.Equal(t,
		"main.txt:2:4: in command include\n"+
			"sub.txt:1:1: in included file\n"+
			"sub.txt:2:3: error: undefined command or block: \"nope\".\n",
		r.stderr)

	r = runIn(t, dir, "", "missing.txt")
	require.Equal(t, preprocessor.ExitCode, r.code)
	require.Contains(t, r.stderr, "failed to read input")

	r = runIn(t, dir, "", "-d", "1x=y")
	require.Equal(t, preprocessor.ExitCode, r.code)
	require.Contains(t, r.stderr, "invalid define")

	r = runIn(t, dir, "", "--unknown-flag")
	require.Equal(t, preprocessor.ExitCode, r.code)
	require.Contains(t, r.stderr, "unknown flag")
}

func TestRun_Doc(t *testing.T) {
	dir := t.TempDir()

	r := runIn(t, dir, "", "--doc", "commands")
	require.Equal(t, 0, r.code)
	require.Contains(t, r.stdout, "Commands:\n")
	require.Contains(t, r.stdout, "\n  include\n")
	require.Contains(t, r.stdout, "\n  markdown\n")

	r = runIn(t, dir, "", "--doc", "repeat")
	require.Equal(t, 0, r.code)
	require.Contains(t, r.stdout, "help on block repeat")

	r = runIn(t, dir, "", "--doc", "help")
	require.Equal(t, 0, r.code)
	require.Contains(t, r.stdout, "Usage: mlpproc")
}

func TestRun_Version(t *testing.T) {
	r := runIn(t, t.TempDir(), "", "--version")
	require.Equal(t, 0, r.code)
	require.Equal(t, "mlpproc version "+preprocessor.Version+"\n", r.stdout)
}
