package mlpproc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/mlpproc/preprocessor"
	"github.com/shibukawa/mlpproc/testhelper"
	"github.com/shibukawa/mlpproc/tokenizer"
)

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	config, err := LoadConfig("nonexistent.yaml")
	assert.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
	assert.Equal(t, tokenizer.DefaultDelimiters(), config.Delimiters())
	assert.Equal(t, preprocessor.DefaultMaxRecursionDepth, config.MaxRecursionDepth)
	assert.Equal(t, WarningsPrint, config.Warnings)
	assert.True(t, config.IsSafeCalls())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("MLPPROC_TEST_ROOT", "/opt/templates")

	path := testhelper.WriteFile(t, dir, "mlpproc.yaml", testhelper.TrimIndent(t, `
		begin: "<<"
		end: ">>"
		endblock: "/"
		max_recursion_depth: 5
		safe_calls: false
		warnings: error
		warn_unmatched_close: true
		include_paths:
		  - ${MLPPROC_TEST_ROOT}/include
		  - $MLPPROC_TEST_ROOT/shared
		defines:
		  author: someone
		  empty: ""
		`))

	config, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, tokenizer.Delimiters{Begin: "<<", End: ">>", EndBlock: "/"}, config.Delimiters())
	assert.Equal(t, 5, config.MaxRecursionDepth)
	assert.False(t, config.IsSafeCalls())
	assert.True(t, config.WarnUnmatchedClose)
	assert.Equal(t, []string{"/opt/templates/include", "/opt/templates/shared"}, config.IncludePaths)
	assert.Equal(t, map[string]string{"author": "someone", "empty": ""}, config.Defines)

	mode, err := config.WarningMode()
	assert.NoError(t, err)
	assert.Equal(t, preprocessor.WarningAsError, mode)
}

func TestLoadConfig_EnvFiles(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	unsetEnv(t, "MLPPROC_TEST_FROM_DOTENV")
	unsetEnv(t, "MLPPROC_TEST_FROM_LOCAL")

	testhelper.WriteFile(t, dir, ".env", "MLPPROC_TEST_FROM_DOTENV=dotenv\n")
	testhelper.WriteFile(t, dir, ".env.local", "MLPPROC_TEST_FROM_LOCAL=local\n")
	path := testhelper.WriteFile(t, dir, "mlpproc.yaml", "env_files: [.env.local]\n")

	config, err := LoadConfig(path)
	assert.NoError(t, err)

	p, err := New(config)
	assert.NoError(t, err)
	out, err := p.Process(`{% env MLPPROC_TEST_FROM_LOCAL %}`, "test_env")
	assert.NoError(t, err)
	assert.Equal(t, "local", out)
	assert.Equal(t, "dotenv", os.Getenv("MLPPROC_TEST_FROM_DOTENV"))
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name       string
		yaml       string
		validation bool
	}{
		{"unknown field", "unknown: true\n", false},
		{"invalid yaml", "begin: [\n", false},
		{"invalid warnings", "warnings: loud\n", true},
		{"negative depth", "max_recursion_depth: -1\n", true},
		{"same delimiters", "begin: \"%%\"\nend: \"%%\"\n", true},
		{"invalid define", "defines:\n  \"1abc\": x\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			assert.Error(t, err)
			if tt.validation {
				assert.IsError(t, err, ErrConfigValidation)
			}
		})
	}
}

func TestConfig_AddIncludePaths(t *testing.T) {
	config := DefaultConfig()
	config.AddIncludePaths("a", "b")
	config.AddIncludePaths("b", "c")
	assert.Equal(t, []string{"a", "b", "c"}, config.IncludePaths)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	unsetEnv(t, "MLPPROC_TEST_ENV_FILE")

	err := LoadEnvFile(filepath.Join(dir, "missing.env"))
	assert.IsError(t, err, ErrEnvFile)

	path := testhelper.WriteFile(t, dir, "vars.env", "MLPPROC_TEST_ENV_FILE=loaded\n")
	assert.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "loaded", os.Getenv("MLPPROC_TEST_ENV_FILE"))
}

// unsetEnv removes key for the duration of the test, since godotenv never
// overrides variables that are already set.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}
