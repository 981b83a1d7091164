package mlpproc

import (
	"fmt"
	"os"
	"regexp"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/shibukawa/mlpproc/preprocessor"
	"github.com/shibukawa/mlpproc/tokenizer"
)

// DefaultConfigFile is read when no configuration file is given
const DefaultConfigFile = "mlpproc.yaml"

// Warning modes accepted in the configuration and on the command line
const (
	WarningsHide  = "hide"
	WarningsPrint = "print"
	WarningsError = "error"
	WarningsRaise = "raise"
)

// Config represents the mlpproc configuration
type Config struct {
	Begin              string            `yaml:"begin"`
	End                string            `yaml:"end"`
	EndBlock           string            `yaml:"endblock"`
	MaxRecursionDepth  int               `yaml:"max_recursion_depth"`
	SafeCalls          *bool             `yaml:"safe_calls"` // nil means enabled
	Warnings           string            `yaml:"warnings"`
	WarnUnmatchedClose bool              `yaml:"warn_unmatched_close"`
	IncludePaths       []string          `yaml:"include_paths"`
	EnvFiles           []string          `yaml:"env_files"`
	Defines            map[string]string `yaml:"defines"`
}

// LoadConfig loads configuration from the specified file. A missing file
// yields the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles(".env")
	if err != nil {
		return nil, err
	}

	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}

	if err := loadEnvFiles(config.EnvFiles...); err != nil {
		return nil, err
	}

	return config, nil
}

// ParseConfig parses, validates and completes a YAML configuration.
// Environment variables in paths are expanded.
func ParseConfig(data []byte) (*Config, error) {
	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err := yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	expandConfigEnvVars(&config)

	return &config, nil
}

// DefaultConfig returns the configuration used without a configuration file
func DefaultConfig() *Config {
	config := &Config{}
	applyDefaults(config)

	return config
}

func applyDefaults(config *Config) {
	if config.Begin == "" {
		config.Begin = tokenizer.DefaultBegin
	}
	if config.End == "" {
		config.End = tokenizer.DefaultEnd
	}
	if config.EndBlock == "" {
		config.EndBlock = tokenizer.DefaultEndBlock
	}
	if config.MaxRecursionDepth == 0 {
		config.MaxRecursionDepth = preprocessor.DefaultMaxRecursionDepth
	}
	if config.Warnings == "" {
		config.Warnings = WarningsPrint
	}
	if config.Defines == nil {
		config.Defines = map[string]string{}
	}
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	if _, err := config.WarningMode(); err != nil {
		return err
	}

	if config.MaxRecursionDepth < 0 {
		return fmt.Errorf("%w: max_recursion_depth must not be negative, got %d", ErrConfigValidation, config.MaxRecursionDepth)
	}

	if err := config.Delimiters().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}

	for name := range config.Defines {
		if !tokenizer.IsIdentifier(name) {
			return fmt.Errorf("%w: invalid define name '%s'", ErrConfigValidation, name)
		}
	}

	return nil
}

// Delimiters returns the tokens configured for parsing
func (c *Config) Delimiters() tokenizer.Delimiters {
	return tokenizer.Delimiters{Begin: c.Begin, End: c.End, EndBlock: c.EndBlock}
}

// WarningMode converts the warnings setting to the engine's warning mode
func (c *Config) WarningMode() (preprocessor.WarningMode, error) {
	switch c.Warnings {
	case WarningsHide:
		return preprocessor.WarningHide, nil
	case WarningsPrint, "":
		return preprocessor.WarningPrint, nil
	case WarningsError:
		return preprocessor.WarningAsError, nil
	case WarningsRaise:
		return preprocessor.WarningRaise, nil
	}

	return 0, fmt.Errorf("%w: invalid warnings mode '%s': must be one of hide, print, error, raise", ErrConfigValidation, c.Warnings)
}

// IsSafeCalls returns true unless safe_calls: false is set
func (c *Config) IsSafeCalls() bool {
	return c.SafeCalls == nil || *c.SafeCalls
}

// AddIncludePaths appends directories not already in the include path
func (c *Config) AddIncludePaths(paths ...string) {
	for _, path := range paths {
		if !slices.Contains(c.IncludePaths, path) {
			c.IncludePaths = append(c.IncludePaths, path)
		}
	}
}

// loadEnvFiles loads the given .env files if they exist
func loadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if !fileExists(path) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("%w %s: %w", ErrEnvFile, path, err)
		}
	}

	return nil
}

// LoadEnvFile loads an environment file that must exist. Variables already
// set are not overridden.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w %s: %w", ErrEnvFile, path, err)
	}

	return nil
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	plainEnvVar  = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})

	return plainEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}

// expandConfigEnvVars expands environment variables in paths
func expandConfigEnvVars(config *Config) {
	for i, path := range config.IncludePaths {
		config.IncludePaths[i] = expandEnvVars(path)
	}

	for i, path := range config.EnvFiles {
		config.EnvFiles[i] = expandEnvVars(path)
	}
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
