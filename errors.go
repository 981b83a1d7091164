package mlpproc

import "errors"

var (
	// ErrConfigValidation is returned when configuration validation fails
	ErrConfigValidation = errors.New("configuration validation failed")
	// ErrInvalidDefine indicates a define that is not name or name=value.
	ErrInvalidDefine = errors.New("invalid define")
	// ErrEnvFile indicates an environment file could not be loaded.
	ErrEnvFile = errors.New("failed to load environment file")
)
