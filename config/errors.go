package config

import "errors"

// Sentinel errors for configuration loading.
var (
	// ErrInvalidConfig indicates a configuration that parsed but cannot be used.
	ErrInvalidConfig = errors.New("config: invalid configuration")

	// ErrUnsupportedFormat indicates a file extension other than .yaml, .yml or .json.
	ErrUnsupportedFormat = errors.New("config: unsupported file format")

	// ErrMissingEnv indicates a ${VAR} reference to an unset environment variable.
	ErrMissingEnv = errors.New("config: missing required environment variables")
)
