package config

import "errors"

var (
	ErrFileDoesNotExist  = errors.New("config file does not exist")
	ErrReadConfigFail    = errors.New("failed to read config file")
	ErrConfigParsingFail = errors.New("failed to parse config file")
	// ErrInvalidConfig wraps validation failures, whether the values came
	// from a file or from flags.
	ErrInvalidConfig = errors.New("invalid config")
)
