package config

import "errors"

// Failure kinds surfaced by Load, distinguishable via errors.Is:
// ErrLoadConfig for file/env layering faults, ErrInvalidConfig for values
// that fail validation.
var (
	ErrLoadConfig    = errors.New("load config failed")
	ErrInvalidConfig = errors.New("invalid config")
)
