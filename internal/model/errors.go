package model

import "errors"

// Sentinel errors for programmatic checking. No package in this module
// returns them.
var (
	ErrNoInputFiles  = errors.New("no source files found")
	ErrConfigInvalid = errors.New("invalid configuration")
	ErrCacheUnavailable = errors.New("dependency cache unavailable")
)
