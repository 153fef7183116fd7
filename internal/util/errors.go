package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrNotFound indicates a required resource (tool, directory) was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrPermission indicates a permission error
	ErrPermission = errors.New("permission denied")
)
