package packager

// Package errors provides sentinel errors for the packaging drivers.

import "errors"

var (
	// ErrRootNotFound indicates a configured root directory does not exist.
	ErrRootNotFound = errors.New("root directory not found")

	// ErrFunctionDirNotFound indicates the function directory does not exist.
	ErrFunctionDirNotFound = errors.New("function directory not found")

	// ErrInvalidPolicy indicates the configured exclusion rules could not be compiled.
	ErrInvalidPolicy = errors.New("invalid exclusion policy")
)
