package config

// Package errors provides sentinel errors for configuration loading.

import "errors"

var (
	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrConfigParseFailed indicates the configuration file could not be parsed.
	ErrConfigParseFailed = errors.New("configuration parse failed")

	// ErrConfigExists indicates init would overwrite an existing configuration file.
	ErrConfigExists = errors.New("configuration file already exists")

	// ErrRootUnnamed indicates a configured root without a name.
	ErrRootUnnamed = errors.New("root entry has no name")
)
