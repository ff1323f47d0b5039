package rules

// Package errors provides sentinel errors for exclusion rule handling.
// These enable consistent classification when rules come from configuration.

import "errors"

var (
	// ErrUnknownKind indicates a rule with an unsupported match kind.
	ErrUnknownKind = errors.New("unknown rule kind")

	// ErrEmptyPattern indicates a rule with an empty pattern.
	ErrEmptyPattern = errors.New("empty rule pattern")
)
