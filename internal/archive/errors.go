package archive

// Package errors provides sentinel errors for archive construction.
// These enable consistent classification of packaging stage failures.

import "errors"

var (
	// ErrArchiveCreateFailed indicates the output archive could not be opened for writing.
	ErrArchiveCreateFailed = errors.New("archive create failed")

	// ErrSourceReadFailed indicates reading a source file for an entry failed.
	ErrSourceReadFailed = errors.New("source file read failed")

	// ErrEntryWriteFailed indicates writing an entry into the archive failed.
	ErrEntryWriteFailed = errors.New("archive entry write failed")

	// ErrTreeWalkFailed indicates filesystem traversal of a source tree failed.
	ErrTreeWalkFailed = errors.New("source tree walk failed")

	// ErrArchiveCloseFailed indicates finalizing the archive failed.
	ErrArchiveCloseFailed = errors.New("archive close failed")
)
