package history

// Package errors provides sentinel errors for the run-history store.

import "errors"

var (
	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.New("could not open history database")

	// ErrInitializeSchemaFailed indicates the database schema could not be initialized.
	ErrInitializeSchemaFailed = errors.New("failed to initialize history schema")

	// ErrRecordAppendFailed indicates appending a run record failed.
	ErrRecordAppendFailed = errors.New("failed to append run record")

	// ErrRecordQueryFailed indicates querying run records failed.
	ErrRecordQueryFailed = errors.New("failed to query run records")

	// ErrRecordScanFailed indicates scanning run record rows failed.
	ErrRecordScanFailed = errors.New("failed to scan run record rows")
)
