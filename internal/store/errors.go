package store

import "errors"

// Storage failure kinds. Every error returned by a repository wraps exactly one
// of them, so callers can match with [errors.Is] regardless of the backend.
var (
	// ErrStorageUnavailable is returned when the backend cannot be reached or
	// an I/O operation fails. The persisted state is assumed intact.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrCorrupt is returned when persisted state is unreadable: a broken
	// database file, an undecodable JSON document or a record with an empty
	// identity or fingerprint.
	ErrCorrupt = errors.New("storage corrupt")
)

// Low-level database operation errors. These are wrapped together with one of
// the failure kinds above when a SQL-level operation fails.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails.
	ErrScanningRows = errors.New("failed to scan rows")
)
