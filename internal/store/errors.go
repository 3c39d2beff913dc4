package store

import "errors"

// Sentinel errors returned by the state store. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrRecordNotFound is returned by Get when no record exists for the
	// requested item id.
	ErrRecordNotFound = errors.New("record not found")

	// ErrStateStoreCorrupt is returned by Open when the existing database
	// could not be used and a fresh one could not be created in its place.
	ErrStateStoreCorrupt = errors.New("state store is corrupt")

	// ErrReadOnly is returned by writes to a store opened with OpenReadOnly.
	ErrReadOnly = errors.New("state store is read-only")
)

// Low-level database operation errors.
var (
	// ErrBuildingSQLQuery is returned when constructing a SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when an INSERT or DELETE fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning a record row fails.
	ErrScanningRow = errors.New("failed to scan record row")
)
