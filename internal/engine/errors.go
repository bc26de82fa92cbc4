// Package engine implements the executor façade: the single entry point
// a driver (REPL, TCP front-end, or test) calls to run one operation
// against an open database, translating catalog/btree errors into the
// store's validation/semantic/operational/fatal taxonomy.
package engine

import "errors"

// Validation errors: the request itself is malformed, independent of
// database state.
var (
	ErrSyntax                = errors.New("engine: syntax error")
	ErrUnrecognizedStatement = errors.New("engine: unrecognized statement")
	ErrNegativeID            = errors.New("engine: id must not be negative")
	ErrStringTooLong         = errors.New("engine: string exceeds column max length")
)

// Semantic errors: the request is well-formed but conflicts with the
// database's current state.
var (
	ErrTableNotFound        = errors.New("engine: table not found")
	ErrDuplicateKey         = errors.New("engine: duplicate key")
	ErrTableAlreadyExists   = errors.New("engine: table already exists")
	ErrMaxTablesReached     = errors.New("engine: maximum number of tables reached")
	ErrColumnCountMismatch  = errors.New("engine: column count mismatch")
	ErrNoActiveTransaction  = errors.New("engine: no active transaction")
	ErrAlreadyInTransaction = errors.New("engine: already in a transaction")
	ErrNoSecondaryIndex     = errors.New("engine: table has no secondary index")
)

// ErrTableFull is operational: the store ran out of room for a table
// under this process's page-count ceiling.
var ErrTableFull = errors.New("engine: table full")
