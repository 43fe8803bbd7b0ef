package driver

import "errors"

// Predefined errors
var (
	// ErrNoPathsProvided is returned when the DSN names no path
	ErrNoPathsProvided = errors.New("csv2sql driver: no paths provided")

	// ErrNoFilesLoaded is returned when no files were loaded
	ErrNoFilesLoaded = errors.New("csv2sql driver: no files were loaded")

	// ErrInvalidDSN is returned when a DSN query parameter is malformed or unknown
	ErrInvalidDSN = errors.New("csv2sql driver: invalid DSN")

	// ErrStmtExecContextNotSupported is returned when statement does not support ExecContext
	ErrStmtExecContextNotSupported = errors.New("csv2sql driver: statement does not support ExecContext")

	// ErrBeginTxNotSupported is returned when underlying connection does not support BeginTx
	ErrBeginTxNotSupported = errors.New("csv2sql driver: underlying connection does not support BeginTx")

	// ErrPrepareContextNotSupported is returned when underlying connection does not support PrepareContext
	ErrPrepareContextNotSupported = errors.New("csv2sql driver: underlying connection does not support PrepareContext")

	// ErrDuplicateTableName is returned when multiple files would create the same table name
	ErrDuplicateTableName = errors.New("csv2sql driver: duplicate table name")
)
