package model

import "errors"

var (
	// ErrNoHeader is returned when the input has no header row
	ErrNoHeader = errors.New("csv2sql: input has no header row")
	// ErrUnsupportedFormat is returned when the file extension is not supported
	ErrUnsupportedFormat = errors.New("csv2sql: unsupported file format")
	// ErrEmptyData is returned when a spreadsheet or parquet file holds no data
	ErrEmptyData = errors.New("csv2sql: empty data")
	// ErrSheetNotFound is returned when the requested XLSX sheet does not exist
	ErrSheetNotFound = errors.New("csv2sql: sheet not found")
)
