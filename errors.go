package csv2sql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/csv2sql/domain/model"
	"github.com/nao1215/csv2sql/loader"
)

// Standard error messages and error creation functions for consistency
var (
	// ErrEmptyData indicates that the data source contains no records
	ErrEmptyData = model.ErrEmptyData

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = model.ErrUnsupportedFormat

	// ErrNoHeader indicates that the input has no header row
	ErrNoHeader = model.ErrNoHeader

	// ErrSheetNotFound indicates that the requested worksheet does not exist
	ErrSheetNotFound = model.ErrSheetNotFound

	// ErrInvalidOptions indicates an invalid option value
	ErrInvalidOptions = model.ErrInvalidOption

	// ErrUnsupportedBackend indicates a DSN that no loader backend accepts
	ErrUnsupportedBackend = loader.ErrUnsupportedBackend

	// ErrFileNotFound indicates file not found
	ErrFileNotFound = errors.New("csv2sql: file not found")

	// ErrPermissionDenied indicates permission denied
	ErrPermissionDenied = errors.New("csv2sql: permission denied")

	// ErrVerifyMismatch indicates that executing a script produced a
	// different row count than the script inserts
	ErrVerifyMismatch = errors.New("csv2sql: verified row count mismatch")
)

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	TableName string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithTable adds table context to the error
func (ec *ErrorContext) WithTable(tableName string) *ErrorContext {
	ec.TableName = tableName
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	var parts []string
	parts = append(parts, fmt.Sprintf("csv2sql: %s failed", ec.Operation))

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}
	if ec.TableName != "" {
		parts = append(parts, "table: "+ec.TableName)
	}
	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return fmt.Errorf("%s", context)
}
