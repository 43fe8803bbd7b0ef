package driver

import (
	"errors"
	"strings"
)

// MaxFilesPerDirectory defines the maximum number of files allowed per directory
const MaxFilesPerDirectory = 1000

// MaxColumnCount defines the maximum number of columns allowed in a table.
// SQLite rejects tables wider than 2000 columns by default.
const MaxColumnCount = 2000

var (
	// ErrTooManyFiles is returned when a directory contains too many files
	ErrTooManyFiles = errors.New("too many files in directory")

	// ErrTooManyColumns is returned when a file has too many columns
	ErrTooManyColumns = errors.New("too many columns")

	// ErrInvalidPath is returned when a path is empty or contains a null byte
	ErrInvalidPath = errors.New("invalid path")
)

// ValidatePath rejects empty paths and paths containing null bytes.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrInvalidPath
	}
	if strings.Contains(path, "\x00") {
		return ErrInvalidPath
	}
	return nil
}

// ValidateColumnCount checks if the number of columns is within acceptable limits
func ValidateColumnCount(columnCount int) error {
	if columnCount > MaxColumnCount {
		return ErrTooManyColumns
	}
	return nil
}

// ValidateFileCount checks if the number of files is within acceptable limits
func ValidateFileCount(fileCount int) error {
	if fileCount > MaxFilesPerDirectory {
		return ErrTooManyFiles
	}
	return nil
}

// IsValidFileName reports whether a directory entry should be loaded.
// Hidden files and names with characters that are invalid on common
// filesystems are skipped.
func IsValidFileName(fileName string) bool {
	if strings.HasPrefix(fileName, ".") {
		return false
	}
	if strings.Contains(fileName, "\x00") {
		return false
	}
	return !strings.ContainsAny(fileName, `<>:"|?*`)
}
