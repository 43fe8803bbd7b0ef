package csv2sql

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nao1215/csv2sql/domain/model"
)

// validatePath validates a single file or directory path
func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: path cannot be empty", ErrInvalidOptions)
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: path contains a null byte", ErrInvalidOptions)
	}
	return nil
}

// validateInputFile checks that path names a readable, supported file.
func validateInputFile(path string) error {
	if err := validatePath(path); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return statError("convert", path, err)
	}
	if info.IsDir() {
		return NewErrorContext("convert", path).
			WithDetails("path is a directory").
			Error(ErrUnsupportedFormat)
	}
	if !model.IsSupportedFile(path) {
		return NewErrorContext("convert", path).Error(ErrUnsupportedFormat)
	}
	return nil
}

// statError maps an os.Stat failure onto the sentinel errors.
func statError(operation, path string, err error) error {
	switch {
	case isNotExist(err):
		return NewErrorContext(operation, path).Error(fmt.Errorf("%w: %w", ErrFileNotFound, err))
	case errors.Is(err, os.ErrPermission):
		return NewErrorContext(operation, path).Error(fmt.Errorf("%w: %w", ErrPermissionDenied, err))
	default:
		return NewErrorContext(operation, path).Error(err)
	}
}

// validateOptions rejects option values outside their enumerations.
func validateOptions(opts Options) error {
	switch opts.Schema {
	case SchemaTyped, SchemaWidth:
	default:
		return fmt.Errorf("%w: unknown schema policy %d", ErrInvalidOptions, opts.Schema)
	}
	switch opts.Inference {
	case InferFromSample, InferFromAllRows:
	default:
		return fmt.Errorf("%w: unknown inference strategy %d", ErrInvalidOptions, opts.Inference)
	}
	switch opts.Encoding {
	case EncodingUTF8, EncodingUTF16, EncodingWindows1252, EncodingLatin1:
	default:
		return fmt.Errorf("%w: unknown encoding %d", ErrInvalidOptions, opts.Encoding)
	}
	switch opts.Compression {
	case CompressionNone, CompressionGZ, CompressionXZ, CompressionZSTD:
	case CompressionBZ2:
		return fmt.Errorf("%w: bz2 output is not supported", ErrInvalidOptions)
	default:
		return fmt.Errorf("%w: unknown compression %d", ErrInvalidOptions, opts.Compression)
	}
	switch opts.Delimiter {
	case '"', '\r', '\n':
		return fmt.Errorf("%w: delimiter %q", ErrInvalidOptions, opts.Delimiter)
	}
	return nil
}
