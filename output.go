package csv2sql

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/csv2sql/domain/model"
	"go.uber.org/zap"
)

// outputFileMode is the permission of written scripts.
const outputFileMode = 0o644

// OutputPath returns where the script for inputPath is written: a sibling
// of the input named <table>.sql, plus the compression extension.
func OutputPath(inputPath string, opts Options) string {
	return filepath.Join(filepath.Dir(inputPath), model.TableFromFilePath(inputPath)+opts.FileExtension())
}

// WriteScript writes the script to path, compressed as configured.
//
// The script is written to a temporary file in the same directory and
// renamed over path, so an existing file is replaced in one step and never
// left half written.
func WriteScript(script *Script, path string, opts Options) error {
	if script == nil {
		return fmt.Errorf("%w: script cannot be nil", ErrInvalidOptions)
	}
	if err := validateOptions(opts); err != nil {
		return err
	}

	handler := NewCompressionHandler(opts.Compression)
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return statError("write", path, err)
	}
	tmpPath := tmp.Name()

	if err := writeCompressed(tmp, handler, script.Bytes()); err != nil {
		_ = os.Remove(tmpPath) // Ignore remove error, the write error is returned
		return NewErrorContext("write", path).WithTable(script.Table).Error(err)
	}
	if err := os.Chmod(tmpPath, outputFileMode); err != nil {
		_ = os.Remove(tmpPath) // Ignore remove error, the chmod error is returned
		return NewErrorContext("write", path).WithTable(script.Table).Error(err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Ignore remove error, the rename error is returned
		return NewErrorContext("write", path).WithTable(script.Table).Error(err)
	}

	opts.Log().Info("wrote script",
		zap.String("table", script.Table),
		zap.String("path", path),
		zap.Int("inserts", len(script.Inserts)),
		zap.Int("skipped", len(script.Warnings)))
	return nil
}
