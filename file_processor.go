package csv2sql

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/nao1215/csv2sql/domain/model"
)

// Result describes one converted input.
type Result struct {
	// Input is the converted file
	Input string
	// Output is the path the script was written to
	Output string
	// Script is the generated script
	Script *Script
}

// ConvertPaths converts every file named in paths and writes each script
// next to its input. Directories are walked recursively and every
// supported file in them is converted. A file reached twice is converted
// once, and a compressed file is skipped when its uncompressed version
// exists in the same directory.
//
// Conversion stops at the first error; results for files converted before
// it are returned with the error.
func ConvertPaths(ctx context.Context, paths []string, opts Options) ([]Result, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	files, err := collectFilesFromPaths(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no supported files found", ErrUnsupportedFormat)
	}

	results := make([]Result, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		script, err := ConvertFile(ctx, file, opts)
		if err != nil {
			return results, err
		}
		output := OutputPath(file, opts)
		if err := WriteScript(script, output, opts); err != nil {
			return results, err
		}
		results = append(results, Result{Input: file, Output: output, Script: script})
	}
	return results, nil
}

// collectFilesFromPaths validates and collects all files from the given paths
func collectFilesFromPaths(paths []string) ([]string, error) {
	var collectedPaths []string
	processedFiles := make(map[string]bool)

	for _, path := range paths {
		if err := validatePath(path); err != nil {
			return nil, err
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, statError("collect", path, err)
		}

		if info.IsDir() {
			dirFiles, err := collectFilesFromDirectory(path, processedFiles)
			if err != nil {
				return nil, err
			}
			collectedPaths = append(collectedPaths, dirFiles...)
			continue
		}
		if err := addSingleFile(path, processedFiles, &collectedPaths); err != nil {
			return nil, err
		}
	}
	return collectedPaths, nil
}

// collectFilesFromDirectory recursively collects all supported files from a directory
func collectFilesFromDirectory(dirPath string, processedFiles map[string]bool) ([]string, error) {
	var found []string

	err := filepath.WalkDir(dirPath, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !model.IsSupportedFile(filePath) {
			return nil
		}
		found = append(found, filePath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	var collectedPaths []string
	for _, filePath := range deduplicateCompressedFiles(found) {
		if err := addSingleFile(filePath, processedFiles, &collectedPaths); err != nil {
			return nil, err
		}
	}
	return collectedPaths, nil
}

// addSingleFile validates and adds a single file to the collected paths
func addSingleFile(filePath string, processedFiles map[string]bool, collectedPaths *[]string) error {
	if !model.IsSupportedFile(filePath) {
		return NewErrorContext("collect", filePath).Error(ErrUnsupportedFormat)
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for %s: %w", filePath, err)
	}

	if !processedFiles[absPath] {
		processedFiles[absPath] = true
		*collectedPaths = append(*collectedPaths, filePath)
	}
	return nil
}

// deduplicateCompressedFiles removes compressed files whose uncompressed
// version of the same format exists in the same directory. The result is
// sorted by path.
func deduplicateCompressedFiles(files []string) []string {
	uncompressed := make(map[string]bool)
	for _, file := range files {
		if !model.NewFile(file).IsCompressed() {
			uncompressed[dedupeKey(file)] = true
		}
	}

	result := make([]string, 0, len(files))
	for _, file := range files {
		if model.NewFile(file).IsCompressed() && uncompressed[dedupeKey(file)] {
			continue
		}
		result = append(result, file)
	}
	sort.Strings(result)
	return result
}

// dedupeKey identifies a file by directory, table name and format.
func dedupeKey(path string) string {
	f := model.NewFile(path)
	return filepath.Join(filepath.Dir(path), f.TableName()) + "." + f.Type().String()
}
