package csv2sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nao1215/csv2sql/domain/model"
	csvdriver "github.com/nao1215/csv2sql/driver"
	"go.uber.org/zap"
)

const (
	// DriverName is the name for the csv2sql database/sql driver
	DriverName = "csv2sql"
)

// Register registers the csv2sql driver with database/sql
func Register() {
	sql.Register(DriverName, csvdriver.NewDriver())
}

func init() {
	// Auto-register the driver on import
	Register()
}

// Type aliases for the conversion model
type (
	// Options configures a conversion
	Options = model.Options
	// SchemaPolicy selects typed or width-based CREATE TABLE output
	SchemaPolicy = model.SchemaPolicy
	// InferenceStrategy selects sample-row or full-scan type inference
	InferenceStrategy = model.InferenceStrategy
	// Encoding is the text encoding of delimited input
	Encoding = model.Encoding
	// CompressionType represents the compression type
	CompressionType = model.CompressionType
	// FileType represents supported input file types
	FileType = model.FileType
	// Column is a normalized, typed and measured column
	Column = model.Column
	// ColumnType is the inferred type of a column
	ColumnType = model.ColumnType
	// RowWarning describes a skipped row
	RowWarning = model.RowWarning
	// Script is the SQL generated for one table
	Script = model.Script
)

// Re-export constants for easier use
const (
	// SchemaTyped declares each column with its inferred SQL type
	SchemaTyped = model.SchemaTyped
	// SchemaWidth declares every column as NVARCHAR(<max width>)
	SchemaWidth = model.SchemaWidth

	// InferFromSample fixes column types from the first valid row
	InferFromSample = model.InferFromSample
	// InferFromAllRows widens column types over every valid row
	InferFromAllRows = model.InferFromAllRows

	// EncodingUTF8 represents UTF-8 input
	EncodingUTF8 = model.EncodingUTF8
	// EncodingUTF16 represents UTF-16 input
	EncodingUTF16 = model.EncodingUTF16
	// EncodingWindows1252 represents Windows-1252 input
	EncodingWindows1252 = model.EncodingWindows1252
	// EncodingLatin1 represents ISO-8859-1 input
	EncodingLatin1 = model.EncodingLatin1

	// CompressionNone represents no compression
	CompressionNone = model.CompressionNone
	// CompressionGZ represents gzip compression
	CompressionGZ = model.CompressionGZ
	// CompressionBZ2 represents bzip2 compression
	CompressionBZ2 = model.CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ = model.CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD = model.CompressionZSTD

	// FileTypeCSV represents CSV file type
	FileTypeCSV = model.FileTypeCSV
	// FileTypeTSV represents TSV file type
	FileTypeTSV = model.FileTypeTSV
	// FileTypeXLSX represents Excel XLSX file type
	FileTypeXLSX = model.FileTypeXLSX
	// FileTypeParquet represents Parquet file type
	FileTypeParquet = model.FileTypeParquet
)

// NewOptions creates Options with default values: typed schema, sample
// inference, US dates enabled, UTF-8 input, uncompressed output.
func NewOptions() Options {
	return model.NewOptions()
}

// Convert reads uncompressed content of the given type and returns the
// script for tableName. Malformed rows are skipped and reported in
// Script.Warnings; they are never an error.
func Convert(ctx context.Context, r io.Reader, tableName string, fileType FileType, opts Options) (*Script, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: reader cannot be nil", ErrInvalidOptions)
	}

	header, rows, err := model.Parse(ctx, r, fileType, opts)
	if err != nil {
		return nil, NewErrorContext("convert", "").WithTable(tableName).Error(err)
	}
	return buildScript(tableName, header, rows, opts), nil
}

// ConvertFile reads the file at path and returns its script. The table name
// is the file's base name without compression and format extensions.
func ConvertFile(ctx context.Context, path string, opts Options) (*Script, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	if err := validateInputFile(path); err != nil {
		return nil, err
	}

	file := model.NewFile(path)
	header, rows, err := file.Read(ctx, opts)
	if err != nil {
		return nil, NewErrorContext("convert", path).WithTable(file.TableName()).Error(err)
	}
	return buildScript(file.TableName(), header, rows, opts), nil
}

func buildScript(tableName string, header model.Header, rows []model.Row, opts Options) *Script {
	table := model.NewTable(tableName, header, rows, opts)
	script := model.NewScript(table, opts.Schema)
	opts.Log().Debug("generated script",
		zap.String("table", script.Table),
		zap.Int("columns", len(script.Columns)),
		zap.Int("inserts", len(script.Inserts)),
		zap.Int("skipped", len(script.Warnings)))
	return script
}

// Open opens a database connection using the csv2sql driver.
//
// Every path (file or directory) is converted into a SQL script with default
// options and executed against an in-memory SQLite database, one table per
// file. The original files are never modified. A file whose normalized
// column names include an SQL keyword, a leading digit or an empty name
// cannot be loaded, and the error names those columns.
//
// Example usage:
//
//	db, err := csv2sql.Open("data/users.csv")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	rows, err := db.Query("SELECT name FROM users WHERE id > 10")
func Open(paths ...string) (*sql.DB, error) {
	return OpenContext(context.Background(), paths...)
}

// OpenContext is like Open but verifies the connection with ctx.
//
// A single path may carry driver parameters, for example
// "users.csv?schema=width&inference=all&us_dates=false".
func OpenContext(ctx context.Context, paths ...string) (*sql.DB, error) {
	if len(paths) == 0 {
		return nil, csvdriver.ErrNoPathsProvided
	}
	for _, p := range paths {
		base, _, _ := strings.Cut(p, "?")
		if err := validatePath(base); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(DriverName, strings.Join(paths, ";"))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close() // Ignore close error during error handling
		return nil, err
	}
	return db, nil
}

// isNotExist reports whether err says the input is missing.
func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
