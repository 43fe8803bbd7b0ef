package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// ErrInvalidOption is returned when an option value cannot be parsed
var ErrInvalidOption = errors.New("csv2sql: invalid option")

// SchemaPolicy selects how CREATE TABLE column types are written.
type SchemaPolicy int

const (
	// SchemaTyped declares each column with its inferred SQL type.
	SchemaTyped SchemaPolicy = iota
	// SchemaWidth declares every column as NVARCHAR(<max observed width>).
	SchemaWidth
)

// String returns the string representation of SchemaPolicy
func (p SchemaPolicy) String() string {
	switch p {
	case SchemaWidth:
		return "width"
	default:
		return "typed"
	}
}

// ParseSchemaPolicy parses "typed" or "width".
func ParseSchemaPolicy(s string) (SchemaPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "typed":
		return SchemaTyped, nil
	case "width":
		return SchemaWidth, nil
	default:
		return SchemaTyped, fmt.Errorf("%w: schema %q (want typed or width)", ErrInvalidOption, s)
	}
}

// Encoding is the text encoding of delimited input files.
type Encoding int

const (
	// EncodingUTF8 is UTF-8, with or without byte order mark
	EncodingUTF8 Encoding = iota
	// EncodingUTF16 is UTF-16 with a byte order mark (little endian without one)
	EncodingUTF16
	// EncodingWindows1252 is the Windows Western European code page
	EncodingWindows1252
	// EncodingLatin1 is ISO-8859-1
	EncodingLatin1
)

// String returns the string representation of Encoding
func (e Encoding) String() string {
	switch e {
	case EncodingUTF16:
		return "utf16"
	case EncodingWindows1252:
		return "windows1252"
	case EncodingLatin1:
		return "latin1"
	default:
		return "utf8"
	}
}

// ParseEncoding parses an encoding name.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "")) {
	case "", "utf8":
		return EncodingUTF8, nil
	case "utf16":
		return EncodingUTF16, nil
	case "windows1252", "cp1252":
		return EncodingWindows1252, nil
	case "latin1", "iso88591":
		return EncodingLatin1, nil
	default:
		return EncodingUTF8, fmt.Errorf("%w: encoding %q", ErrInvalidOption, s)
	}
}

// CompressionType represents the compression type
type CompressionType int

const (
	// CompressionNone represents no compression
	CompressionNone CompressionType = iota
	// CompressionGZ represents gzip compression
	CompressionGZ
	// CompressionBZ2 represents bzip2 compression
	CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD
)

// String returns the string representation of CompressionType
func (c CompressionType) String() string {
	switch c {
	case CompressionGZ:
		return "gz"
	case CompressionBZ2:
		return "bz2"
	case CompressionXZ:
		return "xz"
	case CompressionZSTD:
		return "zstd"
	default:
		return "none"
	}
}

// Extension returns the file extension for the compression type
func (c CompressionType) Extension() string {
	switch c {
	case CompressionGZ:
		return ExtGZ
	case CompressionBZ2:
		return ExtBZ2
	case CompressionXZ:
		return ExtXZ
	case CompressionZSTD:
		return ExtZSTD
	default:
		return ""
	}
}

// ParseCompression parses "none", "gz", "bz2", "xz" or "zstd".
func ParseCompression(s string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "gz", "gzip":
		return CompressionGZ, nil
	case "bz2", "bzip2":
		return CompressionBZ2, nil
	case "xz":
		return CompressionXZ, nil
	case "zst", "zstd":
		return CompressionZSTD, nil
	default:
		return CompressionNone, fmt.Errorf("%w: compression %q", ErrInvalidOption, s)
	}
}

// ParseDelimiter parses a single-character delimiter. "tab" and `\t` mean
// a tab character; empty means the file type default.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%w: delimiter %q must be a single character", ErrInvalidOption, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("%w: delimiter %q", ErrInvalidOption, s)
	}
	return r, nil
}

// Options configures a conversion. The zero value is not ready for use;
// start from NewOptions.
type Options struct {
	// Schema selects typed or width-based CREATE TABLE output
	Schema SchemaPolicy
	// Inference selects single-sample or full-scan type inference
	Inference InferenceStrategy
	// USDates enables the MM/DD/YYYY date rule
	USDates bool
	// Delimiter overrides the field delimiter; zero means "derive from file type"
	Delimiter rune
	// LazyQuotes relaxes quote handling of the CSV reader
	LazyQuotes bool
	// Encoding is the text encoding of CSV/TSV input
	Encoding Encoding
	// Sheet selects the XLSX sheet; empty means the first sheet
	Sheet string
	// Compression is applied to the written .sql file
	Compression CompressionType
	// Logger receives row warnings and progress messages
	Logger *zap.Logger
}

// NewOptions creates Options with default values: typed schema, sample
// inference, US dates enabled, UTF-8, no output compression.
func NewOptions() Options {
	return Options{
		Schema:      SchemaTyped,
		Inference:   InferFromSample,
		USDates:     true,
		Encoding:    EncodingUTF8,
		Compression: CompressionNone,
		Logger:      zap.NewNop(),
	}
}

// WithSchema sets the schema policy
func (o Options) WithSchema(policy SchemaPolicy) Options {
	o.Schema = policy
	return o
}

// WithInference sets the inference strategy
func (o Options) WithInference(strategy InferenceStrategy) Options {
	o.Inference = strategy
	return o
}

// WithUSDates toggles the MM/DD/YYYY date rule
func (o Options) WithUSDates(enabled bool) Options {
	o.USDates = enabled
	return o
}

// WithDelimiter sets the field delimiter for delimited input
func (o Options) WithDelimiter(delimiter rune) Options {
	o.Delimiter = delimiter
	return o
}

// WithLazyQuotes relaxes CSV quote parsing
func (o Options) WithLazyQuotes(lazy bool) Options {
	o.LazyQuotes = lazy
	return o
}

// WithEncoding sets the input text encoding
func (o Options) WithEncoding(encoding Encoding) Options {
	o.Encoding = encoding
	return o
}

// WithSheet selects the XLSX sheet to convert
func (o Options) WithSheet(sheet string) Options {
	o.Sheet = sheet
	return o
}

// WithCompression compresses the written script
func (o Options) WithCompression(compression CompressionType) Options {
	o.Compression = compression
	return o
}

// WithLogger sets the logger. A nil logger disables logging.
func (o Options) WithLogger(logger *zap.Logger) Options {
	if logger == nil {
		logger = zap.NewNop()
	}
	o.Logger = logger
	return o
}

// Log returns the configured logger, or a no-op logger when none is set.
func (o Options) Log() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// FileExtension returns the extension of the written script
func (o Options) FileExtension() string {
	return ExtSQL + o.Compression.Extension()
}
