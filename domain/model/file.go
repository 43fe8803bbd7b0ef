package model

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FileType represents supported input file types
type FileType int

const (
	// FileTypeCSV represents CSV file type
	FileTypeCSV FileType = iota
	// FileTypeTSV represents TSV file type
	FileTypeTSV
	// FileTypeXLSX represents Excel XLSX file type
	FileTypeXLSX
	// FileTypeParquet represents Parquet file type
	FileTypeParquet
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// File extensions
const (
	// ExtCSV is the CSV file extension
	ExtCSV = ".csv"
	// ExtTSV is the TSV file extension
	ExtTSV = ".tsv"
	// ExtXLSX is the Excel XLSX file extension
	ExtXLSX = ".xlsx"
	// ExtParquet is the Parquet file extension
	ExtParquet = ".parquet"
	// ExtGZ is the gzip compression extension
	ExtGZ = ".gz"
	// ExtBZ2 is the bzip2 compression extension
	ExtBZ2 = ".bz2"
	// ExtXZ is the xz compression extension
	ExtXZ = ".xz"
	// ExtZSTD is the zstd compression extension
	ExtZSTD = ".zst"
	// ExtSQL is the extension of generated scripts
	ExtSQL = ".sql"
)

// Delimiters
const (
	csvDelimiter = ','
	tsvDelimiter = '\t'
)

var compressionExtensions = []string{ExtGZ, ExtBZ2, ExtXZ, ExtZSTD}

// String returns the string representation of FileType
func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "csv"
	case FileTypeTSV:
		return "tsv"
	case FileTypeXLSX:
		return "xlsx"
	case FileTypeParquet:
		return "parquet"
	default:
		return "unsupported"
	}
}

// File is an input file that can be converted into a table.
type File struct {
	path        string
	fileType    FileType
	compression CompressionType
}

// NewFile creates a File and detects its type from the extension.
func NewFile(path string) *File {
	fileType, compression := DetectFileType(path)
	return &File{
		path:        path,
		fileType:    fileType,
		compression: compression,
	}
}

// Path returns the file path
func (f *File) Path() string {
	return f.path
}

// Type returns the detected file type
func (f *File) Type() FileType {
	return f.fileType
}

// Compression returns the compression detected from the extension
func (f *File) Compression() CompressionType {
	return f.compression
}

// IsCompressed returns true if file is compressed
func (f *File) IsCompressed() bool {
	return f.compression != CompressionNone
}

// TableName returns the table name derived from the file path
func (f *File) TableName() string {
	return TableFromFilePath(f.path)
}

// DetectFileType detects file type from extension, considering compressed files
func DetectFileType(path string) (FileType, CompressionType) {
	lower := strings.ToLower(path)
	compression := CompressionNone

	switch {
	case strings.HasSuffix(lower, ExtGZ):
		compression = CompressionGZ
	case strings.HasSuffix(lower, ExtBZ2):
		compression = CompressionBZ2
	case strings.HasSuffix(lower, ExtXZ):
		compression = CompressionXZ
	case strings.HasSuffix(lower, ExtZSTD):
		compression = CompressionZSTD
	}
	basePath := strings.TrimSuffix(lower, compression.Extension())

	switch filepath.Ext(basePath) {
	case ExtCSV:
		return FileTypeCSV, compression
	case ExtTSV:
		return FileTypeTSV, compression
	case ExtXLSX:
		return FileTypeXLSX, compression
	case ExtParquet:
		return FileTypeParquet, compression
	default:
		return FileTypeUnsupported, compression
	}
}

// IsSupportedFile reports whether the file name has a supported extension.
func IsSupportedFile(fileName string) bool {
	fileType, _ := DetectFileType(fileName)
	return fileType != FileTypeUnsupported
}

// Read reads the file into its header and data rows.
func (f *File) Read(ctx context.Context, opts Options) (Header, []Row, error) {
	if f.fileType == FileTypeUnsupported {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f.path)
	}

	reader, closer, err := f.openReader()
	if err != nil {
		return nil, nil, err
	}
	defer closer()

	return Parse(ctx, reader, f.fileType, opts)
}

// openReader opens file and returns a reader that handles compression
func (f *File) openReader() (io.Reader, func() error, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, nil, err
	}

	reader, closer, err := NewDecompressedReader(file, f.compression)
	if err != nil {
		_ = file.Close() // Ignore close error during error handling
		return nil, nil, err
	}
	return reader, func() error {
		_ = closer() // Ignore decompressor close error in cleanup
		return file.Close()
	}, nil
}

// NewDecompressedReader wraps r with the decompressor for the given type.
// The returned closer releases the decompressor only, never r.
func NewDecompressedReader(r io.Reader, compression CompressionType) (io.Reader, func() error, error) {
	noop := func() error { return nil }

	switch compression {
	case CompressionGZ:
		gzReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return gzReader, gzReader.Close, nil
	case CompressionBZ2:
		return bzip2.NewReader(r), noop, nil
	case CompressionXZ:
		xzReader, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return xzReader, noop, nil
	case CompressionZSTD:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return decoder, func() error {
			decoder.Close()
			return nil
		}, nil
	default:
		return r, noop, nil
	}
}

// Parse reads uncompressed content of the given type into its header and
// data rows.
func Parse(ctx context.Context, r io.Reader, fileType FileType, opts Options) (Header, []Row, error) {
	switch fileType {
	case FileTypeCSV:
		return parseDelimited(r, delimiterOr(opts.Delimiter, csvDelimiter), opts)
	case FileTypeTSV:
		return parseDelimited(r, delimiterOr(opts.Delimiter, tsvDelimiter), opts)
	case FileTypeXLSX:
		return parseXLSX(r, opts.Sheet)
	case FileTypeParquet:
		return parseParquet(ctx, r)
	default:
		return nil, nil, ErrUnsupportedFormat
	}
}

func delimiterOr(delimiter, fallback rune) rune {
	if delimiter == 0 {
		return fallback
	}
	return delimiter
}

// textDecoder returns the decoder for the configured input encoding.
func textDecoder(enc Encoding) *encoding.Decoder {
	switch enc {
	case EncodingUTF16:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case EncodingWindows1252:
		return charmap.Windows1252.NewDecoder()
	case EncodingLatin1:
		return charmap.ISO8859_1.NewDecoder()
	default:
		return unicode.UTF8BOM.NewDecoder()
	}
}

// parseDelimited parses CSV or TSV content. Records keep whatever field
// count they have; row validation happens when the table is built.
func parseDelimited(r io.Reader, delimiter rune, opts Options) (Header, []Row, error) {
	csvReader := csv.NewReader(transform.NewReader(r, textDecoder(opts.Encoding)))
	csvReader.Comma = delimiter
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = opts.LazyQuotes

	first, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrNoHeader
	}
	if err != nil {
		return nil, nil, err
	}
	header := NewHeader(first)
	lastLine := recordEndLine(csvReader, first)

	var rows []Row
	for {
		fields, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		line, _ := csvReader.FieldPos(0)
		// encoding/csv skips blank lines; they are rows with no fields.
		for blank := lastLine + 1; blank < line; blank++ {
			rows = append(rows, Row{Line: blank, Record: Record{}})
		}
		rows = append(rows, Row{Line: line, Record: NewRecord(fields)})
		lastLine = recordEndLine(csvReader, fields)
	}
	return header, rows, nil
}

// recordEndLine returns the physical line the record just read ends on.
func recordEndLine(csvReader *csv.Reader, fields []string) int {
	last := len(fields) - 1
	line, _ := csvReader.FieldPos(last)
	return line + strings.Count(fields[last], "\n")
}

// parseXLSX reads the named sheet, or the first sheet when sheet is empty.
// Spreadsheet rows drop trailing empty cells, so shorter rows are padded
// to the header width.
func parseXLSX(r io.Reader, sheet string) (Header, []Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	xlsxFile, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = xlsxFile.Close() // Ignore close error
	}()

	sheetNames := xlsxFile.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, nil, ErrEmptyData
	}
	if sheet == "" {
		sheet = sheetNames[0]
	} else if idx, err := xlsxFile.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}

	rows, err := xlsxFile.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, ErrNoHeader
	}

	header := NewHeader(rows[0])
	out := make([]Row, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		if isBlankRow(cells) {
			continue
		}
		record := NewRecord(cells)
		if len(record) < len(header) {
			padded := make(Record, len(header))
			copy(padded, record)
			record = padded
		}
		// The header is spreadsheet row 1.
		out = append(out, Row{Line: i + 2, Record: record})
	}
	return header, out, nil
}

// isBlankRow reports whether every cell of a spreadsheet row is empty.
func isBlankRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseParquet reads every row group. Parquet needs random access, so the
// content is buffered first. Null values become empty fields.
func parseParquet(ctx context.Context, r io.Reader) (Header, []Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	if len(data) == 0 {
		return nil, nil, ErrEmptyData
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create parquet reader from bytes: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read table: %w", err)
	}
	defer table.Release()

	schema := table.Schema()
	header := make(Header, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}

	tableReader := array.NewTableReader(table, 0)
	defer tableReader.Release()

	var rows []Row
	line := 1
	for tableReader.Next() {
		batch := tableReader.Record()
		for i := range int(batch.NumRows()) {
			record := make(Record, batch.NumCols())
			for j, col := range batch.Columns() {
				if col.IsNull(i) {
					continue
				}
				record[j] = col.ValueStr(i)
			}
			line++
			rows = append(rows, Row{Line: line, Record: record})
		}
	}
	if err := tableReader.Err(); err != nil {
		return nil, nil, fmt.Errorf("error reading table records: %w", err)
	}
	return header, rows, nil
}
