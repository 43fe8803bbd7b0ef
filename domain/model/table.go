package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// nullLiteral is the field text treated as SQL NULL, besides the empty string.
const nullLiteral = "NULL"

// RowWarning describes a data row skipped because its field count differs
// from the header's.
type RowWarning struct {
	Line     int
	Fields   int
	Expected int
}

// String returns the warning line printed for a skipped row.
func (w RowWarning) String() string {
	return fmt.Sprintf("warning: skipping line %d: expected %d fields, got %d", w.Line, w.Expected, w.Fields)
}

// Table represents file contents as database table structure.
type Table struct {
	// name is table name derived from file path.
	name string
	// header is the raw header row.
	header Header
	// columns are normalized, typed and measured columns.
	columns []Column
	// rows are the rows whose field count matches the header.
	rows []Row
	// warnings lists the skipped rows in input order.
	warnings []RowWarning
}

// NewTable validates rows against the header, infers column types and
// tracks the widest value of every column.
func NewTable(name string, header Header, rows []Row, opts Options) *Table {
	logger := opts.Log().With(zap.String("table", name))

	names := NormalizeHeader(header)
	columns := make([]Column, len(names))
	for i, n := range names {
		columns[i] = NewColumn(n)
	}

	t := &Table{
		name:    name,
		header:  header,
		columns: columns,
		rows:    make([]Row, 0, len(rows)),
	}

	for _, row := range rows {
		if len(row.Record) != len(columns) {
			w := RowWarning{Line: row.Line, Fields: len(row.Record), Expected: len(columns)}
			t.warnings = append(t.warnings, w)
			logger.Warn("skipping malformed row",
				zap.Int("line", w.Line),
				zap.Int("fields", w.Fields),
				zap.Int("expected", w.Expected))
			continue
		}
		for i, field := range row.Record {
			t.columns[i].observe(utf8.RuneCountInString(strings.TrimSpace(field)))
		}
		t.rows = append(t.rows, row)
	}

	t.inferTypes(opts)
	for _, c := range t.columns {
		logger.Debug("inferred column",
			zap.String("column", c.Name),
			zap.String("type", c.Type.Name()),
			zap.Int("max_width", c.MaxWidth))
	}
	return t
}

// inferTypes assigns column types. Without a valid row every column stays TEXT.
func (t *Table) inferTypes(opts Options) {
	if len(t.rows) == 0 {
		return
	}

	var types []ColumnType
	switch opts.Inference {
	case InferFromAllRows:
		records := make([]Record, len(t.rows))
		for i, r := range t.rows {
			records[i] = r.Record
		}
		types = InferFromRecords(records, len(t.columns), opts.USDates)
	default:
		types = InferFromSampleRow(t.rows[0].Record, opts.USDates)
	}

	for i := range t.columns {
		t.columns[i].Type = types[i]
	}
}

// Name return table name.
func (t *Table) Name() string {
	return t.name
}

// Header return the raw table header.
func (t *Table) Header() Header {
	return t.header
}

// Columns returns normalized column information.
func (t *Table) Columns() []Column {
	return t.columns
}

// Rows returns the valid rows.
func (t *Table) Rows() []Row {
	return t.rows
}

// Warnings returns one entry per skipped row.
func (t *Table) Warnings() []RowWarning {
	return t.warnings
}

// TableFromFilePath creates table name from file path
func TableFromFilePath(filePath string) string {
	fileName := filepath.Base(filePath)
	// Remove compression extensions first
	for _, ext := range compressionExtensions {
		if strings.HasSuffix(strings.ToLower(fileName), ext) {
			fileName = fileName[:len(fileName)-len(ext)]
			break
		}
	}
	// Then remove the file type extension
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}

// isNullValue reports whether a trimmed field renders as SQL NULL.
func isNullValue(trimmed string) bool {
	return trimmed == "" || trimmed == nullLiteral
}
