// Package model provides domain model for csv2sql
package model

// Header is file header.
type Header []string

// NewHeader create new Header.
func NewHeader(h []string) Header {
	return Header(h)
}

// Equal compare Header.
func (h Header) Equal(h2 Header) bool {
	if len(h) != len(h2) {
		return false
	}
	for i, v := range h {
		if v != h2[i] {
			return false
		}
	}
	return true
}

// Record is file records.
type Record []string

// NewRecord create new Record.
func NewRecord(r []string) Record {
	return Record(r)
}

// Equal compare Record.
func (r Record) Equal(r2 Record) bool {
	if len(r) != len(r2) {
		return false
	}
	for i, v := range r {
		if v != r2[i] {
			return false
		}
	}
	return true
}

// Row is a data record together with the 1-based line it was read from.
// The header occupies line 1, so the first data row is usually line 2.
type Row struct {
	Line   int
	Record Record
}

// ColumnType represents the SQL column type
type ColumnType int

const (
	// ColumnTypeText represents text column type
	ColumnTypeText ColumnType = iota
	// ColumnTypeInteger represents 32-bit integer column type
	ColumnTypeInteger
	// ColumnTypeFloat represents double precision column type
	ColumnTypeFloat
	// ColumnTypeDate represents date column type
	ColumnTypeDate
)

const (
	sqlTypeText    = "text"
	sqlTypeInteger = "int4"
	sqlTypeFloat   = "float8"
	sqlTypeDate    = "date"
)

// String returns the SQL column type used by the typed schema.
func (ct ColumnType) String() string {
	switch ct {
	case ColumnTypeText:
		return sqlTypeText
	case ColumnTypeInteger:
		return sqlTypeInteger
	case ColumnTypeFloat:
		return sqlTypeFloat
	case ColumnTypeDate:
		return sqlTypeDate
	default:
		return sqlTypeText
	}
}

// Name returns the upper-case name of the inferred type (DATE, INTEGER, FLOAT, TEXT).
func (ct ColumnType) Name() string {
	switch ct {
	case ColumnTypeInteger:
		return "INTEGER"
	case ColumnTypeFloat:
		return "FLOAT"
	case ColumnTypeDate:
		return "DATE"
	default:
		return "TEXT"
	}
}

// Column holds a normalized column name, its inferred type and the widest
// trimmed value seen in a valid row.
type Column struct {
	Name     string
	Type     ColumnType
	MaxWidth int
}

// minColumnWidth keeps NVARCHAR declarations valid for all-empty columns.
const minColumnWidth = 1

// NewColumn creates a TEXT column with the minimum width.
func NewColumn(name string) Column {
	return Column{
		Name:     name,
		Type:     ColumnTypeText,
		MaxWidth: minColumnWidth,
	}
}

// observe widens the column to fit value.
func (c *Column) observe(width int) {
	if width > c.MaxWidth {
		c.MaxWidth = width
	}
}
