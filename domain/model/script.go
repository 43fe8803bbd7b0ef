package model

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Script is the SQL generated for one table: a CREATE TABLE statement and
// one INSERT statement per valid row.
type Script struct {
	// Table is the target table name
	Table string
	// Columns are the columns the schema was built from
	Columns []Column
	// Schema is the CREATE TABLE statement, terminated by ";\n"
	Schema string
	// Inserts holds one INSERT statement per valid row, each terminated by ";\n"
	Inserts []string
	// Warnings lists the skipped rows
	Warnings []RowWarning
}

// NewScript renders the table under the given schema policy.
func NewScript(t *Table, policy SchemaPolicy) *Script {
	s := &Script{
		Table:    t.Name(),
		Columns:  append([]Column(nil), t.Columns()...),
		Schema:   CreateTableStatement(t.Name(), t.Columns(), policy),
		Inserts:  make([]string, 0, len(t.Rows())),
		Warnings: append([]RowWarning(nil), t.Warnings()...),
	}
	for _, row := range t.Rows() {
		s.Inserts = append(s.Inserts, InsertStatement(t.Name(), row.Record))
	}
	return s
}

// CreateTableStatement builds
//
//	CREATE TABLE <table> (
//		<col> <type> NULL,
//		...
//	);
//
// where <type> is the inferred SQL type or NVARCHAR(<width>).
func CreateTableStatement(table string, columns []Column, policy SchemaPolicy) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = fmt.Sprintf("\t%s %s NULL", c.Name, columnDefinition(c, policy))
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(table)
	b.WriteString(" (\n")
	b.WriteString(strings.Join(defs, ",\n"))
	b.WriteString("\n);\n")
	return b.String()
}

func columnDefinition(c Column, policy SchemaPolicy) string {
	if policy == SchemaWidth {
		return fmt.Sprintf("NVARCHAR(%d)", max(c.MaxWidth, minColumnWidth))
	}
	return c.Type.String()
}

// InsertStatement builds "INSERT INTO <table> VALUES (...);\n" for one record.
func InsertStatement(table string, record Record) string {
	values := make([]string, len(record))
	for i, field := range record {
		values[i] = SQLLiteral(field)
	}
	return "INSERT INTO " + table + " VALUES (" + strings.Join(values, ", ") + ");\n"
}

// SQLLiteral renders a field as NULL or as a single-quoted string literal
// with embedded quotes doubled. The field is trimmed first.
func SQLLiteral(field string) string {
	v := strings.TrimSpace(field)
	if isNullValue(v) {
		return nullLiteral
	}
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

// WriteTo writes the schema, a blank line and every insert.
func (s *Script) WriteTo(w io.Writer) (int64, error) {
	var total int64
	write := func(str string) error {
		n, err := io.WriteString(w, str)
		total += int64(n)
		return err
	}

	if err := write(s.Schema); err != nil {
		return total, err
	}
	if err := write("\n"); err != nil {
		return total, err
	}
	for _, stmt := range s.Inserts {
		if err := write(stmt); err != nil {
			return total, err
		}
	}
	return total, nil
}

// Bytes returns the full script text.
func (s *Script) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = s.WriteTo(&buf) // bytes.Buffer writes never fail
	return buf.Bytes()
}

// String returns the full script text.
func (s *Script) String() string {
	return string(s.Bytes())
}

// Statements returns every statement without its terminating ";\n", in
// execution order.
func (s *Script) Statements() []string {
	out := make([]string, 0, len(s.Inserts)+1)
	out = append(out, trimStatement(s.Schema))
	for _, stmt := range s.Inserts {
		out = append(out, trimStatement(stmt))
	}
	return out
}

func trimStatement(stmt string) string {
	return strings.TrimSuffix(strings.TrimRight(stmt, "\n"), ";")
}
