package driver

import (
	"compress/gzip"
	"database/sql"
	"database/sql/driver"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/csv2sql/domain/model"
)

const testDriverName = "csv2sql_driver_test"

func init() {
	sql.Register(testDriverName, NewDriver())
}

func TestNewDriver(t *testing.T) {
	t.Parallel()

	if d := NewDriver(); d == nil {
		t.Error("NewDriver() returned nil")
	}
}

func TestDriverOpen(t *testing.T) {
	t.Parallel()

	d := NewDriver()

	tests := []struct {
		name    string
		dsn     string
		wantErr bool
	}{
		{
			name:    "Valid CSV file",
			dsn:     "../testdata/people.csv",
			wantErr: false,
		},
		{
			name:    "Valid CSV file with options",
			dsn:     "../testdata/people.csv?schema=width&inference=all&us_dates=false",
			wantErr: false,
		},
		{
			name:    "Non-existent file",
			dsn:     "../testdata/nonexistent.csv",
			wantErr: true,
		},
		{
			name:    "Unsupported file",
			dsn:     "driver.go",
			wantErr: true,
		},
		{
			name:    "Empty DSN",
			dsn:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conn, err := d.Open(tt.dsn)
			if (err != nil) != tt.wantErr {
				t.Errorf("Open() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if conn != nil {
				if err := conn.Close(); err != nil {
					t.Errorf("Close() error = %v", err)
				}
			}
		})
	}
}

func TestParseDSN(t *testing.T) {
	t.Parallel()

	t.Run("paths and options", func(t *testing.T) {
		t.Parallel()

		paths, opts, err := ParseDSN("a.csv; b.tsv ?schema=width&inference=all&us_dates=false&delimiter=%3B&encoding=latin1&sheet=Data")
		if err != nil {
			t.Fatalf("ParseDSN() error = %v", err)
		}
		if len(paths) != 2 || paths[0] != "a.csv" || paths[1] != "b.tsv" {
			t.Errorf("paths = %v", paths)
		}
		if opts.Schema != model.SchemaWidth {
			t.Errorf("Schema = %v, want width", opts.Schema)
		}
		if opts.Inference != model.InferFromAllRows {
			t.Errorf("Inference = %v, want all", opts.Inference)
		}
		if opts.USDates {
			t.Error("USDates = true, want false")
		}
		if opts.Delimiter != ';' {
			t.Errorf("Delimiter = %q, want ';'", opts.Delimiter)
		}
		if opts.Encoding != model.EncodingLatin1 {
			t.Errorf("Encoding = %v, want latin1", opts.Encoding)
		}
		if opts.Sheet != "Data" {
			t.Errorf("Sheet = %q, want Data", opts.Sheet)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		_, opts, err := ParseDSN("a.csv")
		if err != nil {
			t.Fatalf("ParseDSN() error = %v", err)
		}
		if opts.Schema != model.SchemaTyped || opts.Inference != model.InferFromSample || !opts.USDates {
			t.Errorf("unexpected defaults: %+v", opts)
		}
	})

	errorTests := []struct {
		name string
		dsn  string
		want error
	}{
		{name: "no paths", dsn: " ; ", want: ErrNoPathsProvided},
		{name: "unknown parameter", dsn: "a.csv?color=red", want: ErrInvalidDSN},
		{name: "bad schema", dsn: "a.csv?schema=loose", want: ErrInvalidDSN},
		{name: "bad bool", dsn: "a.csv?us_dates=maybe", want: ErrInvalidDSN},
		{name: "null byte", dsn: "a\x00.csv", want: ErrInvalidPath},
	}
	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := ParseDSN(tt.dsn)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseDSN() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestQueryConvertedTable(t *testing.T) {
	t.Parallel()

	db, err := sql.Open(testDriverName, "../testdata/people.csv")
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRowContext(t.Context(), "SELECT COUNT(*) FROM people").Scan(&count); err != nil {
		t.Fatalf("count query error = %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	var nulls int
	if err := db.QueryRowContext(t.Context(), "SELECT COUNT(*) FROM people WHERE note IS NULL").Scan(&nulls); err != nil {
		t.Fatalf("null query error = %v", err)
	}
	if nulls != 2 {
		t.Errorf("null notes = %d, want 2", nulls)
	}

	var storage string
	if err := db.QueryRowContext(t.Context(), "SELECT typeof(id) FROM people LIMIT 1").Scan(&storage); err != nil {
		t.Fatalf("typeof query error = %v", err)
	}
	if storage != "integer" {
		t.Errorf("typeof(id) = %q, want integer", storage)
	}
}

func TestQueryWidthSchema(t *testing.T) {
	t.Parallel()

	db, err := sql.Open(testDriverName, "../testdata/people.csv?schema=width")
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()

	var storage string
	if err := db.QueryRowContext(t.Context(), "SELECT typeof(id) FROM people LIMIT 1").Scan(&storage); err != nil {
		t.Fatalf("typeof query error = %v", err)
	}
	if storage != "text" {
		t.Errorf("typeof(id) = %q, want text", storage)
	}
}

func TestMalformedRowsSkipped(t *testing.T) {
	t.Parallel()

	db, err := sql.Open(testDriverName, "../testdata/malformed.csv")
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(t.Context(), "SELECT name FROM malformed ORDER BY id")
	if err != nil {
		t.Fatalf("query error = %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan error = %v", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows error = %v", err)
	}
	if len(names) != 2 || names[0] != "Alice" || names[1] != "Dave" {
		t.Errorf("names = %v, want [Alice Dave]", names)
	}
}

func writeGzip(t *testing.T, path string, data []byte) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := gzip.NewWriter(f)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestConnectorConnectDirectory(t *testing.T) {
	t.Parallel()

	t.Run("uncompressed file preferred", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "items.csv"), []byte("id\n1\n2\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		writeGzip(t, filepath.Join(dir, "items.csv.gz"), []byte("id\n1\n"))
		if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("ignored"), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, ".hidden.csv"), []byte("x\n1\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		db, err := sql.Open(testDriverName, dir)
		if err != nil {
			t.Fatalf("sql.Open() error = %v", err)
		}
		defer db.Close()

		var count int
		if err := db.QueryRowContext(t.Context(), "SELECT COUNT(*) FROM items").Scan(&count); err != nil {
			t.Fatalf("count query error = %v", err)
		}
		if count != 2 {
			t.Errorf("count = %d, want 2 rows from the uncompressed file", count)
		}
	})

	t.Run("different formats with same table name", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "items.csv"), []byte("id\n1\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "items.tsv"), []byte("id\n1\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		_, err := NewDriver().Open(dir)
		if !errors.Is(err, ErrDuplicateTableName) {
			t.Errorf("Open() error = %v, want %v", err, ErrDuplicateTableName)
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		t.Parallel()

		_, err := NewDriver().Open(t.TempDir())
		if !errors.Is(err, ErrNoFilesLoaded) {
			t.Errorf("Open() error = %v, want %v", err, ErrNoFilesLoaded)
		}
	})
}

func TestConnectorConnectKeywordColumn(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "orders.csv")
	if err := os.WriteFile(path, []byte("select,total\nA,1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewDriver().Open(path)
	if err == nil {
		t.Fatal("Open() error = nil, want a load error")
	}
	if !strings.Contains(err.Error(), `columns "select" cannot be used unquoted`) {
		t.Errorf("Open() error = %v, want the keyword column named", err)
	}
}

func TestConnectorConnectMultiplePaths(t *testing.T) {
	t.Parallel()

	t.Run("two tables", func(t *testing.T) {
		t.Parallel()

		db, err := sql.Open(testDriverName, "../testdata/people.csv;../testdata/malformed.csv")
		if err != nil {
			t.Fatalf("sql.Open() error = %v", err)
		}
		defer db.Close()

		var count int
		query := "SELECT (SELECT COUNT(*) FROM people) + (SELECT COUNT(*) FROM malformed)"
		if err := db.QueryRowContext(t.Context(), query).Scan(&count); err != nil {
			t.Fatalf("query error = %v", err)
		}
		if count != 5 {
			t.Errorf("count = %d, want 5", count)
		}
	})

	t.Run("same file twice", func(t *testing.T) {
		t.Parallel()

		_, err := NewDriver().Open("../testdata/people.csv;../testdata/people.csv")
		if !errors.Is(err, ErrDuplicateTableName) {
			t.Errorf("Open() error = %v, want %v", err, ErrDuplicateTableName)
		}
	})
}

func TestConnectionTransactions(t *testing.T) {
	t.Parallel()

	connector, err := NewDriver().OpenConnector("../testdata/people.csv")
	if err != nil {
		t.Fatalf("OpenConnector() error = %v", err)
	}

	conn, err := connector.Connect(t.Context())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer conn.Close()

	csvConn, ok := conn.(*Connection)
	if !ok {
		t.Fatal("connection is not a csv2sql connection")
	}

	t.Run("BeginTx with commit", func(t *testing.T) {
		tx, err := csvConn.BeginTx(t.Context(), driver.TxOptions{})
		if err != nil {
			t.Fatalf("BeginTx() error = %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Errorf("Commit() error = %v", err)
		}
	})

	t.Run("Deprecated Begin with rollback", func(t *testing.T) {
		tx, err := csvConn.Begin()
		if err != nil {
			t.Fatalf("Begin() error = %v", err)
		}
		if err := tx.Rollback(); err != nil {
			t.Errorf("Rollback() error = %v", err)
		}
	})

	t.Run("Prepare", func(t *testing.T) {
		stmt, err := csvConn.Prepare("SELECT COUNT(*) FROM people")
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		if err := stmt.Close(); err != nil {
			t.Errorf("stmt.Close() error = %v", err)
		}
	})
}

func TestConnectionClose(t *testing.T) {
	t.Parallel()

	nilConn := &Connection{conn: nil}
	if err := nilConn.Close(); err != nil {
		t.Errorf("Close() with nil connection error = %v", err)
	}
}
