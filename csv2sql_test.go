package csv2sql

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestConvert(t *testing.T) {
	t.Parallel()

	t.Run("typed schema with null handling", func(t *testing.T) {
		t.Parallel()

		script, err := Convert(t.Context(), strings.NewReader("id,name,note\n1,Alice,\n2,Bob,NULL\n3,Carol,hi\n"),
			"people", FileTypeCSV, NewOptions())
		require.NoError(t, err)

		assert.Equal(t, "CREATE TABLE people (\n\tid int4 NULL,\n\tname text NULL,\n\tnote text NULL\n);\n", script.Schema)
		assert.Equal(t, []string{
			"INSERT INTO people VALUES ('1', 'Alice', NULL);\n",
			"INSERT INTO people VALUES ('2', 'Bob', NULL);\n",
			"INSERT INTO people VALUES ('3', 'Carol', 'hi');\n",
		}, script.Inserts)
	})

	t.Run("normalized and deduplicated header", func(t *testing.T) {
		t.Parallel()

		script, err := Convert(t.Context(), strings.NewReader("Order ID,Ship/Date,Amount,Amount\nA1,03/15/2024,10,2.5\n"),
			"orders", FileTypeCSV, NewOptions())
		require.NoError(t, err)

		names := make([]string, len(script.Columns))
		for i, c := range script.Columns {
			names[i] = c.Name
		}
		assert.Equal(t, []string{"order_id", "ship_date", "amount", "amount_1"}, names)
		assert.Contains(t, script.Schema, "\tship_date date NULL")
		assert.Contains(t, script.Schema, "\tamount int4 NULL")
		assert.Contains(t, script.Schema, "\tamount_1 float8 NULL")
	})

	t.Run("us dates disabled", func(t *testing.T) {
		t.Parallel()

		script, err := Convert(t.Context(), strings.NewReader("d\n03/15/2024\n"),
			"t", FileTypeCSV, NewOptions().WithUSDates(false))
		require.NoError(t, err)
		assert.Contains(t, script.Schema, "\td text NULL")
	})

	t.Run("malformed rows are warnings", func(t *testing.T) {
		t.Parallel()

		core, logs := observer.New(zapcore.WarnLevel)
		opts := NewOptions().WithLogger(zap.New(core))

		script, err := Convert(t.Context(), strings.NewReader("a,b\n1,2\n3\n4,5,6\n7,8\n"),
			"t", FileTypeCSV, opts)
		require.NoError(t, err)

		assert.Len(t, script.Inserts, 2)
		assert.Equal(t, []RowWarning{
			{Line: 3, Fields: 1, Expected: 2},
			{Line: 4, Fields: 3, Expected: 2},
		}, script.Warnings)
		assert.Equal(t, 2, logs.FilterMessage("skipping malformed row").Len())
	})

	t.Run("blank line is a malformed row", func(t *testing.T) {
		t.Parallel()

		script, err := Convert(t.Context(), strings.NewReader("a,b\n1,2\n\n3,4\n"),
			"t", FileTypeCSV, NewOptions())
		require.NoError(t, err)

		assert.Len(t, script.Inserts, 2)
		assert.Equal(t, []RowWarning{{Line: 3, Fields: 0, Expected: 2}}, script.Warnings)
	})

	t.Run("wide integer keeps integer type", func(t *testing.T) {
		t.Parallel()

		script, err := Convert(t.Context(), strings.NewReader("id\n12345678901234567890\n"),
			"t", FileTypeCSV, NewOptions())
		require.NoError(t, err)
		assert.Contains(t, script.Schema, "\tid int4 NULL")
		assert.Equal(t, []string{"INSERT INTO t VALUES ('12345678901234567890');\n"}, script.Inserts)
	})

	t.Run("no header", func(t *testing.T) {
		t.Parallel()

		_, err := Convert(t.Context(), strings.NewReader(""), "t", FileTypeCSV, NewOptions())
		require.ErrorIs(t, err, ErrNoHeader)
		assert.Contains(t, err.Error(), "csv2sql: convert failed, table: t")
	})

	t.Run("nil reader", func(t *testing.T) {
		t.Parallel()

		_, err := Convert(t.Context(), nil, "t", FileTypeCSV, NewOptions())
		assert.ErrorIs(t, err, ErrInvalidOptions)
	})

	t.Run("bz2 output rejected", func(t *testing.T) {
		t.Parallel()

		_, err := Convert(t.Context(), strings.NewReader("a\n1\n"), "t", FileTypeCSV,
			NewOptions().WithCompression(CompressionBZ2))
		assert.ErrorIs(t, err, ErrInvalidOptions)
	})
}

func TestConvertFile(t *testing.T) {
	t.Parallel()

	t.Run("table name from file name", func(t *testing.T) {
		t.Parallel()

		script, err := ConvertFile(t.Context(), filepath.Join("testdata", "orders.csv"), NewOptions())
		require.NoError(t, err)
		assert.Equal(t, "orders", script.Table)
		assert.Len(t, script.Inserts, 2)
		assert.Contains(t, script.String(), "'O''Brien'")
	})

	t.Run("identical output on repeated runs", func(t *testing.T) {
		t.Parallel()

		first, err := ConvertFile(t.Context(), filepath.Join("testdata", "people.csv"), NewOptions())
		require.NoError(t, err)
		second, err := ConvertFile(t.Context(), filepath.Join("testdata", "people.csv"), NewOptions())
		require.NoError(t, err)
		assert.Equal(t, first.Bytes(), second.Bytes())
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := ConvertFile(t.Context(), filepath.Join(t.TempDir(), "missing.csv"), NewOptions())
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "data.json")
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

		_, err := ConvertFile(t.Context(), path, NewOptions())
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()

		_, err := ConvertFile(t.Context(), t.TempDir(), NewOptions())
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("permission denied", func(t *testing.T) {
		t.Parallel()

		if runtime.GOOS == "windows" || os.Getuid() == 0 {
			t.Skip("permission bits are not enforced")
		}

		dir := filepath.Join(t.TempDir(), "locked")
		require.NoError(t, os.Mkdir(dir, 0o700))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("a\n1\n"), 0o600))
		require.NoError(t, os.Chmod(dir, 0o000))
		t.Cleanup(func() {
			_ = os.Chmod(dir, 0o700) // Restore so TempDir cleanup succeeds
		})

		_, err := ConvertFile(t.Context(), filepath.Join(dir, "a.csv"), NewOptions())
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestOpenContext(t *testing.T) {
	t.Parallel()

	t.Run("query converted file", func(t *testing.T) {
		t.Parallel()

		db, err := OpenContext(t.Context(), filepath.Join("testdata", "orders.csv"))
		require.NoError(t, err)
		defer db.Close()

		var name string
		err = db.QueryRowContext(t.Context(),
			"SELECT customer_name FROM orders WHERE order_id = 1001").Scan(&name)
		require.NoError(t, err)
		assert.Equal(t, "O'Brien", name)
	})

	t.Run("no paths", func(t *testing.T) {
		t.Parallel()

		_, err := OpenContext(t.Context())
		assert.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		_, err := Open("")
		assert.ErrorIs(t, err, ErrInvalidOptions)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing.csv"))
		assert.Error(t, err)
	})
}

func TestErrorContext(t *testing.T) {
	t.Parallel()

	err := NewErrorContext("convert", "a.csv").
		WithTable("a").
		WithDetails("bad row").
		Error(ErrEmptyData)
	assert.ErrorIs(t, err, ErrEmptyData)
	assert.Equal(t, "csv2sql: convert failed, file: a.csv, table: a, details: bad row: csv2sql: empty data", err.Error())

	assert.EqualError(t, NewErrorContext("write", "").Error(nil), "csv2sql: write failed")
}
