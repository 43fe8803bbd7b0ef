package csv2sql

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressionHandler_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		compressionType CompressionType
		extension       string
	}{
		{name: "No compression", compressionType: CompressionNone, extension: ""},
		{name: "Gzip compression", compressionType: CompressionGZ, extension: ".gz"},
		{name: "XZ compression", compressionType: CompressionXZ, extension: ".xz"},
		{name: "ZSTD compression", compressionType: CompressionZSTD, extension: ".zst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := NewCompressionHandler(tt.compressionType)
			assert.Equal(t, tt.extension, handler.Extension())

			data := []byte("CREATE TABLE t (\n\ta text NULL\n);\n")
			var buf bytes.Buffer
			writer, closeWriter, err := handler.CreateWriter(&buf)
			require.NoError(t, err)
			_, err = writer.Write(data)
			require.NoError(t, err)
			require.NoError(t, closeWriter())

			reader, closeReader, err := handler.CreateReader(&buf)
			require.NoError(t, err)
			defer func() {
				_ = closeReader() // Ignore close error in test
			}()

			got, err := io.ReadAll(reader)
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}

func TestCompressionHandler_BZ2WriterRejected(t *testing.T) {
	t.Parallel()

	handler := NewCompressionHandler(CompressionBZ2)
	assert.Equal(t, ".bz2", handler.Extension())

	_, _, err := handler.CreateWriter(io.Discard)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestWriteCompressed_ClosesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.sql.gz")
	f, err := os.Create(path)
	require.NoError(t, err)

	require.NoError(t, writeCompressed(f, NewCompressionHandler(CompressionGZ), []byte("x")))

	// A second close reports the file was already closed.
	assert.Error(t, f.Close())
}
