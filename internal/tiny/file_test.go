package tiny

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinymerge/internal/diagnostic"
)

func TestWriteFileAndLoadFile(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		format   Format
		wantFile Format
	}{
		{"plain v2", "mappings.tiny", FormatV2, FormatV2},
		{"compressed v2", "out/mappings.tiny.lz4", FormatV2, FormatV2},
		{"plain v1", "v1/mappings.tiny", FormatV1, FormatV1},
	}

	src := readTree(t, v1Fixture)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)

			require.NoError(t, WriteFile(path, src, tt.format))

			format, err := DetectFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFile, format)

			loaded, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, writeString(t, src, FormatV2), writeString(t, loaded, FormatV2))
		})
	}
}

func TestCompressedFileIsLZ4Frame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.tiny.lz4")

	require.NoError(t, WriteFile(path, readTree(t, v2Fixture), FormatV2))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	// LZ4 frame magic number, little endian.
	require.GreaterOrEqual(t, len(raw), 4)
	assert.Equal(t, []byte{0x04, 0x22, 0x4d, 0x18}, raw[:4])
	assert.True(t, IsCompressed(path))
}

func TestReadFileReportsSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.tiny")
	require.NoError(t, os.WriteFile(path, []byte("tiny\t2\t0\tofficial\tnamed\nc\ta\n"), filePerm))

	_, err := LoadFile(path)
	require.ErrorIs(t, err, diagnostic.ErrFormat)

	var fe *diagnostic.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, path, fe.Source)
	assert.Equal(t, 2, fe.Line)
}

func TestReadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.tiny"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
