package tiny

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pierrec/lz4/v4"

	"tinymerge/internal/diagnostic"
	"tinymerge/internal/tree"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// CompressedSuffix selects LZ4 frame compression for table files.
const CompressedSuffix = ".lz4"

// ReadFile reads the table at path into v, detecting its format. Paths
// ending in CompressedSuffix are decompressed transparently.
func ReadFile(path string, v tree.Visitor) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening table: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if IsCompressed(path) {
		r = lz4.NewReader(f)
	}

	if info, statErr := f.Stat(); statErr == nil {
		slog.Debug("tiny: reading table", "path", path, "size", humanize.Bytes(uint64(info.Size())))
	}

	err = Read(r, v)
	if err != nil {
		var fe *diagnostic.FormatError
		if errors.As(err, &fe) && fe.Source == "" {
			fe.Source = path
		}

		return fmt.Errorf("reading %s: %w", path, err)
	}

	return nil
}

// LoadFile reads the table at path into a new tree.
func LoadFile(path string, opts ...tree.Option) (*tree.Tree, error) {
	t := tree.New(opts...)

	if err := ReadFile(path, t); err != nil {
		return nil, err
	}

	return t, nil
}

// DetectFile reports the format of the table at path.
func DetectFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("opening table: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if IsCompressed(path) {
		r = lz4.NewReader(f)
	}

	format, err := DetectFormat(bufio.NewReader(r))
	if err != nil {
		var fe *diagnostic.FormatError
		if errors.As(err, &fe) {
			fe.Source = path
		}

		return FormatUnknown, err
	}

	return format, nil
}

// WriteFile writes t to path in format, creating parent directories as
// needed. Paths ending in CompressedSuffix are LZ4-compressed.
func WriteFile(path string, t *tree.Tree, format Format) error {
	err := os.MkdirAll(filepath.Dir(path), dirPerm)
	if err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	cw := &countingWriter{w: f}

	var w io.Writer = cw

	var zw *lz4.Writer
	if IsCompressed(path) {
		zw = lz4.NewWriter(cw)
		w = zw
	}

	err = Write(w, t, format)

	if zw != nil {
		if closeErr := zw.Close(); err == nil {
			err = closeErr
		}
	}

	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	slog.Debug("tiny: wrote table", "path", path, "format", format.String(),
		"classes", t.Len(), "size", humanize.Bytes(uint64(cw.n)))

	return nil
}

// IsCompressed reports whether path names an LZ4-compressed table.
func IsCompressed(path string) bool {
	return strings.HasSuffix(path, CompressedSuffix)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)

	return n, err
}
