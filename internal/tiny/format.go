package tiny

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"tinymerge/internal/common"
	"tinymerge/internal/diagnostic"
	"tinymerge/internal/tree"
)

// Format is a serialized table format.
type Format int

const (
	// FormatUnknown is the zero Format.
	FormatUnknown Format = iota
	// FormatV1 is the flat Tiny v1 format.
	FormatV1
	// FormatV2 is the indented Tiny v2 format.
	FormatV2
)

const (
	v1Magic = "v1\t"
	v2Magic = "tiny\t2\t"

	// peekSize bounds how far DetectFormat looks for the header line.
	peekSize = 512
)

// String returns "v1", "v2" or "unknown".
func (f Format) String() string {
	switch f {
	case FormatV1:
		return "v1"
	case FormatV2:
		return "v2"
	default:
		return common.UnknownStr
	}
}

// ParseFormat accepts "v1", "v2", "tiny", "tinyv2" and "tiny-v2".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "v1", "tinyv1", "tiny-v1":
		return FormatV1, nil
	case "v2", "tiny", "tinyv2", "tiny-v2":
		return FormatV2, nil
	default:
		return FormatUnknown, fmt.Errorf("unknown table format %q (want v1 or v2)", s)
	}
}

// DetectFormat peeks at the first non-blank line of r without consuming it.
func DetectFormat(r *bufio.Reader) (Format, error) {
	buf, err := r.Peek(peekSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return FormatUnknown, fmt.Errorf("detect format: %w", err)
	}

	line := 1

	for len(buf) > 0 && (buf[0] == '\n' || buf[0] == '\r') {
		if buf[0] == '\n' {
			line++
		}

		buf = buf[1:]
	}

	switch {
	case bytes.HasPrefix(buf, []byte(v2Magic)):
		return FormatV2, nil
	case bytes.HasPrefix(buf, []byte(v1Magic)):
		return FormatV1, nil
	case len(buf) == 0:
		return FormatUnknown, &diagnostic.FormatError{Line: line, Msg: "empty table"}
	default:
		text, _, _ := bytes.Cut(buf, []byte("\n"))

		return FormatUnknown, &diagnostic.FormatError{Line: line, Text: string(text), Msg: "unrecognized table header"}
	}
}

// Read detects the format of r and dispatches to ReadV1 or ReadV2.
func Read(r io.Reader, v tree.Visitor) error {
	br := bufio.NewReader(r)

	format, err := DetectFormat(br)
	if err != nil {
		return err
	}

	if format == FormatV1 {
		return ReadV1(br, v)
	}

	return ReadV2(br, v)
}

// NewWriter returns the writing visitor for format.
func NewWriter(w io.Writer, format Format) (tree.Visitor, error) {
	switch format {
	case FormatV1:
		return NewV1Writer(w), nil
	case FormatV2:
		return NewV2Writer(w), nil
	default:
		return nil, fmt.Errorf("no writer for format %s", format)
	}
}

// Write serializes t to w in format.
func Write(w io.Writer, t *tree.Tree, format Format) error {
	v, err := NewWriter(w, format)
	if err != nil {
		return err
	}

	return t.Accept(v)
}

// lineReader yields lines without their terminator and counts them.
type lineReader struct {
	r    *bufio.Reader
	line int
}

func newLineReader(r io.Reader) *lineReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	return &lineReader{r: br}
}

// next returns the next line, or io.EOF once input is exhausted.
func (lr *lineReader) next() (string, error) {
	s, err := lr.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	if s == "" && err != nil {
		return "", io.EOF
	}

	lr.line++

	s = trimEOL(s)

	return s, nil
}

// header returns the first non-blank line, matching what DetectFormat
// looks at.
func (lr *lineReader) header() (string, error) {
	for {
		s, err := lr.next()
		if err != nil || s != "" {
			return s, err
		}
	}
}

func (lr *lineReader) errorf(text, format string, args ...any) error {
	return &diagnostic.FormatError{Line: lr.line, Text: text, Msg: fmt.Sprintf(format, args...)}
}

func trimEOL(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}

	if n := len(s); n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}

	return s
}
