package external

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinymerge/internal/tiny"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewCommandEmpty(t *testing.T) {
	_, err := NewCommand("  ", nil)
	require.ErrorIs(t, err, ErrEmptyCommand)
}

func TestCommandExpand(t *testing.T) {
	c, err := NewCommand("tool reorder {input} --out={output} {namespaces}", quietLogger())
	require.NoError(t, err)

	got := c.Expand(map[string][]string{
		PlaceholderInput:      {"in.tiny"},
		PlaceholderOutput:     {"out.tiny"},
		PlaceholderNamespaces: {"official", "hashed", "named"},
	})

	assert.Equal(t, []string{"tool", "reorder", "in.tiny", "--out=out.tiny", "official", "hashed", "named"}, got)
}

func TestCommandPropose(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses cp")
	}

	if _, err := exec.LookPath("cp"); err != nil {
		t.Skip("cp not available")
	}

	dir := t.TempDir()
	in := filepath.Join(dir, "in.tiny")
	out := filepath.Join(dir, "out.tiny")
	require.NoError(t, os.WriteFile(in, []byte("v1\tofficial\tnamed\n"), 0o644))

	c, err := NewCommand("cp {input} {output}", quietLogger())
	require.NoError(t, err)
	require.NoError(t, c.Propose(context.Background(), "game.jar", in, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "v1\tofficial\tnamed\n", string(data))
}

func TestCommandFailureQuotesStderr(t *testing.T) {
	if _, err := exec.LookPath("ls"); err != nil {
		t.Skip("ls not available")
	}

	c, err := NewCommand("ls {input}", quietLogger())
	require.NoError(t, err)

	err = c.Reorder(context.Background(), filepath.Join(t.TempDir(), "missing"), "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running ls")
}

func TestNativeReorderer(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "unordered.tiny")
	out := filepath.Join(dir, "mappings.tiny")

	content := "tiny\t2\t0\thashed\tnamed\tofficial\n" +
		"c\th/C_1\tnet/Foo\ta\n"
	require.NoError(t, os.WriteFile(in, []byte(content), 0o644))

	err := NativeReorderer{}.Reorder(context.Background(), in, out, []string{"official", "hashed", "named"})
	require.NoError(t, err)

	tr, err := tiny.LoadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"official", "hashed", "named"}, tr.Namespaces())
	assert.Equal(t, "net/Foo", tr.ClassBySrc("a").DstName(1))
}

func TestNativeReordererHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NativeReorderer{}.Reorder(ctx, "in", "out", nil)
	require.ErrorIs(t, err, context.Canceled)
}
