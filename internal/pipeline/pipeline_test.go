package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinymerge/internal/cache"
	"tinymerge/internal/config"
	"tinymerge/internal/external"
	"tinymerge/internal/recipe"
	"tinymerge/internal/tiny"
	"tinymerge/internal/tree"
)

const intermediateTable = "tiny\t2\t0\tofficial\thashed\n" +
	"c\ta\th/C_1\n" +
	"\tf\tI\tb\tf_2\n" +
	"\tm\t(La;)V\tc\tm_3\n" +
	"c\ta$b\th/C_1$C_2\n" +
	"c\td\th/C_4\n"

const curatedTable = "tiny\t2\t0\thashed\tnamed\n" +
	"c\th/C_1\tnet/Foo\n" +
	"\tf\tI\tf_2\tcount\n" +
	"\tm\t(Lh/C_1;)V\tm_3\trun\n"

const mergedV1Table = "v1\tofficial\thashed\tnamed\n" +
	"CLASS\ta\th/C_1\tnet/Foo\n"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTable(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func loadString(t *testing.T, content string) *tree.Tree {
	t.Helper()

	path := writeTable(t, t.TempDir(), "table.tiny", content)

	tr, err := tiny.LoadFile(path)
	require.NoError(t, err)

	return tr
}

// assertMerged checks the table MergeCurated produces from the fixtures.
func assertMerged(t *testing.T, tr *tree.Tree) {
	t.Helper()

	assert.Equal(t, []string{"official", "hashed", "named"}, tr.Namespaces())
	require.Equal(t, 3, tr.Len())

	a := tr.ClassBySrc("a")
	require.NotNil(t, a)
	assert.Equal(t, "h/C_1", a.DstName(0))
	assert.Equal(t, "net/Foo", a.DstName(1))
	assert.Equal(t, "count", a.Field("b", "I").DstName(1))
	assert.Equal(t, "run", a.Method("c", "(La;)V").DstName(1))

	// Nested class inherits its enclosing class's curated name.
	assert.Equal(t, "net/Foo$C_2", tr.ClassBySrc("a$b").DstName(1))

	// Uncurated classes keep their intermediate name.
	assert.Equal(t, "h/C_4", tr.ClassBySrc("d").DstName(1))
}

type fakeProposer struct {
	calls [][3]string
	err   error
}

func (f *fakeProposer) Propose(_ context.Context, artifact, in, out string) error {
	f.calls = append(f.calls, [3]string{artifact, in, out})

	return f.err
}

func TestMergeCurated(t *testing.T) {
	p := New(WithLogger(quietLogger()))

	m, err := p.MergeCurated(loadString(t, intermediateTable), loadString(t, curatedTable))
	require.NoError(t, err)

	assertMerged(t, m.Tree)
	assert.Equal(t, 1, m.Inherit.Renamed)
	assert.Equal(t, 1, m.Diagnostics.Count(CodeInherited))
	assert.Zero(t, m.Diagnostics.Count(tree.CodeDroppedEntry))
}

func TestMergeCuratedWritesInvertedTable(t *testing.T) {
	work := t.TempDir()
	p := New(WithLogger(quietLogger()), WithWorkDir(work))

	_, err := p.MergeCurated(loadString(t, intermediateTable), loadString(t, curatedTable))
	require.NoError(t, err)

	inverted, err := tiny.LoadFile(filepath.Join(work, config.InvertedHashedFile))
	require.NoError(t, err)
	assert.Equal(t, "hashed", inverted.SrcNamespace())
	assert.Equal(t, "a", inverted.ClassBySrc("h/C_1").Name(inverted.NamespaceID("official")))
}

func TestMergeCuratedUnknownNamespace(t *testing.T) {
	p := New(WithLogger(quietLogger()), WithNamespaces(config.NamespaceConfig{
		Source:       "official",
		Intermediate: "intermediary",
		Named:        "named",
	}))

	_, err := p.MergeCurated(loadString(t, intermediateTable), loadString(t, curatedTable))
	require.Error(t, err)
}

func TestReadSources(t *testing.T) {
	dir := t.TempDir()
	inter := writeTable(t, dir, "inter.tiny", intermediateTable)
	cur := writeTable(t, dir, "curated.tiny", curatedTable)

	c, err := cache.New(4, cache.WithLogger(quietLogger()))
	require.NoError(t, err)

	p := New(WithLogger(quietLogger()), WithCache(c))

	trees, err := p.ReadSources(context.Background(), inter, cur, inter)
	require.NoError(t, err)
	require.Len(t, trees, 3)
	assert.Equal(t, "official", trees[0].SrcNamespace())
	assert.Equal(t, "hashed", trees[1].SrcNamespace())
	assert.NotSame(t, trees[0], trees[2])
	assert.Equal(t, 2, c.Len())

	_, err = p.ReadSources(context.Background(), inter, filepath.Join(dir, "missing.tiny"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadSourcesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().ReadSources(ctx, "a.tiny")
	require.ErrorIs(t, err, context.Canceled)
}

func TestIsV2File(t *testing.T) {
	dir := t.TempDir()

	ok, err := IsV2File(writeTable(t, dir, "v2.tiny", curatedTable))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsV2File(writeTable(t, dir, "v1.tiny", mergedV1Table))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = IsV2File(writeTable(t, dir, "bad.tiny", "nonsense\n"))
	require.Error(t, err)
}

func TestRunMergesV2(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out", config.MappingsFile)

	res, err := New(WithLogger(quietLogger())).Run(context.Background(), Request{
		Intermediate: writeTable(t, dir, "inter.tiny", intermediateTable),
		Mappings:     writeTable(t, dir, config.UnmergedMappingsFile, curatedTable),
		Output:       out,
	})
	require.NoError(t, err)
	assert.False(t, res.Proposed)
	require.NotNil(t, res.Merged)

	written, err := tiny.LoadFile(out)
	require.NoError(t, err)
	assertMerged(t, written)
}

func TestRunWithExternalReorderer(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, config.MappingsFile)

	p := New(WithLogger(quietLogger()), WithReorderer(external.NativeReorderer{}))

	_, err := p.Run(context.Background(), Request{
		Intermediate: writeTable(t, dir, "inter.tiny", intermediateTable),
		Mappings:     writeTable(t, dir, "curated.tiny", curatedTable),
		Output:       out,
	})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, config.UnorderedMergedFile))

	written, err := tiny.LoadFile(out)
	require.NoError(t, err)
	assertMerged(t, written)
}

func TestRunWithExternalReordererHonorsFormat(t *testing.T) {
	tests := []struct {
		name   string
		format tiny.Format
		magic  string
	}{
		{"default", tiny.FormatUnknown, "tiny\t2\t"},
		{"v2", tiny.FormatV2, "tiny\t2\t"},
		{"v1", tiny.FormatV1, "v1\t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			out := filepath.Join(dir, config.MappingsFile)

			p := New(WithLogger(quietLogger()), WithReorderer(external.NativeReorderer{}))

			_, err := p.Run(context.Background(), Request{
				Intermediate: writeTable(t, dir, "inter.tiny", intermediateTable),
				Mappings:     writeTable(t, dir, "curated.tiny", curatedTable),
				Output:       out,
				Format:       tt.format,
			})
			require.NoError(t, err)

			raw, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(raw), tt.magic), "got %q", raw)

			written, err := tiny.LoadFile(out)
			require.NoError(t, err)
			assert.Equal(t, p.OutputNamespaces(), written.Namespaces())
		})
	}
}

func TestRunProposesV1(t *testing.T) {
	dir := t.TempDir()
	in := writeTable(t, dir, "merged.tiny", mergedV1Table)
	out := filepath.Join(dir, config.MappingsFile)

	fp := &fakeProposer{}
	p := New(WithLogger(quietLogger()), WithProposer(fp))

	res, err := p.Run(context.Background(), Request{Mappings: in, Artifact: "game.jar", Output: out})
	require.NoError(t, err)
	assert.True(t, res.Proposed)
	assert.Equal(t, [][3]string{{"game.jar", in, out}}, fp.calls)

	fp.err = errors.New("exit status 2")
	_, err = p.Run(context.Background(), Request{Mappings: in, Output: out})
	require.ErrorIs(t, err, fp.err)
}

func TestRunV1WithoutProposerConverts(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, config.MappingsFile)

	res, err := New(WithLogger(quietLogger())).Run(context.Background(), Request{
		Mappings: writeTable(t, dir, "merged.tiny", mergedV1Table),
		Output:   out,
	})
	require.NoError(t, err)
	assert.False(t, res.Proposed)
	assert.Equal(t, 1, res.Diagnostics.Count(CodeProposerMissing))

	isV2, err := IsV2File(out)
	require.NoError(t, err)
	assert.True(t, isV2)
}

func TestRunRequiresOutput(t *testing.T) {
	_, err := New().Run(context.Background(), Request{Mappings: "x.tiny"})
	require.ErrorIs(t, err, errNoOutput)
}

func TestRunRecipe(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "inter.tiny", intermediateTable)
	writeTable(t, dir, "curated.tiny", curatedTable)

	r, err := recipe.Parse([]byte(`
output:
  path: build/mappings.tiny.lz4
  namespaces: [official, hashed, named]
sources:
  - name: intermediate
    path: inter.tiny
    complete:
      named: hashed
  - name: curated
    path: curated.tiny
steps:
  - name: merged
    merge:
      a: intermediate
      b: curated
      join_key: hashed
inherit:
  intermediate: hashed
  named: named
`))
	require.NoError(t, err)

	res, err := New(WithLogger(quietLogger())).RunRecipe(context.Background(), r, dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "build", "mappings.tiny.lz4"), res.Output)
	assert.Equal(t, 1, res.Inherit.Renamed)
	assertMerged(t, res.Tree)

	written, err := tiny.LoadFile(res.Output)
	require.NoError(t, err)
	assertMerged(t, written)
}

func TestRunRecipeInvalid(t *testing.T) {
	r, err := recipe.Parse([]byte("output:\n  path: o.tiny\nsources:\n  - name: a\n    path: a.tiny\nsteps:\n  - merge:\n      a: a\n      b: nope\n"))
	require.NoError(t, err)

	res, err := New(WithLogger(quietLogger())).RunRecipe(context.Background(), r, t.TempDir())
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Diagnostics.Count("unknown_reference"))
}
