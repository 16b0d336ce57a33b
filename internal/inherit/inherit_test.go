package inherit

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinymerge/internal/diagnostic"
	"tinymerge/internal/tiny"
	"tinymerge/internal/tree"
)

func load(t *testing.T, rows ...string) *tree.Tree {
	t.Helper()

	content := "tiny\t2\t0\tofficial\thashed\tnamed\n" + strings.Join(rows, "\n") + "\n"

	tr := tree.New()
	require.NoError(t, tiny.Read(strings.NewReader(content), tr))

	return tr
}

func named(t *testing.T, tr *tree.Tree, src string) string {
	t.Helper()

	c := tr.ClassBySrc(src)
	require.NotNil(t, c, src)

	return c.DstName(tr.NamespaceID("named"))
}

func TestApplyEnclosingName(t *testing.T) {
	tr := load(t,
		"c\tq\ta/b\tx/y",
		"c\tr\ta/b$c\ta/b$c",
	)

	res, err := Apply(tr, "hashed", "named")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Renamed)
	assert.Equal(t, []Rename{{Class: "r", From: "a/b$c", To: "x/y$c"}}, res.Renames)
	assert.Equal(t, "x/y$c", named(t, tr, "r"))
	assert.Equal(t, "x/y", named(t, tr, "q"))
}

func TestApplyUsesClosestNamedAncestor(t *testing.T) {
	tr := load(t,
		"c\tq\ta/b\tx/y",
		"c\tr\ta/b$c\tp/Q",
		"c\ts\ta/b$c$d\ta/b$c$d",
		// No entry for a/b$e: the walk continues outwards.
		"c\tu\ta/b$e$f\ta/b$e$f",
		// Curated names are never revised.
		"c\tv\ta/b$g\tm/Kept",
	)

	res, err := Apply(tr, "hashed", "named")
	require.NoError(t, err)

	assert.Equal(t, 2, res.Renamed)
	assert.Equal(t, "p/Q$d", named(t, tr, "s"))
	assert.Equal(t, "x/y$e$f", named(t, tr, "u"))
	assert.Equal(t, "m/Kept", named(t, tr, "v"))
	assert.Equal(t, "p/Q", named(t, tr, "r"))
}

func TestApplyIsOrderIndependent(t *testing.T) {
	rows := []string{
		"c\tq\ta/b\tx/y",
		"c\tr\ta/b$c\ta/b$c",
		"c\ts\ta/b$c$d\ta/b$c$d",
	}

	forward := load(t, rows...)
	backward := load(t, rows[2], rows[1], rows[0])

	_, err := Apply(forward, "hashed", "named")
	require.NoError(t, err)

	_, err = Apply(backward, "hashed", "named")
	require.NoError(t, err)

	for _, src := range []string{"q", "r", "s"} {
		assert.Equal(t, named(t, forward, src), named(t, backward, src), src)
	}

	assert.Equal(t, "x/y$c", named(t, forward, "r"))
	assert.Equal(t, "x/y$c$d", named(t, forward, "s"))
}

func TestApplySkipsUnsetNames(t *testing.T) {
	tr := load(t,
		"c\tq\ta/b\tx/y",
		"c\tr\ta/b$c\t",
		"c\ts\t\ta/b$d",
		"c\tw\ta/z$c\ta/z$c",
	)

	res, err := Apply(tr, "hashed", "named")
	require.NoError(t, err)

	assert.Zero(t, res.Renamed)
	assert.Equal(t, "", named(t, tr, "r"))
	assert.Equal(t, "a/b$d", named(t, tr, "s"))
	// No enclosing class with a curated name.
	assert.Equal(t, "a/z$c", named(t, tr, "w"))
}

func TestApplyIntermediateAsSource(t *testing.T) {
	content := "tiny\t2\t0\thashed\tnamed\n" +
		"c\ta/b\tx/y\n" +
		"c\ta/b$c\ta/b$c\n"

	tr := tree.New()
	require.NoError(t, tiny.Read(strings.NewReader(content), tr))

	res, err := Apply(tr, "hashed", "named")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Renamed)
	assert.Equal(t, "x/y$c", tr.ClassBySrc("a/b$c").DstName(0))
}

func TestApplyErrors(t *testing.T) {
	tr := load(t, "c\tq\ta/b\tx/y")

	_, err := Apply(tr, "intermediary", "named")
	require.ErrorIs(t, err, diagnostic.ErrNamespace)

	_, err = Apply(tr, "hashed", "official")
	require.Error(t, err)
}

func TestApplyLogsToInjectedLogger(t *testing.T) {
	tests := []struct {
		name  string
		rows  []string
		wants []string
	}{
		{
			name: "renames",
			rows: []string{"c\tq\ta/b\tx/y", "c\tr\ta/b$c\ta/b$c"},
			wants: []string{
				`msg="inherit: renamed" class=r from=a/b$c to=x/y$c`,
				`msg="inherit: renamed nested classes" intermediate=hashed named=named renamed=1`,
			},
		},
		{
			name:  "nothing to rename",
			rows:  []string{"c\tq\ta/b\tx/y"},
			wants: []string{"renamed=0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			_, err := Apply(load(t, tt.rows...), "hashed", "named", WithLogger(logger))
			require.NoError(t, err)

			for _, want := range tt.wants {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}
