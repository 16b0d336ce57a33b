package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinymerge/internal/diagnostic"
)

func TestVisitStrictRejectsDuplicateClass(t *testing.T) {
	tr := New()

	require.NoError(t, tr.Header("official", []string{"named"}))
	require.NoError(t, tr.Class("a/B"))
	require.NoError(t, tr.DstName(KindClass, 0, "x/B"))

	err := tr.Class("a/B")
	require.ErrorIs(t, err, diagnostic.ErrUniqueness)
	assert.Contains(t, err.Error(), `duplicate class "a/B"`)
}

func TestVisitStrictRejectsDuplicateMembers(t *testing.T) {
	tests := []struct {
		name  string
		visit func(tr *Tree) error
	}{
		{
			name: "field",
			visit: func(tr *Tree) error {
				if err := tr.Field("f", "I"); err != nil {
					return err
				}

				return tr.Field("f", "I")
			},
		},
		{
			name: "method",
			visit: func(tr *Tree) error {
				if err := tr.Method("m", "()V"); err != nil {
					return err
				}

				return tr.Method("m", "()V")
			},
		},
		{
			name: "param",
			visit: func(tr *Tree) error {
				if err := tr.Method("m", "(I)V"); err != nil {
					return err
				}

				if err := tr.Param(1, "x"); err != nil {
					return err
				}

				return tr.Param(1, "y")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New()
			require.NoError(t, tr.Header("official", []string{"named"}))
			require.NoError(t, tr.Class("a/B"))

			err := tt.visit(tr)
			require.ErrorIs(t, err, diagnostic.ErrUniqueness)
		})
	}
}

func TestVisitKeepExistingAndOverwrite(t *testing.T) {
	visit := func(t *testing.T, tr *Tree) {
		t.Helper()

		require.NoError(t, tr.Header("official", []string{"hashed", "named", "extra"}))
		require.NoError(t, tr.Property("escaped-names", ""))
		require.NoError(t, tr.Class("a"))
		require.NoError(t, tr.DstName(KindClass, 1, "y/Other"))
		require.NoError(t, tr.DstName(KindClass, 2, "e/A"))
		require.NoError(t, tr.Comment(KindClass, "Incoming."))
		require.NoError(t, tr.Field("b", "I"))
		require.NoError(t, tr.DstName(KindField, 1, "size"))
		require.NoError(t, tr.Field("new", "J"))
		require.NoError(t, tr.DstName(KindField, 1, "fresh"))
		require.NoError(t, tr.End())
	}

	t.Run("keep existing", func(t *testing.T) {
		base := sampleTree(t)
		tr, err := base.Copy(KeepExisting)
		require.NoError(t, err)

		visit(t, tr)

		assert.Equal(t, []string{"official", "hashed", "named", "extra"}, tr.Namespaces())

		a := tr.ClassBySrc("a")
		assert.Equal(t, "x/Foo", a.DstName(1))
		assert.Equal(t, "e/A", a.DstName(2))
		assert.Equal(t, "The foo.", a.Comment())
		assert.Equal(t, "count", a.Field("b", "I").DstName(1))
		assert.Equal(t, "fresh", a.Field("new", "J").DstName(1))
		assert.Len(t, a.Fields(), 2)

		_, ok := tr.PropertyValue("escaped-names")
		assert.True(t, ok)
	})

	t.Run("overwrite", func(t *testing.T) {
		base := sampleTree(t)
		tr, err := base.Copy(Overwrite)
		require.NoError(t, err)

		visit(t, tr)

		a := tr.ClassBySrc("a")
		assert.Equal(t, "y/Other", a.DstName(1))
		assert.Equal(t, "h/C_1", a.DstName(0))
		assert.Equal(t, "Incoming.", a.Comment())
		assert.Equal(t, "size", a.Field("b", "I").DstName(1))
		// Untouched members survive.
		assert.Equal(t, "run", a.Method("c", "(La;)V").DstName(1))
	})
}

func TestVisitKeyedByDestinationNamespace(t *testing.T) {
	tr, err := sampleTree(t).Copy(KeepExisting)
	require.NoError(t, err)

	// Keyed by hashed: the tree is official -> hashed, named.
	require.NoError(t, tr.Header("hashed", []string{"official", "docs"}))

	require.NoError(t, tr.Class("h/C_1"))
	require.NoError(t, tr.DstName(KindClass, 1, "d/Foo"))
	require.NoError(t, tr.Method("m_2", "(Lh/C_1;)V"))
	require.NoError(t, tr.DstName(KindMethod, 1, "doRun"))
	require.NoError(t, tr.Param(1, ""))
	require.NoError(t, tr.DstName(KindParam, 1, "v"))

	// Unknown hashed name that also carries its official name.
	require.NoError(t, tr.Class("h/C_7"))
	require.NoError(t, tr.DstName(KindClass, 0, "q"))
	require.NoError(t, tr.DstName(KindClass, 1, "d/Q"))

	// Unknown hashed name without an official name cannot be keyed.
	require.NoError(t, tr.Class("h/C_8"))
	require.NoError(t, tr.DstName(KindClass, 1, "d/Lost"))
	require.NoError(t, tr.Field("f_9", "I"))
	require.NoError(t, tr.End())

	assert.Equal(t, []string{"official", "hashed", "named", "docs"}, tr.Namespaces())
	assert.True(t, tr.IndexByDstNames())

	a := tr.ClassBySrc("a")
	assert.Equal(t, "d/Foo", a.DstName(2))

	m := a.Method("c", "(La;)V")
	require.NotNil(t, m)
	assert.Equal(t, "doRun", m.DstName(2))
	assert.Equal(t, "value", m.Param(1, "").DstName(1))
	assert.Equal(t, "v", m.Param(1, "").DstName(2))

	q := tr.ClassBySrc("q")
	require.NotNil(t, q)
	assert.Equal(t, "h/C_7", q.DstName(0))
	assert.Equal(t, "d/Q", q.DstName(2))
	assert.Same(t, q, tr.ClassByName(0, "h/C_7"))

	assert.Nil(t, tr.ClassByName(2, "d/Lost"))
	assert.Equal(t, 3, tr.Len())
	assert.Equal(t, 1, tr.Diagnostics().Count(CodeDroppedEntry))
	assert.Equal(t, "h/C_8", tr.Diagnostics().Infos[0].Key)
}

func TestVisitSourceNameConflictIsWarning(t *testing.T) {
	tr, err := sampleTree(t).Copy(KeepExisting)
	require.NoError(t, err)

	require.NoError(t, tr.Header("hashed", []string{"official"}))
	require.NoError(t, tr.Class("h/C_1"))
	require.NoError(t, tr.DstName(KindClass, 0, "zz"))
	require.NoError(t, tr.End())

	assert.Equal(t, "a", tr.ClassByName(0, "h/C_1").SrcName())
	require.Len(t, tr.Diagnostics().Warnings, 1)
	assert.Equal(t, CodeSourceNameConflict, tr.Diagnostics().Warnings[0].Code)
}

func TestVisitProtocolErrors(t *testing.T) {
	t.Run("before header", func(t *testing.T) {
		assert.Error(t, New().Class("a"))
	})

	t.Run("member outside class", func(t *testing.T) {
		tr := New()
		require.NoError(t, tr.Header("official", nil))
		assert.Error(t, tr.Field("f", "I"))
	})

	t.Run("param outside method", func(t *testing.T) {
		tr := New()
		require.NoError(t, tr.Header("official", nil))
		require.NoError(t, tr.Class("a"))
		assert.Error(t, tr.Param(0, "x"))
	})

	t.Run("kind mismatch", func(t *testing.T) {
		tr := New()
		require.NoError(t, tr.Header("official", []string{"named"}))
		require.NoError(t, tr.Class("a"))
		require.NoError(t, tr.Field("f", "I"))
		assert.Error(t, tr.DstName(KindClass, 0, "x"))
	})

	t.Run("namespace out of range", func(t *testing.T) {
		tr := New()
		require.NoError(t, tr.Header("official", []string{"named"}))
		require.NoError(t, tr.Class("a"))
		assert.Error(t, tr.DstName(KindClass, 3, "x"))
	})

	t.Run("unknown key namespace", func(t *testing.T) {
		tr := sampleTree(t)
		err := tr.Header("intermediary", []string{"named"})
		assert.ErrorIs(t, err, diagnostic.ErrNamespace)
	})
}
