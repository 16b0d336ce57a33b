package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinymerge/internal/diagnostic"
)

// sampleTree builds official -> hashed, named:
//
//	a     h/C_1      x/Foo
//	  b:I            f_1 count
//	  c:(La;)V       m_2 run   param 1 -> value
//	a$b   h/C_1$C_2  x/Foo$Bar
func sampleTree(t *testing.T) *Tree {
	t.Helper()

	tr := New(WithNamespaces("official", "hashed", "named"))

	a, err := tr.NewClass("a")
	require.NoError(t, err)
	a.SetDstName(0, "h/C_1")
	a.SetDstName(1, "x/Foo")
	a.SetComment("The foo.")

	f, err := a.NewField("b", "I")
	require.NoError(t, err)
	f.SetDstName(0, "f_1")
	f.SetDstName(1, "count")

	m, err := a.NewMethod("c", "(La;)V")
	require.NoError(t, err)
	m.SetDstName(0, "m_2")
	m.SetDstName(1, "run")

	p, err := m.NewParam(1, "")
	require.NoError(t, err)
	p.SetDstName(1, "value")

	ab, err := tr.NewClass("a$b")
	require.NoError(t, err)
	ab.SetDstName(0, "h/C_1$C_2")
	ab.SetDstName(1, "x/Foo$Bar")

	return tr
}

func TestNamespaces(t *testing.T) {
	tr := New(WithNamespaces("official", "hashed", "named", "hashed", "official"))

	assert.Equal(t, "official", tr.SrcNamespace())
	assert.Equal(t, []string{"hashed", "named"}, tr.DstNamespaces())
	assert.Equal(t, []string{"official", "hashed", "named"}, tr.Namespaces())

	assert.Equal(t, SrcNamespace, tr.NamespaceID("official"))
	assert.Equal(t, 1, tr.NamespaceID("named"))
	assert.Equal(t, "hashed", tr.NamespaceName(0))
	assert.Equal(t, "official", tr.NamespaceName(SrcNamespace))

	_, ok := tr.LookupNamespace("intermediary")
	assert.False(t, ok)
}

func TestNamespaceIDPanicsForUnknownNamespace(t *testing.T) {
	tr := New(WithNamespaces("official", "hashed"))

	defer func() {
		r := recover()
		require.NotNil(t, r)

		err, ok := r.(*diagnostic.NamespaceError)
		require.True(t, ok, "panic value %T", r)
		assert.Equal(t, "hashd", err.Namespace)
		assert.Equal(t, []string{"hashed"}, err.Suggestions)
	}()

	tr.NamespaceID("hashd")
}

func TestDuplicateClassIsUniquenessViolation(t *testing.T) {
	tr := New(WithNamespaces("official", "named"))

	_, err := tr.NewClass("a/B")
	require.NoError(t, err)

	_, err = tr.NewClass("a/B")
	require.ErrorIs(t, err, diagnostic.ErrUniqueness)

	var ue *diagnostic.UniquenessError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "class", ue.Kind)
	assert.Equal(t, "a/B", ue.Key)
}

func TestDuplicateMembers(t *testing.T) {
	tr := sampleTree(t)
	a := tr.ClassBySrc("a")

	_, err := a.NewField("b", "I")
	assert.ErrorIs(t, err, diagnostic.ErrUniqueness)

	// Same name, other descriptor, is a different field.
	_, err = a.NewField("b", "J")
	assert.NoError(t, err)

	_, err = a.NewMethod("c", "(La;)V")
	assert.ErrorIs(t, err, diagnostic.ErrUniqueness)

	_, err = a.Method("c", "(La;)V").NewParam(1, "other")
	assert.ErrorIs(t, err, diagnostic.ErrUniqueness)
}

func TestLookup(t *testing.T) {
	tr := sampleTree(t)

	assert.Nil(t, tr.ClassBySrc("missing"))
	assert.Equal(t, "a", tr.ClassByName(SrcNamespace, "a").SrcName())

	// Linear scan without the index.
	assert.False(t, tr.IndexByDstNames())
	assert.Equal(t, "a$b", tr.ClassByName(1, "x/Foo$Bar").SrcName())

	tr.SetIndexByDstNames(true)
	assert.Equal(t, "a", tr.ClassByName(1, "x/Foo").SrcName())
	assert.Equal(t, "a", tr.ClassByName(0, "h/C_1").SrcName())
	assert.Nil(t, tr.ClassByName(1, "h/C_1"))

	// Renames keep the index current.
	tr.ClassBySrc("a").SetDstName(1, "x/Renamed")
	assert.Nil(t, tr.ClassByName(1, "x/Foo"))
	assert.Equal(t, "a", tr.ClassByName(1, "x/Renamed").SrcName())

	c, err := tr.NewClass("z")
	require.NoError(t, err)
	c.SetDstName(1, "x/Zed")
	assert.Same(t, c, tr.ClassByName(1, "x/Zed"))

	a := tr.ClassBySrc("a")
	assert.Equal(t, "count", a.Field("b", "I").DstName(1))
	assert.Equal(t, "count", a.Field("b", "").DstName(1))
	assert.Nil(t, a.Field("b", "J"))
	assert.Equal(t, "run", a.MethodByName(1, "run", "(Lx/Renamed;)V").DstName(1))
	assert.Equal(t, "value", a.Method("c", "(La;)V").Param(1, "").DstName(1))
}

func TestMapClassName(t *testing.T) {
	tr := sampleTree(t)

	assert.Equal(t, "x/Foo", tr.MapClassName("a", SrcNamespace, 1))
	assert.Equal(t, "a$b", tr.MapClassName("h/C_1$C_2", 0, SrcNamespace))
	assert.Equal(t, "java/lang/String", tr.MapClassName("java/lang/String", SrcNamespace, 1))
	assert.Equal(t, "x/Foo", tr.MapClassName("x/Foo", 1, 1))
}

func TestProperties(t *testing.T) {
	tr := New()

	tr.SetProperty("escaped-names", "")
	tr.SetProperty("next-intermediary-class", "10")
	tr.SetProperty("next-intermediary-class", "11")

	v, ok := tr.PropertyValue("next-intermediary-class")
	assert.True(t, ok)
	assert.Equal(t, "11", v)
	assert.Equal(t, []Property{
		{Key: "escaped-names"},
		{Key: "next-intermediary-class", Value: "11"},
	}, tr.Properties())
}

func TestCopy(t *testing.T) {
	tr := sampleTree(t)

	cp, err := tr.Copy(KeepExisting)
	require.NoError(t, err)

	assert.Equal(t, KeepExisting, cp.Mode())
	assert.Equal(t, tr.Namespaces(), cp.Namespaces())
	require.Equal(t, 2, cp.Len())

	a := cp.ClassBySrc("a")
	assert.Equal(t, "x/Foo", a.DstName(1))
	assert.Equal(t, "The foo.", a.Comment())
	assert.Equal(t, "value", a.Method("c", "(La;)V").Param(1, "").DstName(1))

	// The copy is independent of the original.
	a.SetDstName(1, "x/Other")
	assert.Equal(t, "x/Foo", tr.ClassBySrc("a").DstName(1))
}

func TestMergeModeString(t *testing.T) {
	assert.Equal(t, "strict", Strict.String())
	assert.Equal(t, "keep-existing", KeepExisting.String())
	assert.Equal(t, "overwrite", Overwrite.String())
	assert.Equal(t, "unknown", MergeMode(9).String())
	assert.Equal(t, "local variable", KindLocalVar.String())
}
