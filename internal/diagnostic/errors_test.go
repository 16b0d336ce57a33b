package diagnostic

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatError(t *testing.T) {
	err := &FormatError{Source: "mappings.tiny", Line: 3, Text: "x\ta", Msg: "unknown row tag \"x\""}

	assert.Equal(t, `mappings.tiny:3: unknown row tag "x": "x\ta"`, err.Error())
	assert.ErrorIs(t, err, ErrFormat)
	assert.NotErrorIs(t, err, ErrNamespace)

	wrapped := fmt.Errorf("read intermediate: %w", err)

	var fe *FormatError
	require.ErrorAs(t, wrapped, &fe)
	assert.Equal(t, 3, fe.Line)
}

func TestNamespaceErrorSuggestions(t *testing.T) {
	err := NewNamespaceError("switch", "hashd", []string{"official", "hashed", "named"})

	assert.ErrorIs(t, err, ErrNamespace)
	assert.Equal(t, []string{"hashed"}, err.Suggestions)
	assert.Contains(t, err.Error(), `namespace "hashd" not present`)
	assert.Contains(t, err.Error(), "did you mean hashed?")
}

func TestNamespaceErrorWithoutSuggestions(t *testing.T) {
	err := NewNamespaceError("merge", "intermediary", []string{"official", "named"})

	assert.Empty(t, err.Suggestions)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestUniquenessError(t *testing.T) {
	cls := &UniquenessError{Kind: "class", Key: "a/B"}
	assert.Equal(t, `duplicate class "a/B"`, cls.Error())
	assert.True(t, errors.Is(cls, ErrUniqueness))

	fld := &UniquenessError{Kind: "field", Owner: "a/B", Key: "f:I"}
	assert.Equal(t, `duplicate field "f:I" in a/B`, fld.Error())
}

func TestDiagnostics(t *testing.T) {
	var d Diagnostics

	d.AddInfo("dropped_entry", "no name in namespace named", "switch", "a/B")
	d.AddInfo("dropped_entry", "no name in namespace named", "switch", "a/C")
	d.AddWarning("comment_conflict", "comments differ", "merge", "a/D")

	assert.True(t, d.IsValid())
	assert.NoError(t, d.Error())
	assert.Equal(t, 2, d.Count("dropped_entry"))

	var other Diagnostics
	other.AddError("unknown_source", "source \"x\" is not declared", "recipe", "x")
	d.Merge(&other)

	assert.True(t, d.HasErrors())
	assert.EqualError(t, d.Error(), `[recipe] x: [unknown_source] source "x" is not declared`)
	assert.Equal(t, "warning", DiagnosticWarning.String())
	assert.Equal(t, "unknown", DiagnosticSeverity(42).String())
}
