package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"tinymerge/internal/match"
)

// Sentinel errors matched by the typed errors below.
var (
	ErrFormat     = errors.New("malformed mapping table")
	ErrNamespace  = errors.New("unknown namespace")
	ErrUniqueness = errors.New("uniqueness violation")
)

// FormatError reports a table line that does not follow the format grammar.
type FormatError struct {
	// Source names the table being read, if known.
	Source string
	// Line is the 1-based line number, 0 when the error is not tied to a line.
	Line int
	// Text is the offending line, without its line terminator.
	Text string
	Msg  string
}

func (e *FormatError) Error() string {
	var b strings.Builder

	if e.Source != "" {
		b.WriteString(e.Source)
		b.WriteString(":")
	}

	if e.Line > 0 {
		fmt.Fprintf(&b, "%d: ", e.Line)
	} else if e.Source != "" {
		b.WriteString(" ")
	}

	b.WriteString(e.Msg)

	if e.Text != "" {
		fmt.Fprintf(&b, ": %q", e.Text)
	}

	return b.String()
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// NamespaceError reports a namespace absent from a tree.
type NamespaceError struct {
	// Op is the operation that needed the namespace, e.g. "switch" or "merge".
	Op        string
	Namespace string
	// Known lists the namespaces the tree does declare.
	Known       []string
	Suggestions []string
}

// NewNamespaceError builds a NamespaceError and fills in close matches from known.
func NewNamespaceError(op, namespace string, known []string) *NamespaceError {
	return &NamespaceError{
		Op:          op,
		Namespace:   namespace,
		Known:       known,
		Suggestions: match.Suggest(namespace, known),
	}
}

func (e *NamespaceError) Error() string {
	msg := fmt.Sprintf("%s: namespace %q not present (have %s)", e.Op, e.Namespace, strings.Join(e.Known, ", "))
	if len(e.Suggestions) > 0 {
		msg += "; did you mean " + strings.Join(e.Suggestions, " or ") + "?"
	}

	return msg
}

// Is reports whether target is ErrNamespace.
func (e *NamespaceError) Is(target error) bool { return target == ErrNamespace }

// UniquenessError reports two entries sharing a key within the same owner.
type UniquenessError struct {
	// Kind is the entry kind, e.g. "class" or "method".
	Kind string
	// Owner is the owning entry's key, empty for classes.
	Owner string
	Key   string
}

func (e *UniquenessError) Error() string {
	if e.Owner == "" {
		return fmt.Sprintf("duplicate %s %q", e.Kind, e.Key)
	}

	return fmt.Sprintf("duplicate %s %q in %s", e.Kind, e.Key, e.Owner)
}

// Is reports whether target is ErrUniqueness.
func (e *UniquenessError) Is(target error) bool { return target == ErrUniqueness }
