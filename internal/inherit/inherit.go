// Package inherit gives nested classes without a curated name the curated
// name of their closest named enclosing class.
package inherit

import (
	"errors"
	"log/slog"
	"strings"

	"tinymerge/internal/diagnostic"
	"tinymerge/internal/tree"
)

const nestSep = "$"

// Rename is one class name change made by Apply.
type Rename struct {
	Class string // source name
	From  string
	To    string
}

// Result summarizes an Apply pass.
type Result struct {
	Renamed int
	Renames []Rename
}

// Option configures Apply.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger Apply reports its renames to.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Apply renames, in namespace namedNs, every nested class whose named name
// is still its intermediate name. The class takes the named name of its
// closest enclosing class that has a curated name, followed by the rest of
// its own intermediate path:
//
//	a/b    -> x/y
//	a/b$c  -> a/b$c   becomes   x/y$c
//
// All new names are computed against the tree as it was before the pass and
// applied afterwards, so the result does not depend on class order. Classes
// with an unset intermediate or named name are left alone.
func Apply(t *tree.Tree, intermediateNs, namedNs string, opts ...Option) (Result, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	inter, ok := t.LookupNamespace(intermediateNs)
	if !ok {
		return Result{}, diagnostic.NewNamespaceError("inherit", intermediateNs, t.Namespaces())
	}

	named, ok := t.LookupNamespace(namedNs)
	if !ok {
		return Result{}, diagnostic.NewNamespaceError("inherit", namedNs, t.Namespaces())
	}

	if named == tree.SrcNamespace {
		return Result{}, errors.New("inherit: named namespace must be a destination namespace")
	}

	t.SetIndexByDstNames(true)

	type pending struct {
		class *tree.ClassEntry
		name  string
	}

	var todo []pending

	for _, c := range t.Classes() {
		interName := c.Name(inter)
		if interName == "" || c.Name(named) != interName || !strings.Contains(interName, nestSep) {
			continue
		}

		if name, ok := inheritedName(t, interName, inter, named); ok {
			todo = append(todo, pending{class: c, name: name})
		}
	}

	res := Result{Renames: make([]Rename, 0, len(todo))}

	for _, p := range todo {
		r := Rename{Class: p.class.SrcName(), From: p.class.Name(named), To: p.name}
		res.Renames = append(res.Renames, r)
		p.class.SetDstName(named, p.name)
		o.logger.Debug("inherit: renamed", "class", r.Class, "from", r.From, "to", r.To)
	}

	res.Renamed = len(todo)

	o.logger.Debug("inherit: renamed nested classes", "intermediate", intermediateNs, "named", namedNs, "renamed", res.Renamed)

	return res, nil
}

// inheritedName walks the enclosing classes of interName from the innermost
// outwards and returns the name derived from the first one whose named name
// differs from its intermediate name.
func inheritedName(t *tree.Tree, interName string, inter, named int) (string, bool) {
	parts := strings.Split(interName, nestSep)

	for i := len(parts) - 1; i >= 1; i-- {
		prefix := strings.Join(parts[:i], nestSep)

		outer := t.ClassByName(inter, prefix)
		if outer == nil {
			continue
		}

		outerNamed := outer.Name(named)
		if outerNamed == "" || outerNamed == prefix {
			continue
		}

		return outerNamed + nestSep + strings.Join(parts[i:], nestSep), true
	}

	return "", false
}
