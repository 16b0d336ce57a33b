package merge

import (
	"fmt"
	"log/slog"

	"tinymerge/internal/diagnostic"
	"tinymerge/internal/nsop"
	"tinymerge/internal/tree"
)

// Option configures Merge.
type Option func(*options)

type options struct {
	joinKey        string
	preferIncoming bool
	logger         *slog.Logger
}

// WithJoinKey selects the namespace entries are unified by. The default is
// the source namespace of the first tree.
func WithJoinKey(ns string) Option {
	return func(o *options) { o.joinKey = ns }
}

// WithPreferIncoming lets names from the first tree replace names already
// present in the second one.
func WithPreferIncoming() Option {
	return func(o *options) { o.preferIncoming = true }
}

// WithLogger sets the logger for merge progress.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Merge folds a into b and returns the merged tree.
//
// a is switched so the join key is its source namespace, b is copied, then
// a is visited into the copy, unifying entries by their join-key name. On
// conflicting names b wins unless WithPreferIncoming is given. Entries only
// in a that have no name in b's source namespace cannot be keyed and are
// dropped; they are reported in the returned diagnostics together with the
// drops of the switch.
func Merge(a, b *tree.Tree, opts ...Option) (*tree.Tree, *diagnostic.Diagnostics, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	key := o.joinKey
	if key == "" {
		key = a.SrcNamespace()
	}

	if _, ok := a.LookupNamespace(key); !ok {
		return nil, nil, diagnostic.NewNamespaceError("merge", key, a.Namespaces())
	}

	if _, ok := b.LookupNamespace(key); !ok {
		return nil, nil, diagnostic.NewNamespaceError("merge", key, b.Namespaces())
	}

	diags := &diagnostic.Diagnostics{}

	incoming := a
	if a.SrcNamespace() != key {
		switched, switchDiags, err := nsop.Switch(a, key)
		if err != nil {
			return nil, nil, fmt.Errorf("merge: %w", err)
		}

		incoming = switched
		diags.Merge(switchDiags)
	}

	mode := tree.KeepExisting
	if o.preferIncoming {
		mode = tree.Overwrite
	}

	acc := tree.New(tree.WithMergeMode(mode))

	if err := b.Accept(acc); err != nil {
		return nil, nil, fmt.Errorf("merge: copy base: %w", err)
	}

	if err := incoming.Accept(acc); err != nil {
		return nil, nil, fmt.Errorf("merge: join on %s: %w", key, err)
	}

	diags.Merge(acc.Diagnostics())

	o.logger.Debug("merge: joined trees",
		"key", key,
		"mode", mode.String(),
		"a_classes", a.Len(),
		"b_classes", b.Len(),
		"classes", acc.Len(),
		"dropped", diags.Count(tree.CodeDroppedEntry),
	)

	return acc, diags, nil
}
