// Package external runs the tools that filter serialized tables outside the
// merge engine: a field-name proposer and a namespace reorderer.
package external

import (
	"context"
	"fmt"

	"tinymerge/internal/nsop"
	"tinymerge/internal/tiny"
)

// Proposer derives field names from an artifact and writes an enriched
// table to outPath.
type Proposer interface {
	Propose(ctx context.Context, artifactPath, inPath, outPath string) error
}

// Reorderer rewrites the table at inPath to outPath with its namespaces in
// the given order. The first namespace becomes the source.
type Reorderer interface {
	Reorder(ctx context.Context, inPath, outPath string, namespaces []string) error
}

// NativeReorderer reorders in process with nsop.Reorder and writes Tiny v2.
type NativeReorderer struct{}

// Reorder implements Reorderer.
func (NativeReorderer) Reorder(ctx context.Context, inPath, outPath string, namespaces []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t, err := tiny.LoadFile(inPath)
	if err != nil {
		return err
	}

	out, _, err := nsop.Reorder(t, namespaces...)
	if err != nil {
		return fmt.Errorf("reorder %s: %w", inPath, err)
	}

	return tiny.WriteFile(outPath, out, tiny.FormatV2)
}
