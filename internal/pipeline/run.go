package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"tinymerge/internal/config"
	"tinymerge/internal/diagnostic"
	"tinymerge/internal/tiny"
	"tinymerge/internal/tree"
)

// Request describes one mapping-provider run.
type Request struct {
	// Intermediate is the table mapping the source namespace to the
	// intermediate one.
	Intermediate string

	// Mappings is the curated table. A v2 table maps the intermediate
	// namespace to the named one and is merged; a v1 table is taken as
	// already merged and handed to the proposer.
	Mappings string

	// Artifact is passed to the proposer.
	Artifact string

	// Output is where the final table is written.
	Output string

	// Format of the written table; FormatUnknown means v2.
	Format tiny.Format
}

// Outcome reports what Run did.
type Outcome struct {
	// Proposed is set when the table went through the proposer.
	Proposed bool

	// Merged is set when the tables were merged in process.
	Merged *Merged

	Diagnostics *diagnostic.Diagnostics
}

// Run produces the final table for req.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Outcome, error) {
	if req.Output == "" {
		return nil, errNoOutput
	}

	format := req.Format
	if format == tiny.FormatUnknown {
		format = tiny.FormatV2
	}

	isV2, err := IsV2File(req.Mappings)
	if err != nil {
		return nil, err
	}

	if !isV2 {
		return p.runV1(ctx, req, format)
	}

	trees, err := p.ReadSources(ctx, req.Intermediate, req.Mappings)
	if err != nil {
		return nil, err
	}

	if p.reorderer != nil {
		return p.runExternalReorder(ctx, req, format, trees[0], trees[1])
	}

	m, err := p.MergeCurated(trees[0], trees[1])
	if err != nil {
		return nil, err
	}

	if err := tiny.WriteFile(req.Output, m.Tree, format); err != nil {
		return nil, err
	}

	p.logger.Info("pipeline: wrote mappings", "path", req.Output, "format", format.String())

	return &Outcome{Merged: m, Diagnostics: m.Diagnostics}, nil
}

// runExternalReorder writes the unordered merge next to the output and lets
// the configured reorderer produce the final table. Reorderers emit v2, so
// any other requested format is produced by rewriting their output.
func (p *Pipeline) runExternalReorder(ctx context.Context, req Request, format tiny.Format, intermediate, curated *tree.Tree) (*Outcome, error) {
	m, err := p.mergeUnordered(intermediate, curated)
	if err != nil {
		return nil, err
	}

	dir := p.workDir
	if dir == "" {
		dir = filepath.Dir(req.Output)
	}

	unordered := joinDir(dir, config.UnorderedMergedFile)

	if err := tiny.WriteFile(unordered, m.Tree, tiny.FormatV2); err != nil {
		return nil, err
	}

	if err := p.reorderer.Reorder(ctx, unordered, req.Output, p.OutputNamespaces()); err != nil {
		return nil, fmt.Errorf("reordering %s: %w", unordered, err)
	}

	if format != tiny.FormatV2 {
		reordered, err := tiny.LoadFile(req.Output)
		if err != nil {
			return nil, fmt.Errorf("reading reordered %s: %w", req.Output, err)
		}

		if err := tiny.WriteFile(req.Output, reordered, format); err != nil {
			return nil, err
		}
	}

	p.logger.Info("pipeline: wrote mappings", "path", req.Output, "format", format.String(), "reorderer", "external")

	return &Outcome{Merged: m, Diagnostics: m.Diagnostics}, nil
}

// runV1 passes an already merged v1 table through the proposer. Without a
// proposer the table is converted as is and a warning is reported.
func (p *Pipeline) runV1(ctx context.Context, req Request, format tiny.Format) (*Outcome, error) {
	diags := &diagnostic.Diagnostics{}

	if p.proposer != nil {
		p.logger.Info("pipeline: proposing field names", "input", req.Mappings, "artifact", req.Artifact)

		if err := p.proposer.Propose(ctx, req.Artifact, req.Mappings, req.Output); err != nil {
			return nil, fmt.Errorf("proposing field names for %s: %w", req.Mappings, err)
		}

		return &Outcome{Proposed: true, Diagnostics: diags}, nil
	}

	t, err := p.cache.Load(req.Mappings)
	if err != nil {
		return nil, err
	}

	diags.AddWarning(CodeProposerMissing,
		"no field-name proposer configured; v1 table written without proposed names", "propose", req.Mappings)
	p.logger.Warn("pipeline: no proposer configured, converting v1 table", "input", req.Mappings)

	if err := tiny.WriteFile(req.Output, t, format); err != nil {
		return nil, err
	}

	return &Outcome{Diagnostics: diags}, nil
}
