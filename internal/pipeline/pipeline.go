package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"tinymerge/internal/cache"
	"tinymerge/internal/config"
	"tinymerge/internal/diagnostic"
	"tinymerge/internal/external"
	"tinymerge/internal/inherit"
	"tinymerge/internal/merge"
	"tinymerge/internal/nsop"
	"tinymerge/internal/tiny"
	"tinymerge/internal/tree"
)

// Diagnostic codes reported by the pipeline.
const (
	CodeProposerMissing = "proposer_missing"
	CodeInherited       = "inherited_name"
)

// Pipeline runs table operations with a shared cache, logger and external
// tools.
type Pipeline struct {
	cache      *cache.Cache
	logger     *slog.Logger
	proposer   external.Proposer
	reorderer  external.Reorderer
	namespaces config.NamespaceConfig
	workDir    string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCache reads tables through c. Without it every read goes to disk.
func WithCache(c *cache.Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithLogger sets the logger for pipeline stages.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithProposer sets the field-name proposer used for v1 tables.
func WithProposer(pr external.Proposer) Option {
	return func(p *Pipeline) { p.proposer = pr }
}

// WithReorderer hands the final namespace ordering to an external tool.
// Without it the pipeline reorders in process.
func WithReorderer(r external.Reorderer) Option {
	return func(p *Pipeline) { p.reorderer = r }
}

// WithNamespaces sets the source, intermediate and named namespaces.
func WithNamespaces(ns config.NamespaceConfig) Option {
	return func(p *Pipeline) { p.namespaces = ns }
}

// WithWorkDir sets the directory for intermediate tables. When empty the
// intermediate tables are not written, except where an external tool needs
// them, in which case the output's directory is used.
func WithWorkDir(dir string) Option {
	return func(p *Pipeline) { p.workDir = dir }
}

// New creates a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger: slog.Default(),
		namespaces: config.NamespaceConfig{
			Source:       config.NsOfficial,
			Intermediate: config.NsHashed,
			Named:        config.NsNamed,
		},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// OutputNamespaces returns the namespace order of written tables: source,
// intermediate, named.
func (p *Pipeline) OutputNamespaces() []string {
	return []string{p.namespaces.Source, p.namespaces.Intermediate, p.namespaces.Named}
}

// ReadSources reads the tables at paths concurrently. The result is in the
// order of paths; the first error cancels the remaining reads.
func (p *Pipeline) ReadSources(ctx context.Context, paths ...string) ([]*tree.Tree, error) {
	trees := make([]*tree.Tree, len(paths))

	g, ctx := errgroup.WithContext(ctx)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			t, err := p.cache.Load(path)
			if err != nil {
				return err
			}

			trees[i] = t

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return trees, nil
}

// Merged is the result of MergeCurated.
type Merged struct {
	Tree        *tree.Tree
	Diagnostics *diagnostic.Diagnostics
	Inherit     inherit.Result
}

// MergeCurated merges an intermediate table (source -> intermediate) with a
// curated table (intermediate -> named):
//
//  1. the intermediate table is completed so every entry has a named name,
//     falling back to its intermediate name;
//  2. it is merged into the curated table keyed on the intermediate
//     namespace, curated names winning;
//  3. the result is switched back to the source namespace;
//  4. nested classes inherit the names of their enclosing classes;
//  5. the namespaces are put in output order.
func (p *Pipeline) MergeCurated(intermediate, curated *tree.Tree) (*Merged, error) {
	m, err := p.mergeUnordered(intermediate, curated)
	if err != nil {
		return nil, err
	}

	ordered, diags, err := nsop.Reorder(m.Tree, p.OutputNamespaces()...)
	if err != nil {
		return nil, err
	}

	m.Tree = ordered
	m.Diagnostics.Merge(diags)

	return m, nil
}

func (p *Pipeline) mergeUnordered(intermediate, curated *tree.Tree) (*Merged, error) {
	ns := p.namespaces
	diags := &diagnostic.Diagnostics{}

	completed, err := nsop.Complete(intermediate, map[string]string{ns.Named: ns.Intermediate})
	if err != nil {
		return nil, err
	}

	if p.workDir != "" {
		inverted, _, err := nsop.Switch(completed, ns.Intermediate)
		if err != nil {
			return nil, err
		}

		if err := p.writeIntermediate(config.InvertedHashedFile, inverted); err != nil {
			return nil, err
		}
	}

	merged, mergeDiags, err := merge.Merge(completed, curated,
		merge.WithJoinKey(ns.Intermediate),
		merge.WithLogger(p.logger),
	)
	if err != nil {
		return nil, err
	}

	diags.Merge(mergeDiags)

	switched, switchDiags, err := nsop.Switch(merged, ns.Source)
	if err != nil {
		return nil, err
	}

	diags.Merge(switchDiags)

	res, err := inherit.Apply(switched, ns.Intermediate, ns.Named, inherit.WithLogger(p.logger))
	if err != nil {
		return nil, err
	}

	for _, r := range res.Renames {
		diags.AddInfo(CodeInherited, fmt.Sprintf("%s -> %s", r.From, r.To), "inherit", r.Class)
	}

	p.logger.Info("pipeline: merged tables",
		"intermediate_classes", intermediate.Len(),
		"curated_classes", curated.Len(),
		"classes", switched.Len(),
		"dropped", diags.Count(tree.CodeDroppedEntry),
		"inherited", res.Renamed,
	)

	return &Merged{Tree: switched, Diagnostics: diags, Inherit: res}, nil
}

func (p *Pipeline) writeIntermediate(name string, t *tree.Tree) error {
	path := joinDir(p.workDir, name)

	if err := tiny.WriteFile(path, t, tiny.FormatV2); err != nil {
		return err
	}

	p.logger.Debug("pipeline: wrote intermediate table", "path", path)

	return nil
}

// IsV2File reports whether the table at path is in Tiny v2 format.
func IsV2File(path string) (bool, error) {
	format, err := tiny.DetectFile(path)
	if err != nil {
		return false, err
	}

	return format == tiny.FormatV2, nil
}

var errNoOutput = errors.New("no output path")

func joinDir(dir, name string) string {
	return filepath.Join(dir, name)
}
