package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"tinymerge/internal/diagnostic"
	"tinymerge/internal/inherit"
	"tinymerge/internal/merge"
	"tinymerge/internal/nsop"
	"tinymerge/internal/recipe"
	"tinymerge/internal/tiny"
	"tinymerge/internal/tree"
)

// RecipeResult is the outcome of RunRecipe.
type RecipeResult struct {
	Tree        *tree.Tree
	Diagnostics *diagnostic.Diagnostics
	Inherit     inherit.Result
	Output      string
}

// RunRecipe executes r. Relative paths in the recipe are resolved against
// baseDir. The recipe is validated first; validation errors are returned as
// an error and in the diagnostics.
func (p *Pipeline) RunRecipe(ctx context.Context, r *recipe.Recipe, baseDir string) (*RecipeResult, error) {
	diags := recipe.Validate(r)
	if err := diags.Error(); err != nil {
		return &RecipeResult{Diagnostics: diags}, fmt.Errorf("invalid recipe: %w", err)
	}

	format, err := tiny.ParseFormat(r.Output.Format)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(r.Sources))
	for i := range r.Sources {
		paths[i] = resolve(baseDir, r.Sources[i].Path)
	}

	trees, err := p.ReadSources(ctx, paths...)
	if err != nil {
		return nil, err
	}

	tables := make(map[string]*tree.Tree, len(r.Sources)+len(r.Steps))

	for i := range r.Sources {
		src := &r.Sources[i]

		t, err := prepareSource(trees[i], src, diags)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}

		tables[src.Name] = t
	}

	for i := range r.Steps {
		step := &r.Steps[i]
		name := recipe.StepName(i, step)

		opts := []merge.Option{merge.WithLogger(p.logger)}
		if step.Merge.JoinKey != "" {
			opts = append(opts, merge.WithJoinKey(step.Merge.JoinKey))
		}

		if step.Merge.PreferIncoming {
			opts = append(opts, merge.WithPreferIncoming())
		}

		merged, mergeDiags, err := merge.Merge(tables[step.Merge.A], tables[step.Merge.B], opts...)
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", name, err)
		}

		diags.Merge(mergeDiags)
		tables[name] = merged

		p.logger.Debug("pipeline: recipe step done", "step", name, "classes", merged.Len())
	}

	result := tables[r.Result()]
	out := &RecipeResult{Diagnostics: diags, Output: resolve(baseDir, r.Output.Path)}

	if r.Inherit != nil {
		res, err := inherit.Apply(result, r.Inherit.Intermediate, r.Inherit.Named, inherit.WithLogger(p.logger))
		if err != nil {
			return nil, err
		}

		out.Inherit = res
	}

	if len(r.Output.Namespaces) > 0 {
		ordered, reorderDiags, err := nsop.Reorder(result, r.Output.Namespaces...)
		if err != nil {
			return nil, err
		}

		diags.Merge(reorderDiags)
		result = ordered
	}

	if err := tiny.WriteFile(out.Output, result, format); err != nil {
		return nil, err
	}

	out.Tree = result

	p.logger.Info("pipeline: recipe done",
		"output", out.Output,
		"classes", result.Len(),
		"steps", len(r.Steps),
		"inherited", out.Inherit.Renamed,
	)

	return out, nil
}

// prepareSource applies a source's completion and switch.
func prepareSource(t *tree.Tree, src *recipe.Source, diags *diagnostic.Diagnostics) (*tree.Tree, error) {
	var err error

	if len(src.Complete) > 0 {
		t, err = nsop.Complete(t, src.Complete)
		if err != nil {
			return nil, err
		}
	}

	if src.SwitchTo != "" {
		switched, switchDiags, err := nsop.Switch(t, src.SwitchTo)
		if err != nil {
			return nil, err
		}

		diags.Merge(switchDiags)
		t = switched
	}

	return t, nil
}

func resolve(baseDir, path string) string {
	if baseDir == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(baseDir, path)
}
