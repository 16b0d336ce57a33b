package recipe

import (
	"fmt"

	"tinymerge/internal/diagnostic"
	"tinymerge/internal/match"
)

// Validate checks a recipe: first its shape against the recipe schema,
// then references between sources and steps.
func Validate(r *Recipe) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if r == nil {
		res.AddError("recipe_is_nil", "recipe is nil", "", "")

		return res
	}

	checkSchema(r, res)

	if res.HasErrors() {
		return res
	}

	defined := map[string]struct{}{}
	names := make([]string, 0, len(r.Sources)+len(r.Steps))

	define := func(scope, name string) {
		if _, ok := defined[name]; ok {
			res.AddError("duplicate_name", fmt.Sprintf("name %q is defined twice", name), scope, name)

			return
		}

		defined[name] = struct{}{}
		names = append(names, name)
	}

	for i := range r.Sources {
		define("sources", r.Sources[i].Name)
	}

	used := map[string]struct{}{}

	for i := range r.Steps {
		step := &r.Steps[i]
		name := StepName(i, step)

		for _, ref := range []string{step.Merge.A, step.Merge.B} {
			if _, ok := defined[ref]; !ok {
				d := diagnostic.Diagnostic{
					Severity:    diagnostic.DiagnosticError,
					Code:        "unknown_reference",
					Message:     fmt.Sprintf("step %q refers to unknown table %q", name, ref),
					Scope:       "steps",
					Key:         ref,
					Suggestions: match.Suggest(ref, names),
				}
				res.Errors = append(res.Errors, d)
			}

			used[ref] = struct{}{}
		}

		if step.Merge.A == step.Merge.B {
			res.AddError("self_merge", fmt.Sprintf("step %q merges %q with itself", name, step.Merge.A), "steps", name)
		}

		define("steps", name)
	}

	if len(r.Steps) == 0 && len(r.Sources) > 1 {
		res.AddError("missing_steps", "more than one source needs merge steps", "steps", "")
	}

	for i := range r.Sources {
		if _, ok := used[r.Sources[i].Name]; !ok && len(r.Steps) > 0 {
			res.AddWarning("unused_source", fmt.Sprintf("source %q is never merged", r.Sources[i].Name), "sources", r.Sources[i].Name)
		}
	}

	return res
}
