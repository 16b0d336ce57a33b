package recipe

import (
	"strconv"

	"tinymerge/internal/common"
)

// Recipe is the root of a merge recipe.
type Recipe struct {
	// Version of the recipe schema.
	Version string `yaml:"version,omitempty"`

	// Output describes the table to write.
	Output Output `yaml:"output"`

	// Sources lists the tables to read.
	Sources []Source `yaml:"sources"`

	// Steps are applied in order; each may use the results of earlier ones.
	Steps []Step `yaml:"steps,omitempty"`

	// Inherit, when set, runs enclosing-name inheritance on the result.
	Inherit *Inherit `yaml:"inherit,omitempty"`
}

// Output describes the written table.
type Output struct {
	Path string `yaml:"path"`

	// Format is "v1" or "v2" (default).
	Format string `yaml:"format,omitempty"`

	// Namespaces, when set, reorders the result; the first one becomes the
	// source namespace.
	Namespaces []string `yaml:"namespaces,omitempty"`
}

// Source is one input table.
type Source struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`

	// Complete maps target namespace to fallback namespace.
	Complete map[string]string `yaml:"complete,omitempty"`

	// SwitchTo makes the given namespace the source after reading.
	SwitchTo string `yaml:"switch_to,omitempty"`
}

// Step is one pipeline step. Merge is the only step kind.
type Step struct {
	Name  string     `yaml:"name,omitempty"`
	Merge *MergeStep `yaml:"merge"`
}

// MergeStep merges table A into table B.
type MergeStep struct {
	A              string `yaml:"a"`
	B              string `yaml:"b"`
	JoinKey        string `yaml:"join_key,omitempty"`
	PreferIncoming bool   `yaml:"prefer_incoming,omitempty"`
}

// Inherit configures enclosing-name inheritance.
type Inherit struct {
	Intermediate string `yaml:"intermediate"`
	Named        string `yaml:"named"`
}

// StepName returns the name the result of step i is referred to by.
func StepName(i int, s *Step) string {
	if s.Name != "" {
		return s.Name
	}

	return "step" + strconv.Itoa(i+1)
}

// Result returns the name of the table that is written: the last step's
// result or, without steps, the first source.
func (r *Recipe) Result() string {
	if len(r.Steps) > 0 {
		return StepName(len(r.Steps)-1, &r.Steps[len(r.Steps)-1])
	}

	if src, ok := common.First(r.Sources); ok {
		return src.Name
	}

	return ""
}
