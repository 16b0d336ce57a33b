package recipe

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultVersion is applied to recipes that do not declare one.
const DefaultVersion = "1"

// LoadFile loads and parses a recipe file from the given path.
func LoadFile(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Recipe. Unknown keys are rejected.
func Parse(data []byte) (*Recipe, error) {
	var r Recipe

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to parse recipe YAML: %w", err)
	}

	applyDefaults(&r)

	return &r, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(r *Recipe) {
	if r.Version == "" {
		r.Version = DefaultVersion
	}

	if r.Output.Format == "" {
		r.Output.Format = "v2"
	}
}

// Marshal serializes a Recipe to YAML.
func Marshal(r *Recipe) ([]byte, error) {
	return yaml.Marshal(r)
}
