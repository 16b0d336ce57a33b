package recipe

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"tinymerge/internal/diagnostic"
)

// jsonSchema describes the shape of a recipe document.
const jsonSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["output", "sources"],
  "properties": {
    "version": {"type": "string", "enum": ["1"]},
    "output": {
      "type": "object",
      "required": ["path"],
      "properties": {
        "path": {"type": "string", "minLength": 1},
        "format": {"type": "string", "enum": ["v1", "v2"]},
        "namespaces": {"type": "array", "items": {"type": "string", "minLength": 1}, "minItems": 1}
      }
    },
    "sources": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "path"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "path": {"type": "string", "minLength": 1},
          "complete": {"type": "object", "additionalProperties": {"type": "string", "minLength": 1}},
          "switch_to": {"type": "string"}
        }
      }
    },
    "steps": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["merge"],
        "properties": {
          "name": {"type": "string"},
          "merge": {
            "type": "object",
            "required": ["a", "b"],
            "properties": {
              "a": {"type": "string", "minLength": 1},
              "b": {"type": "string", "minLength": 1},
              "join_key": {"type": "string"},
              "prefer_incoming": {"type": "boolean"}
            }
          }
        }
      }
    },
    "inherit": {
      "type": "object",
      "required": ["intermediate", "named"],
      "properties": {
        "intermediate": {"type": "string", "minLength": 1},
        "named": {"type": "string", "minLength": 1}
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(jsonSchema)

// checkSchema validates the YAML form of r against the recipe JSON schema.
func checkSchema(r *Recipe, res *diagnostic.Diagnostics) {
	data, err := yaml.Marshal(r)
	if err != nil {
		res.AddError("recipe_encode", fmt.Sprintf("cannot encode recipe: %v", err), "schema", "")

		return
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		res.AddError("recipe_encode", fmt.Sprintf("cannot decode recipe: %v", err), "schema", "")

		return
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		res.AddError("schema_error", fmt.Sprintf("schema validation failed: %v", err), "schema", "")

		return
	}

	for _, verr := range result.Errors() {
		res.AddError("schema_violation", verr.Description(), "schema", verr.Field())
	}
}
