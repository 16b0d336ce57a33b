// Package pipeline composes the table operations into the runs the CLI
// offers: merging an intermediate table with a curated one, routing already
// merged v1 tables through the field-name proposer, and executing recipes.
package pipeline
