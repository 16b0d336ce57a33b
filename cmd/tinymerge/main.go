// Package main provides the entry point for the tinymerge CLI.
//
// tinymerge reads, merges and rewrites Tiny v1/v2 mapping tables:
//   - merges an intermediate table with a curated one (merge, recipe)
//   - rewrites namespaces of a single table (switch, complete, reorder, inherit)
//   - converts and inspects tables (convert, detect, stats, diff, inspect)
package main

import (
	"fmt"
	"os"

	"tinymerge/cmd/tinymerge/commands"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	err := commands.NewRootCommand(version).Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
