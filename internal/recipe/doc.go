// Package recipe provides the YAML schema, parsing and validation of merge
// recipes.
//
// A recipe names the tables to read, how to prepare each of them, the order
// in which they are merged and where the result is written. Executing a
// recipe is the job of package pipeline.
//
// # Schema Overview
//
//	version: "1"
//	output:
//	  path: build/mappings.tiny
//	  format: v2                      # v1 or v2
//	  namespaces: [official, hashed, named]
//	sources:
//	  - name: intermediate
//	    path: hashed.tiny
//	    complete:                     # target: fallback
//	      named: hashed
//	  - name: curated
//	    path: yarn.tiny
//	    switch_to: hashed             # optional
//	steps:
//	  - name: merged                  # optional, defaults to "step<N>"
//	    merge:
//	      a: intermediate
//	      b: curated
//	      join_key: hashed            # defaults to a's source namespace
//	      prefer_incoming: false
//	inherit:
//	  intermediate: hashed
//	  named: named
//
// Merge operands refer to sources or to earlier steps by name. The result of
// the last step (or the only source when there are no steps) is written to
// the output.
package recipe
