// Package syntax holds the per-runtime facts the analysis pipeline needs:
// the token preceding a configuration-variable read, the import statement
// pattern, how to clean a captured import path, and which file suffixes a
// handler's implementation may use.
//
// The facts live in a [Table] of [Syntax] rows keyed by runtime name.
// Adding a runtime means adding a row, either to [Builtin] or to a YAML or
// TOML file read with [LoadFile]:
//
//	runtimes:
//	  - runtime: deno
//	    token: Deno.env
//	    import: '(^|\s)import\s.*?from\s["''](.*?)["'']'
//	    path_index: 2
//	    suffixes: [ts, js]
//	    accessors: [get]
//
// Declared runtimes carry a version suffix ("nodejs18.x", "python3.11")
// which [Normalize] strips before lookup.
package syntax
