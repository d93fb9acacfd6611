// Package cmd implements the envsolve subcommands: solve, report, browse,
// runtimes and init.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path of
	// the configuration file, without extension. It is also the top-level key
	// of that file.
	ConfigIdentifier = "config"
)
