// Package cmd provides the subcommands of the l20n command line: parse,
// resolve, fmt, watch and repl.
//
// Sources ending in .json, .yaml or .yml are read as the wire AST of a
// resource; any other path, and "-" for stdin, is read as l20n source text.
// Results are written to the writer installed with [WithOutput], or
// os.Stdout.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path of
	// the configuration file.
	ConfigIdentifier = "config"
)
