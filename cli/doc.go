// Package cli contains the command line interface for l20n.
//
// # Commands
//
//   - parse: parse resources and print their wire AST as JSON (default)
//   - resolve: resolve every entry, or the named entries, of a resource
//   - fmt: print resources as l20n source, JSON or YAML
//   - watch: resolve resources again whenever they change on disk
//   - repl: evaluate entries and expressions interactively
//
// # Configuration
//
// Flag defaults are read from two files in the user config directory, both
// optional: a JSON object keyed by flag name, and an l20n resource whose
// entities name flags:
//
//	<log-level "debug">
//	<log-format "text">
//
// Command-line flags override config file values.
//
// # Logging Options
//
//   - --log-level: minimum log level (trace, debug, info, warn, error)
//   - --log-format: log output format (json, text)
//   - --log-time-layout: timestamp layout
//   - --[no-]log-callsite: include the source location of each record
//   - --[no-]log-pretty: colorize terminal output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o l20n .
//
//   - --pprof-mode: enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: profile output directory (default ~/.cache/l20n/pprof)
//
// # Examples
//
//	l20n resolve -d user.json -l fr en.l20n
//	l20n resolve -o text en.l20n brand greeting
//	l20n --log-level=debug watch -d user.yaml locales/
//	l20n fmt json en.l20n
package cli
