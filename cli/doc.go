// Package cli contains the command line interface for envsolve.
//
// # Usage
//
// With no command, envsolve solves the service definition in the working
// directory and prints the rewritten document:
//
//	envsolve                         # same as: envsolve solve
//	envsolve -f deploy/serverless.yml solve --write
//	envsolve report -o json --where 'count > 3'
//	envsolve runtimes --syntax ./deno.toml
//	envsolve browse
//
// # Configuration
//
// Flag defaults are read from the user configuration directory, first from
// config.json and then from config.yaml (see [resolve]). The init command
// writes the current flag values to config.yaml.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//
// Logs are written to standard error; command results go to standard output.
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/envsolve/pprof)
package cli
