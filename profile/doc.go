// Package profile provides optional runtime profiling for envsolve.
//
// Profiling is built on [github.com/pkg/profile] and compiled in only with
// the "pprof" build tag:
//
//	go build -tags pprof .
//	envsolve --pprof-mode cpu report
//
// Without the tag every operation is a no-op and [Modes] is empty.
// Profiles are written to the configured directory (by default the pprof
// subdirectory of the user cache directory) and can be inspected with:
//
//	go tool pprof -http=: cpu.pprof
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
