//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/envsolve/log"
	"github.com/ardnew/envsolve/pkg"
	"github.com/ardnew/envsolve/profile"
)

type pprofConfig struct {
	Mode  string `default:""            enum:",${pprofModeEnum}" help:"Enable profiling"                     placeholder:"${enum}" short:"p"`
	Dir   string `default:"${pprofDir}"                          help:"Profile output directory"                                     type:"path"`
	Quiet bool   `default:"true"                                 help:"Suppress the profiler's own messages" negatable:""`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      filepath.Join(pkg.CacheDir(), profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling (pprof)"}
}

// start profiles the named command into its own subdirectory of Dir, so
// profiles of different commands do not replace each other.
func (f pprofConfig) start(ctx context.Context, command string) (stop func()) {
	if f.Mode == "" {
		return func() {}
	}

	dir := filepath.Join(f.Dir, strings.ReplaceAll(command, " ", "-"))

	var cfg profile.Config = func() (string, string, bool) {
		return f.Mode, dir, f.Quiet
	}

	logger := log.Default().With(
		slog.String("mode", f.Mode),
		slog.String("dir", dir),
	)

	logger.DebugContext(ctx, "pprof start")

	profiler := cfg.Start()

	return func() {
		profiler.Stop()
		logger.InfoContext(ctx, "profile written")
	}
}
