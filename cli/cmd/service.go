package cmd

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/ardnew/envsolve/log"
	"github.com/ardnew/envsolve/manifest"
	"github.com/ardnew/envsolve/solve"
	"github.com/ardnew/envsolve/syntax"
)

// service is a loaded manifest with the analysis input derived from it.
type service struct {
	manifest *manifest.Manifest
	input    solve.Input
}

// syntaxTable returns the built-in syntax table merged with every file in paths.
func syntaxTable(paths []string) (syntax.Table, error) {
	t := syntax.Builtin()

	for _, path := range paths {
		extra, err := syntax.LoadFile(path)
		if err != nil {
			return syntax.Table{}, err
		}

		t = t.Merge(extra)
	}

	return t, nil
}

// loadService reads the manifest named by opts and prepares a run over it.
func loadService(ctx context.Context, opts Options, logger log.Logger) (service, error) {
	file := opts.File
	if file == "" {
		file = manifest.DefaultFile
	}

	m, err := manifest.Load(ctx, file)
	if err != nil {
		return service{}, err
	}

	runtime := opts.Runtime
	if runtime == "" {
		runtime, err = m.Runtime()
		if err != nil {
			return service{}, err
		}
	}

	config, err := m.Environment()
	if err != nil {
		return service{}, err
	}

	mfns, err := m.Functions()
	if err != nil {
		return service{}, err
	}

	fns := make([]solve.Function, len(mfns))

	for i, fn := range mfns {
		fns[i] = solve.Function{
			Name:        fn.Name,
			Handler:     fn.Handler,
			Environment: fn.Environment,
		}

		if fn.Runtime != "" && syntax.Normalize(fn.Runtime) != syntax.Normalize(runtime) {
			logger.WarnContext(ctx, "function runtime ignored",
				slog.String("function", fn.Name),
				slog.String("runtime", fn.Runtime),
				slog.String("using", runtime),
			)
		}
	}

	t, err := syntaxTable(opts.Syntax)
	if err != nil {
		return service{}, err
	}

	root := opts.Root
	if root == "" {
		root = filepath.Dir(file)
	}

	logger.DebugContext(ctx, "service loaded",
		slog.String("file", file),
		slog.String("service", m.Service()),
		slog.String("runtime", runtime),
		slog.String("root", root),
		slog.Int("functions", len(fns)),
		slog.Int("variables", len(config)),
	)

	return service{
		manifest: m,
		input: solve.Input{
			Runtime:   runtime,
			Root:      root,
			Functions: fns,
			Config:    config,
			Table:     t,
			Suffixes:  opts.Suffix,
			Jobs:      opts.Jobs,
			Logger:    logger,
		},
	}, nil
}
