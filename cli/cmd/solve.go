package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/envsolve/log"
	"github.com/ardnew/envsolve/solve"
)

// Solve rewrites the service definition so each function receives only the
// variables its handler references.
type Solve struct {
	Write  bool   `help:"Rewrite the service definition file in place"        short:"w"`
	Output string `help:"Write the rewritten definition to this file instead" short:"o" type:"path"`
	Indent int    `default:"2" help:"Indent width for YAML output"            short:"i"`
}

// Run executes the solve command.
func (s *Solve) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default().With(slog.String("command", "solve"))

	svc, err := loadService(ctx, optionsFrom(ctx), logger)
	if err != nil {
		return err
	}

	res, err := solve.Solve(ctx, svc.input)
	if err != nil {
		return err
	}

	if err := svc.manifest.Apply(res.Environments, res.ClearShared); err != nil {
		return err
	}

	switch {
	case s.Write:
		err = svc.manifest.Save(ctx, s.Indent)
		if err == nil {
			logger.InfoContext(ctx, "manifest rewritten",
				slog.String("path", svc.manifest.Path()),
			)
		}

		return err

	case s.Output != "":
		err = svc.manifest.SaveAs(ctx, s.Output, s.Indent)
		if err == nil {
			logger.InfoContext(ctx, "manifest written",
				slog.String("path", s.Output),
			)
		}

		return err

	default:
		return svc.manifest.Encode(ctx, outputFrom(ctx), s.Indent)
	}
}
