package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/ardnew/envsolve/cli/cmd/browse"
	"github.com/ardnew/envsolve/log"
)

// Browse opens an interactive view of the variables each handler
// references.
type Browse struct{}

// Run executes the browse command.
func (b *Browse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return ErrNoTerminal
	}

	logger := log.Default().With(slog.String("command", "browse"))

	svc, err := loadService(ctx, optionsFrom(ctx), logger)
	if err != nil {
		return err
	}

	rep, err := buildReport(ctx, svc.input)
	if err != nil {
		return err
	}

	entries := make([]browse.Entry, len(rep.Handlers))
	for i, row := range rep.Handlers {
		entries[i] = browse.Entry(row)
	}

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return browse.Run(ctx, entries, cacheDir, logger)
}
