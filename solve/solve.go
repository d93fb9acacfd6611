package solve

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/envsolve/log"
	"github.com/ardnew/envsolve/scan"
	"github.com/ardnew/envsolve/source"
	"github.com/ardnew/envsolve/syntax"
)

// Input collects everything a run reads. None of it is modified.
type Input struct {
	// Runtime is the declared runtime identifier, e.g. "nodejs18.x".
	Runtime string
	// Root is the service directory handler paths are relative to.
	Root string
	// Functions are the service's functions, in declaration order.
	Functions []Function
	// Config is the shared configuration map.
	Config map[string]string
	// Table overrides the built-in syntax table when non-empty.
	Table syntax.Table
	// Suffixes are tried before the runtime's own candidate suffixes.
	Suffixes []string
	// Jobs bounds concurrent handler resolution; zero means GOMAXPROCS.
	Jobs int
	// Scanner overrides the runtime's reference scanner.
	Scanner scan.Scanner
	// Logger traces the run; the zero value discards.
	Logger log.Logger
}

// Usage records the variables one handler's flattened code references,
// in order of occurrence with duplicates.
type Usage struct {
	Handler   string
	File      string
	Variables []string
}

// Analyze resolves and scans every handler concurrently. Usages are
// returned in function order.
func Analyze(ctx context.Context, in Input) ([]Usage, error) {
	_, usages, err := analyze(ctx, in)

	return usages, err
}

// Solve runs [Analyze] and assembles the per-function environments.
func Solve(ctx context.Context, in Input) (Result, error) {
	handlers, usages, err := analyze(ctx, in)
	if err != nil {
		return Result{}, err
	}

	res, err := Assemble(handlers, usages, in.Config)
	if err != nil {
		return Result{}, err
	}

	in.Logger.InfoContext(ctx, "environment solved",
		slog.Int("handlers", len(handlers)),
		slog.Int("variables", res.Count()),
	)

	return res, nil
}

// Syntax returns the syntax row in effect for in: the runtime's row from
// in.Table (or the built-in table) with in.Suffixes prepended.
func (in Input) Syntax() (syntax.Syntax, error) {
	table := in.Table
	if table.Len() == 0 {
		table = syntax.Builtin()
	}

	row, err := table.Lookup(in.Runtime)
	if err != nil {
		return syntax.Syntax{}, err
	}

	return row.WithSuffixes(in.Suffixes...), nil
}

func (in Input) jobs() int {
	if in.Jobs > 0 {
		return in.Jobs
	}

	return runtime.GOMAXPROCS(0)
}

func analyze(ctx context.Context, in Input) ([]Handler, []Usage, error) {
	if len(in.Functions) == 0 {
		return nil, nil, ErrNoHandlers
	}

	row, err := in.Syntax()
	if err != nil {
		return nil, nil, err
	}

	handlers, err := Handlers(in.Root, in.Functions)
	if err != nil {
		return nil, nil, err
	}

	suffix, err := SelectSuffix(handlers[0], row.Suffixes)
	if err != nil {
		return nil, nil, err
	}

	for i := range handlers {
		handlers[i] = handlers[i].WithSuffix(suffix)
	}

	in.Logger.DebugContext(ctx, "runtime selected",
		slog.String("runtime", row.Runtime),
		slog.String("suffix", suffix),
		slog.Int("handlers", len(handlers)),
		slog.Int("jobs", in.jobs()),
	)

	scanner := in.Scanner
	if scanner == nil {
		scanner = scan.ForSyntax(row)
	}

	resolver := source.New(row, suffix,
		source.WithLogger(in.Logger),
		source.WithCache(source.NewCache()),
	)

	usages := make([]Usage, len(handlers))
	errs := make([]error, len(handlers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.jobs())

	for i, h := range handlers {
		g.Go(func() error {
			usages[i], errs[i] = analyzeHandler(gctx, in.Logger, resolver, scanner, h)

			return errs[i]
		})
	}

	werr := g.Wait()

	// Report the first failure in function order, preferring a real failure
	// over the cancellation it caused in sibling handlers.
	for _, err := range errs {
		if err != nil && !isContextErr(err) {
			return nil, nil, err
		}
	}

	if werr != nil {
		return nil, nil, werr
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	return handlers, usages, nil
}

func analyzeHandler(
	ctx context.Context,
	logger log.Logger,
	resolver *source.Resolver,
	scanner scan.Scanner,
	h Handler,
) (Usage, error) {
	if err := checkEntry(h); err != nil {
		return Usage{}, err
	}

	text, err := resolver.ResolveFile(ctx, h.Path)
	if err != nil {
		return Usage{}, err
	}

	vars := scanner.Scan(text)

	logger.TraceContext(ctx, "handler scanned",
		slog.String("handler", h.Name),
		slog.String("file", h.Path),
		slog.Int("bytes", len(text)),
		slog.Any("variables", vars),
	)

	return Usage{Handler: h.Name, File: h.Path, Variables: vars}, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
