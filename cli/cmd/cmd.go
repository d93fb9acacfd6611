package cmd

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Options selects the service every analysis command operates on.
type Options struct {
	// File is the service definition file.
	File string
	// Root is the service directory; empty means the directory of File.
	Root string
	// Runtime overrides the provider runtime declared in File.
	Runtime string
	// Syntax lists runtime syntax table files merged over the built-ins.
	Syntax []string
	// Suffix lists candidate file suffixes tried before the runtime's own.
	Suffix []string
	// Jobs bounds concurrent handler resolution.
	Jobs int
}

type optionsKey struct{}

// WithOptions returns a new context.Context carrying opts.
func WithOptions(ctx context.Context, opts Options) context.Context {
	return context.WithValue(ctx, optionsKey{}, opts)
}

func optionsFrom(ctx context.Context) Options {
	opts, _ := ctx.Value(optionsKey{}).(Options)

	return opts
}

type outputKey struct{}

// WithOutput returns a new context.Context whose commands write their
// results to w instead of standard output.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// outputFrom returns the writer for command results: the one stored by
// [WithOutput], else the kong context's stdout, else os.Stdout.
func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}
