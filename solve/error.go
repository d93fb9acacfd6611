package solve

import "github.com/ardnew/envsolve/pkg"

var (
	ErrNoHandlers              = pkg.NewError("no function handlers found")
	ErrInvalidHandler          = pkg.NewError("invalid handler")
	ErrNoMatchingFileExtension = pkg.NewError("no matching file extension")
	ErrMissingHandlerFile      = pkg.NewError("handler file not found")
	ErrUndeclaredVariable      = pkg.NewError("undeclared environment variable")
)
