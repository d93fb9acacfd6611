package syntax

import "github.com/ardnew/envsolve/pkg"

var (
	ErrUnsupportedRuntime = pkg.NewError("unsupported runtime")
	ErrInvalidSyntax      = pkg.NewError("invalid syntax definition")
	ErrReadTable          = pkg.NewError("failed to read syntax table")
)
