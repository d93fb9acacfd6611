package source

import "github.com/ardnew/envsolve/pkg"

var (
	ErrCyclicImport = pkg.NewError("cyclic import")
	ErrReadSource   = pkg.NewError("failed to read source file")
)
