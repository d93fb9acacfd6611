package browse

import "github.com/ardnew/envsolve/pkg"

// Sentinel errors.
var (
	ErrOutOfBounds = pkg.NewError("index out of range")
	ErrNoEntries   = pkg.NewError("no handlers to browse")
)
