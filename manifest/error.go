package manifest

import "github.com/ardnew/envsolve/pkg"

var (
	ErrRead            = pkg.NewError("failed to read manifest")
	ErrDecode          = pkg.NewError("failed to decode manifest")
	ErrInvalidManifest = pkg.NewError("invalid manifest")
	ErrEncode          = pkg.NewError("failed to encode manifest")
	ErrWrite           = pkg.NewError("failed to write manifest")
)
