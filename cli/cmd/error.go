package cmd

import "github.com/ardnew/envsolve/pkg"

var (
	ErrJSONMarshal   = pkg.NewError("marshal JSON")
	ErrYAMLMarshal   = pkg.NewError("marshal YAML")
	ErrWriteConfig   = pkg.NewError("write configuration file")
	ErrFileExists    = pkg.NewError("file exists (use --force to overwrite)")
	ErrWriteOutput   = pkg.NewError("write output")
	ErrInvalidFilter = pkg.NewError("invalid filter expression")
	ErrNoTerminal    = pkg.NewError("browse requires an interactive terminal")
)
