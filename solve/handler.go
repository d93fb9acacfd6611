package solve

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Function is one function declared by the service.
type Function struct {
	// Name is the function's key in the service definition.
	Name string
	// Handler is the dotted specifier "<path>.<export>", where path is
	// relative to the service root and carries no file suffix.
	Handler string
	// Environment holds variables declared on the function itself.
	Environment map[string]string
}

// Handler is a function whose handler specifier has been parsed.
type Handler struct {
	Name string
	Spec string
	// Path is the entry file once a suffix has been selected.
	Path string
	// Local names the variables declared on the function itself.
	Local []string

	base string // root-joined specifier path without suffix
}

// ParseHandler splits fn's handler specifier at its last dot.
func ParseHandler(root string, fn Function) (Handler, error) {
	i := strings.LastIndexByte(fn.Handler, '.')
	if i <= 0 || i == len(fn.Handler)-1 {
		return Handler{}, ErrInvalidHandler.
			With(slog.String("function", fn.Name), slog.String("handler", fn.Handler)).
			Wrap(errors.New(`expected "<path>.<export>"`))
	}

	return Handler{
		Name:  fn.Name,
		Spec:  fn.Handler,
		Local: slices.Sorted(maps.Keys(fn.Environment)),
		base:  filepath.Join(root, filepath.FromSlash(fn.Handler[:i])),
	}, nil
}

// Handlers parses every function's handler specifier, in order.
func Handlers(root string, fns []Function) ([]Handler, error) {
	if len(fns) == 0 {
		return nil, ErrNoHandlers
	}

	hs := make([]Handler, len(fns))

	for i, fn := range fns {
		h, err := ParseHandler(root, fn)
		if err != nil {
			return nil, err
		}

		hs[i] = h
	}

	return hs, nil
}

// WithSuffix returns h with Path set to its entry file for suffix.
func (h Handler) WithSuffix(suffix string) Handler {
	h.Path = h.base + "." + suffix

	return h
}

// SelectSuffix probes the first handler with each candidate suffix, in
// order, and returns the first whose entry file exists. The chosen suffix
// applies to every handler and every nested import.
func SelectSuffix(first Handler, suffixes []string) (string, error) {
	for _, sfx := range suffixes {
		info, err := os.Stat(first.WithSuffix(sfx).Path)
		if err == nil && info.Mode().IsRegular() {
			return sfx, nil
		}
	}

	return "", ErrNoMatchingFileExtension.
		With(
			slog.String("handler", first.Name),
			slog.String("path", first.base),
			slog.String("suffixes", strings.Join(suffixes, ", ")),
		).
		Wrap(fmt.Errorf("available file extensions are %s", strings.Join(suffixes, ", ")))
}

// checkEntry fails when the handler's entry file does not exist.
func checkEntry(h Handler) error {
	info, err := os.Stat(h.Path)
	if err == nil && info.Mode().IsRegular() {
		return nil
	}

	if err == nil || errors.Is(err, fs.ErrNotExist) {
		err = fmt.Errorf("no such file %s", h.Path)
	}

	return ErrMissingHandlerFile.
		With(slog.String("handler", h.Name), slog.String("path", h.Path)).
		Wrap(err)
}
