package source

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/ardnew/envsolve/log"
	"github.com/ardnew/envsolve/syntax"
)

// Resolver inlines local imports for one syntax row and file suffix.
// A Resolver is safe for concurrent use.
type Resolver struct {
	syntax syntax.Syntax
	suffix string
	logger log.Logger
	cache  *Cache
}

// Option configures a [Resolver].
type Option func(Resolver) Resolver

// WithLogger sets the logger used to trace resolution.
func WithLogger(logger log.Logger) Option {
	return func(r Resolver) Resolver {
		r.logger = logger

		return r
	}
}

// WithCache shares a cache between resolvers.
func WithCache(cache *Cache) Option {
	return func(r Resolver) Resolver {
		if cache != nil {
			r.cache = cache
		}

		return r
	}
}

// New returns a resolver matching imports with row and probing candidate
// files with suffix (given with or without a leading dot).
func New(row syntax.Syntax, suffix string, opts ...Option) *Resolver {
	r := Resolver{
		syntax: row,
		suffix: strings.TrimLeft(suffix, "."),
		cache:  NewCache(),
	}

	for _, opt := range opts {
		r = opt(r)
	}

	return &r
}

// Suffix returns the file suffix appended to import specifiers.
func (r *Resolver) Suffix() string { return r.suffix }

// Candidate returns the file an import specifier refers to, relative to
// dir. A specifier already ending in the suffix is used as is.
func (r *Resolver) Candidate(dir, spec string) string {
	if r.suffix == "" || strings.HasSuffix(spec, "."+r.suffix) {
		return filepath.Join(dir, spec)
	}

	return filepath.Join(dir, spec+"."+r.suffix)
}

// walk carries the state of one top-level resolution.
type walk struct {
	entry  string
	active []string
}

// ResolveFile reads the file at path and returns its flattened content.
func (r *Resolver) ResolveFile(ctx context.Context, path string) (string, error) {
	path = filepath.Clean(path)
	w := &walk{entry: filepath.Dir(path)}

	return r.file(ctx, w, path)
}

// Resolve returns text with every import of an existing local file
// replaced by that file's flattened content, followed by a newline and the
// original import statement line. Imports naming files that do not exist
// are kept verbatim. Imports found in text are resolved against dir.
func (r *Resolver) Resolve(ctx context.Context, text, dir string) (string, error) {
	w := &walk{entry: filepath.Clean(dir)}

	return r.text(ctx, w, text, w.entry)
}

// file flattens the file at path, failing when path is already being
// flattened further up the import chain.
func (r *Resolver) file(ctx context.Context, w *walk, path string) (string, error) {
	if i := slices.Index(w.active, path); i >= 0 {
		cycle := append(slices.Clone(w.active[i:]), path)

		return "", ErrCyclicImport.With(
			slog.String("path", path),
			slog.String("cycle", strings.Join(cycle, " -> ")),
		)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, hash, err := r.cache.read(ctx, path)
	if err != nil {
		return "", err
	}

	base := w.entry
	if r.syntax.Relative != syntax.RelativeEntry {
		base = filepath.Dir(path)
	}

	key := flatKey{path: path, base: base, hash: hash}
	if flat, ok := r.cache.flattened(key); ok {
		r.logger.TraceContext(ctx, "import cached", slog.String("path", path))

		return flat, nil
	}

	w.active = append(w.active, path)
	defer func() { w.active = w.active[:len(w.active)-1] }()

	flat, err := r.text(ctx, w, text, base)
	if err != nil {
		return "", err
	}

	r.cache.store(key, flat)

	return flat, nil
}

// text flattens the imports found in text, resolving them against dir.
func (r *Resolver) text(ctx context.Context, w *walk, text, dir string) (string, error) {
	var (
		out   strings.Builder
		re    = r.syntax.ImportPattern()
		index = r.syntax.PathIndex
	)

	for rest := text; ; {
		loc := re.FindStringSubmatchIndex(rest)
		if loc == nil || loc[1] == 0 {
			out.WriteString(rest)

			return out.String(), nil
		}

		var spec string
		if lo, hi := loc[2*index], loc[2*index+1]; lo >= 0 {
			spec = r.syntax.CleanPath(rest[lo:hi])
		}

		path := r.Candidate(dir, spec)

		found := spec != ""
		if found {
			var err error

			found, err = r.cache.exists(path)
			if err != nil {
				return "", err
			}
		}

		if !found {
			r.logger.TraceContext(ctx, "import skipped",
				slog.String("spec", spec),
				slog.String("path", path),
			)
			out.WriteString(rest[:loc[1]])
			rest = rest[loc[1]:]

			continue
		}

		r.logger.TraceContext(ctx, "import inlined",
			slog.String("spec", spec),
			slog.String("path", path),
			slog.Int("depth", len(w.active)),
		)

		inlined, err := r.file(ctx, w, path)
		if err != nil {
			return "", err
		}

		eol := len(rest)
		if n := strings.IndexByte(rest[loc[1]:], '\n'); n >= 0 {
			eol = loc[1] + n + 1
		}

		// The pattern may consume the newline ending the previous line;
		// cut at the start of the statement's own line instead so the
		// inlined text never joins that line.
		match := rest[loc[0]:loc[1]]
		stmt := loc[0] + len(match) - len(strings.TrimLeftFunc(match, unicode.IsSpace))
		bol := strings.LastIndexByte(rest[:stmt], '\n') + 1

		out.WriteString(rest[:bol])

		if s := out.String(); s != "" && s[len(s)-1] != '\n' {
			out.WriteByte('\n')
		}

		out.WriteString(inlined)
		out.WriteByte('\n')
		out.WriteString(rest[bol:eol])
		rest = rest[eol:]
	}
}
