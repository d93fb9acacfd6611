package syntax

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/ardnew/mung"
)

// Relative selects the directory nested imports are resolved against.
type Relative string

const (
	// RelativeFile resolves an import against the directory of the file
	// containing the import statement.
	RelativeFile Relative = "file"
	// RelativeEntry resolves every import against the directory of the
	// handler's entry file.
	RelativeEntry Relative = "entry"
)

// DefaultBoundary lists the characters ending a dot-form variable name.
const DefaultBoundary = " \t\v\f,;:\n\r}"

// Rewrite replaces every match of Pattern in a captured import path with
// Replace, which may reference capture groups as in
// [regexp.Regexp.ReplaceAllString].
type Rewrite struct {
	Pattern string `toml:"pattern" validate:"required" yaml:"pattern"`
	Replace string `toml:"replace"                     yaml:"replace"`

	re *regexp.Regexp
}

// Syntax is one row of the runtime table.
type Syntax struct {
	// Runtime is the normalized runtime name, without version suffix.
	Runtime string `toml:"runtime" validate:"required" yaml:"runtime"`
	// Token is the literal text preceding a configuration-variable read.
	Token string `toml:"token" validate:"required" yaml:"token"`
	// Import matches one import statement.
	Import string `toml:"import" validate:"required" yaml:"import"`
	// PathIndex is the capture group of Import holding the module path.
	PathIndex int `toml:"path_index" validate:"gte=1" yaml:"path_index"`
	// Cleanup is applied in order to the captured module path.
	Cleanup []Rewrite `toml:"cleanup" validate:"dive" yaml:"cleanup"`
	// Suffixes are the candidate file suffixes, most preferred first.
	Suffixes []string `toml:"suffixes" validate:"required,min=1,dive,required" yaml:"suffixes"`
	// Boundary overrides [DefaultBoundary] when non-empty.
	Boundary string `toml:"boundary" yaml:"boundary"`
	// Accessors are method names read as TOKEN.method("NAME").
	Accessors []string `toml:"accessors" yaml:"accessors"`
	// Relative selects the base directory of nested imports.
	Relative Relative `toml:"relative" validate:"omitempty,oneof=file entry" yaml:"relative"`

	importRE *regexp.Regexp
}

// compile returns s with its patterns compiled and defaults filled in.
func (s Syntax) compile() (Syntax, error) {
	re, err := regexp.Compile(s.Import)
	if err != nil {
		return s, ErrInvalidSyntax.
			With(slog.String("runtime", s.Runtime), slog.String("field", "import")).
			Wrap(err)
	}

	if s.PathIndex > re.NumSubexp() {
		return s, ErrInvalidSyntax.
			With(slog.String("runtime", s.Runtime), slog.String("field", "path_index")).
			Wrap(fmt.Errorf("capture group %d out of range (pattern has %d)",
				s.PathIndex, re.NumSubexp()))
	}

	s.importRE = re
	s.Runtime = strings.ToLower(strings.TrimSpace(s.Runtime))
	s.Cleanup = slices.Clone(s.Cleanup)

	for i, rw := range s.Cleanup {
		s.Cleanup[i].re, err = regexp.Compile(rw.Pattern)
		if err != nil {
			return s, ErrInvalidSyntax.
				With(slog.String("runtime", s.Runtime), slog.String("field", "cleanup")).
				Wrap(err)
		}
	}

	if s.Boundary == "" {
		s.Boundary = DefaultBoundary
	}

	if s.Relative == "" {
		s.Relative = RelativeFile
	}

	s.Suffixes = normalizeSuffixes(s.Suffixes)

	return s, nil
}

// ImportPattern returns the compiled import statement pattern.
func (s Syntax) ImportPattern() *regexp.Regexp {
	if s.importRE == nil {
		s.importRE = regexp.MustCompile(s.Import)
	}

	return s.importRE
}

// CleanPath applies the cleanup rewrites to a captured module path.
func (s Syntax) CleanPath(path string) string {
	for _, rw := range s.Cleanup {
		re := rw.re
		if re == nil {
			re = regexp.MustCompile(rw.Pattern)
		}

		path = re.ReplaceAllString(path, rw.Replace)
	}

	return path
}

// WithSuffixes returns a copy of s whose candidate suffixes are extra
// followed by the existing suffixes, without duplicates.
func (s Syntax) WithSuffixes(extra ...string) Syntax {
	if len(extra) == 0 {
		return s
	}

	const delim = ","

	// mung prepends prefix items one at a time, so feed them last first.
	prefix := normalizeSuffixes(extra)
	slices.Reverse(prefix)

	merged := mung.Make(
		mung.WithSubjectItems(s.Suffixes...),
		mung.WithDelim(delim),
		mung.WithPrefixItems(prefix...),
	).String()

	s.Suffixes = normalizeSuffixes(strings.Split(merged, delim))

	return s
}

// normalizeSuffixes trims leading dots and space, dropping empty and
// repeated entries.
func normalizeSuffixes(suffixes []string) []string {
	out := make([]string, 0, len(suffixes))

	for _, sfx := range suffixes {
		sfx = strings.TrimLeft(strings.TrimSpace(sfx), ".")
		if sfx != "" && !slices.Contains(out, sfx) {
			out = append(out, sfx)
		}
	}

	return out
}

var versionSuffix = regexp.MustCompile(`^(\D+)\d`)

// Normalize strips a trailing version from a declared runtime identifier:
// "nodejs18.x" becomes "nodejs" and "python3.11" becomes "python".
// Identifiers without digits are returned lowercased and trimmed.
func Normalize(runtime string) string {
	runtime = strings.ToLower(strings.TrimSpace(runtime))

	if m := versionSuffix.FindStringSubmatch(runtime); m != nil {
		return m[1]
	}

	return runtime
}
