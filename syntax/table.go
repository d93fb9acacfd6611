package syntax

import (
	"iter"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
)

// Table maps normalized runtime names to their syntax rows.
// A Table is immutable once built and safe for concurrent readers.
type Table struct {
	rows map[string]Syntax
}

// NewTable compiles rows into a Table. Later rows replace earlier rows
// with the same runtime.
func NewTable(rows ...Syntax) (Table, error) {
	t := Table{rows: make(map[string]Syntax, len(rows))}

	for _, row := range rows {
		compiled, err := row.compile()
		if err != nil {
			return Table{}, err
		}

		t.rows[compiled.Runtime] = compiled
	}

	return t, nil
}

// Builtin returns the table of runtimes supported out of the box.
var Builtin = sync.OnceValue(func() Table {
	t, err := NewTable(builtin...)
	if err != nil {
		panic("internal error: builtin syntax table: " + err.Error())
	}

	return t
})

var builtin = []Syntax{
	{
		Runtime:   "nodejs",
		Token:     "process.env",
		Import:    "(?s)(^|\\s|;|\\{)import\\s.*?from\\s['\"`](.*?)['\"`]",
		PathIndex: 2,
		Cleanup: []Rewrite{
			{Pattern: "['\"`]", Replace: ""},
			{Pattern: `^\./`, Replace: ""},
		},
		Suffixes: []string{"js", "ts"},
		Relative: RelativeFile,
	},
	{
		Runtime:   "python",
		Token:     "os.environ",
		Import:    `(^|\s)from\s(.*?)\simport\s`,
		PathIndex: 2,
		Cleanup: []Rewrite{
			{Pattern: `^\.+`, Replace: ""},
			{Pattern: `\.`, Replace: "/"},
		},
		Suffixes:  []string{"py"},
		Accessors: []string{"get", "setdefault", "pop"},
		Relative:  RelativeEntry,
	},
	{
		Runtime:   "ruby",
		Token:     "ENV",
		Import:    `(^|\s)require_relative\s+['"](.*?)['"]`,
		PathIndex: 2,
		Cleanup: []Rewrite{
			{Pattern: `^\./`, Replace: ""},
			{Pattern: `\.rb$`, Replace: ""},
		},
		Suffixes:  []string{"rb"},
		Accessors: []string{"fetch"},
		Relative:  RelativeFile,
	},
}

// Lookup finds the row for a declared runtime in the [Builtin] table.
func Lookup(runtime string) (Syntax, error) {
	return Builtin().Lookup(runtime)
}

// Lookup finds the row for a declared runtime, stripping any version
// suffix first. Unknown runtimes yield [ErrUnsupportedRuntime].
func (t Table) Lookup(runtime string) (Syntax, error) {
	name := Normalize(runtime)

	if row, ok := t.rows[name]; ok && name != "" {
		return row, nil
	}

	known := t.Runtimes()
	attrs := []slog.Attr{
		slog.String("runtime", runtime),
		slog.String("normalized", name),
		slog.String("supported", strings.Join(known, ", ")),
	}

	if name != "" {
		if matches := fuzzy.Find(name, known); len(matches) > 0 {
			attrs = append(attrs, slog.String("suggestion", matches[0].Str))
		}
	}

	return Syntax{}, ErrUnsupportedRuntime.
		With(attrs...).
		Wrap(unsupportedError{runtime: runtime, known: known})
}

// Merge returns a table with the rows of t replaced or extended by the rows
// of other.
func (t Table) Merge(other Table) Table {
	merged := Table{rows: maps.Clone(t.rows)}
	if merged.rows == nil {
		merged.rows = make(map[string]Syntax, len(other.rows))
	}

	maps.Copy(merged.rows, other.rows)

	return merged
}

// Runtimes returns the sorted runtime names in t.
func (t Table) Runtimes() []string {
	return slices.Sorted(maps.Keys(t.rows))
}

// All returns an iterator over the rows of t ordered by runtime name.
func (t Table) All() iter.Seq[Syntax] {
	return func(yield func(Syntax) bool) {
		for _, name := range t.Runtimes() {
			if !yield(t.rows[name]) {
				return
			}
		}
	}
}

// Len returns the number of rows in t.
func (t Table) Len() int { return len(t.rows) }

type unsupportedError struct {
	runtime string
	known   []string
}

func (e unsupportedError) Error() string {
	return "no syntax for " + strconv.Quote(e.runtime) +
		" (supported: " + strings.Join(e.known, ", ") + ")"
}
