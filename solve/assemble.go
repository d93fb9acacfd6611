package solve

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Result is the outcome of a successful run.
type Result struct {
	// Environments maps each function name to the shared variables its
	// handler references, with their values.
	Environments map[string]map[string]string
	// ClearShared reports that the shared configuration map should be
	// removed from the service once Environments are installed.
	ClearShared bool
	// Usages are the raw per-handler references, in function order.
	Usages []Usage
}

// Count returns the number of variable assignments in r.
func (r Result) Count() int {
	n := 0
	for _, env := range r.Environments {
		n += len(env)
	}

	return n
}

// Undeclared is a reference to a variable that is neither shared nor
// declared on the function.
type Undeclared struct {
	Handler     string
	Variable    string
	Suggestions []string
}

// maxSuggestions bounds the "did you mean" candidates per variable.
const maxSuggestions = 3

// Unique returns names without repeats, keeping first occurrences.
func Unique(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}

	return out
}

// Missing lists every undeclared reference, in function order and then
// in order of first occurrence.
func Missing(handlers []Handler, usages []Usage, config map[string]string) []Undeclared {
	local := make(map[string][]string, len(handlers))
	for _, h := range handlers {
		local[h.Name] = h.Local
	}

	known := slices.Sorted(maps.Keys(config))

	var missing []Undeclared

	for _, u := range usages {
		for _, name := range Unique(u.Variables) {
			if _, ok := config[name]; ok || slices.Contains(local[u.Handler], name) {
				continue
			}

			missing = append(missing, Undeclared{
				Handler:     u.Handler,
				Variable:    name,
				Suggestions: suggest(name, known),
			})
		}
	}

	return missing
}

// suggest returns the declared names closest to name: those containing
// name's characters in order, best first, then those whose characters
// appear in order within name.
func suggest(name string, known []string) []string {
	var out []string

	for _, m := range fuzzy.Find(name, known) {
		out = append(out, m.Str)
	}

	for _, k := range known {
		if len(out) >= maxSuggestions {
			break
		}

		if !slices.Contains(out, k) && len(fuzzy.Find(k, []string{name})) > 0 {
			out = append(out, k)
		}
	}

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}

	return out
}

// Assemble builds each function's environment from its usages. Every
// referenced variable must be shared or declared on the function itself,
// otherwise nothing is assembled and the first undeclared reference is
// reported as [ErrUndeclaredVariable]. Variables declared on the function
// are left out of its environment.
func Assemble(handlers []Handler, usages []Usage, config map[string]string) (Result, error) {
	if missing := Missing(handlers, usages, config); len(missing) > 0 {
		first := missing[0]

		msg := fmt.Sprintf("%s references %s", first.Handler, first.Variable)
		if len(first.Suggestions) > 0 {
			msg += " (did you mean " + strings.Join(first.Suggestions, ", ") + "?)"
		}

		return Result{}, ErrUndeclaredVariable.
			With(
				slog.String("handler", first.Handler),
				slog.String("variable", first.Variable),
				slog.Any("suggestions", first.Suggestions),
				slog.Int("undeclared", len(missing)),
			).
			Wrap(errors.New(msg))
	}

	envs := make(map[string]map[string]string, len(handlers))
	local := make(map[string][]string, len(handlers))

	for _, h := range handlers {
		envs[h.Name] = map[string]string{}
		local[h.Name] = h.Local
	}

	for _, u := range usages {
		env, ok := envs[u.Handler]
		if !ok {
			continue
		}

		for _, name := range u.Variables {
			if slices.Contains(local[u.Handler], name) {
				continue
			}

			env[name] = config[name]
		}
	}

	return Result{
		Environments: envs,
		ClearShared:  true,
		Usages:       usages,
	}, nil
}
