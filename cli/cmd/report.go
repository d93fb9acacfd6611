package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/envsolve/log"
	"github.com/ardnew/envsolve/solve"
)

// Report prints the variables each handler references.
type Report struct {
	Format string `default:"table" enum:"table,json,yaml" help:"Output format (${enum})"                                           short:"o"`
	Where  string `                                      help:"Only report handlers for which this expression is true"          short:"w"`
	Unused bool   `default:"true"                        help:"List shared variables no handler references" negatable:""`
	Indent int    `default:"2"                           help:"Indent width for JSON and YAML output"                           short:"i"`
}

// usageRow is one handler's line in a report.
type usageRow struct {
	Name       string   `json:"name"                 yaml:"name"`
	Handler    string   `json:"handler"              yaml:"handler"`
	File       string   `json:"file"                 yaml:"file"`
	Variables  []string `json:"variables"            yaml:"variables"`
	Undeclared []string `json:"undeclared,omitempty" yaml:"undeclared,omitempty"`
}

// env is the expression environment of a row.
func (r usageRow) env() map[string]any {
	return map[string]any{
		"name":       r.Name,
		"handler":    r.Handler,
		"file":       r.File,
		"variables":  r.Variables,
		"count":      len(r.Variables),
		"undeclared": r.Undeclared,
	}
}

// usageReport is the complete report document.
type usageReport struct {
	Runtime  string     `json:"runtime"          yaml:"runtime"`
	Handlers []usageRow `json:"handlers"         yaml:"handlers"`
	Unused   []string   `json:"unused,omitempty" yaml:"unused,omitempty"`
}

// Run executes the report command.
func (r *Report) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default().With(slog.String("command", "report"))

	filter, err := compileFilter(r.Where)
	if err != nil {
		return err
	}

	svc, err := loadService(ctx, optionsFrom(ctx), logger)
	if err != nil {
		return err
	}

	rep, err := buildReport(ctx, svc.input)
	if err != nil {
		return err
	}

	rep.Handlers, err = filterRows(rep.Handlers, filter)
	if err != nil {
		return err
	}

	if !r.Unused {
		rep.Unused = nil
	}

	logger.DebugContext(ctx, "report built",
		slog.Int("handlers", len(rep.Handlers)),
		slog.Int("unused", len(rep.Unused)),
	)

	return r.write(outputFrom(ctx), rep)
}

// buildReport analyzes in and flags undeclared references instead of
// failing on them.
func buildReport(ctx context.Context, in solve.Input) (usageReport, error) {
	usages, err := solve.Analyze(ctx, in)
	if err != nil {
		return usageReport{}, err
	}

	handlers, err := solve.Handlers(in.Root, in.Functions)
	if err != nil {
		return usageReport{}, err
	}

	undeclared := make(map[string][]string)
	for _, m := range solve.Missing(handlers, usages, in.Config) {
		undeclared[m.Handler] = append(undeclared[m.Handler], m.Variable)
	}

	used := make(map[string]bool)
	rows := make([]usageRow, len(usages))

	for i, u := range usages {
		vars := solve.Unique(u.Variables)
		for _, v := range vars {
			used[v] = true
		}

		rows[i] = usageRow{
			Name:       u.Handler,
			Handler:    handlers[i].Spec,
			File:       u.File,
			Variables:  vars,
			Undeclared: undeclared[u.Handler],
		}
	}

	var unused []string

	for _, name := range slices.Sorted(maps.Keys(in.Config)) {
		if !used[name] {
			unused = append(unused, name)
		}
	}

	return usageReport{Runtime: in.Runtime, Handlers: rows, Unused: unused}, nil
}

// compileFilter compiles a boolean row expression. An empty source
// matches every row.
func compileFilter(source string) (*vm.Program, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil
	}

	program, err := expr.Compile(source, expr.Env(usageRow{}.env()), expr.AsBool())
	if err != nil {
		return nil, ErrInvalidFilter.With(slog.String("where", source)).Wrap(err)
	}

	return program, nil
}

func filterRows(rows []usageRow, filter *vm.Program) ([]usageRow, error) {
	if filter == nil {
		return rows, nil
	}

	kept := make([]usageRow, 0, len(rows))

	for _, row := range rows {
		out, err := expr.Run(filter, row.env())
		if err != nil {
			return nil, ErrInvalidFilter.With(slog.String("handler", row.Name)).Wrap(err)
		}

		if ok, _ := out.(bool); ok {
			kept = append(kept, row)
		}
	}

	return kept, nil
}

func (r *Report) write(w io.Writer, rep usageReport) error {
	switch r.Format {
	case "json":
		data, err := json.MarshalIndent(rep, "", strings.Repeat(" ", r.Indent))
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		_, err = fmt.Fprintln(w, string(data))
		if err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil

	case "yaml":
		data, err := yaml.MarshalWithOptions(rep, yaml.Indent(r.Indent))
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		if _, err := w.Write(data); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil

	default:
		_, err := io.WriteString(w, renderTable(rep))
		if err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	}
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
	undeclaredStyle = cellStyle.Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func renderTable(rep usageReport) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("FUNCTION", "HANDLER", "COUNT", "VARIABLES", "UNDECLARED").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 4:
				return undeclaredStyle
			default:
				return cellStyle
			}
		})

	for _, row := range rep.Handlers {
		t.Row(
			row.Name,
			row.Handler,
			strconv.Itoa(len(row.Variables)),
			strings.Join(row.Variables, ", "),
			strings.Join(row.Undeclared, ", "),
		)
	}

	var b strings.Builder

	b.WriteString(t.Render())
	b.WriteString("\n")

	if len(rep.Unused) > 0 {
		b.WriteString(hintStyle.Render("unused: " + strings.Join(rep.Unused, ", ")))
		b.WriteString("\n")
	}

	return b.String()
}
