package cmd

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/envsolve/syntax"
)

// Runtimes lists the runtime syntax table in effect.
type Runtimes struct {
	Format string `default:"table" enum:"table,yaml" help:"Output format (${enum})" short:"o"`
}

// Run executes the runtimes command.
func (r *Runtimes) Run(ctx context.Context) error {
	t, err := syntaxTable(optionsFrom(ctx).Syntax)
	if err != nil {
		return err
	}

	w := outputFrom(ctx)

	if r.Format == "yaml" {
		rows := struct {
			Runtimes []syntax.Syntax `yaml:"runtimes"`
		}{}

		for row := range t.All() {
			rows.Runtimes = append(rows.Runtimes, row)
		}

		data, err := yaml.Marshal(rows)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		if _, err := w.Write(data); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("RUNTIME", "TOKEN", "SUFFIXES", "IMPORTS RELATIVE TO").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		})

	for row := range t.All() {
		tbl.Row(row.Runtime, row.Token, strings.Join(row.Suffixes, ", "), string(row.Relative))
	}

	if _, err := io.WriteString(w, tbl.Render()+"\n"); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
