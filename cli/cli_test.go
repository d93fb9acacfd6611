package cli

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/envsolve/cli/cmd"
	"github.com/ardnew/envsolve/manifest"
)

func testParser(t *testing.T, cli *CLI, opts ...kong.Option) *kong.Kong {
	t.Helper()

	vars := kong.Vars{
		cmd.ConfigIdentifier: filepath.Join(t.TempDir(), cmd.ConfigIdentifier),
		cmd.CacheIdentifier:  t.TempDir(),
		"defaultFile":        manifest.DefaultFile,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	parser, err := newParser(cli, vars,
		append([]kong.Option{kong.Exit(func(code int) {
			t.Fatalf("unexpected exit(%d)", code)
		})}, opts...)...,
	)
	if err != nil {
		t.Fatalf("newParser failed: %v", err)
	}

	return parser
}

func TestParseCommands(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		command string
		check   func(t *testing.T, cli *CLI)
	}{
		{
			name:    "default solve",
			args:    nil,
			command: "solve",
			check: func(t *testing.T, cli *CLI) {
				if filepath.Base(cli.File) != manifest.DefaultFile {
					t.Errorf("File = %q", cli.File)
				}
			},
		},
		{
			name:    "solve flags",
			args:    []string{"solve", "--write", "-i", "4"},
			command: "solve",
			check: func(t *testing.T, cli *CLI) {
				if !cli.Solve.Write || cli.Solve.Indent != 4 {
					t.Errorf("Solve = %+v", cli.Solve)
				}
			},
		},
		{
			name:    "report",
			args:    []string{"-f", "svc/app.yml", "-j", "2", "report", "-o", "json", "--where", "count > 0", "--no-unused"},
			command: "report",
			check: func(t *testing.T, cli *CLI) {
				if filepath.Base(cli.File) != "app.yml" || cli.Jobs != 2 {
					t.Errorf("globals = %q %d", cli.File, cli.Jobs)
				}

				if cli.Report.Format != "json" || cli.Report.Where != "count > 0" || cli.Report.Unused {
					t.Errorf("Report = %+v", cli.Report)
				}
			},
		},
		{
			name:    "runtimes",
			args:    []string{"runtimes", "-o", "yaml"},
			command: "runtimes",
			check: func(t *testing.T, cli *CLI) {
				if cli.Runtimes.Format != "yaml" {
					t.Errorf("Runtimes = %+v", cli.Runtimes)
				}
			},
		},
		{
			name:    "suffix and runtime",
			args:    []string{"--suffix", "mjs", "--suffix", "cjs", "-r", "python3.12", "init", "--force"},
			command: "init",
			check: func(t *testing.T, cli *CLI) {
				opts := cli.options()

				if !slices.Equal(opts.Suffix, []string{"mjs", "cjs"}) || opts.Runtime != "python3.12" {
					t.Errorf("options = %+v", opts)
				}

				if !cli.Init.Force {
					t.Error("Init.Force not set")
				}
			},
		},
		{
			name:    "browse",
			args:    []string{"browse"},
			command: "browse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cli CLI

			ktx, err := testParser(t, &cli).Parse(tt.args)
			if err != nil {
				t.Fatalf("Parse(%v) failed: %v", tt.args, err)
			}

			if ktx.Command() != tt.command {
				t.Errorf("Command() = %q, want %q", ktx.Command(), tt.command)
			}

			if tt.check != nil {
				tt.check(t, &cli)
			}
		})
	}
}

func TestParseConfiguration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	err := os.WriteFile(path, []byte("config:\n  jobs: 3\n  suffix: [mjs]\n  runtime: ruby\n"), 0o600)
	if err != nil {
		t.Fatal(err)
	}

	var cli CLI

	parser := testParser(t, &cli, kong.Configuration(resolve(cmd.ConfigIdentifier), path))

	if _, err := parser.Parse([]string{"-j", "5", "runtimes"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	// Command-line flags win over the file.
	if cli.Jobs != 5 {
		t.Errorf("Jobs = %d, want 5", cli.Jobs)
	}

	if cli.Runtime != "ruby" {
		t.Errorf("Runtime = %q, want ruby", cli.Runtime)
	}

	if !slices.Equal(cli.Suffix, []string{"mjs"}) {
		t.Errorf("Suffix = %v, want [mjs]", cli.Suffix)
	}
}
