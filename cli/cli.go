package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/envsolve/cli/cmd"
	"github.com/ardnew/envsolve/manifest"
	"github.com/ardnew/envsolve/pkg"
)

// CLI is the top-level command-line interface for envsolve.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	File    string   `default:"${defaultFile}" help:"Service definition file"                                   short:"f" type:"path"`
	Root    string   `                         help:"Service directory (default: directory of --file)"           short:"C" type:"path"`
	Runtime string   `                         help:"Override the provider runtime"                              short:"r"`
	Syntax  []string `                         help:"Runtime syntax table file(s) merged over the built-in table"           type:"existingfile"`
	Suffix  []string `                         help:"Candidate file suffix(es) tried before the runtime's own"`
	Jobs    int      `default:"0"              help:"Handlers resolved concurrently (0: one per CPU)"            short:"j"`

	Init     cmd.Init     `cmd:"" help:"Initialize configuration file"`
	Runtimes cmd.Runtimes `cmd:"" help:"List supported runtimes"`
	Report   cmd.Report   `cmd:"" help:"Report the variables each handler references"`
	Browse   cmd.Browse   `cmd:"" help:"Browse handler usage interactively"`

	Solve cmd.Solve `cmd:"" default:"withargs" help:"Rewrite per-function environments"`
}

// options returns the service selection shared by every command.
func (c *CLI) options() cmd.Options {
	return cmd.Options{
		File:    c.File,
		Root:    c.Root,
		Runtime: c.Runtime,
		Syntax:  c.Syntax,
		Suffix:  c.Suffix,
		Jobs:    c.Jobs,
	}
}

// Run executes the envsolve CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := pkg.MkdirAll()
	if err != nil {
		return err
	}

	configFilePath := pkg.ConfigPath(cmd.ConfigIdentifier)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"defaultFile":        manifest.DefaultFile,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position. TextUnmarshaler on logFormat/logLevel handles those flags
	// during normal parsing, but this early scan also catches boolean flags
	// like --log-pretty.
	cli.Log.scan(args)

	parser, err := newParser(&cli, vars,
		kong.Exit(exit),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(cmd.ConfigIdentifier), configFilePath+cmd.ConfigExt),
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithOptions(ctx, cli.options())

	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx, ktx.Command())()

	// Commands take a context.Context; bind the interface type so the
	// concrete context value resolves.
	ktx.BindTo(ctx, (*context.Context)(nil))

	return ktx.Run()
}

// newParser builds the kong parser shared by [Run] and tests.
func newParser(cli *CLI, vars kong.Vars, opts ...kong.Option) (*kong.Kong, error) {
	return kong.New(cli,
		append([]kong.Option{
			kong.Name(pkg.Name),
			kong.Description(pkg.Description),
			kong.UsageOnError(),
			kong.ExplicitGroups(
				[]kong.Group{cli.Log.group(), cli.Pprof.group()},
			),
			kong.ConfigureHelp(
				kong.HelpOptions{
					Compact:             true,
					Summary:             true,
					Tree:                true,
					FlagsLast:           false,
					NoAppSummary:        false,
					NoExpandSubcommands: true,
				}),
			vars,
		}, opts...)...,
	)
}
