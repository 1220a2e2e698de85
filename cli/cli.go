package cli

import (
	"context"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/l20n/cli/cmd"
	"github.com/ardnew/l20n/pkg"
)

// CLI is the top-level command-line interface for l20n.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Parse   cmd.Parse   `cmd:"" default:"withargs" help:"Parse resources and print their AST"`
	Resolve cmd.Resolve `cmd:""                    help:"Resolve the entries of a resource"`
	Fmt     cmd.Fmt     `cmd:""                    help:"Format resources"`
	Watch   cmd.Watch   `cmd:""                    help:"Resolve resources whenever they change"`
	Repl    cmd.Repl    `cmd:""                    help:"Interactive resource evaluator"`
}

// Run executes the l20n CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Configure the logger before kong parses so that config file and parse
	// errors are reported in the requested format.
	cli.Log.scan(args)

	parser, err := kong.New(&cli, cli.options(ctx, exit)...)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	if err := ktx.Run(ctx, &cli); err != nil {
		cmd.Report(os.Stderr, err)

		return err
	}

	return nil
}

func (cli *CLI) options(ctx context.Context, exit func(int)) []kong.Option {
	config := configPath(baseConfig)

	return []kong.Option{
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			Tree:                true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(kong.JSON, config+".json"),
		kong.Configuration(resolve(ctx), config),
		kong.Vars{
			"version":            pkg.Version,
			cmd.ConfigIdentifier: config,
			cmd.CacheIdentifier:  cacheDir(),
		}.
			CloneWith(cli.Log.vars()).
			CloneWith(cli.Pprof.vars()),
	}
}
