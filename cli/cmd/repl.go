package cmd

import (
	"context"

	"github.com/ardnew/l20n/cli/cmd/repl"
	"github.com/ardnew/l20n/lang"
	"github.com/ardnew/l20n/locale"
	"github.com/ardnew/l20n/log"
)

// Repl starts an interactive session over resources.
type Repl struct {
	Data     string `help:"JSON or YAML data file."                       short:"d" type:"path"`
	Locale   string `help:"BCP 47 tag of the locale (default i-default)." short:"l"`
	MaxDepth int    `default:"0" help:"Resolution budget of each entry, 0 for the built-in limit." name:"max-depth"`

	Source []string `arg:"" help:"Source files (.l20n, or wire .json/.yaml) to preload." name:"source" optional:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tag, err := parseTag(r.Locale)
	if err != nil {
		return err
	}

	res := new(lang.Resource)
	if len(r.Source) > 0 {
		if res, err = loadResource(ctx, r.Source, log.Default()); err != nil {
			return err
		}
	}

	in, err := loadData(ctx, r.Data)
	if err != nil {
		return err
	}

	loc := locale.New(tag,
		locale.WithLogger(log.Default()),
		locale.WithMaxDepth(r.MaxDepth))

	return repl.Run(ctx, loc, res, in, kongVar(ctx, CacheIdentifier), log.Default())
}
