package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/l20n/log"
)

// Parse reads resources and prints their wire AST as JSON.
type Parse struct {
	Silence bool `help:"Only report errors, print nothing on success." short:"s"`
	Indent  int  `default:"2" help:"Indent width for JSON output."     short:"i"`

	Source []string `arg:"" default:"-" help:"Source files (.l20n, or wire .json/.yaml) or '-' for stdin." name:"source"`
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	res, err := loadResource(ctx, p.Source, log.Default())
	if err != nil {
		return err
	}

	if p.Silence {
		log.DebugContext(ctx, "parse ok", slog.Int("entries", len(res.Entries)))

		return nil
	}

	if err := res.FormatJSON(ctx, outputFrom(ctx), p.Indent); err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("format", "json"))
	}

	return nil
}
