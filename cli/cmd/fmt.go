package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/l20n/lang"
	"github.com/ardnew/l20n/log"
)

// Fmt reads resources and prints them in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as l20n source (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON wire AST."`
	YAML   YAML   `cmd:""                    help:"Format as YAML wire AST."`
}

// formatSource holds the flags shared by every fmt subcommand.
type formatSource struct {
	Indent int `default:"2" help:"Indent width for formatted output." short:"i"`

	Source []string `arg:"" default:"-" help:"Source files (.l20n, or wire .json/.yaml) or '-' for stdin." name:"source"`
}

type formatFunc func(*lang.Resource, context.Context, io.Writer, int) error

func (f *formatSource) run(ctx context.Context, name string, format formatFunc) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	res, err := loadResource(ctx, f.Source, log.Default())
	if err != nil {
		return err
	}

	if err := format(res, ctx, outputFrom(ctx), f.Indent); err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("format", name))
	}

	return nil
}

// Native formats input as l20n source text.
type Native struct {
	Input formatSource `embed:""`
}

// Run executes the native format command.
func (n *Native) Run(ctx context.Context) error {
	return n.Input.run(ctx, "native", (*lang.Resource).Format)
}

// JSON formats input as the JSON wire AST.
type JSON struct {
	Input formatSource `embed:""`
}

// Run executes the json format command.
func (j *JSON) Run(ctx context.Context) error {
	return j.Input.run(ctx, "json", (*lang.Resource).FormatJSON)
}

// YAML formats input as the YAML wire AST.
type YAML struct {
	Input formatSource `embed:""`
}

// Run executes the yaml format command.
func (y *YAML) Run(ctx context.Context) error {
	return y.Input.run(ctx, "yaml", (*lang.Resource).FormatYAML)
}
