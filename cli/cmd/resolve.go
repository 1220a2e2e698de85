package cmd

import (
	"context"
	"log/slog"

	"golang.org/x/text/language"

	"github.com/ardnew/l20n/data"
	"github.com/ardnew/l20n/lang"
	"github.com/ardnew/l20n/locale"
	"github.com/ardnew/l20n/log"
)

// Resolve resolves the entries of resources against a data file.
type Resolve struct {
	Data     string `help:"JSON or YAML data file, or '-' for stdin."             short:"d" type:"path"`
	Locale   string `help:"BCP 47 tag of the locale (default i-default)."         short:"l"`
	Output   string `default:"json" enum:"json,yaml,text" help:"Output format (${enum})." short:"o"`
	Indent   int    `default:"2"    help:"Indent width, or 0 for compact output." short:"i"`
	MaxDepth int    `default:"0"    help:"Resolution budget of each entry, 0 for the built-in limit." name:"max-depth"`

	Source string   `arg:"" help:"Source file (.l20n, or wire .json/.yaml) or '-' for stdin." name:"source"`
	ID     []string `arg:"" help:"Entry ids to resolve (default all)."                        name:"id" optional:""`
}

// Run executes the resolve command.
func (r *Resolve) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	loc, err := r.locale(ctx)
	if err != nil {
		return err
	}

	in, err := loadData(ctx, r.Data)
	if err != nil {
		return err
	}

	out, err := resolveEntries(ctx, loc, r.ID, in)
	if err != nil {
		return err
	}

	if err := writeData(ctx, outputFrom(ctx), out, r.Output, r.Indent); err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("format", r.Output))
	}

	return nil
}

// locale loads the sources of r into a new locale.
func (r *Resolve) locale(ctx context.Context) (*locale.Locale, error) {
	tag, err := parseTag(r.Locale)
	if err != nil {
		return nil, err
	}

	res, err := loadResource(ctx, []string{r.Source}, log.Default())
	if err != nil {
		return nil, err
	}

	loc := locale.New(tag,
		locale.WithLogger(log.Default()),
		locale.WithMaxDepth(r.MaxDepth))
	loc.AddEnv(ctx, lang.Compile(res))

	return loc, nil
}

// parseTag parses a BCP 47 language tag. The empty string and "i-default"
// name the default locale.
func parseTag(s string) (language.Tag, error) {
	if s == "" || s == locale.DefaultName {
		return language.Und, nil
	}

	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, ErrInvalidLocale.Wrap(err).With(slog.String("locale", s))
	}

	return tag, nil
}

// resolveEntries resolves ids of loc against in, or every entry when ids is
// empty.
func resolveEntries(
	ctx context.Context,
	loc *locale.Locale,
	ids []string,
	in data.Map,
) (data.Map, error) {
	if len(ids) == 0 {
		out, err := loc.Resolve(ctx, in)
		if err != nil {
			return nil, ErrResolve.Wrap(err)
		}

		return out, nil
	}

	out := make(data.Map, len(ids))

	for _, id := range ids {
		d, err := loc.Entry(ctx, id, in)
		if err != nil {
			return nil, ErrResolve.Wrap(err).With(slog.String("id", id))
		}

		out[id] = d
	}

	return out, nil
}
