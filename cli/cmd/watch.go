package cmd

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ardnew/l20n/data"
	"github.com/ardnew/l20n/lang"
	"github.com/ardnew/l20n/locale"
	"github.com/ardnew/l20n/log"
	"github.com/ardnew/l20n/watch"
)

// Watch re-resolves resources and prints the result whenever a source or the
// data file changes.
type Watch struct {
	Data     string        `help:"JSON or YAML data file."                              short:"d" type:"path"`
	Locale   string        `help:"BCP 47 tag of the locale (default i-default)."        short:"l"`
	Output   string        `default:"json" enum:"json,yaml,text" help:"Output format (${enum})." short:"o"`
	Indent   int           `default:"2"    help:"Indent width, or 0 for compact output." short:"i"`
	MaxDepth int           `default:"0"    help:"Resolution budget of each entry, 0 for the built-in limit." name:"max-depth"`
	Interval time.Duration `default:"100ms" help:"Quiet period before a change is reloaded."`

	Path []string `arg:"" help:"Source files or directories of .l20n files." name:"path"`
}

// Run executes the watch command.
func (w *Watch) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tag, err := parseTag(w.Locale)
	if err != nil {
		return err
	}

	paths := slices.Clone(w.Path)
	if w.Data != "" && w.Data != stdinSource {
		paths = append(paths, w.Data)
	}

	watcher, err := watch.New(paths,
		watch.WithInterval(w.Interval),
		watch.WithLogger(log.Default()))
	if err != nil {
		return ErrWatch.Wrap(err)
	}

	defer func() { _ = watcher.Stop() }()

	render := func(ctx context.Context, changed []string) error {
		if err := w.render(ctx, locale.New(tag,
			locale.WithLogger(log.Default()),
			locale.WithMaxDepth(w.MaxDepth))); err != nil {
			return err
		}

		log.InfoContext(ctx, "rendered", slog.Any("changed", changed))

		return nil
	}

	if err := render(ctx, nil); err != nil {
		log.ErrorContext(ctx, "render failed", slog.Any("error", err))
	}

	if err := watcher.Watch(ctx, render); err != nil {
		return ErrWatch.Wrap(err)
	}

	return nil
}

// render loads the current sources and data into loc and writes the result.
func (w *Watch) render(ctx context.Context, loc *locale.Locale) error {
	sources, err := expandSources(w.Path, watch.DefaultExtensions)
	if err != nil {
		return err
	}

	res, err := loadResource(ctx, sources, log.Default())
	if err != nil {
		return err
	}

	loc.AddEnv(ctx, lang.Compile(res))

	var in data.Map
	if in, err = loadData(ctx, w.Data); err != nil {
		return err
	}

	out, err := resolveEntries(ctx, loc, nil, in)
	if err != nil {
		return err
	}

	if err := writeData(ctx, outputFrom(ctx), out, w.Output, w.Indent); err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("format", w.Output))
	}

	return nil
}

// expandSources replaces each directory of paths with the sorted files below
// it having one of the extensions exts. Hidden files and directories are
// skipped.
func expandSources(paths, exts []string) ([]string, error) {
	var out []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, ErrReadSource.Wrap(err).With(slog.String("path", path))
		}

		if !info.IsDir() {
			out = append(out, path)

			continue
		}

		var found []string

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if p != path && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}

				return nil
			}

			if !d.IsDir() && slices.Contains(exts, strings.ToLower(filepath.Ext(p))) {
				found = append(found, p)
			}

			return nil
		})
		if err != nil {
			return nil, ErrReadSource.Wrap(err).With(slog.String("path", path))
		}

		slices.Sort(found)
		out = append(out, found...)
	}

	return out, nil
}
