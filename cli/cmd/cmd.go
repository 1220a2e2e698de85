package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/l20n/data"
	"github.com/ardnew/l20n/lang"
	"github.com/ardnew/l20n/log"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type outputKey struct{}

// WithOutput returns a new context.Context whose commands write their results
// to w instead of os.Stdout.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// kongVar returns the value of the kong variable name, or "".
func kongVar(ctx context.Context, name string) string {
	ktx := kongContextFrom(ctx)
	if ktx == nil || ktx.Model == nil {
		return ""
	}

	return ktx.Model.Vars()[name]
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// uniqueSources returns sources with duplicates removed. Paths naming the same
// file through symlinks or relative components are duplicates, and every "-"
// collapses into a single stdin source placed last.
func uniqueSources(sources []string) ([]string, error) {
	var (
		out      = make([]string, 0, len(sources))
		seen     = make(map[fileKey]bool)
		hasStdin bool
	)

	for _, src := range sources {
		if src == stdinSource {
			hasStdin = true

			continue
		}

		abs, err := filepath.Abs(src)
		if err != nil {
			return nil, ErrReadSource.Wrap(err).With(slog.String("path", src))
		}

		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return nil, ErrReadSource.Wrap(err).With(slog.String("path", src))
		}

		info, err := os.Stat(resolved)
		if err != nil {
			return nil, ErrReadSource.Wrap(err).With(slog.String("path", src))
		}

		if key, ok := makeFileKey(info); ok {
			if seen[key] {
				continue
			}

			seen[key] = true
		}

		out = append(out, src)
	}

	if hasStdin {
		out = append(out, stdinSource)
	}

	return out, nil
}

// isWire reports whether path holds a serialized resource rather than l20n
// source text.
func isWire(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// loadResource reads each source in order and concatenates their entries.
// Sources ending in .json, .yaml or .yml hold the wire form of a resource;
// anything else, including stdin, is l20n source text.
func loadResource(
	ctx context.Context,
	sources []string,
	logger log.Logger,
) (*lang.Resource, error) {
	sources, err := uniqueSources(sources)
	if err != nil {
		return nil, err
	}

	res := new(lang.Resource)

	for _, src := range sources {
		part, err := loadOne(ctx, src, logger)
		if err != nil {
			return nil, err
		}

		res.Entries = append(res.Entries, part.Entries...)
	}

	logger.DebugContext(ctx, "resource loaded",
		slog.Any("sources", sources),
		slog.Int("entries", len(res.Entries)))

	return res, nil
}

func loadOne(
	ctx context.Context,
	src string,
	logger log.Logger,
) (*lang.Resource, error) {
	r, closer, err := openSource(src)
	if err != nil {
		return nil, err
	}
	defer closer()

	if !isWire(src) {
		res, err := lang.ParseReader(ctx, r, lang.WithLogger(logger))
		if err != nil {
			return nil, ErrParseSource.Wrap(err).With(slog.String("path", src))
		}

		return res, nil
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadSource.Wrap(err).With(slog.String("path", src))
	}

	decode := lang.UnmarshalWire
	if data.FormatOf(src) == data.FormatYAML {
		decode = lang.UnmarshalWireYAML
	}

	res, err := decode(b)
	if err != nil {
		return nil, ErrParseSource.Wrap(err).With(slog.String("path", src))
	}

	return res, nil
}

// openSource opens a source path, or stdin for "-".
func openSource(src string) (io.Reader, func(), error) {
	if src == stdinSource {
		return os.Stdin, func() {}, nil
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, nil, ErrReadSource.Wrap(err).With(slog.String("path", src))
	}

	return f, func() { _ = f.Close() }, nil
}

// loadData reads the JSON or YAML data file at path, or stdin for "-".
// An empty path yields an empty map.
func loadData(ctx context.Context, path string) (data.Map, error) {
	if path == "" {
		return data.Map{}, nil
	}

	r, closer, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer closer()

	m, err := data.Load(ctx, r, data.FormatOf(path))
	if err != nil {
		return nil, ErrReadData.Wrap(err).With(slog.String("path", path))
	}

	return m, nil
}
