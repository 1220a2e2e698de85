package cli

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/l20n/data"
	"github.com/ardnew/l20n/lang"
	"github.com/ardnew/l20n/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads flag defaults from
// an l20n resource.
//
// Each entity of the resource that resolves without input data becomes the
// value of the flag with the same name. Flag names may be written with hyphens
// or underscores:
//
//	<log-level "debug">
//	<log_format "text">
//	<log-pretty "false">
//	<pprof-mode "cpu">
//
// Macros and entities that fail to resolve are ignored. A resource that fails to parse yields an empty configuration.
// Command-line flags override config file values.
func resolve(ctx context.Context) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		res, err := lang.ParseReader(ctx, r)
		if err != nil {
			log.WarnContext(ctx, "ignoring config",
				slog.Any("error", err))

			return config{}, nil
		}

		return configFrom(ctx, lang.Compile(res)), nil
	}
}

// config implements [kong.Resolver] for l20n configs.
type config map[string]any

func configFrom(ctx context.Context, env lang.Env) config {
	cfg := make(config, len(env))

	for _, id := range env.IDs() {
		if _, ok := env[id].(*lang.Entity); !ok {
			continue
		}

		d, err := env.Resolve(ctx, id, data.Map{})
		if err != nil {
			log.DebugContext(ctx, "ignoring config entry",
				slog.String("id", id),
				slog.Any("error", err))

			continue
		}

		if s, ok := d.(data.Str); ok {
			cfg[id] = string(s)
		}
	}

	return cfg
}

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	for _, name := range []string{
		flag.Name,
		strings.ReplaceAll(flag.Name, "-", "_"),
		strings.ReplaceAll(flag.Name, "_", "-"),
	} {
		if value, ok := c[name]; ok {
			return value, nil
		}
	}

	return nil, nil
}
