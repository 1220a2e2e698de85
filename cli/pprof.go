//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/l20n/log"
	"github.com/ardnew/l20n/profile"
)

type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModeEnum}" help:"Write a runtime profile of the given kind." placeholder:"MODE" short:"p"`
	Dir  string `default:"${pprofDir}"                          help:"Directory receiving profile output."                          type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	modes := slices.Sorted(slices.Values(profile.Modes()))

	return kong.Vars{
		"pprofModeEnum": strings.Join(modes, ","),
		"pprofDir":      filepath.Join(cacheDir(), profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{
		Key:         "pprof",
		Title:       "Profiling options",
		Description: "Only available in builds tagged " + profile.Tag + ".",
	}
}

// start begins the configured profile and returns the func that writes it.
func (f pprofConfig) start(ctx context.Context) (stop func()) {
	if f.Mode == "" {
		return func() {}
	}

	logger := log.With(slog.String("mode", f.Mode), slog.String("dir", f.Dir))
	logger.DebugContext(ctx, "profiling started")

	p := profile.Profiler{Mode: f.Mode, Dir: f.Dir, Quiet: true}.Start()

	return func() {
		p.Stop()
		logger.InfoContext(ctx, "profile written")
	}
}
