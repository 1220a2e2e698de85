//go:build pprof

package profile

import (
	"maps"
	"slices"

	"github.com/pkg/profile"

	_ "net/http/pprof" // register HTTP handlers
)

const enabled = true

// Modes returns the supported profiling modes in sorted order.
func Modes() []string {
	return slices.Sorted(maps.Keys(modes))
}

var modes = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

func start(p Profiler) Stopper {
	mode, ok := modes[p.Mode]
	if !ok {
		return ignore{}
	}

	opts := []func(*profile.Profile){mode, profile.NoShutdownHook}

	if p.Dir != "" {
		opts = append(opts, profile.ProfilePath(p.Dir))
	}

	if p.Quiet {
		opts = append(opts, profile.Quiet)
	}

	return profile.Start(opts...)
}
