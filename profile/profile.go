package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

// Profiler describes one profiling session.
type Profiler struct {
	// Mode is one of [Modes]. An empty or unknown mode disables profiling.
	Mode string
	// Dir is the output directory. Empty selects the working directory.
	Dir string
	// Quiet suppresses the profiler's own start and stop messages.
	Quiet bool
}

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Start begins profiling. Start and the returned Stopper are always safe to
// call; without the pprof build tag both do nothing.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

// Enabled reports whether profiling support was compiled in.
func Enabled() bool { return enabled }

type ignore struct{}

func (ignore) Stop() {}
