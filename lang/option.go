package lang

import (
	"github.com/ardnew/l20n/data"
	"github.com/ardnew/l20n/log"
)

// DefaultMaxDepth is the default resolution budget: the number of nested
// resolution steps allowed along one path before resolution fails with
// DepthExceeded. Users may modify this before resolving.
var DefaultMaxDepth = 512

// options holds parse, compile and resolve configuration.
type options struct {
	logger   log.Logger
	maxDepth int
	cache    bool
	globals  data.Map
}

// Option configures parsing, compilation or resolution behavior.
type Option func(*options)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxDepth sets the resolution budget. Values below 1 restore
// [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithCache controls whether [ParseReader] and [ParseBytes] consult the
// parse cache. Caching is enabled by default.
func WithCache(enable bool) Option {
	return func(o *options) {
		o.cache = enable
	}
}

// WithGlobals sets the values visible to `@name` expressions.
func WithGlobals(globals data.Map) Option {
	return func(o *options) {
		o.globals = globals
	}
}

func makeOptions(opts ...Option) options {
	o := options{
		maxDepth: DefaultMaxDepth,
		cache:    true,
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.maxDepth < 1 {
		o.maxDepth = DefaultMaxDepth
	}

	return o
}
