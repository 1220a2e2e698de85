package lang

import (
	"github.com/ardnew/l20n/data"
	"github.com/ardnew/l20n/log"
)

// ResolveContext is the immutable state of one resolution: the environment,
// the caller's input data, the locals of the innermost macro call, and the
// index requested by an enclosing property access.
//
// The With methods return modified copies; a ResolveContext is never changed
// in place, so derived contexts cannot leak into their parents.
type ResolveContext struct {
	env      Env
	data     data.Map
	locals   data.Map
	index    *string
	globals  data.Map
	this     *Entity
	depth    int
	maxDepth int
	logger   log.Logger
}

// NewResolveContext returns a context resolving against env with input data
// in. Only [WithMaxDepth], [WithGlobals] and [WithLogger] affect the context.
func NewResolveContext(env Env, in data.Map, opts ...Option) ResolveContext {
	o := makeOptions(opts...)

	return ResolveContext{
		env:      env,
		data:     in,
		globals:  o.globals,
		maxDepth: o.maxDepth,
		logger:   o.logger,
	}
}

// Env returns the environment being resolved against.
func (rc ResolveContext) Env() Env { return rc.env }

// Data returns the caller's input data.
func (rc ResolveContext) Data() data.Map { return rc.data }

// Locals returns the bindings of the innermost macro call, or nil outside a
// macro body.
func (rc ResolveContext) Locals() data.Map { return rc.locals }

// Index returns the index requested by an enclosing property access.
func (rc ResolveContext) Index() (string, bool) {
	if rc.index == nil {
		return "", false
	}

	return *rc.index, true
}

// WithLocals returns a copy of rc whose locals are replaced by locals and
// whose index is cleared.
func (rc ResolveContext) WithLocals(locals data.Map) ResolveContext {
	rc.locals = locals
	rc.index = nil

	return rc
}

// WithIndex returns a copy of rc whose index is key.
func (rc ResolveContext) WithIndex(key string) ResolveContext {
	rc.index = &key

	return rc
}

func (rc ResolveContext) withoutIndex() ResolveContext {
	rc.index = nil

	return rc
}

func (rc ResolveContext) withThis(e *Entity) ResolveContext {
	rc.this = e

	return rc
}

// descend charges one step of the resolution budget.
func (rc ResolveContext) descend() (ResolveContext, error) {
	rc.depth++

	if rc.maxDepth > 0 && rc.depth > rc.maxDepth {
		return rc, resolveError(DepthExceeded, "")
	}

	return rc, nil
}
