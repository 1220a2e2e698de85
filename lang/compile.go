package lang

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

// Env is a compiled environment mapping entry ids to entries. It is never
// modified after compilation and may be shared by concurrent resolutions.
type Env map[string]Entry

// Compile builds the environment of res. Comments and imports are skipped,
// and an entry replaces any earlier entry with the same id.
//
// Entities and attributes whose value is a hash receive their first index as
// the hash's default index; nested hashes receive the remaining indices in
// order. res itself is left unchanged.
func Compile(res *Resource) Env {
	env := make(Env, len(res.Entries))

	for _, e := range res.Entries {
		switch e := e.(type) {
		case *Entity:
			env[e.ID] = compileEntity(e)
		case *Macro:
			env[e.ID] = e
		}
	}

	return env
}

// CompileString parses and compiles src.
func CompileString(ctx context.Context, src string, opts ...Option) (Env, error) {
	res, err := Parse(ctx, src, opts...)
	if err != nil {
		return nil, err
	}

	env := Compile(res)

	makeOptions(opts...).logger.TraceContext(ctx, "compile complete",
		slog.Int("entry_count", len(env)))

	return env, nil
}

func compileEntity(e *Entity) *Entity {
	if !needsIndices(e.Value, e.Indices) && !slices.ContainsFunc(e.Attrs, attrNeedsIndices) {
		return e
	}

	out := *e
	out.Value = withDefaultIndices(e.Value, e.Indices)

	if len(e.Attrs) > 0 {
		out.Attrs = make([]*Attr, len(e.Attrs))

		for i, a := range e.Attrs {
			out.Attrs[i] = &Attr{
				ID:      a.ID,
				Value:   withDefaultIndices(a.Value, a.Indices),
				Indices: a.Indices,
			}
		}
	}

	return &out
}

func attrNeedsIndices(a *Attr) bool {
	return needsIndices(a.Value, a.Indices)
}

func needsIndices(v Value, indices []Expr) bool {
	_, ok := v.(*Hash)

	return ok && len(indices) > 0
}

// withDefaultIndices returns v with indices distributed over nested hashes.
func withDefaultIndices(v Value, indices []Expr) Value {
	h, ok := v.(*Hash)
	if !ok || len(indices) == 0 {
		return v
	}

	out := &Hash{
		Variants:     make([]*Variant, len(h.Variants)),
		Default:      h.Default,
		DefaultIndex: indices[0],
	}

	for i, variant := range h.Variants {
		out.Variants[i] = &Variant{
			Key:   variant.Key,
			Value: withDefaultIndices(variant.Value, indices[1:]),
		}
	}

	return out
}

// IDs returns the ids of env in sorted order.
func (env Env) IDs() []string {
	return slices.Sorted(maps.Keys(env))
}

// Merge returns a new environment holding the entries of env overridden by
// those of other.
func (env Env) Merge(other Env) Env {
	out := make(Env, len(env)+len(other))
	maps.Copy(out, env)
	maps.Copy(out, other)

	return out
}
