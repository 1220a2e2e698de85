package lang

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/l20n/data"
)

// maxSuggestions bounds the identifiers offered with a MissingIdent error.
const maxSuggestions = 3

// bound is a value reached through an entity. While it is being resolved,
// `~` refers to that entity.
type bound struct {
	value Value
	this  *Entity
}

// Resolve performs exactly one resolution step on target, which is an
// [Entry], a [Value], an [Expr] or a [data.Data]:
//
//   - an [*Entity] yields its Value, any other entry yields [data.Null];
//   - a [Value] yields data or the selected hash variant;
//   - an [Expr] yields a Value, data, or the raw Entry of an identifier;
//   - data is returned unchanged.
func Resolve(rc ResolveContext, target any) (any, error) {
	next, err := rc.step(target)
	if b, ok := next.(bound); ok {
		return b.value, err
	}

	return next, err
}

// ResolveData repeats [Resolve] until target yields data. Every step is
// charged against the depth budget of rc, and the first error aborts the
// resolution.
func ResolveData(rc ResolveContext, target any) (data.Data, error) {
	for {
		switch t := target.(type) {
		case data.Data:
			return t, nil
		case bound:
			rc = rc.withThis(t.this)
			target = t.value
		}

		var err error

		if rc, err = rc.descend(); err != nil {
			rc.logger.Trace("resolution budget exhausted",
				slog.Int("max_depth", rc.maxDepth))

			return nil, err
		}

		if target, err = rc.step(target); err != nil {
			return nil, err
		}
	}
}

// reduce steps target until stop accepts the result.
func (rc ResolveContext) reduce(target any, stop func(any) bool) (any, error) {
	for !stop(target) {
		var err error

		if rc, err = rc.descend(); err != nil {
			return nil, err
		}

		if target, err = rc.step(target); err != nil {
			return nil, err
		}
	}

	return target, nil
}

func notExpr(t any) bool {
	_, ok := t.(Expr)

	return !ok
}

func valueOrData(t any) bool {
	switch t.(type) {
	case data.Data, Value, bound:
		return true
	default:
		return false
	}
}

func (rc ResolveContext) step(target any) (any, error) {
	switch t := target.(type) {
	case data.Data:
		return t, nil
	case bound:
		next, err := rc.withThis(t.this).stepValue(t.value)
		if v, ok := next.(Value); ok {
			return bound{value: v, this: t.this}, err
		}

		return next, err
	case Entry:
		return rc.stepEntry(t), nil
	case Value:
		return rc.stepValue(t)
	case Expr:
		return rc.stepExpr(t)
	default:
		return nil, resolveError(WrongType, "")
	}
}

func (rc ResolveContext) stepEntry(e Entry) any {
	if ent, ok := e.(*Entity); ok && ent.Value != nil {
		return bound{value: ent.Value, this: ent}
	}

	return data.Null{}
}

func (rc ResolveContext) stepValue(v Value) (any, error) {
	switch v := v.(type) {
	case *Str:
		return data.Str(v.Text), nil
	case *ComplexStr:
		return rc.render(v)
	case *Hash:
		return rc.selectVariant(v)
	default:
		return nil, resolveError(WrongType, "")
	}
}

// render concatenates the segments of s. Each segment must resolve to a
// string or a number.
func (rc ResolveContext) render(s *ComplexStr) (data.Data, error) {
	var buf strings.Builder

	rc = rc.withoutIndex()

	for _, part := range s.Parts {
		d, err := ResolveData(rc, part)
		if err != nil {
			return nil, err
		}

		switch d := d.(type) {
		case data.Str:
			buf.WriteString(string(d))
		case data.Num:
			buf.WriteString(strconv.FormatInt(int64(d), 10))
		default:
			return nil, resolveError(WrongType, "")
		}
	}

	return data.Str(buf.String()), nil
}

// selectVariant picks the variant of h named by, in order: the index of rc,
// the default key, and the default index.
func (rc ResolveContext) selectVariant(h *Hash) (any, error) {
	index, hasIndex := rc.Index()

	if hasIndex {
		if v, ok := h.Lookup(index); ok {
			return v, nil
		}
	}

	if h.Default != "" {
		if v, ok := h.Lookup(h.Default); ok {
			return v, nil
		}
	}

	if h.DefaultIndex != nil {
		d, err := ResolveData(rc.withoutIndex(), h.DefaultIndex)
		if err != nil {
			return nil, err
		}

		key, ok := d.(data.Str)
		if !ok {
			return nil, resolveError(WrongType, "")
		}

		if v, ok := h.Lookup(string(key)); ok {
			return v, nil
		}

		return nil, resolveError(MissingIndex, string(key))
	}

	return nil, resolveError(MissingIndex, index)
}

func (rc ResolveContext) stepExpr(e Expr) (any, error) {
	switch e := e.(type) {
	case *ValExpr:
		return e.Value, nil

	case *NumExpr:
		return parseNum(e.Text)

	case *BinExpr:
		left, err := ResolveData(rc, e.Left)
		if err != nil {
			return nil, err
		}

		right, err := ResolveData(rc, e.Right)
		if err != nil {
			return nil, err
		}

		return applyBinary(e.Op, left, right)

	case *UnExpr:
		arg, err := ResolveData(rc, e.Arg)
		if err != nil {
			return nil, err
		}

		return applyUnary(e.Op, arg)

	case *VarExpr:
		if d, ok := rc.locals.Lookup(e.Name); ok {
			return orNull(d), nil
		}

		if d, ok := rc.data.Lookup(e.Name); ok {
			return orNull(d), nil
		}

		return nil, resolveError(MissingVar, e.Name)

	case *IdentExpr:
		if ent, ok := rc.env[e.Name]; ok {
			return ent, nil
		}

		err := resolveError(MissingIdent, e.Name)
		err.Suggest = rc.suggest(e.Name)

		return nil, err

	case *CondExpr:
		test, err := ResolveData(rc, e.Test)
		if err != nil {
			return nil, err
		}

		b, ok := test.(data.Bool)
		if !ok {
			return nil, resolveError(WrongType, "")
		}

		if b {
			return e.Cons, nil
		}

		return e.Alt, nil

	case *CallExpr:
		return rc.call(e)

	case *PropExpr:
		return rc.property(e)

	case *AttrExpr:
		return rc.attribute(e)

	case *ParenExpr:
		return e.Expr, nil

	case *GlobalExpr:
		if d, ok := rc.globals.Lookup(e.Name); ok {
			return orNull(d), nil
		}

		return nil, resolveError(MissingVar, "@"+e.Name)

	case *ThisExpr:
		if rc.this == nil {
			return nil, resolveError(WrongType, "~")
		}

		return rc.this, nil

	case *KVExpr:
		return nil, resolveError(WrongType, e.Name)

	default:
		return nil, resolveError(WrongType, "")
	}
}

// call binds the arguments of e to the parameters of the callee macro and
// resolves the macro body in a scope holding only those bindings.
func (rc ResolveContext) call(e *CallExpr) (any, error) {
	callee, err := rc.reduce(e.Callee, notExpr)
	if err != nil {
		return nil, err
	}

	m, ok := callee.(*Macro)
	if !ok {
		return nil, resolveError(WrongType, calleeName(e.Callee))
	}

	names, err := bindArgs(m, e.Args)
	if err != nil {
		return nil, err
	}

	locals := make(data.Map, len(names))

	for i, arg := range e.Args {
		if kv, ok := arg.(*KVExpr); ok {
			arg = kv.Value
		}

		d, err := ResolveData(rc, arg)
		if err != nil {
			return nil, err
		}

		locals[names[i]] = d
	}

	rc.logger.Trace("call macro",
		slog.String("macro", m.ID),
		slog.Int("depth", rc.depth))

	return ResolveData(rc.WithLocals(locals), m.Body)
}

// bindArgs returns the parameter name each argument binds to. Keyword
// arguments bind by name; positional arguments take the remaining
// parameters in order. No argument is evaluated.
func bindArgs(m *Macro, args []Expr) ([]string, error) {
	if len(args) != len(m.Params) {
		return nil, resolveError(WrongNumberOfArgs, m.ID)
	}

	names := make([]string, len(args))
	taken := make(map[string]bool, len(args))

	for i, arg := range args {
		kv, ok := arg.(*KVExpr)
		if !ok {
			continue
		}

		if !slices.ContainsFunc(m.Params, func(p *VarExpr) bool {
			return p.Name == kv.Name
		}) {
			return nil, resolveError(MissingVar, kv.Name)
		}

		if taken[kv.Name] {
			return nil, resolveError(WrongNumberOfArgs, m.ID)
		}

		taken[kv.Name] = true
		names[i] = kv.Name
	}

	next := 0

	for i, arg := range args {
		if _, ok := arg.(*KVExpr); ok {
			continue
		}

		for next < len(m.Params) && taken[m.Params[next].Name] {
			next++
		}

		if next == len(m.Params) {
			return nil, resolveError(WrongNumberOfArgs, m.ID)
		}

		names[i] = m.Params[next].Name
		taken[names[i]] = true
	}

	return names, nil
}

func calleeName(e Expr) string {
	if id, ok := e.(*IdentExpr); ok {
		return id.Name
	}

	return ""
}

// property resolves `obj.key` and `obj[key]`. Map data is indexed directly;
// a value is re-resolved with the key as its index.
func (rc ResolveContext) property(e *PropExpr) (any, error) {
	key, err := rc.key(e.Key, e.Access)
	if err != nil {
		return nil, err
	}

	parent, err := rc.reduce(e.Obj, valueOrData)
	if err != nil {
		return nil, err
	}

	switch p := parent.(type) {
	case data.Map:
		d, ok := p.Lookup(key)
		if !ok {
			return nil, resolveError(MissingIndex, key)
		}

		return orNull(d), nil
	case data.Data:
		return nil, resolveError(WrongType, key)
	default:
		return rc.WithIndex(key).step(p)
	}
}

// attribute resolves `obj::key` and `obj::[key]`.
func (rc ResolveContext) attribute(e *AttrExpr) (any, error) {
	key, err := rc.key(e.Key, e.Access)
	if err != nil {
		return nil, err
	}

	parent, err := rc.reduce(e.Obj, notExpr)
	if err != nil {
		return nil, err
	}

	ent, ok := parent.(*Entity)
	if !ok {
		return nil, resolveError(WrongType, key)
	}

	a, ok := ent.Attr(key)
	if !ok {
		return nil, resolveError(MissingAttr, key)
	}

	return bound{value: a.Value, this: ent}, nil
}

// key returns the literal name of a static key or the string a computed key
// resolves to.
func (rc ResolveContext) key(k Expr, access Access) (string, error) {
	if access == Static {
		if id, ok := k.(*IdentExpr); ok {
			return id.Name, nil
		}

		return "", resolveError(WrongType, "")
	}

	d, err := ResolveData(rc.withoutIndex(), k)
	if err != nil {
		return "", err
	}

	s, ok := d.(data.Str)
	if !ok {
		return "", resolveError(WrongType, "")
	}

	return string(s), nil
}

func (rc ResolveContext) suggest(name string) []string {
	matches := fuzzy.Find(name, rc.env.IDs())
	if len(matches) == 0 {
		return nil
	}

	out := make([]string, 0, min(len(matches), maxSuggestions))
	for _, m := range matches[:cap(out)] {
		out = append(out, m.Str)
	}

	return out
}

func orNull(d data.Data) data.Data {
	if d == nil {
		return data.Null{}
	}

	return d
}

// parseNum converts a numeric literal. Decimal literals are truncated toward
// zero.
func parseNum(text string) (data.Num, error) {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return data.Num(n), nil
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, resolveError(WrongType, text)
	}

	return data.Num(int64(f)), nil
}

func applyBinary(op BinOp, left, right data.Data) (data.Data, error) {
	switch op {
	case OpEq, OpNe:
		eq, ok := equalScalar(left, right)
		if !ok {
			return nil, resolveError(WrongType, string(op))
		}

		return data.Bool(eq == (op == OpEq)), nil

	case OpAnd, OpOr:
		l, lok := left.(data.Bool)
		r, rok := right.(data.Bool)

		if !lok || !rok {
			return nil, resolveError(WrongType, string(op))
		}

		if op == OpAnd {
			return l && r, nil
		}

		return l || r, nil
	}

	l, lok := left.(data.Num)
	r, rok := right.(data.Num)

	if !lok || !rok {
		return nil, resolveError(WrongType, string(op))
	}

	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpRem:
		return arith(op, l, r)
	case OpLt:
		return data.Bool(l < r), nil
	case OpLe:
		return data.Bool(l <= r), nil
	case OpGt:
		return data.Bool(l > r), nil
	case OpGe:
		return data.Bool(l >= r), nil
	default:
		return nil, resolveError(WrongType, string(op))
	}
}

// arith applies an integer operator, failing instead of wrapping when the
// result does not fit in an int64.
func arith(op BinOp, l, r data.Num) (data.Data, error) {
	overflow := false

	switch op {
	case OpAdd:
		overflow = (r > 0 && l > math.MaxInt64-r) || (r < 0 && l < math.MinInt64-r)
	case OpSub:
		overflow = (r < 0 && l > math.MaxInt64+r) || (r > 0 && l < math.MinInt64+r)
	case OpMul:
		if l != 0 && r != 0 {
			p := l * r
			overflow = p/r != l || (l == -1 && r == math.MinInt64) ||
				(r == -1 && l == math.MinInt64)
		}
	case OpDiv, OpRem:
		if r == 0 {
			return nil, resolveError(DivisionByZero, string(op))
		}

		overflow = op == OpDiv && l == math.MinInt64 && r == -1
	}

	if overflow {
		return nil, resolveError(IntegerOverflow, string(op))
	}

	switch op {
	case OpAdd:
		return l + r, nil
	case OpSub:
		return l - r, nil
	case OpMul:
		return l * r, nil
	case OpDiv:
		return l / r, nil
	default:
		return l % r, nil
	}
}

// equalScalar compares two values of the same scalar kind.
func equalScalar(left, right data.Data) (eq, ok bool) {
	switch l := left.(type) {
	case data.Bool:
		r, ok := right.(data.Bool)

		return ok && l == r, ok
	case data.Str:
		r, ok := right.(data.Str)

		return ok && l == r, ok
	case data.Num:
		r, ok := right.(data.Num)

		return ok && l == r, ok
	default:
		return false, false
	}
}

func applyUnary(op UnOp, arg data.Data) (data.Data, error) {
	switch op {
	case OpPlus, OpMinus:
		n, ok := arg.(data.Num)
		if !ok {
			return nil, resolveError(WrongType, string(op))
		}

		if op == OpMinus {
			if n == math.MinInt64 {
				return nil, resolveError(IntegerOverflow, string(op))
			}

			return -n, nil
		}

		return n, nil
	case OpNot:
		b, ok := arg.(data.Bool)
		if !ok {
			return nil, resolveError(WrongType, string(op))
		}

		return !b, nil
	default:
		return nil, resolveError(WrongType, string(op))
	}
}

// Resolve resolves the entry id of env to data. Resolution errors name the
// entry; an id not present in env yields [ErrUnknownID].
func (env Env) Resolve(
	ctx context.Context,
	id string,
	in data.Map,
	opts ...Option,
) (data.Data, error) {
	rc := NewResolveContext(env, in, opts...)

	ent, ok := env[id]
	if !ok {
		return nil, ErrUnknownID.Wrap(errors.New(strconv.Quote(id))).
			With(slog.String("id", id))
	}

	d, err := ResolveData(rc, ent)
	if err != nil {
		var re *ResolveError
		if errors.As(err, &re) && re.Entry == "" {
			re.Entry = id
		}

		rc.logger.TraceContext(ctx, "resolve failed",
			slog.String("id", id),
			slog.Any("error", err))

		return nil, err
	}

	rc.logger.TraceContext(ctx, "resolve complete",
		slog.String("id", id),
		slog.String("type", data.TypeName(d)))

	return d, nil
}

// ResolveAll resolves every entry of env. Macros resolve to [data.Null].
func (env Env) ResolveAll(
	ctx context.Context,
	in data.Map,
	opts ...Option,
) (data.Map, error) {
	out := make(data.Map, len(env))

	for _, id := range env.IDs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		d, err := env.Resolve(ctx, id, in, opts...)
		if err != nil {
			return nil, err
		}

		out[id] = d
	}

	return out, nil
}

// Eval resolves a standalone expression against env.
func (env Env) Eval(
	ctx context.Context,
	e Expr,
	in data.Map,
	opts ...Option,
) (data.Data, error) {
	rc := NewResolveContext(env, in, opts...)

	d, err := ResolveData(rc, e)
	if err != nil {
		rc.logger.TraceContext(ctx, "eval failed", slog.Any("error", err))

		return nil, err
	}

	return d, nil
}
