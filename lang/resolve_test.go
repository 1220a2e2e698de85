package lang

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/ardnew/l20n/data"
)

const sampleSource = `
<brand 'Rust'
       long: 'Rust Lang'>
<hi 'Hello, {{ brand::long }}!'>
<fac($n) { $n == 0 ? 1 : $n * fac($n - 1) }>
<factorial 'Factorial of {{ $number }} is {{ fac($number) }}.'>
<many['zero'] { zero: 'none', one: 'one', many: 'too many' }>
<mail 'Email in your inbox: {{ many.many }}.'>
`

func compileTest(t testing.TB, src string) Env {
	t.Helper()

	env, err := CompileString(context.Background(), src)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	return env
}

func TestEnv_Resolve(t *testing.T) {
	tests := []struct {
		name string
		src  string
		id   string
		in   data.Map
		opts []Option
		want data.Data
		err  error
	}{
		{
			name: "attribute in placeable",
			src:  sampleSource,
			id:   "hi",
			want: data.Str("Hello, Rust Lang!"),
		},
		{
			name: "positional default index",
			src:  sampleSource,
			id:   "many",
			want: data.Str("none"),
		},
		{
			name: "property access selects variant",
			src:  sampleSource,
			id:   "mail",
			want: data.Str("Email in your inbox: too many."),
		},
		{
			name: "recursive macro",
			src:  sampleSource,
			id:   "factorial",
			in:   data.Map{"number": data.Num(3)},
			want: data.Str("Factorial of 3 is 6."),
		},
		{
			name: "explicit index wins over default key",
			src:  `<h { *a: 'A', b: 'B' }> <x '{{ h.b }}'>`,
			id:   "x",
			want: data.Str("B"),
		},
		{
			name: "default key",
			src:  `<h { *a: 'A', b: 'B' }>`,
			id:   "h",
			want: data.Str("A"),
		},
		{
			name: "default key before default index",
			src:  `<h['b'] { *a: 'A', b: 'B' }>`,
			id:   "h",
			want: data.Str("A"),
		},
		{
			name: "missing explicit index falls back to default",
			src:  `<h { *a: 'A', b: 'B' }> <x '{{ h.c }}'>`,
			id:   "x",
			want: data.Str("A"),
		},
		{
			name: "default index from variable",
			src:  `<mail[$n] { zero: '0', many: 'lots' }>`,
			id:   "mail",
			in:   data.Map{"n": data.Str("many")},
			want: data.Str("lots"),
		},
		{
			name: "default index must be a string",
			src:  `<mail[$n] { zero: '0', many: 'lots' }>`,
			id:   "mail",
			in:   data.Map{"n": data.Num(1)},
			err:  &ResolveError{Kind: WrongType},
		},
		{
			name: "default index not found",
			src:  `<mail[$n] { zero: '0' }>`,
			id:   "mail",
			in:   data.Map{"n": data.Str("few")},
			err:  &ResolveError{Kind: MissingIndex, Name: "few"},
		},
		{
			name: "no index at all",
			src:  `<h { a: 'A' }>`,
			id:   "h",
			err:  &ResolveError{Kind: MissingIndex},
		},
		{
			name: "nested default indices",
			src:  `<n['a', 'y'] { a: { x: 'ax', y: 'ay' }, b: 'b' }>`,
			id:   "n",
			want: data.Str("ay"),
		},
		{
			name: "attribute default index",
			src:  `<b 'B' forms['two']: { one: '1', two: '2' }> <x '{{ b::forms }}'>`,
			id:   "x",
			want: data.Str("2"),
		},
		{
			name: "computed attribute key",
			src:  `<b 'B' long: 'Bee'> <x '{{ b::['long'] }}'>`,
			id:   "x",
			want: data.Str("Bee"),
		},
		{
			name: "map data property",
			src:  `<u '{{ $user.name }} {{ $user['age'] }}'>`,
			id:   "u",
			in: data.Map{"user": data.Map{
				"name": data.Str("Ana"),
				"age":  data.Num(30),
			}},
			want: data.Str("Ana 30"),
		},
		{
			name: "missing map key",
			src:  `<u '{{ $user.name }}'>`,
			id:   "u",
			in:   data.Map{"user": data.Map{}},
			err:  &ResolveError{Kind: MissingIndex, Name: "name"},
		},
		{
			name: "property of scalar data",
			src:  `<u '{{ $user.name }}'>`,
			id:   "u",
			in:   data.Map{"user": data.Str("Ana")},
			err:  &ResolveError{Kind: WrongType},
		},
		{
			name: "missing variable",
			src:  `<x 'Hi {{ $who }}'>`,
			id:   "x",
			err:  &ResolveError{Kind: MissingVar, Name: "who"},
		},
		{
			name: "missing identifier",
			src:  `<x 'Hi {{ nobody }}'>`,
			id:   "x",
			err:  &ResolveError{Kind: MissingIdent, Name: "nobody"},
		},
		{
			name: "missing attribute",
			src:  `<b 'B'> <x '{{ b::long }}'>`,
			id:   "x",
			err:  &ResolveError{Kind: MissingAttr, Name: "long"},
		},
		{
			name: "attribute of macro",
			src:  `<f($a) { $a }> <x '{{ f::long }}'>`,
			id:   "x",
			err:  &ResolveError{Kind: WrongType},
		},
		{
			name: "wrong arity evaluates no argument",
			src:  `<f($a) { $a }> <x '{{ f(1, $missing) }}'>`,
			id:   "x",
			err:  &ResolveError{Kind: WrongNumberOfArgs, Name: "f"},
		},
		{
			name: "keyword arguments bind by name",
			src:  `<sub($a, $b) { $a - $b }> <x '{{ sub(b: 1, a: 5) }}'>`,
			id:   "x",
			want: data.Str("4"),
		},
		{
			name: "keyword and positional arguments",
			src:  `<sub($a, $b) { $a - $b }> <x '{{ sub(b: 1, 5) }}'>`,
			id:   "x",
			want: data.Str("4"),
		},
		{
			name: "unknown keyword argument",
			src:  `<f($a) { $a }> <x '{{ f(b: 1) }}'>`,
			id:   "x",
			err:  &ResolveError{Kind: MissingVar, Name: "b"},
		},
		{
			name: "duplicate keyword argument",
			src:  `<f($a, $b) { $a }> <x '{{ f(a: 1, a: 2) }}'>`,
			id:   "x",
			err:  &ResolveError{Kind: WrongNumberOfArgs},
		},
		{
			name: "call of entity",
			src:  `<b 'B'> <x '{{ b() }}'>`,
			id:   "x",
			err:  &ResolveError{Kind: WrongType, Name: "b"},
		},
		{
			name: "macro scope excludes caller locals",
			src:  `<inner() { $a }> <outer($a) { inner() }> <x '{{ outer(1) }}'>`,
			id:   "x",
			err:  &ResolveError{Kind: MissingVar, Name: "a"},
		},
		{
			name: "macro body sees input data",
			src:  `<twice() { $n * 2 }> <x '{{ twice() }}'>`,
			id:   "x",
			in:   data.Map{"n": data.Num(21)},
			want: data.Str("42"),
		},
		{
			name: "macro result as data",
			src:  `<fac($n) { $n == 0 ? 1 : $n * fac($n - 1) }> <x '{{ fac(5) }}'>`,
			id:   "x",
			want: data.Str("120"),
		},
		{
			name: "arithmetic on strings",
			src:  `<x '{{ 1 + 'a' }}'>`,
			id:   "x",
			err:  &ResolveError{Kind: WrongType, Name: "+"},
		},
		{
			name: "boolean in pattern",
			src:  `<x '{{ 1 == 1 }}'>`,
			id:   "x",
			err:  &ResolveError{Kind: WrongType},
		},
		{
			name: "division by zero",
			src:  `<x '{{ 1 / 0 }}'>`,
			id:   "x",
			err:  &ResolveError{Kind: DivisionByZero},
		},
		{
			name: "remainder by zero",
			src:  `<x '{{ 1 % 0 }}'>`,
			id:   "x",
			err:  &ResolveError{Kind: DivisionByZero},
		},
		{
			name: "addition overflow",
			src:  `<x '{{ 9223372036854775807 + 1 }}'>`,
			id:   "x",
			err:  &ResolveError{Kind: IntegerOverflow, Name: "+"},
		},
		{
			name: "subtraction overflow",
			src:  `<x '{{ -9223372036854775807 - 2 }}'>`,
			id:   "x",
			err:  &ResolveError{Kind: IntegerOverflow, Name: "-"},
		},
		{
			name: "multiplication overflow",
			src:  `<fac($n) { $n == 0 ? 1 : $n * fac($n - 1) }> <x '{{ fac(21) }}'>`,
			id:   "x",
			err:  &ResolveError{Kind: IntegerOverflow, Name: "*"},
		},
		{
			name: "largest factorial",
			src:  `<fac($n) { $n == 0 ? 1 : $n * fac($n - 1) }> <x '{{ fac(20) }}'>`,
			id:   "x",
			want: data.Str("2432902008176640000"),
		},
		{
			name: "negation overflow",
			src:  `<x '{{ -(-9223372036854775807 - 1) }}'>`,
			id:   "x",
			err:  &ResolveError{Kind: IntegerOverflow, Name: "-"},
		},
		{
			name: "untaken branch is not evaluated",
			src:  `<x '{{ 1 == 1 ? 'yes' : $missing }}'>`,
			id:   "x",
			want: data.Str("yes"),
		},
		{
			name: "condition must be boolean",
			src:  `<x '{{ 1 ? 'yes' : 'no' }}'>`,
			id:   "x",
			err:  &ResolveError{Kind: WrongType},
		},
		{
			name: "self reference exceeds depth",
			src:  `<a '{{a}}'>`,
			id:   "a",
			err:  &ResolveError{Kind: DepthExceeded},
		},
		{
			name: "mutual reference exceeds depth",
			src:  `<a '{{ b }}'> <b '{{ a }}'>`,
			id:   "a",
			err:  &ResolveError{Kind: DepthExceeded},
		},
		{
			name: "custom depth budget",
			src:  `<fac($n) { $n == 0 ? 1 : $n * fac($n - 1) }> <x '{{ fac(50) }}'>`,
			id:   "x",
			opts: []Option{WithMaxDepth(16)},
			err:  &ResolveError{Kind: DepthExceeded},
		},
		{
			name: "this in attribute",
			src:  `<brand 'Rust' long: '{{ ~ }} Lang'> <x '{{ brand::long }}'>`,
			id:   "x",
			want: data.Str("Rust Lang"),
		},
		{
			name: "this attribute",
			src:  `<brand '{{ ~::short }}!' short: 'R'>`,
			id:   "brand",
			want: data.Str("R!"),
		},
		{
			name: "global",
			src:  `<l 'Locale: {{ @locale }}'>`,
			id:   "l",
			opts: []Option{WithGlobals(data.Map{"locale": data.Str("en-US")})},
			want: data.Str("Locale: en-US"),
		},
		{
			name: "missing global",
			src:  `<l 'Locale: {{ @locale }}'>`,
			id:   "l",
			err:  &ResolveError{Kind: MissingVar, Name: "@locale"},
		},
		{
			name: "macro entry is null",
			src:  `<f($a) { $a }>`,
			id:   "f",
			want: data.Null{},
		},
		{
			name: "later duplicate wins",
			src:  `<a 'first'> <a 'second'>`,
			id:   "a",
			want: data.Str("second"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := compileTest(t, tt.src)

			got, err := env.Resolve(context.Background(), tt.id, tt.in, tt.opts...)

			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("error = %v, want %v", err, tt.err)
				}

				return
			}

			if err != nil {
				t.Fatalf("resolve error: %v", err)
			}

			if !data.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnv_Eval(t *testing.T) {
	env := compileTest(t, sampleSource)

	tests := []struct {
		expr string
		want data.Data
		err  error
	}{
		{expr: "'a' != 'a'", want: data.Bool(false)},
		{expr: "'a' != 'b'", want: data.Bool(true)},
		{expr: "1 == 1 != (2 == 3)", want: data.Bool(true)},
		{expr: "1 < 2 && 2 >= 2", want: data.Bool(true)},
		{expr: "1 > 2 || 2 <= 1", want: data.Bool(false)},
		{expr: "7 % 4 * 2", want: data.Num(7)},
		{expr: "-7 / 2", want: data.Num(-3)},
		{expr: "2.9", want: data.Num(2)},
		{expr: "-2.9", want: data.Num(-2)},
		{expr: "-(2)", want: data.Num(-2)},
		{expr: "+3", want: data.Num(3)},
		{expr: "!(1 == 2)", want: data.Bool(true)},
		{expr: "many.one", want: data.Str("one")},
		{expr: "many", want: data.Str("none")},
		{expr: "brand::long", want: data.Str("Rust Lang")},
		{expr: "(brand)::long", want: data.Str("Rust Lang")},
		{expr: "fac(4)", want: data.Num(24)},
		{expr: "fac(n: 3)", want: data.Num(6)},
		{expr: "'x' == 1", err: &ResolveError{Kind: WrongType, Name: "=="}},
		{expr: "1 && 2", err: &ResolveError{Kind: WrongType, Name: "&&"}},
		{expr: "-'a'", err: &ResolveError{Kind: WrongType}},
		{expr: "!1", err: &ResolveError{Kind: WrongType}},
		{expr: "~", err: &ResolveError{Kind: WrongType}},
		{expr: "fac", want: data.Null{}},
		{expr: "fac()", err: &ResolveError{Kind: WrongNumberOfArgs, Name: "fac"}},
		{expr: "many[1]", err: &ResolveError{Kind: WrongType}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e, err := ParseExpr(context.Background(), tt.expr)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			got, err := env.Eval(context.Background(), e, nil)

			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("error = %v, want %v", err, tt.err)
				}

				return
			}

			if err != nil {
				t.Fatalf("eval error: %v", err)
			}

			if !data.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnv_Resolve_ErrorDetails(t *testing.T) {
	env := compileTest(t, `<brand 'Rust'> <x 'Hi {{ brnd }}'>`)

	_, err := env.Resolve(context.Background(), "x", nil)

	var re *ResolveError
	if !errors.As(err, &re) {
		t.Fatalf("expected *ResolveError, got %v", err)
	}

	if re.Entry != "x" {
		t.Errorf("entry = %q, want %q", re.Entry, "x")
	}

	if !slices.Contains(re.Suggest, "brand") {
		t.Errorf("suggestions %v do not contain %q", re.Suggest, "brand")
	}

	_, err = env.Resolve(context.Background(), "nope", nil)
	if !errors.Is(err, ErrUnknownID) {
		t.Errorf("error = %v, want %v", err, ErrUnknownID)
	}
}

func TestEnv_Resolve_EnvUnchangedAfterError(t *testing.T) {
	env := compileTest(t, `<x 'Hi {{ $who }}'>`)

	if _, err := env.Resolve(context.Background(), "x", nil); err == nil {
		t.Fatal("expected error")
	}

	got, err := env.Resolve(context.Background(), "x",
		data.Map{"who": data.Str("Ana")})
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	if got != data.Str("Hi Ana") {
		t.Errorf("got %v", got)
	}
}

func TestEnv_ResolveAll(t *testing.T) {
	env := compileTest(t, sampleSource)

	got, err := env.ResolveAll(context.Background(),
		data.Map{"number": data.Num(3)})
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	want := data.Map{
		"brand":     data.Str("Rust"),
		"hi":        data.Str("Hello, Rust Lang!"),
		"fac":       data.Null{},
		"factorial": data.Str("Factorial of 3 is 6."),
		"many":      data.Str("none"),
		"mail":      data.Str("Email in your inbox: too many."),
	}

	if !data.Equal(got, want) {
		t.Errorf("got %v\nwant %v", got, want)
	}
}

func TestEnv_ResolveAll_Cancelled(t *testing.T) {
	env := compileTest(t, sampleSource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := env.ResolveAll(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want %v", err, context.Canceled)
	}
}

func TestResolve_SingleStep(t *testing.T) {
	env := compileTest(t, sampleSource)
	rc := NewResolveContext(env, nil)

	got, err := Resolve(rc, &IdentExpr{Name: "brand"})
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	ent, ok := got.(*Entity)
	if !ok || ent.ID != "brand" {
		t.Fatalf("got %#v, want entity brand", got)
	}

	got, err = Resolve(rc, ent)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	if s, ok := got.(*Str); !ok || s.Text != "Rust" {
		t.Fatalf("got %#v, want value of brand", got)
	}

	got, err = Resolve(rc, got)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	if got != data.Str("Rust") {
		t.Fatalf("got %#v, want data", got)
	}

	got, err = Resolve(rc.WithIndex("many"), env["many"].(*Entity).Value)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	if s, ok := got.(*Str); !ok || s.Text != "too many" {
		t.Fatalf("got %#v, want selected variant", got)
	}
}

func TestResolveContext_Derived(t *testing.T) {
	rc := NewResolveContext(nil, data.Map{"a": data.Num(1)})

	indexed := rc.WithIndex("one")
	if _, ok := rc.Index(); ok {
		t.Error("WithIndex modified its receiver")
	}

	if key, ok := indexed.Index(); !ok || key != "one" {
		t.Errorf("index = %q, %v", key, ok)
	}

	scoped := indexed.WithLocals(data.Map{"b": data.Num(2)})
	if _, ok := scoped.Index(); ok {
		t.Error("WithLocals kept the index")
	}

	if indexed.Locals() != nil {
		t.Error("WithLocals modified its receiver")
	}

	if _, ok := scoped.Locals()["b"]; !ok {
		t.Error("locals not set")
	}

	if _, ok := scoped.Data()["a"]; !ok {
		t.Error("data not shared")
	}
}

func TestEnv_Resolve_RepeatedParameter(t *testing.T) {
	// Built directly: the parser and wire decoder reject repeated parameters.
	env := Env{
		"m": &Macro{
			ID:     "m",
			Params: []*VarExpr{{Name: "a"}, {Name: "a"}},
			Body:   &VarExpr{Name: "a"},
		},
		"x": &Entity{ID: "x", Value: &ComplexStr{Parts: []Expr{
			&CallExpr{
				Callee: &IdentExpr{Name: "m"},
				Args:   []Expr{&NumExpr{Text: "1"}, &NumExpr{Text: "2"}},
			},
		}}},
	}

	_, err := env.Resolve(context.Background(), "x", nil)
	if !errors.Is(err, &ResolveError{Kind: WrongNumberOfArgs, Name: "m"}) {
		t.Fatalf("error = %v, want wrong number of arguments", err)
	}
}

func BenchmarkEnv_Resolve(b *testing.B) {
	env := compileTest(b, sampleSource)
	in := data.Map{"number": data.Num(10)}

	for b.Loop() {
		if _, err := env.Resolve(context.Background(), "factorial", in); err != nil {
			b.Fatal(err)
		}
	}
}
