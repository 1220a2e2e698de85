package lang

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func str(s string) *Str { return &Str{Text: s} }

func val(s string) Expr { return &ValExpr{Value: str(s)} }

func TestParse_Entries(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Entry
	}{
		{
			name:  "simple entity",
			input: `<hello 'Hello, world!'>`,
			want:  []Entry{&Entity{ID: "hello", Value: str("Hello, world!")}},
		},
		{
			name:  "double quotes and placeable",
			input: `<hi "Hello, {{ $user }}!">`,
			want: []Entry{&Entity{ID: "hi", Value: &ComplexStr{Parts: []Expr{
				text("Hello, "), &VarExpr{Name: "user"}, text("!"),
			}}}},
		},
		{
			name:  "placeable with several expressions",
			input: `<ab '{{ $a, $b }}'>`,
			want: []Entry{&Entity{ID: "ab", Value: &ComplexStr{Parts: []Expr{
				&VarExpr{Name: "a"}, &VarExpr{Name: "b"},
			}}}},
		},
		{
			name:  "escapes",
			input: `<e 'it\'s \{{ x'>`,
			want:  []Entry{&Entity{ID: "e", Value: str("it's {{ x")}},
		},
		{
			name:  "hash with index and default",
			input: `<many['zero'] { zero: 'none', *one: 'one' }>`,
			want: []Entry{&Entity{
				ID:      "many",
				Indices: []Expr{val("zero")},
				Value: &Hash{
					Variants: []*Variant{
						{Key: "zero", Value: str("none")},
						{Key: "one", Value: str("one")},
					},
					Default: "one",
				},
			}},
		},
		{
			name:  "hash keys",
			input: `<k { ns/some key: 'x', 1: 'y', -2.5: 'z', }>`,
			want: []Entry{&Entity{ID: "k", Value: &Hash{Variants: []*Variant{
				{Key: "ns/some key", Value: str("x")},
				{Key: "1", Value: str("y")},
				{Key: "-2.5", Value: str("z")},
			}}}},
		},
		{
			name:  "nested hash",
			input: `<n { a: { x: 'ax' }, b: 'b' }>`,
			want: []Entry{&Entity{ID: "n", Value: &Hash{Variants: []*Variant{
				{Key: "a", Value: &Hash{Variants: []*Variant{
					{Key: "x", Value: str("ax")},
				}}},
				{Key: "b", Value: str("b")},
			}}}},
		},
		{
			name:  "attributes",
			input: "<brand 'Rust'\n  long: 'Rust Lang', short[$n]: { a: 'R' }>",
			want: []Entry{&Entity{
				ID:    "brand",
				Value: str("Rust"),
				Attrs: []*Attr{
					{ID: "long", Value: str("Rust Lang")},
					{
						ID:      "short",
						Indices: []Expr{&VarExpr{Name: "n"}},
						Value: &Hash{Variants: []*Variant{
							{Key: "a", Value: str("R")},
						}},
					},
				},
			}},
		},
		{
			name:  "multi-line pattern",
			input: "<a\n  | one\n  | two {{ $x }}\n>",
			want: []Entry{&Entity{ID: "a", Value: &ComplexStr{Parts: []Expr{
				text("one\ntwo "), &VarExpr{Name: "x"},
			}}}},
		},
		{
			name:  "multi-line pattern closed on last line",
			input: "<a\n  | one\n  | two {{ $x }}>",
			want: []Entry{&Entity{ID: "a", Value: &ComplexStr{Parts: []Expr{
				text("one\ntwo "), &VarExpr{Name: "x"},
			}}}},
		},
		{
			name:  "multi-line pattern with escaped close",
			input: "<a\n  | x -> y\n  | z \\>\n>",
			want:  []Entry{&Entity{ID: "a", Value: str("x -> y\nz >")}},
		},
		{
			name:  "multi-line attribute closed on last line",
			input: "<a 'x'\n  b:\n    | y  >",
			want: []Entry{&Entity{ID: "a", Value: str("x"), Attrs: []*Attr{
				{ID: "b", Value: str("y  ")},
			}}},
		},
		{
			name:  "macro",
			input: `<add($a, $b) { $a + $b }>`,
			want: []Entry{&Macro{
				ID:     "add",
				Params: []*VarExpr{{Name: "a"}, {Name: "b"}},
				Body: &BinExpr{
					Left:  &VarExpr{Name: "a"},
					Op:    OpAdd,
					Right: &VarExpr{Name: "b"},
				},
			}},
		},
		{
			name:  "comment and import",
			input: "/* note */\nimport('other.l20n')",
			want: []Entry{
				&Comment{Text: " note "},
				&Import{Path: "other.l20n"},
			},
		},
		{
			name:  "hyphenated identifier",
			input: `<brand-name 'R'>`,
			want:  []Entry{&Entity{ID: "brand-name", Value: str("R")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if !reflect.DeepEqual(res.Entries, tt.want) {
				t.Errorf("entries mismatch\ngot:  %#v\nwant: %#v", res.Entries, tt.want)
			}
		})
	}
}

func TestParseExpr_Precedence(t *testing.T) {
	var (
		a = &VarExpr{Name: "a"}
		b = &VarExpr{Name: "b"}
		c = &VarExpr{Name: "c"}
	)

	num := func(s string) Expr { return &NumExpr{Text: s} }

	tests := []struct {
		input string
		want  Expr
	}{
		{
			input: "1 + 2 * 3",
			want: &BinExpr{Left: num("1"), Op: OpAdd, Right: &BinExpr{
				Left: num("2"), Op: OpMul, Right: num("3"),
			}},
		},
		{
			input: "1 - 2 - 3",
			want: &BinExpr{Left: &BinExpr{
				Left: num("1"), Op: OpSub, Right: num("2"),
			}, Op: OpSub, Right: num("3")},
		},
		{
			input: "10 % 3 * 2",
			want: &BinExpr{Left: num("10"), Op: OpRem, Right: &BinExpr{
				Left: num("3"), Op: OpMul, Right: num("2"),
			}},
		},
		{
			input: "$a || $b && $c",
			want: &BinExpr{Left: a, Op: OpOr, Right: &BinExpr{
				Left: b, Op: OpAnd, Right: c,
			}},
		},
		{
			input: "$a == $b != $c",
			want: &BinExpr{Left: &BinExpr{
				Left: a, Op: OpEq, Right: b,
			}, Op: OpNe, Right: c},
		},
		{
			input: "$a <= 2 == $b > 1",
			want: &BinExpr{
				Left:  &BinExpr{Left: a, Op: OpLe, Right: num("2")},
				Op:    OpEq,
				Right: &BinExpr{Left: b, Op: OpGt, Right: num("1")},
			},
		},
		{
			input: "-1",
			want:  num("-1"),
		},
		{
			input: "- $a",
			want:  &UnExpr{Op: OpMinus, Arg: a},
		},
		{
			input: "!$a",
			want:  &UnExpr{Op: OpNot, Arg: a},
		},
		{
			input: "$a ? 'x' : $b ? 'y' : 'z'",
			want: &CondExpr{Test: a, Cons: val("x"), Alt: &CondExpr{
				Test: b, Cons: val("y"), Alt: val("z"),
			}},
		},
		{
			input: "brand::long",
			want: &AttrExpr{
				Obj:    &IdentExpr{Name: "brand"},
				Key:    &IdentExpr{Name: "long"},
				Access: Static,
			},
		},
		{
			input: "~::[$a]",
			want:  &AttrExpr{Obj: &ThisExpr{}, Key: a, Access: Computed},
		},
		{
			input: "many['one'].x",
			want: &PropExpr{
				Obj: &PropExpr{
					Obj:    &IdentExpr{Name: "many"},
					Key:    val("one"),
					Access: Computed,
				},
				Key:    &IdentExpr{Name: "x"},
				Access: Static,
			},
		},
		{
			input: "fac($n - 1)",
			want: &CallExpr{Callee: &IdentExpr{Name: "fac"}, Args: []Expr{
				&BinExpr{Left: &VarExpr{Name: "n"}, Op: OpSub, Right: num("1")},
			}},
		},
		{
			input: "f(a: 1, $b)",
			want: &CallExpr{Callee: &IdentExpr{Name: "f"}, Args: []Expr{
				&KVExpr{Name: "a", Value: num("1")}, b,
			}},
		},
		{
			input: "f()",
			want:  &CallExpr{Callee: &IdentExpr{Name: "f"}},
		},
		{
			input: "(@locale)",
			want:  &ParenExpr{Expr: &GlobalExpr{Name: "locale"}},
		},
		{
			input: "$n-1",
			want:  &VarExpr{Name: "n-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseExpr(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expr mismatch\ngot:  %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  ParseErrorKind
		line  int
		col   int
	}{
		{"text at top level", `hello`, EntryError, 1, 1},
		{"missing identifier", `<>`, IdentifierError, 1, 2},
		{"missing value", `<a>`, ValueError, 1, 3},
		{"no whitespace before value", `<a'x'>`, EntityError, 1, 3},
		{"underscore macro", `<_m($a) { $a }>`, MacroError, 1, 2},
		{"duplicate parameter", `<m($a, $a) { $a }>`, MacroError, 1, 8},
		{"second default", `<a { *x: 'a', *y: 'b' }>`, HashError, 1, 15},
		{"duplicate key", `<a { x: 'a', x: 'b' }>`, HashError, 1, 14},
		{"unterminated string", `<a 'x`, StrError, 1, 4},
		{"single equals", `<a '{{ b = c }}'>`, OpError, 1, 10},
		{"unclosed paren", `<a '{{ (b }}'>`, ParenError, 1, 10},
		{"attribute of variable", `<a '{{ $b::c }}'>`, AttrError, 1, 10},
		{"keyword argument", `<a '{{ f(1: 2) }}'>`, CallError, 1, 10},
		{"bare dollar", `<a '{{ $ }}'>`, VarError, 1, 9},
		{"missing expression", `<a '{{ ) }}'>`, ExprError, 1, 8},
		{"pipe on id line", `<a |x>`, ValueError, 1, 4},
		{"unterminated comment", "<a 'x'>\n/* open", EntryError, 2, 1},
		{"second line", "<a 'x'>\n<b>", ValueError, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), tt.input)
			if err == nil {
				t.Fatal("expected parse error")
			}

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}

			if pe.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", pe.Kind, tt.kind)
			}

			if pe.Line != tt.line || pe.Col != tt.col {
				t.Errorf("position = %d:%d, want %d:%d", pe.Line, pe.Col, tt.line, tt.col)
			}

			if pe.Source != tt.input {
				t.Errorf("source not recorded")
			}
		})
	}
}

func TestParseError_Snippet(t *testing.T) {
	_, err := Parse(context.Background(), "<a 'x'>\n<b>")

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}

	want := "  2 | <b>\n        ^\n"
	if got := pe.Snippet(); got != want {
		t.Errorf("snippet = %q, want %q", got, want)
	}

	if !strings.HasPrefix(pe.Error(), "value error at line 2, column 3") {
		t.Errorf("unexpected message: %s", pe.Error())
	}
}

func TestParseExpr_TrailingInput(t *testing.T) {
	_, err := ParseExpr(context.Background(), "$a $b")

	var pe *ParseError
	if !errors.As(err, &pe) || pe.Kind != ExprError {
		t.Fatalf("expected expression error, got %v", err)
	}
}
