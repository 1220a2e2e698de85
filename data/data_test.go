package data

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestEncode_Scalars(t *testing.T) {
	var nilPtr *int

	tests := []struct {
		name string
		in   any
		want Data
	}{
		{"nil", nil, Null{}},
		{"nil pointer", nilPtr, Null{}},
		{"bool", true, Bool(true)},
		{"int", 42, Num(42)},
		{"int8", int8(-3), Num(-3)},
		{"uint16", uint16(7), Num(7)},
		{"float truncates", 3.9, Num(3)},
		{"negative float truncates", -2.5, Num(-2)},
		{"string", "hello", Str("hello")},
		{"data passthrough", Str("x"), Str("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.in)
			if err != nil {
				t.Fatalf("Encode(%v) error: %v", tt.in, err)
			}

			if !Equal(got, tt.want) {
				t.Errorf("Encode(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncode_Composite(t *testing.T) {
	type user struct {
		Name    string `l20n:"name"`
		Age     int
		Secret  string `l20n:"-"`
		private int
	}

	in := map[string]any{
		"number": 3,
		"tags":   []string{"a", "b"},
		"user":   user{Name: "Ann", Age: 30, Secret: "x", private: 1},
	}

	got, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	want := Map{
		"number": Num(3),
		"tags":   List{Str("a"), Str("b")},
		"user":   Map{"name": Str("Ann"), "Age": Num(30)},
	}

	if !Equal(got, want) {
		t.Errorf("Encode = %v, want %v", got, want)
	}
}

func TestEncode_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   any
		kind EncodeErrorKind
	}{
		{"int key", map[int]string{1: "a"}, KeyIsNotString},
		{"nil interface key", map[any]int{nil: 1}, MissingElements},
		{"channel", make(chan int), UnsupportedType},
		{"func", func() {}, UnsupportedType},
		{"nan", math.NaN(), UnsupportedType},
		{"huge uint", uint64(math.MaxUint64), UnsupportedType},
		{"nested", map[string]any{"a": []any{map[bool]int{true: 1}}}, KeyIsNotString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.in)

			var eerr *EncodeError
			if !errors.As(err, &eerr) {
				t.Fatalf("Encode(%T) error = %v, want *EncodeError", tt.in, err)
			}

			if eerr.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", eerr.Kind, tt.kind)
			}
		})
	}
}

func TestDecode_Struct(t *testing.T) {
	type translated struct {
		Hi        string
		Factorial string `l20n:"factorial"`
		Count     int    `l20n:"count,omitempty"`
	}

	in := Map{
		"hi":        Str("Hello"),
		"factorial": Str("6"),
		"fac":       Null{},
	}

	var out translated
	if err := Decode(in, &out); err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	want := translated{Hi: "Hello", Factorial: "6"}
	if out != want {
		t.Errorf("Decode = %+v, want %+v", out, want)
	}
}

func TestDecode_Errors(t *testing.T) {
	type needs struct {
		Mail string
	}

	tests := []struct {
		name  string
		in    Data
		out   any
		kind  DecodeErrorKind
		field string
	}{
		{"missing field", Map{"hi": Str("x")}, new(needs), MissingField, "Mail"},
		{"string into int", Str("x"), new(int), WrongType, ""},
		{"num into string", Num(1), new(string), WrongType, ""},
		{"map into slice", Map{}, new([]string), WrongType, ""},
		{"negative into uint", Num(-1), new(uint), WrongType, ""},
		{"non-pointer", Str("x"), "x", WrongType, ""},
		{"nil", Str("x"), nil, WrongType, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Decode(tt.in, tt.out)

			var derr *DecodeError
			if !errors.As(err, &derr) {
				t.Fatalf("Decode error = %v, want *DecodeError", err)
			}

			if derr.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", derr.Kind, tt.kind)
			}

			if tt.field != "" && derr.Field != tt.field {
				t.Errorf("field = %q, want %q", derr.Field, tt.field)
			}
		})
	}
}

func TestDecode_Native(t *testing.T) {
	in := Map{
		"list": List{Num(1), Bool(false), Null{}},
		"str":  Str("s"),
	}

	var out any
	if err := Decode(in, &out); err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	want := map[string]any{
		"list": []any{int64(1), false, nil},
		"str":  "s",
	}

	if !reflect.DeepEqual(out, want) {
		t.Errorf("Decode = %#v, want %#v", out, want)
	}
}

func TestDecode_Collections(t *testing.T) {
	var names []string
	if err := Decode(List{Str("a"), Str("b")}, &names); err != nil {
		t.Fatalf("Decode slice: %v", err)
	}

	if !reflect.DeepEqual(names, []string{"a", "b"}) {
		t.Errorf("slice = %v", names)
	}

	var counts map[string]int
	if err := Decode(Map{"x": Num(1)}, &counts); err != nil {
		t.Fatalf("Decode map: %v", err)
	}

	if counts["x"] != 1 {
		t.Errorf("map = %v", counts)
	}

	var p *string
	if err := Decode(Str("v"), &p); err != nil {
		t.Fatalf("Decode pointer: %v", err)
	}

	if p == nil || *p != "v" {
		t.Errorf("pointer = %v", p)
	}

	var d Data
	if err := Decode(Num(5), &d); err != nil {
		t.Fatalf("Decode Data: %v", err)
	}

	if d != Num(5) {
		t.Errorf("Data = %v", d)
	}
}

func TestData_String(t *testing.T) {
	tests := []struct {
		in   Data
		want string
	}{
		{Null{}, "null"},
		{Bool(true), "true"},
		{Num(-12), "-12"},
		{Str("plain"), "plain"},
		{List{Str("a"), Num(1)}, `["a", 1]`},
		{Map{"b": Num(2), "a": Str("x")}, `{"a": "x", "b": 2}`},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.in.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
