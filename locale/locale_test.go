package locale

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/language"

	"github.com/ardnew/l20n/data"
	"github.com/ardnew/l20n/lang"
)

const sampleSource = `
<brand 'Rust' long: 'Rust Lang'>
<hi 'Hello, {{ brand::long }}!'>
<many['zero'] { zero: 'none', one: 'one', many: 'too many' }>
<mail 'Email in your inbox: {{ many.many }}.'>
<fac($n) { $n == 0 ? 1 : $n * fac($n - 1) }>
<factorial "Factorial of {{ $number }} is {{ fac($number) }}.">
`

type translated struct {
	Hi        string
	Factorial string
	Mail      string
}

func sampleLocale(t *testing.T) *Locale {
	t.Helper()

	l := New(language.English)
	if err := l.AddResource(context.Background(), sampleSource); err != nil {
		t.Fatalf("AddResource() error = %v", err)
	}

	return l
}

func TestLocale_LocalizeData(t *testing.T) {
	l := sampleLocale(t)

	var got translated

	err := l.LocalizeData(context.Background(), map[string]int{"number": 3}, &got)
	if err != nil {
		t.Fatalf("LocalizeData() error = %v", err)
	}

	want := translated{
		Hi:        "Hello, Rust Lang!",
		Factorial: "Factorial of 3 is 6.",
		Mail:      "Email in your inbox: too many.",
	}
	if got != want {
		t.Errorf("LocalizeData() = %+v, want %+v", got, want)
	}
}

func TestLocale_Localize(t *testing.T) {
	l := New(language.French)
	if err := l.AddResource(context.Background(), `<hi 'Salut'> <tag '{{ @locale }}'>`); err != nil {
		t.Fatal(err)
	}

	var got struct {
		Hi  string
		Tag string
	}

	if err := l.Localize(context.Background(), &got); err != nil {
		t.Fatalf("Localize() error = %v", err)
	}

	if got.Hi != "Salut" || got.Tag != "fr" {
		t.Errorf("Localize() = %+v", got)
	}
}

func TestLocale_AddResource_LaterWins(t *testing.T) {
	ctx := context.Background()
	l := New(language.English)

	if err := l.AddResource(ctx, `<a 'first'> <b 'kept'>`); err != nil {
		t.Fatal(err)
	}

	if err := l.AddResource(ctx, `<a 'second'>`); err != nil {
		t.Fatal(err)
	}

	for id, want := range map[string]string{"a": "second", "b": "kept"} {
		d, err := l.Entry(ctx, id, nil)
		if err != nil {
			t.Fatalf("Entry(%q) error = %v", id, err)
		}

		if d != data.Str(want) {
			t.Errorf("Entry(%q) = %v, want %q", id, d, want)
		}
	}

	l.Reset()

	if ids := l.IDs(); len(ids) != 0 {
		t.Errorf("IDs() after Reset = %v", ids)
	}
}

func TestLocale_AddResource_ParseError(t *testing.T) {
	l := New(language.English)

	err := l.AddResource(context.Background(), `<a 'x'> <b`)

	var pe *lang.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("AddResource() error = %v, want *lang.ParseError", err)
	}

	if ids := l.IDs(); len(ids) != 0 {
		t.Errorf("failed resource added entries %v", ids)
	}
}

func TestLocale_AddFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "en.l20n")

	if err := os.WriteFile(path, []byte(sampleSource), 0o600); err != nil {
		t.Fatal(err)
	}

	l := New(language.English)
	if err := l.AddFile(context.Background(), path); err != nil {
		t.Fatalf("AddFile() error = %v", err)
	}

	d, err := l.Entry(context.Background(), "hi", nil)
	if err != nil {
		t.Fatal(err)
	}

	if d != data.Str("Hello, Rust Lang!") {
		t.Errorf("Entry(hi) = %v", d)
	}

	err = l.AddFile(context.Background(), filepath.Join(dir, "missing.l20n"))
	if !errors.Is(err, lang.ErrReadInput) {
		t.Errorf("AddFile(missing) error = %v, want ErrReadInput", err)
	}
}

func TestLocale_Errors(t *testing.T) {
	ctx := context.Background()
	l := sampleLocale(t)

	tests := []struct {
		name string
		run  func() error
		op   Op
	}{
		{"encode unsupported", func() error {
			return l.LocalizeData(ctx, map[string]any{"f": func() {}}, &translated{})
		}, OpEncode},
		{"encode not a map", func() error {
			return l.LocalizeData(ctx, []int{1}, &translated{})
		}, OpEncode},
		{"resolve missing var", func() error {
			return l.Localize(ctx, &translated{})
		}, OpResolve},
		{"decode missing field", func() error {
			var out struct{ Absent string }
			return l.LocalizeData(ctx, map[string]int{"number": 1}, &out)
		}, OpDecode},
		{"entry unknown id", func() error {
			_, err := l.Entry(ctx, "nope", nil)
			return err
		}, OpResolve},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()

			var le *LocalizeError
			if !errors.As(err, &le) {
				t.Fatalf("error = %v, want *LocalizeError", err)
			}

			if le.Op != tt.op {
				t.Errorf("Op = %q, want %q", le.Op, tt.op)
			}

			if le.Tag != "en" {
				t.Errorf("Tag = %q, want en", le.Tag)
			}
		})
	}
}

func TestLocale_Entry_MissingVar(t *testing.T) {
	l := sampleLocale(t)

	_, err := l.Entry(context.Background(), "factorial", nil)

	var re *lang.ResolveError
	if !errors.As(err, &re) || re.Kind != lang.MissingVar {
		t.Errorf("Entry() error = %v, want MissingVar", err)
	}
}

func TestLocale_Name(t *testing.T) {
	tests := []struct {
		tag  language.Tag
		want string
	}{
		{language.Und, DefaultName},
		{language.English, "en"},
		{language.MustParse("pt-BR"), "pt-BR"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := New(tt.tag).Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocale_WithMaxDepth(t *testing.T) {
	l := New(language.English, WithMaxDepth(4))
	if err := l.AddResource(context.Background(), `<a '{{ a }}'>`); err != nil {
		t.Fatal(err)
	}

	_, err := l.Entry(context.Background(), "a", nil)

	var re *lang.ResolveError
	if !errors.As(err, &re) || re.Kind != lang.DepthExceeded {
		t.Errorf("Entry() error = %v, want DepthExceeded", err)
	}
}

func TestLocale_Eval(t *testing.T) {
	ctx := context.Background()
	l := sampleLocale(t)

	tests := []struct {
		src  string
		want data.Data
	}{
		{"fac($number) + 1", data.Num(7)},
		{"brand::long", data.Str("Rust Lang")},
		{"@locale", data.Str("en")},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := lang.ParseExpr(ctx, tt.src)
			if err != nil {
				t.Fatal(err)
			}

			got, err := l.Eval(ctx, e, map[string]int{"number": 3})
			if err != nil {
				t.Fatalf("Eval() error = %v", err)
			}

			if !data.Equal(got, tt.want) {
				t.Errorf("Eval() = %v, want %v", got, tt.want)
			}
		})
	}
}
