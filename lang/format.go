package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes res as l20n source text. The output parses back to a
// Resource equal to res. With indent > 0, attributes and hash variants are
// placed on their own lines.
func (res *Resource) Format(_ context.Context, w io.Writer, indent int) error {
	p := printer{indent: indent}

	for i, e := range res.Entries {
		if i > 0 {
			p.WriteString("\n")

			if indent > 0 {
				p.WriteString("\n")
			}
		}

		p.entry(e)
	}

	p.WriteString("\n")

	_, err := io.WriteString(w, p.String())

	return err
}

// FormatJSON writes the wire shape of res as JSON.
func (res *Resource) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(
			EncodeWire(res), "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(EncodeWire(res))
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the wire shape of res as YAML.
func (res *Resource) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, EncodeWire(res), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

type printer struct {
	strings.Builder

	indent int
}

func (p *printer) pad(depth int) {
	p.WriteString(strings.Repeat(" ", depth*p.indent))
}

func (p *printer) entry(e Entry) {
	switch e := e.(type) {
	case *Entity:
		p.entity(e)
	case *Macro:
		p.macro(e)
	case *Import:
		p.WriteString("import(")
		p.quoted(&Str{Text: e.Path})
		p.WriteString(")")
	case *Comment:
		p.WriteString("/*")
		p.WriteString(e.Text)
		p.WriteString("*/")
	}
}

func (p *printer) entity(e *Entity) {
	p.WriteString("<")
	p.WriteString(e.ID)
	p.indices(e.Indices)
	p.WriteString(" ")

	multiline := p.entryValue(e.Value, 1)

	for _, a := range e.Attrs {
		if multiline || p.indent > 0 {
			p.WriteString("\n")
			p.pad(1)
		} else {
			p.WriteString(" ")
		}

		p.WriteString(a.ID)
		p.indices(a.Indices)
		p.WriteString(":")

		if !needsMultiline(a.Value) {
			p.WriteString(" ")
		}

		multiline = p.entryValue(a.Value, 1)
	}

	if multiline {
		p.WriteString("\n")
	}

	p.WriteString(">")
}

func (p *printer) macro(m *Macro) {
	p.WriteString("<")
	p.WriteString(m.ID)
	p.WriteString("(")

	for i, param := range m.Params {
		if i > 0 {
			p.WriteString(", ")
		}

		p.expr(param)
	}

	p.WriteString(") { ")
	p.expr(m.Body)
	p.WriteString(" }>")
}

func (p *printer) indices(indices []Expr) {
	if len(indices) == 0 {
		return
	}

	p.WriteString("[")
	p.exprs(indices)
	p.WriteString("]")
}

// entryValue prints the value of an entity or attribute and reports whether
// it used the multi-line form.
func (p *printer) entryValue(v Value, depth int) bool {
	if needsMultiline(v) {
		p.multiline(v, depth)

		return true
	}

	p.value(v, depth)

	return false
}

// needsMultiline reports whether v ends in a backslash, which a quoted
// string cannot express.
func needsMultiline(v Value) bool {
	switch v := v.(type) {
	case *Str:
		return strings.HasSuffix(v.Text, `\`)
	case *ComplexStr:
		if len(v.Parts) == 0 {
			return false
		}

		s, ok := literal(v.Parts[len(v.Parts)-1])

		return ok && strings.HasSuffix(s, `\`)
	default:
		return false
	}
}

func (p *printer) value(v Value, depth int) {
	switch v := v.(type) {
	case *Str, *ComplexStr:
		p.quoted(v)
	case *Hash:
		p.hash(v, depth)
	}
}

func (p *printer) hash(h *Hash, depth int) {
	p.WriteString("{")

	for i, variant := range h.Variants {
		if i > 0 {
			p.WriteString(",")
		}

		if p.indent > 0 {
			p.WriteString("\n")
			p.pad(depth)
		} else if i > 0 {
			p.WriteString(" ")
		}

		if variant.Key == h.Default {
			p.WriteString("*")
		}

		p.WriteString(variant.Key)
		p.WriteString(": ")
		p.value(variant.Value, depth+1)
	}

	if p.indent > 0 && len(h.Variants) > 0 {
		p.WriteString("\n")
		p.pad(depth - 1)
	}

	p.WriteString("}")
}

// segments returns the pattern parts of v and which of them print as literal
// text. A literal printed directly after another literal, or an empty one,
// is printed as a placeable so the parts survive re-parsing.
func segments(v Value) ([]Expr, []bool) {
	switch v := v.(type) {
	case *Str:
		return []Expr{text(v.Text)}, []bool{true}
	case *ComplexStr:
		asText := make([]bool, len(v.Parts))
		placeable := false

		for i, part := range v.Parts {
			s, ok := literal(part)
			asText[i] = ok && s != "" && (i == 0 || !asText[i-1])
			placeable = placeable || !asText[i]
		}

		if !placeable && len(asText) > 0 {
			asText[len(asText)-1] = false
		}

		return v.Parts, asText
	default:
		return nil, nil
	}
}

func (p *printer) quoted(v Value) {
	quote := '\''
	if str, ok := v.(*Str); ok && strings.ContainsRune(str.Text, '\'') &&
		!strings.ContainsRune(str.Text, '"') {
		quote = '"'
	}

	p.WriteRune(quote)

	parts, asText := segments(v)
	for i, part := range parts {
		if asText[i] {
			s, _ := literal(part)
			p.escaped(s, quote)
		} else {
			p.placeable(part)
		}
	}

	p.WriteRune(quote)
}

func (p *printer) multiline(v Value, depth int) {
	p.WriteString("\n")
	p.pad(depth)
	p.WriteString("| ")

	parts, asText := segments(v)
	for i, part := range parts {
		if !asText[i] {
			p.placeable(part)

			continue
		}

		s, _ := literal(part)

		for j, line := range strings.Split(s, "\n") {
			if j > 0 {
				p.WriteString("\n")
				p.pad(depth)
				p.WriteString("| ")
			}

			p.escaped(line, 0)
		}
	}
}

// escaped writes s with '{' and quote escaped. A zero quote selects
// multi-line text, where '>' is escaped instead.
func (p *printer) escaped(s string, quote rune) {
	if quote == 0 {
		quote = '>'
	}

	for _, r := range s {
		if r == '{' || r == quote {
			p.WriteRune('\\')
		}

		p.WriteRune(r)
	}
}

func (p *printer) placeable(e Expr) {
	p.WriteString("{{ ")
	p.expr(e)
	p.WriteString(" }}")
}

func (p *printer) exprs(es []Expr) {
	for i, e := range es {
		if i > 0 {
			p.WriteString(", ")
		}

		p.expr(e)
	}
}

func (p *printer) expr(e Expr) {
	switch e := e.(type) {
	case *CondExpr:
		p.expr(e.Test)
		p.WriteString(" ? ")
		p.expr(e.Cons)
		p.WriteString(" : ")
		p.expr(e.Alt)

	case *BinExpr:
		p.expr(e.Left)
		p.WriteString(" ")
		p.WriteString(string(e.Op))
		p.WriteString(" ")
		p.expr(e.Right)

	case *UnExpr:
		p.WriteString(string(e.Op))

		var arg printer
		arg.expr(e.Arg)

		// "-1" would read back as a numeric literal.
		if s := arg.String(); e.Op == OpMinus && s != "" && isDigit(rune(s[0])) {
			p.WriteString(" ")
		}

		p.expr(e.Arg)

	case *VarExpr:
		p.WriteString("$")
		p.WriteString(e.Name)

	case *ValExpr:
		p.value(e.Value, 1)

	case *PropExpr:
		p.expr(e.Obj)

		if e.Access == Computed {
			p.WriteString("[")
			p.expr(e.Key)
			p.WriteString("]")
		} else {
			p.WriteString(".")
			p.expr(e.Key)
		}

	case *AttrExpr:
		p.expr(e.Obj)
		p.WriteString("::")

		if e.Access == Computed {
			p.WriteString("[")
			p.expr(e.Key)
			p.WriteString("]")
		} else {
			p.expr(e.Key)
		}

	case *CallExpr:
		p.expr(e.Callee)
		p.WriteString("(")
		p.exprs(e.Args)
		p.WriteString(")")

	case *KVExpr:
		p.WriteString(e.Name)
		p.WriteString(": ")
		p.expr(e.Value)

	case *IdentExpr:
		p.WriteString(e.Name)

	case *NumExpr:
		p.WriteString(e.Text)

	case *ParenExpr:
		p.WriteString("(")
		p.expr(e.Expr)
		p.WriteString(")")

	case *GlobalExpr:
		p.WriteString("@")
		p.WriteString(e.Name)

	case *ThisExpr:
		p.WriteString("~")
	}
}
