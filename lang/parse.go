package lang

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/l20n/log"
)

// Parse parses l20n source text into a [Resource].
//
// Parsing stops at the first error, which is always a [*ParseError]; no
// partial resource is returned.
func Parse(ctx context.Context, src string, opts ...Option) (*Resource, error) {
	o := makeOptions(opts...)

	p := &parser{
		cursor: newCursor(src),
		logger: o.logger,
	}

	res, err := p.parseResource()
	if err != nil {
		err.Source = src

		p.logger.TraceContext(ctx, "parse failed",
			slog.Any("error", err))

		return nil, err
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.Int("entry_count", len(res.Entries)))

	return res, nil
}

// ParseExpr parses a single expression, as written inside a placeable.
func ParseExpr(ctx context.Context, src string, opts ...Option) (Expr, error) {
	o := makeOptions(opts...)

	p := &parser{
		cursor: newCursor(src),
		logger: o.logger,
	}

	p.skipWS()

	e, err := p.parseExpr()
	if err == nil {
		p.skipWS()

		if !p.eof() {
			err = p.fail(ExprError, p.unexpected())
		}
	}

	if err != nil {
		err.Source = src

		p.logger.TraceContext(ctx, "parse failed",
			slog.Any("error", err))

		return nil, err
	}

	return e, nil
}

// parser holds the parser state.
type parser struct {
	cursor

	logger log.Logger
}

func (p *parser) fail(kind ParseErrorKind, detail string) *ParseError {
	return &ParseError{Kind: kind, Line: p.line, Col: p.col, Detail: detail}
}

func (p *parser) failAt(at position, kind ParseErrorKind, detail string) *ParseError {
	return &ParseError{Kind: kind, Line: at.line, Col: at.col, Detail: detail}
}

// unexpected describes the next character for error details.
func (p *parser) unexpected() string {
	if p.eof() {
		return "unexpected end of input"
	}

	return "unexpected " + quoteRune(p.peek())
}

// parseResource parses the entire input as a list of entries.
func (p *parser) parseResource() (*Resource, *ParseError) {
	res := new(Resource)

	for {
		p.skipWS()

		if p.eof() {
			return res, nil
		}

		var (
			e   Entry
			err *ParseError
		)

		switch {
		case p.at('<'):
			e, err = p.parseEntry()
		case p.atString("/*"):
			e, err = p.parseComment()
		case p.atString("import("):
			e, err = p.parseImport()
		default:
			err = p.fail(EntryError, p.unexpected())
		}

		if err != nil {
			return nil, err
		}

		res.Entries = append(res.Entries, e)
	}
}

// parseEntry parses: '<' Identifier (MacroTail | EntityTail).
func (p *parser) parseEntry() (Entry, *ParseError) {
	p.bump() // '<'

	at := p.mark()

	id, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}

	if p.at('(') {
		if strings.HasPrefix(id, "_") {
			return nil, p.failAt(at, MacroError,
				"macro identifier must not start with '_'")
		}

		return p.parseMacro(id)
	}

	return p.parseEntity(id)
}

// parseIdentifier parses: [A-Za-z_][A-Za-z0-9_-]*.
func (p *parser) parseIdentifier() (string, *ParseError) {
	if !isIdentStart(p.peek()) {
		return "", p.fail(IdentifierError, p.unexpected())
	}

	start := p.mark()
	for isIdentContinue(p.peek()) {
		p.bump()
	}

	return p.slice(start), nil
}

// parseMacro parses: '(' (Var (',' Var)*)? ')' '{' Expr '}' '>'.
func (p *parser) parseMacro(id string) (Entry, *ParseError) {
	p.bump() // '('

	var params []*VarExpr

	for {
		p.skipWS()

		if p.at(')') {
			break
		}

		if !p.at('$') {
			return nil, p.fail(MacroError, "expected parameter '$name'")
		}

		at := p.mark()

		v, err := p.parseVariable()
		if err != nil {
			return nil, err
		}

		if slices.ContainsFunc(params, func(q *VarExpr) bool { return q.Name == v.Name }) {
			return nil, p.failAt(at, MacroError, "duplicate parameter $"+v.Name)
		}

		params = append(params, v)

		p.skipWS()

		if p.at(',') {
			p.bump()

			continue
		}

		if !p.at(')') {
			return nil, p.fail(MacroError, "expected ',' or ')'")
		}
	}

	p.bump() // ')'
	p.skipWS()

	if !p.at('{') {
		return nil, p.fail(MacroError, "expected '{'")
	}

	p.bump()
	p.skipWS()

	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	p.skipWS()

	if !p.at('}') {
		return nil, p.fail(MacroError, "expected '}'")
	}

	p.bump()
	p.skipWS()

	if !p.at('>') {
		return nil, p.fail(MacroError, "expected '>'")
	}

	p.bump()

	return &Macro{ID: id, Params: params, Body: body}, nil
}

// parseEntity parses: Indices? WS Value Attr* '>'.
func (p *parser) parseEntity(id string) (Entry, *ParseError) {
	ent := &Entity{ID: id}

	if p.at('[') {
		indices, err := p.parseIndices(EntityError)
		if err != nil {
			return nil, err
		}

		ent.Indices = indices
	}

	if p.at('>') {
		return nil, p.fail(ValueError, "missing value")
	}

	if !isWS(p.peek()) {
		return nil, p.fail(EntityError, "expected whitespace before value")
	}

	value, err := p.parseEntryValue()
	if err != nil {
		return nil, err
	}

	ent.Value = value

	for {
		p.skipWS()

		switch {
		case p.at('>'):
			p.bump()

			return ent, nil

		case p.at(','):
			p.bump()

		case isIdentStart(p.peek()):
			attr, err := p.parseAttr()
			if err != nil {
				return nil, err
			}

			ent.Attrs = append(ent.Attrs, attr)

		case p.eof():
			return nil, p.fail(EntityError, "expected '>'")

		default:
			return nil, p.fail(EntityError, p.unexpected())
		}
	}
}

// parseAttr parses: Identifier Indices? ':' Value.
func (p *parser) parseAttr() (*Attr, *ParseError) {
	id, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}

	attr := &Attr{ID: id}

	if p.at('[') {
		indices, err := p.parseIndices(AttrError)
		if err != nil {
			return nil, err
		}

		attr.Indices = indices
	}

	p.skipLineWS()

	if !p.at(':') {
		return nil, p.fail(AttrError, "expected ':'")
	}

	p.bump()

	value, err := p.parseEntryValue()
	if err != nil {
		return nil, err
	}

	attr.Value = value

	return attr, nil
}

// parseIndices parses: '[' Expr (',' Expr)* ']'.
func (p *parser) parseIndices(kind ParseErrorKind) ([]Expr, *ParseError) {
	p.bump() // '['

	var indices []Expr

	for {
		p.skipWS()

		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		indices = append(indices, e)

		p.skipWS()

		switch {
		case p.at(','):
			p.bump()
		case p.at(']'):
			p.bump()

			return indices, nil
		default:
			return nil, p.fail(kind, "expected ',' or ']'")
		}
	}
}

// parseEntryValue parses the value of an entity or attribute, which is either
// a multi-line pattern starting on the next line or any other value after
// optional whitespace.
func (p *parser) parseEntryValue() (Value, *ParseError) {
	p.skipLineWS()

	if p.at('|') {
		return nil, p.fail(ValueError,
			"multi-line pattern must start on a new line")
	}

	if p.at('\n') || p.atString("\r\n") {
		start := p.mark()
		p.skipWS()

		if p.at('|') {
			p.reset(start)

			return p.parseMultiline()
		}
	}

	return p.parseValue()
}

// parseValue parses: String | Hash.
func (p *parser) parseValue() (Value, *ParseError) {
	switch {
	case p.at('\'') || p.at('"'):
		return p.parseString()
	case p.at('{'):
		return p.parseHash()
	case p.eof():
		return nil, p.fail(ValueError, "missing value")
	default:
		return nil, p.fail(ValueError, p.unexpected())
	}
}

// pattern accumulates the literal text and placeables of a string.
type pattern struct {
	parts []Expr
	buf   strings.Builder
	exprs bool
}

func (b *pattern) char(r rune) { b.buf.WriteRune(r) }

func (b *pattern) expr(e Expr) {
	b.flush()
	b.parts = append(b.parts, e)
	b.exprs = true
}

func (b *pattern) flush() {
	if b.buf.Len() > 0 {
		b.parts = append(b.parts, text(b.buf.String()))
		b.buf.Reset()
	}
}

func (b *pattern) value() Value {
	if !b.exprs {
		return &Str{Text: b.buf.String()}
	}

	b.flush()

	return &ComplexStr{Parts: b.parts}
}

// parseString parses a single- or double-quoted pattern.
func (p *parser) parseString() (Value, *ParseError) {
	start := p.mark()
	quote := p.bump()

	var b pattern

	for {
		switch {
		case p.eof():
			return nil, p.failAt(start, StrError, "unterminated string")

		case p.at('\\') && (p.peek2() == quote || p.peek2() == '{'):
			p.bump()
			b.char(p.bump())

		case p.at(quote):
			p.bump()

			return b.value(), nil

		case p.atString("{{"):
			if err := p.parsePlaceable(&b); err != nil {
				return nil, err
			}

		default:
			b.char(p.bump())
		}
	}
}

// parseMultiline parses continuation lines of the form `| text`. The cursor
// is positioned at the end of the line preceding the first continuation.
func (p *parser) parseMultiline() (Value, *ParseError) {
	var b pattern

	for first := true; ; first = false {
		start := p.mark()
		p.skipWS()

		if !p.at('|') {
			p.reset(start)

			break
		}

		p.bump()

		if p.at(' ') {
			p.bump()
		}

		if !first {
			b.char('\n')
		}

		for !p.eof() && !p.at('\n') && !p.atString("\r\n") && !p.atLineClose() {
			switch {
			case p.at('\\') && (p.peek2() == '{' || p.peek2() == '>'):
				p.bump()
				b.char(p.bump())

			case p.atString("{{"):
				if err := p.parsePlaceable(&b); err != nil {
					return nil, err
				}

			default:
				b.char(p.bump())
			}
		}

		if p.atLineClose() {
			break
		}
	}

	return b.value(), nil
}

// atLineClose reports whether the input continues with '>' followed only by
// blanks up to the end of the line. Such a '>' closes the entry instead of
// extending a multi-line pattern.
func (p *parser) atLineClose() bool {
	if !p.at('>') {
		return false
	}

	for i := 1; ; i++ {
		switch p.peekAt(i) {
		case ' ', '\t':
		case 0, '\n', '\r':
			return true
		default:
			return false
		}
	}
}

// parsePlaceable parses: '{{' Expr (',' Expr)* '}}'.
func (p *parser) parsePlaceable(b *pattern) *ParseError {
	p.bumpN(2)

	for {
		p.skipWS()

		e, err := p.parseExpr()
		if err != nil {
			return err
		}

		b.expr(e)

		p.skipWS()

		switch {
		case p.at(','):
			p.bump()
		case p.atString("}}"):
			p.bumpN(2)

			return nil
		default:
			return p.fail(StrError, "expected '}}'")
		}
	}
}

// parseHash parses: '{' (Variant (',' Variant)* ','?)? '}'.
func (p *parser) parseHash() (Value, *ParseError) {
	p.bump() // '{'

	hash := new(Hash)

	for {
		p.skipWS()

		if p.at('}') {
			p.bump()

			return hash, nil
		}

		if p.eof() {
			return nil, p.fail(HashError, "expected '}'")
		}

		def := false

		if p.at('*') {
			if hash.Default != "" {
				return nil, p.fail(HashError, "more than one default variant")
			}

			def = true

			p.bump()
		}

		at := p.mark()

		key, err := p.parseHashKey()
		if err != nil {
			return nil, err
		}

		if _, dup := hash.Lookup(key); dup {
			return nil, p.failAt(at, HashError, "duplicate key "+quoteString(key))
		}

		p.skipWS()

		if !p.at(':') {
			return nil, p.fail(HashError, "expected ':'")
		}

		p.bump()
		p.skipWS()

		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		hash.Variants = append(hash.Variants, &Variant{Key: key, Value: value})

		if def {
			hash.Default = key
		}

		p.skipWS()

		switch {
		case p.at(','):
			p.bump()
		case p.at('}'):
		default:
			return nil, p.fail(HashError, "expected ',' or '}'")
		}
	}
}

// parseHashKey parses a number, an identifier or a namespaced keyword.
func (p *parser) parseHashKey() (string, *ParseError) {
	if isDigit(p.peek()) || (p.at('-') && isDigit(p.peek2())) {
		return p.scanNumber(), nil
	}

	if !isIdentStart(p.peek()) {
		return "", p.fail(HashError, "expected key")
	}

	start := p.mark()
	for isIdentContinue(p.peek()) || p.at(' ') || p.at('/') {
		p.bump()
	}

	return strings.TrimRight(p.slice(start), " "), nil
}

// scanNumber consumes: '-'? Digit+ ('.' Digit+)?.
func (p *parser) scanNumber() string {
	start := p.mark()

	if p.at('-') {
		p.bump()
	}

	for isDigit(p.peek()) {
		p.bump()
	}

	if p.at('.') && isDigit(p.peek2()) {
		p.bump()

		for isDigit(p.peek()) {
			p.bump()
		}
	}

	return p.slice(start)
}

// parseComment parses: '/*' .* '*/'.
func (p *parser) parseComment() (Entry, *ParseError) {
	start := p.mark()
	p.bumpN(2)

	body := p.mark()

	for !p.atString("*/") {
		if p.eof() {
			return nil, p.failAt(start, EntryError, "unterminated comment")
		}

		p.bump()
	}

	text := p.slice(body)
	p.bumpN(2)

	return &Comment{Text: text}, nil
}

// parseImport parses: 'import(' String ')'.
func (p *parser) parseImport() (Entry, *ParseError) {
	p.bumpN(len("import("))
	p.skipWS()

	if !p.at('\'') && !p.at('"') {
		return nil, p.fail(EntryError, "expected import path")
	}

	v, err := p.parseString()
	if err != nil {
		return nil, err
	}

	path, ok := v.(*Str)
	if !ok {
		return nil, p.fail(EntryError, "import path must not contain placeables")
	}

	p.skipWS()

	if !p.at(')') {
		return nil, p.fail(EntryError, "expected ')'")
	}

	p.bump()

	return &Import{Path: path.Text}, nil
}

func quoteRune(r rune) string {
	switch r {
	case '\n':
		return "newline"
	case '\'':
		return `"'"`
	default:
		return "'" + string(r) + "'"
	}
}

func quoteString(s string) string {
	return "'" + s + "'"
}
