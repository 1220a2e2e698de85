package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrReadInput   = NewError("failed to read input")
	ErrDecodeWire  = NewError("invalid wire AST")
	ErrUnknownID   = NewError("unknown entry")
	ErrInvalidData = NewError("invalid input data")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.msg == "" || t.err != nil {
		return false
	}

	return t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// ParseErrorKind identifies the grammar production that failed.
type ParseErrorKind int

const (
	IdentifierError ParseErrorKind = iota // identifier error
	EntryError                            // entry error
	EntityError                           // entity error
	MacroError                            // macro error
	ExprError                             // expression error
	OpError                               // operator error
	ParenError                            // parenthesis error
	AttrError                             // attribute error
	CallError                             // call error
	ValueError                            // value error
	VarError                              // variable error
	StrError                              // string error
	HashError                             // hash error
)

var parseErrorKinds = [...]string{
	IdentifierError: "identifier error",
	EntryError:      "entry error",
	EntityError:     "entity error",
	MacroError:      "macro error",
	ExprError:       "expression error",
	OpError:         "operator error",
	ParenError:      "parenthesis error",
	AttrError:       "attribute error",
	CallError:       "call error",
	ValueError:      "value error",
	VarError:        "variable error",
	StrError:        "string error",
	HashError:       "hash error",
}

func (k ParseErrorKind) String() string {
	if k >= 0 && int(k) < len(parseErrorKinds) {
		return parseErrorKinds[k]
	}

	return "ParseErrorKind(" + strconv.Itoa(int(k)) + ")"
}

// ParseError reports where and why a resource failed to parse.
type ParseError struct {
	Kind   ParseErrorKind
	Line   int    // 1-based
	Col    int    // 1-based, in characters
	Detail string // optional description, e.g. "expected '>'"
	Source string // the original source input, if known
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg := e.Message()

	if e.Source != "" {
		if snippet := e.Snippet(); snippet != "" {
			return msg + ":\n" + snippet
		}
	}

	return msg
}

// Message returns the one-line description of the error without a snippet.
func (e *ParseError) Message() string {
	var buf strings.Builder

	buf.WriteString(e.Kind.String())
	buf.WriteString(" at line ")
	buf.WriteString(strconv.Itoa(e.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Col))

	if e.Detail != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Detail)
	}

	return buf.String()
}

// Snippet returns the offending source line with a caret under the error
// column, or "" if the line is out of range.
func (e *ParseError) Snippet() string {
	lines := strings.Split(e.Source, "\n")
	if e.Line <= 0 || e.Line > len(lines) {
		return ""
	}

	var src strings.Builder

	line := strings.TrimRight(lines[e.Line-1], "\r")

	// Print the line with line number
	src.WriteString("  ")
	src.WriteString(strconv.Itoa(e.Line))
	src.WriteString(" | ")
	src.WriteString(line)
	src.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(strconv.Itoa(e.Line))+5)

	if e.Col > 0 {
		padding += strings.Repeat(" ", e.Col-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", e.Kind.String()),
		slog.Int("line", e.Line),
		slog.Int("column", e.Col),
	}

	if e.Detail != "" {
		attrs = append(attrs, slog.String("detail", e.Detail))
	}

	return slog.GroupValue(attrs...)
}

// ResolveErrorKind classifies resolution failures.
type ResolveErrorKind int

const (
	WrongType         ResolveErrorKind = iota // wrong type
	WrongNumberOfArgs                         // wrong number of arguments
	MissingIndex                              // missing index
	MissingAttr                               // missing attribute
	MissingVar                                // missing variable
	MissingIdent                              // missing identifier
	DepthExceeded                             // maximum resolution depth exceeded
	DivisionByZero                            // division by zero
	IntegerOverflow                           // integer overflow
)

var resolveErrorKinds = [...]string{
	WrongType:         "wrong type",
	WrongNumberOfArgs: "wrong number of arguments",
	MissingIndex:      "missing index",
	MissingAttr:       "missing attribute",
	MissingVar:        "missing variable",
	MissingIdent:      "missing identifier",
	DepthExceeded:     "maximum resolution depth exceeded",
	DivisionByZero:    "division by zero",
	IntegerOverflow:   "integer overflow",
}

func (k ResolveErrorKind) String() string {
	if k >= 0 && int(k) < len(resolveErrorKinds) {
		return resolveErrorKinds[k]
	}

	return "ResolveErrorKind(" + strconv.Itoa(int(k)) + ")"
}

// ResolveError reports why an entry could not be resolved to data.
type ResolveError struct {
	Kind    ResolveErrorKind
	Name    string   // variable, identifier, index or attribute involved
	Entry   string   // id of the top-level entry being resolved, if known
	Suggest []string // close identifiers for MissingIdent
}

func (e *ResolveError) Error() string {
	var buf strings.Builder

	buf.WriteString(e.Kind.String())

	if e.Name != "" {
		buf.WriteString(" ")
		buf.WriteString(strconv.Quote(e.Name))
	}

	if e.Entry != "" {
		buf.WriteString(" in ")
		buf.WriteString(strconv.Quote(e.Entry))
	}

	if len(e.Suggest) > 0 {
		buf.WriteString(" (did you mean ")

		for i, s := range e.Suggest {
			if i > 0 {
				buf.WriteString(", ")
			}

			buf.WriteString(strconv.Quote(s))
		}

		buf.WriteString("?)")
	}

	return buf.String()
}

// Is reports whether target is a ResolveError of the same kind and, if the
// target names something, the same name.
func (e *ResolveError) Is(target error) bool {
	t, ok := target.(*ResolveError)
	if !ok {
		return false
	}

	return t.Kind == e.Kind && (t.Name == "" || t.Name == e.Name)
}

// LogValue implements slog.LogValuer.
func (e *ResolveError) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("error", e.Kind.String())}

	if e.Name != "" {
		attrs = append(attrs, slog.String("name", e.Name))
	}

	if e.Entry != "" {
		attrs = append(attrs, slog.String("entry", e.Entry))
	}

	if len(e.Suggest) > 0 {
		attrs = append(attrs, slog.Any("suggest", e.Suggest))
	}

	return slog.GroupValue(attrs...)
}

func resolveError(kind ResolveErrorKind, name string) *ResolveError {
	return &ResolveError{Kind: kind, Name: name}
}
