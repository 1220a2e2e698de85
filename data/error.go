package data

import (
	"log/slog"
	"strings"
)

// EncodeErrorKind classifies failures converting host values into [Data].
type EncodeErrorKind int

const (
	// UnsupportedType means the host value has no [Data] representation.
	UnsupportedType EncodeErrorKind = iota
	// KeyIsNotString means a map key is not a string.
	KeyIsNotString
	// MissingElements means a map key could not be produced at all.
	MissingElements
)

func (k EncodeErrorKind) String() string {
	switch k {
	case UnsupportedType:
		return "unsupported type"
	case KeyIsNotString:
		return "key is not a string"
	case MissingElements:
		return "missing elements"
	default:
		return "encode error"
	}
}

// EncodeError is returned by [Encode].
type EncodeError struct {
	Kind EncodeErrorKind
	Type string // Go type of the offending value, if known
	Path string // location of the offending value, e.g. "users[2].name"
}

func (e *EncodeError) Error() string {
	var sb strings.Builder

	sb.WriteString("encode: ")
	sb.WriteString(e.Kind.String())

	if e.Type != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Type)
		sb.WriteString(")")
	}

	if e.Path != "" {
		sb.WriteString(" at ")
		sb.WriteString(e.Path)
	}

	return sb.String()
}

// LogValue implements slog.LogValuer.
func (e *EncodeError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", e.Kind.String()),
		slog.String("type", e.Type),
		slog.String("path", e.Path),
	)
}

// DecodeErrorKind classifies failures converting [Data] into host values.
type DecodeErrorKind int

const (
	// WrongType means the data does not fit the requested host type.
	WrongType DecodeErrorKind = iota
	// MissingField means a struct field has no corresponding map entry.
	MissingField
)

func (k DecodeErrorKind) String() string {
	switch k {
	case WrongType:
		return "wrong type"
	case MissingField:
		return "missing field"
	default:
		return "decode error"
	}
}

// DecodeError is returned by [Decode].
type DecodeError struct {
	Kind  DecodeErrorKind
	Field string // name of the missing field for MissingField
	Want  string // requested host type for WrongType
	Got   string // kind of data found for WrongType
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case MissingField:
		return "decode: missing field " + `"` + e.Field + `"`
	default:
		msg := "decode: wrong type"
		if e.Want != "" || e.Got != "" {
			msg += ": cannot decode " + e.Got + " into " + e.Want
		}

		if e.Field != "" {
			msg += " (field " + `"` + e.Field + `"` + ")"
		}

		return msg
	}
}

// LogValue implements slog.LogValuer.
func (e *DecodeError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", e.Kind.String()),
		slog.String("field", e.Field),
		slog.String("want", e.Want),
		slog.String("got", e.Got),
	)
}
