package locale

import (
	"log/slog"
	"strings"
)

// Op names the localization stage that failed.
type Op string

const (
	OpEncode  Op = "encode"
	OpResolve Op = "resolve"
	OpDecode  Op = "decode"
)

// LocalizeError wraps a failure of [Locale.Localize], [Locale.LocalizeData]
// or [Locale.Entry] with the stage it occurred in.
type LocalizeError struct {
	Op  Op
	Tag string
	Err error
}

func (e *LocalizeError) Error() string {
	var sb strings.Builder

	sb.WriteString("localize")

	if e.Tag != "" {
		sb.WriteString(" " + e.Tag)
	}

	sb.WriteString(": " + string(e.Op))

	if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	}

	return sb.String()
}

func (e *LocalizeError) Unwrap() error { return e.Err }

// LogValue implements slog.LogValuer.
func (e *LocalizeError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("op", string(e.Op)),
		slog.String("locale", e.Tag),
	}

	if e.Err != nil {
		attrs = append(attrs, slog.Any("cause", e.Err))
	}

	return slog.GroupValue(attrs...)
}
