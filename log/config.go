package log

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"
	"time"
)

// Level represents the severity of a log message.
type Level slog.Level

const levelTraceMask = -8

const (
	LevelTrace Level = Level(levelTraceMask)  // trace
	LevelDebug Level = Level(slog.LevelDebug) // debug
	LevelInfo  Level = Level(slog.LevelInfo)  // info
	LevelWarn  Level = Level(slog.LevelWarn)  // warn
	LevelError Level = Level(slog.LevelError) // error
)

// DefaultLevel is the default log level.
const DefaultLevel = LevelInfo

var levels = []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}

// String returns the lower-case name of l. Levels between the named ones are
// written relative to the nearest named level below, e.g. "info+2".
func (l Level) String() string {
	for i := len(levels) - 1; i >= 0; i-- {
		if l < levels[i] {
			continue
		}

		name := [...]string{"trace", "debug", "info", "warn", "error"}[i]
		if l == levels[i] {
			return name
		}

		return fmt.Sprintf("%s+%d", name, int(l-levels[i]))
	}

	return fmt.Sprintf("trace%d", int(l-LevelTrace))
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using [ParseLevel].
func (l *Level) UnmarshalText(text []byte) error {
	*l = ParseLevel(string(text))

	return nil
}

// Levels returns an iterator over all defined log levels.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, level := range levels {
			if !yield(level.String()) {
				return
			}
		}
	}
}

// ParseLevel parses a string representation of a log level.
// Valid level strings are "TRACE", "DEBUG", "INFO", "WARN", and "ERROR",
// optionally followed by a "+" or "-" and an integer offset.
// Unrecognized strings yield [DefaultLevel].
func ParseLevel(s string) Level {
	// slog.Level.UnmarshalText doesn't know about trace
	if strings.EqualFold(s, "trace") {
		return LevelTrace
	}

	l := new(slog.Level)

	err := l.UnmarshalText([]byte(s))
	if err != nil {
		return DefaultLevel
	}

	return Level(*l)
}

// Format represents the output format for log messages.
type Format int

const (
	FormatText Format = iota // text
	FormatJSON               // json
)

// DefaultFormat is the default log message format.
const DefaultFormat = FormatJSON

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler using [ParseFormat].
func (f *Format) UnmarshalText(text []byte) error {
	*f = ParseFormat(string(text))

	return nil
}

// Formats returns an iterator over all defined log formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, format := range []Format{FormatJSON, FormatText} {
			if !yield(format.String()) {
				return
			}
		}
	}
}

// ParseFormat parses a string representation of a log format.
// Valid format strings are "json" and "text".
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return DefaultFormat
	}
}

// FormatTime defines a function that formats a time.Time value as a string.
type FormatTime func(time.Time) string

// DefaultTimeLayout is the default used when no valid time layout is provided.
const DefaultTimeLayout = time.RFC3339

// DefaultCallsite is the default setting for including the source location of
// the logging call in log output.
const DefaultCallsite = false

// DefaultPretty is the default setting for pretty printing log output.
const DefaultPretty = true

// config holds the configuration of a Logger. It is copied by value; a
// Logger never observes changes made to another Logger's config.
type config struct {
	output     io.Writer
	formatTime FormatTime
	level      Level
	format     Format
	callsite   bool
	pretty     bool
}

// makeConfig creates a new config with defaults applied, overridden by any
// provided options.
func makeConfig(w io.Writer, opts ...Option) config {
	return apply(apply(config{}, WithDefaults(w)), opts...)
}

// replaceAttr rewrites the built-in time and level attributes.
func (c config) replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			formatted := c.formatTime(t)
			if formatted == "" {
				return slog.Attr{}
			}

			a.Value = slog.StringValue(formatted)
		}

	case slog.LevelKey:
		// "TRACE" instead of slog's "DEBUG-4"
		if level, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToUpper(Level(level).String()))
		}
	}

	return a
}

// handler creates a slog.Handler based on the configuration.
func (c config) handler() slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource:   c.callsite,
		Level:       slog.Level(c.level),
		ReplaceAttr: c.replaceAttr,
	}

	switch c.format {
	case FormatJSON:
		if c.pretty {
			return newIndentHandler(c.output, opts)
		}

		return slog.NewJSONHandler(c.output, opts)

	case FormatText:
		if c.pretty {
			return newPrettyHandler(c.output, opts)
		}

		return slog.NewTextHandler(c.output, opts)

	default:
		return slog.DiscardHandler
	}
}

// Option transforms a config. Options are applied in order, so a later option
// overrides an earlier one.
type Option func(config) config

func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}

// WithDefaults returns a functional option that sets the default configuration.
// The default configuration is [DefaultTimeLayout], [DefaultLevel],
// [DefaultFormat], [DefaultPretty] and callsite info disabled.
func WithDefaults(w io.Writer) Option {
	return func(c config) config {
		if w == nil {
			w = io.Discard
		}

		c.output = w
		c.formatTime = makeFormatTimeFunc(DefaultTimeLayout)
		c.level = DefaultLevel
		c.format = DefaultFormat
		c.callsite = DefaultCallsite
		c.pretty = DefaultPretty

		return c
	}
}

// WithOutput returns a functional option that sets the output [io.Writer]
// for log messages.
// If a nil writer is provided, [io.Discard] is used instead.
func WithOutput(w io.Writer) Option {
	return func(c config) config {
		if w == nil {
			w = io.Discard
		}

		c.output = w

		return c
	}
}

// WithLevel returns a functional option that sets the minimum log level.
// Messages below this level are discarded.
func WithLevel(level Level) Option {
	return func(c config) config {
		c.level = level

		return c
	}
}

// WithFormat returns a functional option that sets the output format
// for log messages.
func WithFormat(format Format) Option {
	return func(c config) config {
		c.format = format

		return c
	}
}

// WithTimeLayout returns a functional option that sets the layout used to
// format log timestamps.
//
// The layout string can be one of the named layouts from the [time] package
// (for example, "RFC3339" or "RFC3339Nano"). Otherwise, it is passed verbatim
// to [time.Time.Format] and must follow the standard specification.
//
// If an empty string (after trimming whitespace) or "none" is provided,
// timestamps are omitted from log output.
func WithTimeLayout(layout string) Option {
	return func(c config) config {
		c.formatTime = makeFormatTimeFunc(layout)

		return c
	}
}

// WithCallsite returns a functional option that controls whether the source
// location of the logging call is included in log output.
func WithCallsite(enable bool) Option {
	return func(c config) config {
		c.callsite = enable

		return c
	}
}

// WithPretty returns a functional option that controls whether log output
// is meant for a human reader.
// For text format: colorized keys, values and level badges.
// For JSON format: one indented object per record.
func WithPretty(enable bool) Option {
	return func(c config) config {
		c.pretty = enable

		return c
	}
}

// timeLayout maps named layouts to their corresponding time.Time constants.
var timeLayout = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"kitchen":     time.Kitchen,
	"datetime":    time.DateTime,
	"timeonly":    time.TimeOnly,

	"stamp": time.Stamp,
	"none":  "",

	"stampmilli": time.StampMilli,
	"milli":      time.StampMilli,
	"ms":         time.StampMilli,

	"stampmicro": time.StampMicro,
	"micro":      time.StampMicro,
	"us":         time.StampMicro,

	"stampnano": time.StampNano,
	"nano":      time.StampNano,
	"ns":        time.StampNano,
}

func makeFormatTimeFunc(layout string) FormatTime {
	// Normalize only for lookup; custom layouts are used verbatim.
	key := strings.Map(
		func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				return r
			}

			return -1
		},
		strings.ToLower(layout),
	)

	if key == "" {
		return func(time.Time) string { return "" }
	}

	if std, ok := timeLayout[key]; ok {
		layout = std
	}

	if layout == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}
