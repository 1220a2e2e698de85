package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Logger is a leveled structured logger. The zero value discards all
// messages, so a Logger may be embedded in option structs without
// initialization.
type Logger struct {
	*slog.Logger
	config
}

// Make creates a new [Logger] that writes to the specified writer.
// The default configuration is [DefaultFormat], [DefaultLevel],
// [DefaultTimeLayout], [DefaultPretty] and callsite info disabled.
//
// Optional configuration can be applied using functional options like
// [WithFormat], [WithLevel], [WithTimeLayout], and [WithCallsite].
func Make(w io.Writer, opts ...Option) Logger {
	cfg := makeConfig(w, opts...)

	return Logger{
		config: cfg,
		Logger: slog.New(cfg.handler()),
	}
}

// Wrap returns a new [Logger] using the configuration of l overridden by opts.
// Attributes added with [Logger.With] are not carried over.
func (l Logger) Wrap(opts ...Option) Logger {
	cfg := l.config
	if l.Logger == nil {
		cfg = makeConfig(nil)
	}

	cfg = apply(cfg, opts...)

	return Logger{
		config: cfg,
		Logger: slog.New(cfg.handler()),
	}
}

// With returns a new [Logger] that includes the given attributes in each log
// message.
func (l Logger) With(attrs ...slog.Attr) Logger {
	if l.Logger == nil {
		return l
	}

	return Logger{
		config: l.config,
		Logger: slog.New(l.Handler().WithAttrs(attrs)),
	}
}

// WithGroup returns a new [Logger] that qualifies the keys of subsequent
// attributes with name.
func (l Logger) WithGroup(name string) Logger {
	if l.Logger == nil {
		return l
	}

	return Logger{
		config: l.config,
		Logger: slog.New(l.Handler().WithGroup(name)),
	}
}

// Level returns the current minimum log level.
func (l Logger) Level() Level {
	if l.Logger == nil {
		return DefaultLevel
	}

	return l.level
}

// Format returns the current log output format.
func (l Logger) Format() Format {
	if l.Logger == nil {
		return DefaultFormat
	}

	return l.format
}

// Enabled reports whether l emits messages at level.
func (l Logger) Enabled(ctx context.Context, level Level) bool {
	return l.Logger != nil && l.Logger.Enabled(ctx, slog.Level(level))
}

// TraceContext logs a message at Trace level with the provided context.
func (l Logger) TraceContext(
	ctx context.Context,
	msg string,
	attrs ...slog.Attr,
) {
	l.emit(ctx, LevelTrace, msg, attrs...)
}

// Trace logs a message at Trace level.
func (l Logger) Trace(msg string, attrs ...slog.Attr) {
	l.emit(DefaultContextProvider(), LevelTrace, msg, attrs...)
}

// DebugContext logs a message at Debug level with the provided context.
func (l Logger) DebugContext(
	ctx context.Context,
	msg string,
	attrs ...slog.Attr,
) {
	l.emit(ctx, LevelDebug, msg, attrs...)
}

// Debug logs a message at Debug level.
func (l Logger) Debug(msg string, attrs ...slog.Attr) {
	l.emit(DefaultContextProvider(), LevelDebug, msg, attrs...)
}

// InfoContext logs a message at Info level with the provided context.
func (l Logger) InfoContext(
	ctx context.Context,
	msg string,
	attrs ...slog.Attr,
) {
	l.emit(ctx, LevelInfo, msg, attrs...)
}

// Info logs a message at Info level.
func (l Logger) Info(msg string, attrs ...slog.Attr) {
	l.emit(DefaultContextProvider(), LevelInfo, msg, attrs...)
}

// WarnContext logs a message at Warn level with the provided context.
func (l Logger) WarnContext(
	ctx context.Context,
	msg string,
	attrs ...slog.Attr,
) {
	l.emit(ctx, LevelWarn, msg, attrs...)
}

// Warn logs a message at Warn level.
func (l Logger) Warn(msg string, attrs ...slog.Attr) {
	l.emit(DefaultContextProvider(), LevelWarn, msg, attrs...)
}

// ErrorContext logs a message at Error level with the provided context.
func (l Logger) ErrorContext(
	ctx context.Context,
	msg string,
	attrs ...slog.Attr,
) {
	l.emit(ctx, LevelError, msg, attrs...)
}

// Error logs a message at Error level.
func (l Logger) Error(msg string, attrs ...slog.Attr) {
	l.emit(DefaultContextProvider(), LevelError, msg, attrs...)
}

// callerSkip is the number of frames between runtime.Callers and the code
// that called a logging method or function: runtime.Callers, emit, and the
// exported method or function.
const callerSkip = 3

// emit writes a log message at the specified level. It must be called
// directly by the exported logging method or function.
func (l Logger) emit(
	ctx context.Context,
	level Level,
	msg string,
	attrs ...slog.Attr,
) {
	if l.Logger == nil || !l.Logger.Enabled(ctx, slog.Level(level)) {
		return
	}

	var pcs [1]uintptr

	runtime.Callers(callerSkip, pcs[:])

	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pcs[0])
	r.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, r)
}
