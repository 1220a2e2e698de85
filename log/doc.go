// Package log provides a leveled structured logger based on [log/slog].
//
// A [Logger] is configured once with functional options and is safe for
// concurrent use. The zero Logger discards everything, which lets library
// code accept a Logger in its options without requiring one.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("resource loaded", slog.String("path", path))
//	logger.Error("resolve failed", slog.Any("error", err))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"),
//		log.WithCallsite(true))
//
// [Logger.Wrap] derives a logger with some options replaced. The package-level
// functions ([Info], [DebugContext], ...) log through a default logger that
// [Config] reconfigures.
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] and is used for per-step parser and
// resolver diagnostics. Levels print in upper case, e.g. "TRACE".
//
// # Pretty Output
//
// With [WithPretty], text output is colorized with lipgloss when the writer
// is a terminal, and JSON output is indented one object per record.
package log
