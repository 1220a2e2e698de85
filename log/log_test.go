package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf)

	if logger.Level() != LevelInfo {
		t.Errorf("expected default level info, got %v", logger.Level())
	}

	if logger.callsite {
		t.Error("expected callsite disabled by default")
	}

	if logger.Format() != FormatJSON {
		t.Errorf("expected default format json, got %v", logger.Format())
	}

	if !logger.pretty {
		t.Error("expected pretty enabled by default")
	}
}

func TestLogger_Make_WithLevel_FiltersMessages(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithLevel(LevelDebug))

	logger.Debug("debug message")

	if !strings.Contains(buf.String(), "debug message") {
		t.Error("debug message not logged after setting level to Debug")
	}

	buf.Reset()

	logger = Make(&buf, WithLevel(LevelError))
	logger.Info("info message")

	if buf.Len() > 0 {
		t.Error("info message logged when level is Error")
	}

	logger.Error("error message")

	if !strings.Contains(buf.String(), "error message") {
		t.Error("error message not logged at Error level")
	}
}

func TestLogger_Make_WithTimeLayout(t *testing.T) {
	tests := []struct {
		name   string
		layout string
		want   func(string) bool
	}{
		{"rfc3339 named", "RFC3339", func(s string) bool {
			return strings.Contains(s, `"time":"`) && strings.Contains(s, "T")
		}},
		{"rfc3339 nano named", "RFC3339Nano", func(s string) bool {
			return strings.Contains(s, `"time":"`) && strings.Contains(s, ".")
		}},
		{"none", "none", func(s string) bool {
			return !strings.Contains(s, `"time"`)
		}},
		{"empty", "  ", func(s string) bool {
			return !strings.Contains(s, `"time"`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			logger := Make(&buf, WithTimeLayout(tt.layout), WithPretty(false))
			logger.Info("test")

			if !tt.want(buf.String()) {
				t.Errorf("unexpected output: %s", buf.String())
			}
		})
	}
}

func TestLogger_Make_WithCallsite(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithCallsite(true), WithPretty(false))
	logger.Info("test message")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("callsite not included when enabled: %s", buf.String())
	}

	buf.Reset()

	logger = Make(&buf, WithCallsite(false), WithPretty(false))
	logger.Info("test message")

	if strings.Contains(buf.String(), "source") {
		t.Error("callsite included when disabled")
	}
}

func TestLogger_Make_WithFormat(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer

		logger := Make(&buf, WithFormat(FormatJSON), WithPretty(false))
		logger.Info("test message", slog.String("key", "value"))

		var result map[string]any
		if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
			t.Fatalf("failed to parse JSON output: %v", err)
		}

		if result["msg"] != "test message" {
			t.Errorf("expected msg=test message, got %v", result["msg"])
		}

		if result["key"] != "value" {
			t.Errorf("expected key=value, got %v", result["key"])
		}
	})

	t.Run("indented json", func(t *testing.T) {
		var buf bytes.Buffer

		logger := Make(&buf, WithFormat(FormatJSON), WithPretty(true))
		logger.Info("test message", slog.String("key", "value"))

		if !strings.Contains(buf.String(), "\n  \"msg\": \"test message\"") {
			t.Errorf("expected indented JSON, got: %s", buf.String())
		}

		var result map[string]any
		if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
			t.Fatalf("failed to parse JSON output: %v", err)
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer

		logger := Make(&buf, WithFormat(FormatText), WithPretty(false))
		logger.Info("test message", slog.String("key", "value"))

		output := buf.String()
		if !strings.Contains(output, "test message") {
			t.Error("message not found in text output")
		}

		if !strings.Contains(output, "key=value") {
			t.Error("key=value not found in text output")
		}
	})
}

func TestLogger_PrettyText(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithFormat(FormatText),
		WithPretty(true),
		WithLevel(LevelTrace),
		WithTimeLayout("none"))

	logger.
		With(slog.String("id", "hi")).
		WithGroup("step").
		Trace("resolve complete",
			slog.Int("depth", 3),
			slog.String("value", "two words"),
			slog.Group("ctx", slog.Bool("indexed", true)))

	// Writers that are not terminals render without color.
	want := `TRACE resolve complete id=hi step.depth=3 step.value="two words" step.ctx.indexed=true` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestLogger_LevelNames(t *testing.T) {
	tests := []struct {
		logFunc func(Logger, string, ...slog.Attr)
		level   string
	}{
		{Logger.Trace, "TRACE"},
		{Logger.Debug, "DEBUG"},
		{Logger.Info, "INFO"},
		{Logger.Warn, "WARN"},
		{Logger.Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer

			logger := Make(&buf, WithLevel(LevelTrace), WithPretty(false))
			tt.logFunc(logger, "test message")

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("failed to parse JSON output: %v", err)
			}

			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %q", entry["level"], tt.level)
			}
		})
	}
}

func TestLogger_LogMethods_RespectLevelFiltering(t *testing.T) {
	tests := []struct {
		name     string
		logFunc  func(Logger, string, ...slog.Attr)
		minLevel Level
		logged   bool
	}{
		{"trace at debug", Logger.Trace, LevelDebug, false},
		{"debug at debug", Logger.Debug, LevelDebug, true},
		{"debug at info", Logger.Debug, LevelInfo, false},
		{"info at info", Logger.Info, LevelInfo, true},
		{"info at warn", Logger.Info, LevelWarn, false},
		{"warn at warn", Logger.Warn, LevelWarn, true},
		{"warn at error", Logger.Warn, LevelError, false},
		{"error at error", Logger.Error, LevelError, true},
		{"error at debug", Logger.Error, LevelDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			logger := Make(&buf, WithLevel(tt.minLevel))
			tt.logFunc(logger, "test message")

			if logged := buf.Len() > 0; logged != tt.logged {
				t.Errorf("expected logged=%v, got output length=%d", tt.logged, buf.Len())
			}

			if got := logger.Enabled(context.Background(), LevelTrace); got != (tt.minLevel <= LevelTrace) {
				t.Errorf("Enabled(trace) = %v", got)
			}
		})
	}
}

func TestLogger_ConcurrentCalls_ThreadSafe(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		var (
			buf syncBuffer
			wg  sync.WaitGroup
		)

		logger := Make(&buf, WithPretty(pretty), WithFormat(FormatText))

		for i := range 100 {
			wg.Go(func() {
				logger.Info("concurrent message", slog.Int("id", i))
			})
		}

		wg.Wait()

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 100 {
			t.Errorf("pretty=%v: expected 100 log lines, got %d", pretty, len(lines))
		}
	}
}

func TestLogger_Wrap(t *testing.T) {
	var first, second bytes.Buffer

	base := Make(&first, WithLevel(LevelWarn), WithPretty(false))
	wrapped := base.Wrap(WithOutput(&second), WithLevel(LevelDebug))

	base.Debug("hidden")
	wrapped.Debug("shown")

	if first.Len() != 0 {
		t.Errorf("base logger changed by Wrap: %s", first.String())
	}

	if !strings.Contains(second.String(), "shown") {
		t.Errorf("wrapped logger did not log: %s", second.String())
	}

	if wrapped.Format() != FormatJSON {
		t.Errorf("wrapped format = %v, want inherited json", wrapped.Format())
	}
}

func TestLogger_With_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON), WithPretty(false))
	logger.With(slog.String("key", "value")).Info("test message")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to unmarshal log entry: %v", err)
	}

	if val, ok := entry["key"]; !ok || val != "value" {
		t.Errorf("expected key=value in log entry, got %v", val)
	}
}

func TestLogger_ZeroValue_Safety(t *testing.T) {
	var l Logger

	l.Trace("test")
	l.Debug("test")
	l.Info("test")
	l.Warn("test")
	l.Error("test")
	l.TraceContext(context.Background(), "test")

	if l.With(slog.String("key", "value")).Logger != nil {
		t.Error("expected nil logger from zero value With")
	}

	if l.Enabled(context.Background(), LevelError) {
		t.Error("zero logger reports enabled")
	}

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Error("zero logger should report defaults")
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(false))

	for b.Loop() {
		buf.Reset()
		logger.Info("benchmark message", slog.Int("iteration", 1))
	}
}

func BenchmarkLogger_Trace_Disabled(b *testing.B) {
	var buf bytes.Buffer

	logger := Make(&buf)

	for b.Loop() {
		logger.Trace("benchmark message", slog.Int("iteration", 1))
	}
}

// syncBuffer is a bytes.Buffer safe for concurrent writes, for handlers that
// do not serialize writes themselves.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}
