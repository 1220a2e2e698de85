package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestPackage_LogFunctions_UseDefaultLogger(t *testing.T) {
	original := Default()
	t.Cleanup(func() { SetDefault(original) })

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithLevel(LevelTrace), WithPretty(false)))

	ctx := context.Background()

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Trace", Trace, "TRACE"},
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
		{"TraceContext", func(m string, a ...slog.Attr) { TraceContext(ctx, m, a...) }, "TRACE"},
		{"DebugContext", func(m string, a ...slog.Attr) { DebugContext(ctx, m, a...) }, "DEBUG"},
		{"InfoContext", func(m string, a ...slog.Attr) { InfoContext(ctx, m, a...) }, "INFO"},
		{"WarnContext", func(m string, a ...slog.Attr) { WarnContext(ctx, m, a...) }, "WARN"},
		{"ErrorContext", func(m string, a ...slog.Attr) { ErrorContext(ctx, m, a...) }, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("package message", slog.String("key", "value"))

			output := buf.String()
			for _, want := range []string{"package message", `"level":"` + tt.level + `"`, `"key":"value"`} {
				if !strings.Contains(output, want) {
					t.Errorf("expected output to contain %q, got: %s", want, output)
				}
			}
		})
	}
}

func TestPackage_Config(t *testing.T) {
	original := Default()
	t.Cleanup(func() { SetDefault(original) })

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithPretty(false)))
	Config(WithLevel(LevelWarn), WithFormat(FormatText))

	Info("hidden")
	With(slog.String("component", "test")).Warn("shown")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("info logged at warn level: %s", output)
	}

	if !strings.Contains(output, "msg=shown") || !strings.Contains(output, "component=test") {
		t.Errorf("expected text output with attributes, got: %s", output)
	}
}

func TestPackage_Callsite(t *testing.T) {
	original := Default()
	t.Cleanup(func() { SetDefault(original) })

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithPretty(false), WithCallsite(true)))
	Info("where")

	if !strings.Contains(buf.String(), "pkg_test.go") {
		t.Errorf("expected callsite in this file, got: %s", buf.String())
	}
}
