package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// styles holds the lipgloss styles of a pretty text handler. Styles are bound
// to a renderer for the handler's writer, so color is dropped when the writer
// is not a terminal.
type styles struct {
	key, str, num, boolean, null, msg lipgloss.Style

	level map[slog.Level]lipgloss.Style
}

func makeStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return styles{
		key:     fg("8"),
		str:     fg("6"),
		num:     fg("3"),
		boolean: fg("2"),
		null:    fg("8"),
		msg:     r.NewStyle().Bold(true),
		level: map[slog.Level]lipgloss.Style{
			slog.Level(LevelTrace): fg("5"),
			slog.LevelDebug:        fg("4"),
			slog.LevelInfo:         fg("2"),
			slog.LevelWarn:         fg("3"),
			slog.LevelError:        fg("1").Bold(true),
		},
	}
}

// levelStyle returns the style of the nearest named level at or below l.
func (s styles) levelStyle(l slog.Level) lipgloss.Style {
	for i := len(levels) - 1; i >= 0; i-- {
		if l >= slog.Level(levels[i]) {
			return s.level[slog.Level(levels[i])]
		}
	}

	return s.level[slog.Level(LevelTrace)]
}

// prettyHandler writes one colorized line per record:
//
//	TIME LEVEL message key=value group.key=value
type prettyHandler struct {
	opts   slog.HandlerOptions
	styles styles
	mu     *sync.Mutex
	w      io.Writer
	prefix string // rendered attributes from WithAttrs
	group  string // dotted group prefix for subsequent keys
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		styles: makeStyles(w),
		mu:     &sync.Mutex{},
		w:      w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		if a := h.replace(slog.Time(slog.TimeKey, r.Time)); !a.Equal(slog.Attr{}) {
			buf.WriteString(h.styles.key.Render(a.Value.String()))
			buf.WriteByte(' ')
		}
	}

	level := h.replace(slog.Any(slog.LevelKey, r.Level)).Value.String()
	buf.WriteString(h.styles.levelStyle(r.Level).Render(fmt.Sprintf("%-5s", level)))
	buf.WriteByte(' ')
	buf.WriteString(h.styles.msg.Render(r.Message))

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			h.writeAttr(&buf, "", slog.String(slog.SourceKey,
				src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	buf.WriteString(h.prefix)

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&buf, h.group, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var buf bytes.Buffer

	for _, a := range attrs {
		h.writeAttr(&buf, h.group, a)
	}

	out := *h
	out.prefix = h.prefix + buf.String()

	return &out
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	out := *h
	out.group = h.group + name + "."

	return &out
}

func (h *prettyHandler) replace(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(nil, a)
}

func (h *prettyHandler) writeAttr(buf *bytes.Buffer, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		sub := group
		if a.Key != "" {
			sub = group + a.Key + "."
		}

		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, sub, ga)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(h.styles.key.Render(group + a.Key + "="))
	h.writeValue(buf, a.Value)
}

func (h *prettyHandler) writeValue(buf *bytes.Buffer, v slog.Value) {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			s = strconv.Quote(s)
		}

		buf.WriteString(h.styles.str.Render(s))

	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindDuration:
		buf.WriteString(h.styles.num.Render(v.String()))

	case slog.KindBool:
		buf.WriteString(h.styles.boolean.Render(v.String()))

	case slog.KindAny:
		if v.Any() == nil {
			buf.WriteString(h.styles.null.Render("null"))

			return
		}

		buf.WriteString(h.styles.str.Render(fmt.Sprint(v.Any())))

	default:
		buf.WriteString(h.styles.str.Render(v.String()))
	}
}

// indentHandler writes each record as an indented JSON object. It delegates
// encoding to a [slog.JSONHandler] writing into a shared buffer.
type indentHandler struct {
	inner slog.Handler
	mu    *sync.Mutex
	buf   *bytes.Buffer
	w     io.Writer
}

func newIndentHandler(w io.Writer, opts *slog.HandlerOptions) *indentHandler {
	buf := new(bytes.Buffer)

	return &indentHandler{
		inner: slog.NewJSONHandler(buf, opts),
		mu:    &sync.Mutex{},
		buf:   buf,
		w:     w,
	}
}

func (h *indentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *indentHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf.Reset()

	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	var out bytes.Buffer

	if err := json.Indent(&out, bytes.TrimSpace(h.buf.Bytes()), "", "  "); err != nil {
		return err
	}

	out.WriteByte('\n')

	_, err := h.w.Write(out.Bytes())

	return err
}

func (h *indentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := *h
	out.inner = h.inner.WithAttrs(attrs)

	return &out
}

func (h *indentHandler) WithGroup(name string) slog.Handler {
	out := *h
	out.inner = h.inner.WithGroup(name)

	return &out
}
