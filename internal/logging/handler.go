package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	timeColor  = color.New(color.FgHiBlack)
	debugColor = color.New(color.FgMagenta)
	infoColor  = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
	keyColor   = color.New(color.FgCyan)
)

// Handler is a slog.Handler producing compact, human-oriented text lines.
// Output is colorized when the writer is a terminal that supports it.
type Handler struct {
	opts  slog.HandlerOptions
	out   io.Writer
	mu    *sync.Mutex
	attrs []slog.Attr // pre-qualified with the group path open when attached
	group string      // dotted group path applied to record attributes
	color bool
}

// NewHandler creates a text handler writing to out. A nil opts uses the
// default minimum level of Info.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	h := &Handler{
		out:   out,
		mu:    &sync.Mutex{},
		color: SupportsColor(out),
	}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats the record as "TIME LEVEL message key=value ..." and
// writes it as a single line.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		buf.WriteString(h.paint(timeColor, r.Time.Format(time.Kitchen)))
		buf.WriteByte(' ')
	}

	buf.WriteString(h.paintLevel(r.Level))
	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		h.writeAttr(&buf, a, "")
	}
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&buf, a, h.group)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

// levelLabel renders custom levels by name instead of slog's offset
// notation ("DEBUG-4").
func levelLabel(l slog.Level) string {
	if l <= LevelTrace {
		return "TRACE"
	}
	return l.String()
}

func (h *Handler) paintLevel(l slog.Level) string {
	// Pad before colorizing so escape codes do not skew the alignment.
	label := fmt.Sprintf("%-5s", levelLabel(l))
	if !h.color {
		return label
	}
	switch {
	case l >= slog.LevelError:
		return errorColor.Sprint(label)
	case l >= slog.LevelWarn:
		return warnColor.Sprint(label)
	case l >= slog.LevelInfo:
		return infoColor.Sprint(label)
	default:
		return debugColor.Sprint(label)
	}
}

func (h *Handler) paint(c *color.Color, s string) string {
	if !h.color {
		return s
	}
	return c.Sprint(s)
}

// writeAttr appends " key=value" to buf, qualifying key with the dotted
// group prefix. Group-valued attributes are flattened recursively.
func (h *Handler) writeAttr(buf *bytes.Buffer, a slog.Attr, prefix string) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		sub := prefix
		if a.Key != "" {
			sub = joinKey(prefix, a.Key)
		}
		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, ga, sub)
		}
		return
	}
	key := joinKey(prefix, a.Key)
	fmt.Fprintf(buf, " %s=%v", h.paint(keyColor, key), a.Value.Any())
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// WithAttrs returns a handler that includes attrs on every record.
// The attrs are qualified with the currently open group path.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	h2.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	h2.attrs = append(h2.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = joinKey(h.group, a.Key)
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

// WithGroup returns a handler that qualifies subsequent attribute keys
// with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.group = joinKey(h.group, name)
	return &h2
}
