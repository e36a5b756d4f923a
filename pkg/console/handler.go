// Package console provides a compact slog handler for terminal output
package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jba/slog/withsupport"
)

// Options configures a Handler
type Options struct {
	// Level reports the minimum level to log. If nil, the Handler uses slog.LevelInfo.
	Level slog.Leveler
	// TimeFormat for the leading timestamp. Empty means 15:04:05.
	TimeFormat string
}

// Handler writes one line per record: time, level, message, then key=value pairs.
// Grouped keys are joined with dots.
type Handler struct {
	opts Options
	with *withsupport.GroupOrAttrs
	mu   *sync.Mutex
	out  io.Writer
}

// NewHandler creates a handler writing to out
func NewHandler(out io.Writer, opts *Options) *Handler {
	h := &Handler{out: out, mu: &sync.Mutex{}}
	if opts != nil {
		h.opts = *opts
	}
	if h.opts.Level == nil {
		h.opts.Level = slog.LevelInfo
	}
	if h.opts.TimeFormat == "" {
		h.opts.TimeFormat = time.TimeOnly
	}
	return h
}

// Enabled reports whether level is at or above the configured minimum
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// WithGroup returns a handler that qualifies later keys with name
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{h.opts, h.with.WithGroup(name), h.mu, h.out}
}

// WithAttrs returns a handler that writes as on every record
func (h *Handler) WithAttrs(as []slog.Attr) slog.Handler {
	return &Handler{h.opts, h.with.WithAttrs(as), h.mu, h.out}
}

// Handle formats r as a single line and writes it while holding the shared lock
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	if !r.Time.IsZero() {
		b.WriteString(r.Time.Format(h.opts.TimeFormat))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s %s", r.Level, r.Message)

	groups := h.with.Apply(func(groups []string, a slog.Attr) {
		writeAttr(&b, groups, a)
	})
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, groups, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

// writeAttr flattens groups into dotted keys. Empty attrs are dropped.
func writeAttr(b *strings.Builder, groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			groups = append(groups[:len(groups):len(groups)], a.Key)
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, groups, ga)
		}
		return
	}

	b.WriteByte(' ')
	for _, g := range groups {
		b.WriteString(g)
		b.WriteByte('.')
	}
	b.WriteString(a.Key)
	b.WriteByte('=')
	switch a.Value.Kind() {
	case slog.KindString:
		if s := a.Value.String(); s == "" || strings.ContainsAny(s, " =\"") {
			fmt.Fprintf(b, "%q", s)
		} else {
			b.WriteString(s)
		}
	case slog.KindDuration:
		b.WriteString(a.Value.Duration().Round(time.Millisecond).String())
	case slog.KindFloat64:
		fmt.Fprintf(b, "%.4g", a.Value.Float64())
	default:
		b.WriteString(a.Value.String())
	}
}
