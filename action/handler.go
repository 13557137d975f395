package action

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
)

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// Level defaults to slog.LevelInfo.
	Level slog.Leveler
}

// Handler is a slog.Handler that writes records as workflow commands:
// debug -> ::debug::, warn -> ::warning::, error -> ::error::, info -> plain.
type Handler struct {
	console *Console
	level   slog.Leveler
	attrs   []slog.Attr
	group   string
}

// NewHandler creates a handler writing through console.
func NewHandler(console *Console, opts *HandlerOptions) *Handler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &Handler{console: console, level: level}
}

// Enabled reports whether level passes the configured minimum.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes one record.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)
	for _, attr := range h.attrs {
		writeAttr(&b, "", attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		writeAttr(&b, h.group, attr)
		return true
	})
	line := b.String()

	switch {
	case r.Level >= slog.LevelError:
		h.console.Error(line)
	case r.Level >= slog.LevelWarn:
		h.console.Warning(line)
	case r.Level >= slog.LevelInfo:
		h.console.Info(line)
	default:
		h.console.Debug(line)
	}
	return nil
}

// WithAttrs returns a handler that appends attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, attr := range attrs {
		if h.group != "" {
			attr.Key = h.group + "." + attr.Key
		}
		next.attrs = append(next.attrs, attr)
	}
	return &next
}

// WithGroup returns a handler that prefixes later attribute keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	if h.group != "" {
		next.group = h.group + "." + name
	} else {
		next.group = name
	}
	return &next
}

func writeAttr(b *strings.Builder, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	key := attr.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if attr.Value.Kind() == slog.KindGroup {
		if attr.Key == "" {
			key = prefix
		}
		for _, sub := range attr.Value.Group() {
			writeAttr(b, key, sub)
		}
		return
	}

	value := attr.Value.String()
	if value == "" || strings.ContainsAny(value, " \t\"=") {
		value = strconv.Quote(value)
	}
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(value)
}

var _ slog.Handler = (*Handler)(nil)
