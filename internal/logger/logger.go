package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lepinkainen/humanlog"
)

// RequestIDFunc extracts the request id stored in a context, if any.
type RequestIDFunc func(ctx context.Context) string

// ParseLevel maps LOG_LEVEL values onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

// New builds a logger writing to w. format is "text" (human readable) or
// "json". Records carry request_id when the context has one.
func New(w io.Writer, lvl slog.Level, format string, requestID RequestIDFunc) (*slog.Logger, error) {
	var h slog.Handler
	switch format {
	case "json":
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	case "text", "":
		h = humanlog.NewHandler(w, &humanlog.Options{Level: lvl})
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be json or text, got %q", format)
	}
	return slog.New(&handler{base: h, requestID: requestID}), nil
}

// Setup builds a logger with New and installs it as the slog default.
func Setup(w io.Writer, level, format string, requestID RequestIDFunc) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l, err := New(w, lvl, format, requestID)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(l)
	return l, nil
}

type handler struct {
	base      slog.Handler
	requestID RequestIDFunc
}

func (h *handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *handler) Handle(ctx context.Context, record slog.Record) error {
	if h.requestID != nil && ctx != nil {
		if id := h.requestID(ctx); id != "" {
			record = record.Clone()
			record.AddAttrs(slog.String("request_id", id))
		}
	}
	return h.base.Handle(ctx, record)
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &handler{base: h.base.WithAttrs(attrs), requestID: h.requestID}
}

func (h *handler) WithGroup(name string) slog.Handler {
	return &handler{base: h.base.WithGroup(name), requestID: h.requestID}
}
