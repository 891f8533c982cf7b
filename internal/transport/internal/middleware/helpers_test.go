package middleware

import (
	"context"
	"log/slog"
	"sync"
)

// recordingHandler is a slog.Handler that keeps every record's attributes.
type recordingHandler struct {
	mu      sync.Mutex
	records []map[string]any
	levels  []slog.Level
	msgs    []string
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, attrs)
	h.levels = append(h.levels, r.Level)
	h.msgs = append(h.msgs, r.Message)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *recordingHandler) WithGroup(string) slog.Handler { return h }

// find returns the attributes of the first record logged with msg.
func (h *recordingHandler) find(msg string) (map[string]any, slog.Level, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, m := range h.msgs {
		if m == msg {
			return h.records[i], h.levels[i], true
		}
	}
	return nil, 0, false
}
