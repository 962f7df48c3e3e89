// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that mirrors important records into
// the events table, the diagnostic sink for failed submissions and other
// operational problems.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/olegiv/reclaim-go/internal/store"
)

// EventLogHandler is a slog.Handler that wraps another handler and also writes
// WARN and ERROR level logs to the events table.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level  // Minimum level to persist (default: WARN)
	attrs   []slog.Attr // attributes added through WithAttrs
	group   string
}

// NewEventLogHandler creates a new EventLogHandler that wraps the given handler.
// Logs at WARN level and above will be written to both the wrapped handler and the events table.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, db, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates a new EventLogHandler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.writeEvent(r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	c.inner = h.inner.WithAttrs(attrs)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		c.attrs = append(c.attrs, a)
	}
	return c
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	c := h.clone()
	c.inner = h.inner.WithGroup(name)
	if h.group != "" {
		c.group = h.group + "." + name
	} else {
		c.group = name
	}
	return c
}

func (h *EventLogHandler) clone() *EventLogHandler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)
	return &c
}

// writeEvent persists a record. Failures are dropped: the record already
// reached the wrapped handler.
func (h *EventLogHandler) writeEvent(r slog.Record) {
	attrs := h.collectAttrs(r)

	// Background context so the event survives a cancelled request.
	_, _ = h.queries.CreateEvent(context.Background(), store.CreateEventParams{
		Level:     eventLevel(r.Level),
		Category:  category(r.Message, attrs),
		Message:   r.Message,
		Metadata:  metadata(attrs),
		CreatedAt: r.Time.UTC(),
	})
}

func (h *EventLogHandler) collectAttrs(r slog.Record) map[string]string {
	attrs := make(map[string]string, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		attrs[key] = a.Value.String()
		return true
	})
	return attrs
}

func eventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return store.EventLevelError
	case level >= slog.LevelWarn:
		return store.EventLevelWarning
	default:
		return store.EventLevelInfo
	}
}

// category uses an explicit "category" attribute or infers one from the message.
func category(msg string, attrs map[string]string) string {
	if c := attrs["category"]; c != "" {
		return c
	}

	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "form") || strings.Contains(msg, "submission"):
		return store.EventCategoryForm
	case strings.Contains(msg, "webhook"):
		return store.EventCategoryWebhook
	case strings.Contains(msg, "captcha") || strings.Contains(msg, "csrf") ||
		strings.Contains(msg, "rate limit") || strings.Contains(msg, "secret"):
		return store.EventCategorySecurity
	case strings.Contains(msg, "content") || strings.Contains(msg, "cms") || strings.Contains(msg, "page"):
		return store.EventCategoryContent
	case strings.Contains(msg, "cache"):
		return store.EventCategoryCache
	default:
		return store.EventCategorySystem
	}
}

func metadata(attrs map[string]string) string {
	delete(attrs, "category")
	if len(attrs) == 0 {
		return "{}"
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return "{}"
	}
	return string(b)
}
