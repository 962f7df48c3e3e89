// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/olegiv/reclaim-go/internal/store"
	"github.com/olegiv/reclaim-go/internal/testutil"
)

func newTestLogger(t *testing.T) (*slog.Logger, *store.Queries) {
	t.Helper()
	db := testutil.TestDB(t)

	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewEventLogHandler(inner, db)), store.New(db)
}

func TestEventLogHandler_PersistsWarnAndAbove(t *testing.T) {
	logger, q := newTestLogger(t)

	logger.Info("page rendered", "path", "/")
	logger.Warn("cache unavailable", "backend", "redis")
	logger.Error("form submission failed", "form", "contact", "error", errors.New("timeout"))

	events, err := q.ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	byMsg := map[string]store.Event{}
	for _, e := range events {
		byMsg[e.Message] = e
	}

	failed := byMsg["form submission failed"]
	if failed.Level != store.EventLevelError {
		t.Errorf("Level = %q, want %q", failed.Level, store.EventLevelError)
	}
	if failed.Category != store.EventCategoryForm {
		t.Errorf("Category = %q, want %q", failed.Category, store.EventCategoryForm)
	}
	var meta map[string]string
	if err := json.Unmarshal([]byte(failed.Metadata), &meta); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}
	if meta["form"] != "contact" || meta["error"] != "timeout" {
		t.Errorf("metadata = %v", meta)
	}

	if c := byMsg["cache unavailable"].Category; c != store.EventCategoryCache {
		t.Errorf("Category = %q, want %q", c, store.EventCategoryCache)
	}
}

func TestEventLogHandler_ExplicitCategoryAndAttrs(t *testing.T) {
	logger, q := newTestLogger(t)

	logger.With("request_id", "abc").WithGroup("req").Warn("odd thing", "category", "custom", "ip", "1.2.3.4")

	events, err := q.ListRecentEvents(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	var meta map[string]string
	if err := json.Unmarshal([]byte(events[0].Metadata), &meta); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}
	if meta["request_id"] != "abc" || meta["req.ip"] != "1.2.3.4" {
		t.Errorf("metadata = %v", meta)
	}
	if events[0].Category != store.EventCategorySystem {
		// grouped category attribute is "req.category", so it is inferred
		t.Errorf("Category = %q, want %q", events[0].Category, store.EventCategorySystem)
	}
}

func TestCategoryInference(t *testing.T) {
	tests := map[string]string{
		"webhook delivery failed":  store.EventCategoryWebhook,
		"captcha verify failed":    store.EventCategorySecurity,
		"rate limit exceeded":      store.EventCategorySecurity,
		"content fetch failed":     store.EventCategoryContent,
		"something else happened":  store.EventCategorySystem,
		"registration form broken": store.EventCategoryForm,
	}
	for msg, want := range tests {
		if got := category(msg, map[string]string{}); got != want {
			t.Errorf("category(%q) = %q, want %q", msg, got, want)
		}
	}
}
