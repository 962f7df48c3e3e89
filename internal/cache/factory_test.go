// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestNew_Memory(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer func() { _ = c.Close() }()

	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("expected *MemoryCache, got %T", c)
	}
}

func TestNew_RedisFallback(t *testing.T) {
	// nothing listens on port 1
	c := New(Config{RedisURL: "redis://127.0.0.1:1/0"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer func() { _ = c.Close() }()

	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("expected memory fallback, got %T", c)
	}
}
