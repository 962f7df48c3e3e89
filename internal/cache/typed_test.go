// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	Title string `json:"title"`
}

func TestTypedCache_GetOrSet(t *testing.T) {
	mc := newTestMemoryCache(0)
	defer func() { _ = mc.Close() }()
	tc := NewTypedCache[page](mc, time.Minute)
	ctx := context.Background()

	calls := 0
	load := func() (*page, error) {
		calls++
		return &page{Title: "Home"}, nil
	}

	p, err := tc.GetOrSet(ctx, "home", load)
	require.NoError(t, err)
	assert.Equal(t, "Home", p.Title)

	p, err = tc.GetOrSet(ctx, "home", load)
	require.NoError(t, err)
	assert.Equal(t, "Home", p.Title)
	assert.Equal(t, 1, calls)
}

func TestTypedCache_LoaderError(t *testing.T) {
	mc := newTestMemoryCache(0)
	defer func() { _ = mc.Close() }()
	tc := NewTypedCache[page](mc, time.Minute)

	boom := errors.New("boom")
	_, err := tc.GetOrSet(context.Background(), "k", func() (*page, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	_, ok := tc.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestTypedCache_CorruptEntry(t *testing.T) {
	mc := newTestMemoryCache(0)
	defer func() { _ = mc.Close() }()
	_ = mc.Set(context.Background(), "bad", []byte("{not json"), 0)

	tc := NewTypedCache[page](mc, time.Minute)
	_, ok := tc.Get(context.Background(), "bad")
	assert.False(t, ok)
}
