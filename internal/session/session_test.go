// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/reclaim-go/internal/testutil"
)

func TestNew_DevMode(t *testing.T) {
	db := testutil.TestDB(t)

	sm := New(db, true)

	assert.False(t, sm.Cookie.Secure)
	assert.NotEqual(t, "__Host-session", sm.Cookie.Name)
	assert.NotNil(t, sm.Store)
	assert.Equal(t, 24*time.Hour, sm.Lifetime)
	assert.True(t, sm.Cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, sm.Cookie.SameSite)
}

func TestNew_ProductionMode(t *testing.T) {
	db := testutil.TestDB(t)

	sm := New(db, false)

	assert.True(t, sm.Cookie.Secure)
	assert.Equal(t, "__Host-session", sm.Cookie.Name)
	assert.Equal(t, "/", sm.Cookie.Path)
}

func TestPreviewAndFlash(t *testing.T) {
	db := testutil.TestDB(t)
	sm := New(db, true)

	mux := http.NewServeMux()
	mux.HandleFunc("/enable", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, sm.EnablePreview(r.Context()))
		sm.SetFlash(r.Context(), "Preview on")
	})
	mux.HandleFunc("/disable", func(w http.ResponseWriter, r *http.Request) {
		sm.DisablePreview(r.Context())
	})
	mux.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strconv.FormatBool(sm.IsPreview(r.Context()))+"|"+sm.PopFlash(r.Context()))
	})
	h := sm.LoadAndSave(mux)

	var cookies []*http.Cookie
	do := func(path string) string {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if got := rec.Result().Cookies(); len(got) > 0 {
			cookies = got
		}
		return rec.Body.String()
	}

	assert.Equal(t, "false|", do("/state"))
	do("/enable")
	assert.Equal(t, "true|Preview on", do("/state"))
	assert.Equal(t, "true|", do("/state"), "flash is shown once")
	do("/disable")
	assert.Equal(t, "false|", do("/state"))
}
