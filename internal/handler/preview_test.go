// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olegiv/reclaim-go/internal/testutil"
)

func TestPreviewEnter(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		query    string
		wantCode int
		wantLoc  string
		wantMsg  string
		preview  bool
	}{
		{name: "unconfigured", secret: "", query: "?secret=x&type=homePage", wantCode: http.StatusInternalServerError, wantMsg: "Missing preview secret"},
		{name: "bad secret", secret: "s3cret", query: "?secret=nope&type=homePage", wantCode: http.StatusUnauthorized, wantMsg: "Invalid secret"},
		{name: "missing type", secret: "s3cret", query: "?secret=s3cret", wantCode: http.StatusBadRequest, wantMsg: "Invalid type"},
		{name: "site settings not previewable", secret: "s3cret", query: "?secret=s3cret&type=siteSettings", wantCode: http.StatusBadRequest, wantMsg: "Invalid type"},
		{name: "home", secret: "s3cret", query: "?secret=s3cret&type=homePage", wantCode: http.StatusTemporaryRedirect, wantLoc: "/", preview: true},
		{name: "register", secret: "s3cret", query: "?secret=s3cret&type=registerPage", wantCode: http.StatusTemporaryRedirect, wantLoc: "/register", preview: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &stubSessions{}
			h := NewPreviewHandler(tt.secret, sessions, testutil.TestLoggerSilent())

			rec := httptest.NewRecorder()
			h.Enter(rec, httptest.NewRequest(http.MethodGet, "/api/preview"+tt.query, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.preview, sessions.preview)
			if tt.wantLoc != "" {
				assert.Equal(t, tt.wantLoc, rec.Header().Get("Location"))
			}
			if tt.wantMsg != "" {
				assert.JSONEq(t, `{"message":"`+tt.wantMsg+`"}`, rec.Body.String())
			}
		})
	}
}

func TestPreviewEnterSessionFailure(t *testing.T) {
	sessions := &stubSessions{enableErr: errors.New("store down")}
	h := NewPreviewHandler("s3cret", sessions, testutil.TestLoggerSilent())

	rec := httptest.NewRecorder()
	h.Enter(rec, httptest.NewRequest(http.MethodGet, "/api/preview?secret=s3cret&type=aboutPage", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, sessions.preview)
}

func TestPreviewExit(t *testing.T) {
	sessions := &stubSessions{preview: true}
	h := NewPreviewHandler("s3cret", sessions, testutil.TestLoggerSilent())

	rec := httptest.NewRecorder()
	h.Exit(rec, httptest.NewRequest(http.MethodGet, "/api/preview/exit", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.False(t, sessions.preview)
	assert.Equal(t, "Preview mode disabled.", sessions.flash)
}
