// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/reclaim-go/internal/testutil"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("success"))
})

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name     string
		isDev    bool
		wantHSTS bool
	}{
		{"production mode enables HSTS", false, true},
		{"development mode disables HSTS", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := SecurityHeaders(DefaultSecurityHeadersConfig(tt.isDev))(okHandler)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			hdr := rec.Header()
			assert.Equal(t, tt.wantHSTS, hdr.Get("Strict-Transport-Security") != "")
			assert.Contains(t, hdr.Get("Content-Security-Policy"), "https://*.hcaptcha.com")
			assert.Contains(t, hdr.Get("Content-Security-Policy"), "img-src 'self' data: https://cdn.sanity.io")
			assert.Equal(t, "SAMEORIGIN", hdr.Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", hdr.Get("X-Content-Type-Options"))
			assert.Equal(t, "strict-origin-when-cross-origin", hdr.Get("Referrer-Policy"))
			assert.Contains(t, hdr.Get("Permissions-Policy"), "camera=()")
		})
	}

	prod := DefaultSecurityHeadersConfig(false)
	assert.Equal(t, "max-age=31536000; includeSubDomains", func() string {
		rec := httptest.NewRecorder()
		SecurityHeaders(prod)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		return rec.Header().Get("Strict-Transport-Security")
	}())
}

func TestSecurityHeaders_ExcludePaths(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(false)
	cfg.ExcludePaths = []string{"/metrics"}
	h := SecurityHeaders(cfg)(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contact", nil))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestBuildCSP(t *testing.T) {
	got := buildCSP(map[string]string{
		"zz-custom":   "x",
		"script-src":  "'self'",
		"default-src": "'none'",
		"aa-custom":   "y",
	})
	assert.Equal(t, "default-src 'none'; script-src 'self'; aa-custom y; zz-custom x", got)
}

func TestBuildPermissionsPolicy(t *testing.T) {
	assert.Equal(t, "camera=(), usb=()", buildPermissionsPolicy(map[string]string{"usb": "()", "camera": "()"}))
}

func TestDefaultCSRFConfig(t *testing.T) {
	key := []byte("12345678901234567890123456789012")

	dev := DefaultCSRFConfig(key, true, "localhost:8080")
	assert.Equal(t, []string{"localhost:8080"}, dev.TrustedOrigins)
	assert.Len(t, dev.AuthKey, 32)

	prod := DefaultCSRFConfig(key, false, "localhost:8080")
	assert.Empty(t, prod.TrustedOrigins)
}

func TestCSRF_CrossOriginPost(t *testing.T) {
	h := CSRF(DefaultCSRFConfig([]byte("12345678901234567890123456789012"), false, ""))(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader("name=x"))
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader("name=x"))
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contact", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "safe methods pass")
}

func TestSkipCSRF(t *testing.T) {
	protected := CSRF(DefaultCSRFConfig([]byte("12345678901234567890123456789012"), false, ""))(okHandler)
	h := SkipCSRF("/api/revalidate")(protected)

	for path, want := range map[string]int{
		"/api/revalidate": http.StatusOK,
		"/contact":        http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("Sec-Fetch-Site", "cross-site")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, path)
	}
}

func TestTimeout(t *testing.T) {
	t.Run("fast handler", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Timeout(5*time.Second)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "success", rec.Body.String())
	})

	t.Run("slow handler", func(t *testing.T) {
		slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(5 * time.Second):
				w.WriteHeader(http.StatusOK)
			case <-r.Context().Done():
			}
		})
		rec := httptest.NewRecorder()
		Timeout(50*time.Millisecond)(slow).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "Request timeout", rec.Body.String())
	})
}

func TestTimeoutWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	tw := &timeoutWriter{ResponseWriter: rec}

	tw.WriteHeader(http.StatusCreated)
	tw.WriteHeader(http.StatusInternalServerError)
	_, err := tw.Write([]byte("body"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	tw.timedOut = true
	_, err = tw.Write([]byte("late"))
	assert.ErrorIs(t, err, http.ErrHandlerTimeout)
	assert.Equal(t, "body", rec.Body.String())
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.0001, 2, testutil.TestLoggerSilent())
	h := rl.Middleware(okHandler)

	post := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, post("203.0.113.1"))
	assert.Equal(t, http.StatusOK, post("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, post("203.0.113.1"))
	assert.Equal(t, http.StatusOK, post("203.0.113.2"), "limits are per IP")

	req := httptest.NewRequest(http.MethodGet, "/contact", nil)
	req.RemoteAddr = "203.0.113.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "GET is never limited")
}

func TestLimiterCache_Bounded(t *testing.T) {
	lc := newLimiterCache[int](1, 1)
	for i := 0; i < maxTrackedClients+5; i++ {
		lc.get(i)
	}
	assert.LessOrEqual(t, len(lc.limiters), maxTrackedClients)
	assert.Same(t, lc.get(3), lc.get(3))
}

func TestStripTrailingSlash(t *testing.T) {
	tests := []struct {
		path     string
		wantCode int
		wantLoc  string
	}{
		{"/", http.StatusOK, ""},
		{"/about", http.StatusOK, ""},
		{"/about/", http.StatusMovedPermanently, "/about"},
		{"/register/?preview=1", http.StatusMovedPermanently, "/register?preview=1"},
		{"//evil.example/", http.StatusMovedPermanently, "/evil.example"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		StripTrailingSlash(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.wantCode, rec.Code, tt.path)
		assert.Equal(t, tt.wantLoc, rec.Header().Get("Location"), tt.path)
	}
}

func TestNoStore(t *testing.T) {
	h := NoStore(func(r *http.Request) bool { return r.URL.Query().Has("draft") })(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?draft", nil))
	assert.Equal(t, "private, no-store", rec.Header().Get("Cache-Control"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Header().Get("Cache-Control"))
}

func TestStaticCache(t *testing.T) {
	rec := httptest.NewRecorder()
	StaticCache(86400)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/css/site.css", nil))
	assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))
}
