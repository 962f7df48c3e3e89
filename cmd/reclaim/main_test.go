// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/reclaim-go/internal/cms"
	"github.com/olegiv/reclaim-go/internal/config"
	"github.com/olegiv/reclaim-go/internal/middleware"
	"github.com/olegiv/reclaim-go/internal/testutil"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func TestFormEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		siteURL  string
		endpoint string
		want     string
	}{
		{"relative root", "http://localhost:8080", "/", "http://localhost:8080/"},
		{"relative path", "https://example.org/base/", "/forms", "https://example.org/forms"},
		{"absolute", "http://localhost:8080", "https://forms.example.org/submit", "https://forms.example.org/submit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formEndpoint(&config.Config{SiteURL: tt.siteURL, FormEndpoint: tt.endpoint})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewContentSource(t *testing.T) {
	src, err := newContentSource(&config.Config{ContentSource: config.ContentSourceFile, ContentDir: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &cms.FileSource{}, src)

	src, err = newContentSource(&config.Config{
		ContentSource:   config.ContentSourceSanity,
		SanityProjectID: "abc123",
	}, nil)
	require.NoError(t, err)
	assert.IsType(t, &cms.SanityClient{}, src)
}

func TestCheckRegisterPage(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		wantCode int
		wantOut  []string
	}{
		{
			name: "valid",
			yaml: `
formFields:
  - fieldKey: full_name
    label: Full name
    type: text
thankYou:
  title: Thank you
  message: We will be in touch.
`,
			wantCode: 0,
			wantOut:  []string{"registerPage: 1 field(s) OK"},
		},
		{
			name: "issues",
			yaml: `
formFields:
  - fieldKey: bot-field
    label: Trap
    type: text
  - fieldKey: age
    label: Age
    type: number
  - fieldKey: age
    label: Age again
    type: text
thankYou:
  title: ""
  message: Thanks.
`,
			wantCode: 1,
			wantOut: []string{
				`field "age": unknown field type: "number"`,
				"formFields[0].fieldKey: Field name is reserved for form processing.",
				"formFields[1].fieldKey: Field name must be unique.",
				"thankYou.title: Title is required.",
				"5 issue(s) found in registerPage",
			},
		},
		{
			name:     "empty",
			yaml:     "formFields: []\n",
			wantCode: 1,
			wantOut:  []string{"formFields: Add at least one form field."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := cms.NewFileSourceFS(fstest.MapFS{
				"registerPage.yaml": {Data: []byte(tt.yaml)},
			})
			var out bytes.Buffer
			code := checkRegisterPage(context.Background(), src, &out)
			assert.Equal(t, tt.wantCode, code)
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestCheckRegisterPage_Missing(t *testing.T) {
	var out bytes.Buffer
	code := checkRegisterPage(context.Background(), cms.NewFileSourceFS(fstest.MapFS{}), &out)
	assert.Equal(t, 2, code)
	assert.Contains(t, out.String(), "loading registerPage")
}

func TestMountSubmissionsRelayUsesOwnLimiter(t *testing.T) {
	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }
	r := chi.NewRouter()
	mountSubmissions(r, submissionRoutes{
		Contact:        ok,
		Register:       ok,
		Backend:        http.HandlerFunc(ok),
		PageLimiter:    middleware.NewRateLimiter(0.001, 1, testutil.TestLoggerSilent()),
		BackendLimiter: middleware.NewRateLimiter(0.001, 1, testutil.TestLoggerSilent()),
	})

	post := func(path string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	// a page submission relayed to the backend with the visitor's address
	assert.Equal(t, http.StatusOK, post("/contact"))
	assert.Equal(t, http.StatusOK, post("/"))

	assert.Equal(t, http.StatusTooManyRequests, post("/register"))
	assert.Equal(t, http.StatusTooManyRequests, post("/"))
}
