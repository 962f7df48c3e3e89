// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"io/fs"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/reclaim-go/internal/cms"
	"github.com/olegiv/reclaim-go/internal/render"
	"github.com/olegiv/reclaim-go/web"
)

// stubSource serves fixed documents. Drafts are used when preview is on and
// the draft is set.
type stubSource struct {
	home          *cms.HomePage
	about         *cms.AboutPage
	contact       *cms.ContactPage
	register      *cms.RegisterPage
	draftRegister *cms.RegisterPage
	settings      *cms.SiteSettings
	err           error

	mu       sync.Mutex
	previews []bool
}

func (s *stubSource) record(opts cms.Options) {
	s.mu.Lock()
	s.previews = append(s.previews, opts.Preview)
	s.mu.Unlock()
}

func get[T any](s *stubSource, doc *T, opts cms.Options) (*T, error) {
	s.record(opts)
	if s.err != nil {
		return nil, s.err
	}
	if doc == nil {
		return nil, cms.ErrNotFound
	}
	return doc, nil
}

func (s *stubSource) HomePage(_ context.Context, opts cms.Options) (*cms.HomePage, error) {
	return get(s, s.home, opts)
}

func (s *stubSource) AboutPage(_ context.Context, opts cms.Options) (*cms.AboutPage, error) {
	return get(s, s.about, opts)
}

func (s *stubSource) ContactPage(_ context.Context, opts cms.Options) (*cms.ContactPage, error) {
	return get(s, s.contact, opts)
}

func (s *stubSource) RegisterPage(_ context.Context, opts cms.Options) (*cms.RegisterPage, error) {
	if opts.Preview && s.draftRegister != nil {
		s.record(opts)
		return s.draftRegister, nil
	}
	return get(s, s.register, opts)
}

func (s *stubSource) SiteSettings(_ context.Context, opts cms.Options) (*cms.SiteSettings, error) {
	return get(s, s.settings, opts)
}

var errContentDown = errors.New("content API unavailable")

// stubSessions is an in-memory PreviewStore.
type stubSessions struct {
	preview   bool
	flash     string
	enableErr error
}

func (s *stubSessions) EnablePreview(context.Context) error {
	if s.enableErr != nil {
		return s.enableErr
	}
	s.preview = true
	return nil
}

func (s *stubSessions) DisablePreview(context.Context) { s.preview = false }

func (s *stubSessions) IsPreview(context.Context) bool { return s.preview }

func (s *stubSessions) SetFlash(_ context.Context, message string) { s.flash = message }

func newTestRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	templatesFS, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)
	r, err := render.New(render.Config{TemplatesFS: templatesFS})
	require.NoError(t, err)
	return r
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return doc
}

func testSiteSettings() *cms.SiteSettings {
	return &cms.SiteSettings{
		SiteName: "Reclaim My Life",
		ContactInfo: &cms.ContactInfo{
			Phone: "(555) 123-4567",
			Email: "info@example.org",
			Address: &cms.Address{
				Street: "1 Main St",
				City:   "Springfield",
				State:  "CA",
				Zip:    "90000",
			},
		},
	}
}
