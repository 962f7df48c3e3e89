// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/reclaim-go/internal/seo"
)

// SEOHandler serves robots.txt and sitemap.xml.
type SEOHandler struct {
	siteURL     string
	disallowAll bool
	logger      *slog.Logger
}

// NewSEOHandler creates a new SEOHandler. With disallowAll set crawlers are
// kept off the whole site.
func NewSEOHandler(siteURL string, disallowAll bool, logger *slog.Logger) *SEOHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SEOHandler{siteURL: siteURL, disallowAll: disallowAll, logger: logger}
}

// Robots handles GET /robots.txt.
func (h *SEOHandler) Robots(w http.ResponseWriter, _ *http.Request) {
	content := seo.NewRobotsBuilder(seo.RobotsConfig{
		SiteURL:       h.siteURL,
		DisallowAll:   h.disallowAll,
		DisallowPaths: []string{"/health", "/metrics"},
	}).Build()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(content))
}

// Sitemap handles GET /sitemap.xml.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, _ *http.Request) {
	b := seo.NewSitemapBuilder(h.siteURL)
	b.AddHomepage()
	b.AddPage(PathAbout, seo.ChangeFreqMonthly, "0.6")
	b.AddPage(PathContact, seo.ChangeFreqMonthly, "0.7")
	b.AddPage(PathRegister, seo.ChangeFreqWeekly, "0.9")

	out, err := b.Build()
	if err != nil {
		logAndInternalError(w, h.logger, "failed to build sitemap", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(out)
}
