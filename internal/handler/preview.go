// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/olegiv/reclaim-go/internal/cms"
)

type flasher interface {
	SetFlash(ctx context.Context, message string)
}

// PreviewStore keeps the preview (draft) mode flag of a visitor session.
type PreviewStore interface {
	flasher
	EnablePreview(ctx context.Context) error
	DisablePreview(ctx context.Context)
	IsPreview(ctx context.Context) bool
}

// previewPaths maps previewable document types to the page showing them.
var previewPaths = map[string]string{
	cms.TypeHomePage:     PathHome,
	cms.TypeAboutPage:    PathAbout,
	cms.TypeContactPage:  PathContact,
	cms.TypeRegisterPage: PathRegister,
}

// PreviewHandler switches draft content on and off for the current visitor.
type PreviewHandler struct {
	secret   string
	sessions PreviewStore
	logger   *slog.Logger
}

// NewPreviewHandler creates a new PreviewHandler. An empty secret disables
// entering preview mode.
func NewPreviewHandler(secret string, sessions PreviewStore, logger *slog.Logger) *PreviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreviewHandler{secret: secret, sessions: sessions, logger: logger}
}

// Enter handles GET /api/preview?secret=...&type=... and redirects to the
// page of the document type.
func (h *PreviewHandler) Enter(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		writeJSONMessage(w, http.StatusInternalServerError, "Missing preview secret")
		return
	}

	q := r.URL.Query()
	if subtle.ConstantTimeCompare([]byte(q.Get("secret")), []byte(h.secret)) != 1 {
		h.logger.Warn("preview rejected: invalid secret", "ip", r.RemoteAddr)
		writeJSONMessage(w, http.StatusUnauthorized, "Invalid secret")
		return
	}

	path, ok := previewPaths[q.Get("type")]
	if !ok {
		writeJSONMessage(w, http.StatusBadRequest, "Invalid type")
		return
	}

	if err := h.sessions.EnablePreview(r.Context()); err != nil {
		logAndInternalError(w, h.logger, "failed to enable preview", "error", err)
		return
	}

	h.logger.Info("preview mode enabled", "type", q.Get("type"))
	http.Redirect(w, r, path, http.StatusTemporaryRedirect)
}

// Exit handles GET /api/preview/exit.
func (h *PreviewHandler) Exit(w http.ResponseWriter, r *http.Request) {
	h.sessions.DisablePreview(r.Context())
	flashAndRedirect(w, r, h.sessions, PathHome, "Preview mode disabled.")
}
