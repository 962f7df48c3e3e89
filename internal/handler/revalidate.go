// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/olegiv/reclaim-go/internal/cms"
	"github.com/olegiv/reclaim-go/internal/metrics"
)

// RevalidateSecretHeader carries the shared secret of revalidation calls.
const RevalidateSecretHeader = "x-revalidate-secret"

// maxRevalidateBody bounds the webhook payload read from the CMS.
const maxRevalidateBody = 1 << 20

var allPages = []string{PathHome, PathAbout, PathContact, PathRegister}

// revalidatePaths maps document types to the pages rendering them.
var revalidatePaths = map[string][]string{
	cms.TypeHomePage:     {PathHome},
	cms.TypeAboutPage:    {PathAbout},
	cms.TypeContactPage:  {PathContact},
	cms.TypeRegisterPage: {PathRegister},
	cms.TypeSiteSettings: allPages,
}

// Invalidator drops cached content documents.
type Invalidator interface {
	Invalidate(ctx context.Context, docTypes ...string) error
}

// RevalidateHandler handles content-changed notifications from the CMS.
type RevalidateHandler struct {
	secret  string
	cache   Invalidator
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewRevalidateHandler creates a new RevalidateHandler.
func NewRevalidateHandler(secret string, cache Invalidator, m *metrics.Metrics, logger *slog.Logger) *RevalidateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RevalidateHandler{secret: secret, cache: cache, metrics: m, logger: logger}
}

type revalidateRequest struct {
	Type string `json:"_type"`
}

type revalidateResponse struct {
	Revalidated bool     `json:"revalidated"`
	Paths       []string `json:"paths"`
}

// ServeHTTP handles POST /api/revalidate.
func (h *RevalidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		writeJSONMessage(w, http.StatusInternalServerError, "Missing revalidate secret")
		return
	}

	got := r.Header.Get(RevalidateSecretHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		h.logger.Warn("revalidation rejected: invalid secret", "ip", r.RemoteAddr)
		writeJSONMessage(w, http.StatusUnauthorized, "Invalid secret")
		return
	}

	var req revalidateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRevalidateBody)).Decode(&req); err != nil {
		writeJSONMessage(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	paths, ok := revalidatePaths[req.Type]
	if !ok {
		writeJSONMessage(w, http.StatusBadRequest, "Unsupported document type")
		return
	}

	docTypes := []string{req.Type}
	if req.Type == cms.TypeSiteSettings {
		docTypes = cms.DocumentTypes()
	}
	if h.cache != nil {
		if err := h.cache.Invalidate(r.Context(), docTypes...); err != nil {
			// Pages still refresh once their TTL expires.
			h.logger.Error("failed to invalidate content cache",
				"category", "cache",
				"type", req.Type,
				"error", err,
			)
		}
	}

	h.metrics.Revalidation(req.Type)
	h.logger.Info("content revalidated", "type", req.Type, "paths", paths)
	writeJSON(w, http.StatusOK, revalidateResponse{Revalidated: true, Paths: paths})
}
