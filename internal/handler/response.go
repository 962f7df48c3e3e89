// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
)

// flashAndRedirect sets a flash message and redirects to the given URL.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, sessions flasher, url, message string) {
	if sessions != nil {
		sessions.SetFlash(r.Context(), message)
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// logAndHTTPError logs an error and writes an HTTP error response.
func logAndHTTPError(w http.ResponseWriter, logger *slog.Logger, message string, statusCode int, logMsg string, args ...any) {
	logger.Error(logMsg, args...)
	http.Error(w, message, statusCode)
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logger *slog.Logger, logMsg string, args ...any) {
	logAndHTTPError(w, logger, "Internal Server Error", http.StatusInternalServerError, logMsg, args...)
}
