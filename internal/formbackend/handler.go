// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package formbackend

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/olegiv/reclaim-go/internal/formengine"
	"github.com/olegiv/reclaim-go/internal/util"
)

// MaxBodyBytes limits the size of a posted submission.
const MaxBodyBytes = 64 << 10

// ServeHTTP accepts an application/x-www-form-urlencoded submission.
// Entry order of the body is kept in the stored payload.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/x-www-form-urlencoded" {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Expected application/x-www-form-urlencoded")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "Submission too large")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	payload, err := formengine.ParsePayload(string(body))
	if err != nil {
		s.logger.Debug("invalid submission body", "error", err)
		writeJSONError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	res, err := s.Accept(r.Context(), Submission{
		Payload: payload,
		Client: Client{
			IP:        util.ClientIP(r),
			UserAgent: r.UserAgent(),
		},
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrUnknownForm):
		writeJSONError(w, http.StatusNotFound, "Form not found")
		return
	case errors.Is(err, ErrCaptchaRequired), errors.Is(err, ErrCaptchaFailed):
		writeJSONError(w, http.StatusBadRequest, captchaMessage(err))
		return
	default:
		s.logger.Error("failed to accept form submission", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to save submission. Please try again.")
		return
	}

	data := map[string]any{}
	if res.ID != "" {
		data["id"] = res.ID
	}
	writeJSONSuccess(w, data)
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}

// writeJSONSuccess writes a JSON success response.
func writeJSONSuccess(w http.ResponseWriter, data map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	if data == nil {
		data = make(map[string]any)
	}
	data["success"] = true
	_ = json.NewEncoder(w).Encode(data)
}
