// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package formbackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// hCaptcha verification endpoint
	hcaptchaVerifyURL = "https://api.hcaptcha.com/siteverify"
	// Timeout for verification requests
	verifyTimeout = 10 * time.Second
)

// Captcha errors. Both are reported to the submitter as a 400.
var (
	ErrCaptchaRequired = errors.New("captcha response missing")
	ErrCaptchaFailed   = errors.New("captcha verification failed")
)

// CaptchaVerifier checks a CAPTCHA response token.
type CaptchaVerifier interface {
	Verify(ctx context.Context, response, remoteIP string) error
}

// VerifyResponse represents the hCaptcha API response.
type VerifyResponse struct {
	Success     bool      `json:"success"`
	ChallengeTS time.Time `json:"challenge_ts"`
	Hostname    string    `json:"hostname"`
	ErrorCodes  []string  `json:"error-codes"`
}

// HCaptcha verifies h-captcha-response tokens against the siteverify API.
type HCaptcha struct {
	secret    string
	verifyURL string
	client    *http.Client
	logger    *slog.Logger
}

// NewHCaptcha creates a verifier for secret. verifyURL may be empty to use
// the public hCaptcha endpoint.
func NewHCaptcha(secret, verifyURL string, logger *slog.Logger) *HCaptcha {
	if verifyURL == "" {
		verifyURL = hcaptchaVerifyURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HCaptcha{
		secret:    secret,
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: verifyTimeout},
		logger:    logger,
	}
}

// Verify returns nil when hCaptcha accepts response.
func (h *HCaptcha) Verify(ctx context.Context, response, remoteIP string) error {
	if response == "" {
		h.logger.Debug("captcha response empty - user did not complete captcha")
		return ErrCaptchaRequired
	}

	result, err := h.siteverify(ctx, response, remoteIP)
	if err != nil {
		h.logger.Error("captcha verification error", "error", err)
		return fmt.Errorf("%w: %w", ErrCaptchaFailed, err)
	}

	if !result.Success {
		h.logger.Warn("captcha verification failed",
			"error_codes", result.ErrorCodes,
			"remote_ip", remoteIP,
		)
		return ErrCaptchaFailed
	}
	return nil
}

func (h *HCaptcha) siteverify(ctx context.Context, response, remoteIP string) (*VerifyResponse, error) {
	data := url.Values{}
	data.Set("secret", h.secret)
	data.Set("response", response)
	if remoteIP != "" {
		data.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.verifyURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("captcha verification request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var result VerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse captcha response: %w", err)
	}
	return &result, nil
}

// captchaMessage is the text shown to a submitter for a captcha error.
func captchaMessage(err error) string {
	if errors.Is(err, ErrCaptchaRequired) {
		return "Please complete the captcha"
	}
	return "Captcha verification failed"
}
