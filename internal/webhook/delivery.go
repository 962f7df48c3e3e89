// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// Delivery configuration constants
const (
	MaxAttempts    = 5                // Maximum number of delivery attempts
	InitialBackoff = 30 * time.Second // Initial backoff delay
	MaxBackoff     = 30 * time.Minute // Maximum backoff delay
	RequestTimeout = 30 * time.Second // HTTP request timeout
	MaxResponseLen = 10 * 1024        // Maximum response body to read (10KB)
	UserAgent      = "Reclaim/1.0"    // User-Agent header value
)

// DeliveryResult represents the result of a delivery attempt.
type DeliveryResult struct {
	Success      bool
	StatusCode   int
	ResponseBody string
	Error        error
	ShouldRetry  bool
}

// httpClient is the shared HTTP client with appropriate timeouts.
var httpClient = &http.Client{
	Timeout: RequestTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	},
}

var errStopped = errors.New("dispatcher stopped")

// processDelivery delivers one payload, retrying with exponential backoff
// until it succeeds, fails permanently or runs out of attempts.
func (d *Dispatcher) processDelivery(ctx context.Context, delivery *QueuedDelivery) {
	for attempt := 1; ; attempt++ {
		result := d.attemptDelivery(ctx, delivery)
		if result.Success {
			d.logger.Info("webhook delivered successfully",
				"delivery_id", delivery.ID,
				"event_type", delivery.Event,
				"status_code", result.StatusCode,
				"attempt", attempt)
			return
		}

		if !result.ShouldRetry || attempt >= d.cfg.MaxAttempts {
			d.logger.Warn("webhook delivery failed permanently",
				"delivery_id", delivery.ID,
				"event_type", delivery.Event,
				"attempts", attempt,
				"status_code", result.StatusCode,
				"error", result.Error)
			return
		}

		backoff := calculateBackoff(attempt, d.cfg.InitialBackoff, d.cfg.MaxBackoff)
		d.logger.Info("webhook delivery scheduled for retry",
			"delivery_id", delivery.ID,
			"attempt", attempt,
			"backoff", backoff.String(),
			"error", result.Error)

		if err := d.wait(ctx, backoff); err != nil {
			d.logger.Warn("webhook delivery abandoned",
				"delivery_id", delivery.ID,
				"attempts", attempt,
				"reason", err)
			return
		}
	}
}

func (d *Dispatcher) wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-d.done:
		return errStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// attemptDelivery performs the actual HTTP POST request.
func (d *Dispatcher) attemptDelivery(ctx context.Context, delivery *QueuedDelivery) DeliveryResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.URL, bytes.NewReader(delivery.Payload))
	if err != nil {
		return DeliveryResult{
			Error:       fmt.Errorf("failed to create request: %w", err),
			ShouldRetry: false, // Bad URL, don't retry
		}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("X-Webhook-Event", delivery.Event)
	req.Header.Set("X-Webhook-Delivery-ID", delivery.ID)
	if d.cfg.Secret != "" {
		req.Header.Set("X-Webhook-Signature", GenerateSignature(delivery.Payload, d.cfg.Secret))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return DeliveryResult{
			Error:       fmt.Errorf("request failed: %w", err),
			ShouldRetry: true, // Network error, retry
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
	responseBody := string(body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return DeliveryResult{
			Success:      true,
			StatusCode:   resp.StatusCode,
			ResponseBody: responseBody,
		}
	}

	// Client errors are final, except 408 Request Timeout and 429 Too Many Requests
	shouldRetry := resp.StatusCode >= 500 ||
		resp.StatusCode == http.StatusRequestTimeout ||
		resp.StatusCode == http.StatusTooManyRequests
	return DeliveryResult{
		StatusCode:   resp.StatusCode,
		ResponseBody: responseBody,
		Error:        fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		ShouldRetry:  shouldRetry,
	}
}

// calculateBackoff returns initial * 2^(attempt-1), capped at max.
func calculateBackoff(attempt int, initial, max time.Duration) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	backoff := time.Duration(float64(initial) * math.Pow(2, float64(attempt-1)))
	if backoff > max || backoff <= 0 {
		backoff = max
	}
	return backoff
}
