// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package formbackend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/reclaim-go/internal/formengine"
)

// StatusError is returned by HTTPTransport for a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("form backend responded %d %s", e.Code, http.StatusText(e.Code))
}

// withTransportFields appends the honeypot and, when present, the CAPTCHA
// response carried by ctx to a copy of p.
func withTransportFields(ctx context.Context, p formengine.Payload) formengine.Payload {
	f := TransportFieldsFrom(ctx)
	out := make(formengine.Payload, 0, len(p)+2)
	out = append(out, p...)
	out.Add(formengine.HoneypotKey, f.Honeypot)
	if f.CaptchaResponse != "" {
		out.Add(formengine.HCaptchaKey, f.CaptchaResponse)
	}
	return out
}

// HTTPTransport posts payloads URL-encoded to a form backend endpoint.
// Any 2xx status is success; the body is not inspected.
type HTTPTransport struct {
	endpoint string
	client   *http.Client
}

// NewHTTPTransport creates a transport posting to endpoint. A nil client
// gets a default with a 30 second timeout.
func NewHTTPTransport(endpoint string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPTransport{endpoint: endpoint, client: client}
}

// Submit implements formengine.Transport.
func (t *HTTPTransport) Submit(ctx context.Context, p formengine.Payload) error {
	body := withTransportFields(ctx, p).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("building submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := ClientFrom(ctx)
	if client.IP != "" {
		req.Header.Set("X-Forwarded-For", client.IP)
	}
	if client.UserAgent != "" {
		req.Header.Set("User-Agent", client.UserAgent)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting submission: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

// LocalTransport hands payloads to an in-process Service.
type LocalTransport struct {
	service *Service
}

// NewLocalTransport creates a transport backed by s.
func NewLocalTransport(s *Service) *LocalTransport {
	return &LocalTransport{service: s}
}

// Submit implements formengine.Transport.
func (t *LocalTransport) Submit(ctx context.Context, p formengine.Payload) error {
	_, err := t.service.Accept(ctx, Submission{
		Payload: withTransportFields(ctx, p),
		Client:  ClientFrom(ctx),
	})
	return err
}

var (
	_ formengine.Transport = (*HTTPTransport)(nil)
	_ formengine.Transport = (*LocalTransport)(nil)
)
