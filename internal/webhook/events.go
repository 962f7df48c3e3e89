// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package webhook notifies an external endpoint about new form submissions.
package webhook

import (
	"time"
)

// Event types.
const (
	EventFormSubmitted = "form.submitted"
	EventTest          = "webhook.test"
)

// Event represents a webhook event to be dispatched.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// NewEvent creates a new webhook event.
func NewEvent(eventType string, data any) *Event {
	return &Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// FormEventData contains data for form submission events.
type FormEventData struct {
	FormName     string            `json:"form_name"`
	SubmissionID string            `json:"submission_id"`
	Data         map[string]string `json:"data"`
	Client       *ClientInfo       `json:"client,omitempty"`
	SubmittedAt  time.Time         `json:"submitted_at"`
}

// ClientInfo summarizes the submitter's user agent.
type ClientInfo struct {
	Browser string `json:"browser"`
	OS      string `json:"os"`
	Device  string `json:"device"` // desktop, mobile, tablet or bot
}
