// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "time"

// Event levels.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories.
const (
	EventCategorySystem   = "system"
	EventCategoryForm     = "form"
	EventCategoryContent  = "content"
	EventCategoryCache    = "cache"
	EventCategorySecurity = "security"
	EventCategoryWebhook  = "webhook"
)

// Submission is a stored form submission.
type Submission struct {
	ID        int64     `json:"id"`
	UUID      string    `json:"uuid"`
	FormName  string    `json:"form_name"`
	Data      string    `json:"data"` // JSON object of field key to value
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is a diagnostic log entry.
type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}
