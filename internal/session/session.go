// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session stores per-visitor state: preview (draft) mode and
// one-shot flash messages.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

const (
	previewKey = "preview"
	flashKey   = "flash"
)

// Manager wraps an scs session manager with the keys the site uses.
type Manager struct {
	*scs.SessionManager
}

// New creates a new session manager configured with SQLite store.
func New(db *sql.DB, isDev bool) *Manager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.Path = "/"
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only
	if !isDev {
		sm.Cookie.Name = "__Host-session"
	}

	return &Manager{SessionManager: sm}
}

// EnablePreview turns on draft content for the session. The token is
// renewed since the session gains privileges.
func (m *Manager) EnablePreview(ctx context.Context) error {
	if err := m.RenewToken(ctx); err != nil {
		return err
	}
	m.Put(ctx, previewKey, true)
	return nil
}

// DisablePreview turns draft content off.
func (m *Manager) DisablePreview(ctx context.Context) {
	m.Remove(ctx, previewKey)
}

// IsPreview reports whether draft content is enabled.
func (m *Manager) IsPreview(ctx context.Context) bool {
	return m.GetBool(ctx, previewKey)
}

// SetFlash stores a message shown on the next page view.
func (m *Manager) SetFlash(ctx context.Context, message string) {
	m.Put(ctx, flashKey, message)
}

// PopFlash returns and clears the flash message.
func (m *Manager) PopFlash(ctx context.Context) string {
	return m.PopString(ctx, flashKey)
}
