// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cms reads the site's content documents from Sanity or from local
// YAML files and renders their rich text.
package cms

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("content not found")

// Options selects the published or the draft version of content.
type Options struct {
	Preview bool
}

// Source provides the site's content documents.
type Source interface {
	HomePage(ctx context.Context, opts Options) (*HomePage, error)
	AboutPage(ctx context.Context, opts Options) (*AboutPage, error)
	ContactPage(ctx context.Context, opts Options) (*ContactPage, error)
	RegisterPage(ctx context.Context, opts Options) (*RegisterPage, error)
	SiteSettings(ctx context.Context, opts Options) (*SiteSettings, error)
}
