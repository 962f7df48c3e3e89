// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/olegiv/reclaim-go/internal/cache"
)

const cacheKeyPrefix = "content:"

// CachedSource caches published documents for a fixed TTL. Preview requests
// always go to the wrapped source. Concurrent misses for the same document
// share one fetch.
type CachedSource struct {
	src    Source
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group

	home     *cache.TypedCache[HomePage]
	about    *cache.TypedCache[AboutPage]
	contact  *cache.TypedCache[ContactPage]
	register *cache.TypedCache[RegisterPage]
	settings *cache.TypedCache[SiteSettings]
}

// NewCachedSource wraps src with c.
func NewCachedSource(src Source, c cache.Cache, ttl time.Duration, logger *slog.Logger) *CachedSource {
	return &CachedSource{
		src:      src,
		cache:    c,
		ttl:      ttl,
		logger:   logger,
		home:     cache.NewTypedCache[HomePage](c, ttl),
		about:    cache.NewTypedCache[AboutPage](c, ttl),
		contact:  cache.NewTypedCache[ContactPage](c, ttl),
		register: cache.NewTypedCache[RegisterPage](c, ttl),
		settings: cache.NewTypedCache[SiteSettings](c, ttl),
	}
}

func cacheKey(docType string) string {
	return cacheKeyPrefix + docType + ":published"
}

// HomePage implements Source.
func (s *CachedSource) HomePage(ctx context.Context, opts Options) (*HomePage, error) {
	return cached(ctx, s, s.home, TypeHomePage, opts, s.src.HomePage)
}

// AboutPage implements Source.
func (s *CachedSource) AboutPage(ctx context.Context, opts Options) (*AboutPage, error) {
	return cached(ctx, s, s.about, TypeAboutPage, opts, s.src.AboutPage)
}

// ContactPage implements Source.
func (s *CachedSource) ContactPage(ctx context.Context, opts Options) (*ContactPage, error) {
	return cached(ctx, s, s.contact, TypeContactPage, opts, s.src.ContactPage)
}

// RegisterPage implements Source.
func (s *CachedSource) RegisterPage(ctx context.Context, opts Options) (*RegisterPage, error) {
	return cached(ctx, s, s.register, TypeRegisterPage, opts, s.src.RegisterPage)
}

// SiteSettings implements Source.
func (s *CachedSource) SiteSettings(ctx context.Context, opts Options) (*SiteSettings, error) {
	return cached(ctx, s, s.settings, TypeSiteSettings, opts, s.src.SiteSettings)
}

// Invalidate drops the cached documents of the given types.
func (s *CachedSource) Invalidate(ctx context.Context, docTypes ...string) error {
	var errs []error
	for _, t := range docTypes {
		if err := s.cache.DeleteByPrefix(ctx, cacheKeyPrefix+t+":"); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Warn("content cache invalidation failed", "types", docTypes, "error", err)
		return err
	}
	s.logger.Info("content cache invalidated", "types", docTypes)
	return nil
}

func cached[T any](
	ctx context.Context,
	s *CachedSource,
	tc *cache.TypedCache[T],
	docType string,
	opts Options,
	fetch func(context.Context, Options) (*T, error),
) (*T, error) {
	if opts.Preview {
		return fetch(ctx, opts)
	}

	key := cacheKey(docType)
	if doc, ok := tc.Get(ctx, key); ok {
		return doc, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		doc, err := fetch(ctx, opts)
		if err != nil {
			return nil, err
		}
		if err := tc.Set(ctx, key, doc); err != nil {
			s.logger.Warn("content cache write failed", "type", docType, "error", err)
		}
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

var _ Source = (*CachedSource)(nil)
