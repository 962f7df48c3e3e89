// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GROQ projections of the documents.
const (
	seoProjection = `seo {
    metaTitle,
    metaDescription,
    ogImage { asset->{ _id, url } }
  }`

	homePageQuery = `*[_type == "homePage"][0]{
  hero {
    title,
    subtitle,
    image { asset->{ _id, url }, alt },
    primaryButton { text, url },
    secondaryButton { text, url }
  },
  mission { title, content },
  ctaSection { title, subtitle, button { text, url } },
  ` + seoProjection + `
}`

	aboutPageQuery = `*[_type == "aboutPage"][0]{
  title,
  content,
  ` + seoProjection + `
}`

	contactPageQuery = `*[_type == "contactPage"][0]{
  title,
  introText,
  formTitle,
  ` + seoProjection + `
}`

	registerPageQuery = `*[_type == "registerPage"][0]{
  title,
  subtitle,
  formFields[] { fieldKey, label, type, required, placeholder, helpText, options },
  thankYou { title, message },
  nextSteps { title, steps[] { description } },
  ` + seoProjection + `
}`

	siteSettingsQuery = `*[_type == "siteSettings"][0]{
  siteName,
  tagline,
  contactInfo { phone, email, address { street, city, state, zip } },
  socialLinks[] { _key, platform, url }
}`
)

// SanityConfig configures a SanityClient.
type SanityConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string // e.g. "2024-01-01"
	Token      string // read token, sent only with preview queries

	// BaseURL replaces both the CDN and the API host, for tests.
	BaseURL    string
	HTTPClient *http.Client
}

// SanityClient runs GROQ queries against the Sanity HTTP API. Published
// content is read from the CDN; preview reads drafts from the live API.
type SanityClient struct {
	cfg  SanityConfig
	http *http.Client
}

// NewSanityClient creates a client for the given project.
func NewSanityClient(cfg SanityConfig) (*SanityClient, error) {
	if cfg.ProjectID == "" && cfg.BaseURL == "" {
		return nil, errors.New("sanity project ID is required")
	}
	if cfg.Dataset == "" {
		cfg.Dataset = "production"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-01-01"
	}
	cfg.APIVersion = strings.TrimPrefix(cfg.APIVersion, "v")

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &SanityClient{cfg: cfg, http: client}, nil
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

type errorResponse struct {
	Error struct {
		Description string `json:"description"`
	} `json:"error"`
}

func (c *SanityClient) endpoint(preview bool) string {
	base := c.cfg.BaseURL
	if base == "" {
		host := "apicdn.sanity.io"
		if preview {
			host = "api.sanity.io"
		}
		base = fmt.Sprintf("https://%s.%s", c.cfg.ProjectID, host)
	}
	return fmt.Sprintf("%s/v%s/data/query/%s", strings.TrimRight(base, "/"), c.cfg.APIVersion, url.PathEscape(c.cfg.Dataset))
}

// Query runs a GROQ query and decodes its result into dst. A null result
// returns ErrNotFound.
func (c *SanityClient) Query(ctx context.Context, query string, opts Options, dst any) error {
	q := url.Values{}
	q.Set("query", query)
	if opts.Preview {
		q.Set("perspective", "previewDrafts")
	} else {
		q.Set("perspective", "published")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(opts.Preview)+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if opts.Preview && c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("querying sanity: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(body, &e) == nil && e.Error.Description != "" {
			return fmt.Errorf("sanity query failed with status %d: %s", resp.StatusCode, e.Error.Description)
		}
		return fmt.Errorf("sanity query failed with status %d", resp.StatusCode)
	}

	var qr queryResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if len(bytes.TrimSpace(qr.Result)) == 0 || bytes.Equal(bytes.TrimSpace(qr.Result), []byte("null")) {
		return ErrNotFound
	}
	if err := json.Unmarshal(qr.Result, dst); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}
	return nil
}

// HomePage implements Source.
func (c *SanityClient) HomePage(ctx context.Context, opts Options) (*HomePage, error) {
	return query[HomePage](ctx, c, homePageQuery, opts)
}

// AboutPage implements Source.
func (c *SanityClient) AboutPage(ctx context.Context, opts Options) (*AboutPage, error) {
	return query[AboutPage](ctx, c, aboutPageQuery, opts)
}

// ContactPage implements Source.
func (c *SanityClient) ContactPage(ctx context.Context, opts Options) (*ContactPage, error) {
	return query[ContactPage](ctx, c, contactPageQuery, opts)
}

// RegisterPage implements Source.
func (c *SanityClient) RegisterPage(ctx context.Context, opts Options) (*RegisterPage, error) {
	return query[RegisterPage](ctx, c, registerPageQuery, opts)
}

// SiteSettings implements Source.
func (c *SanityClient) SiteSettings(ctx context.Context, opts Options) (*SiteSettings, error) {
	return query[SiteSettings](ctx, c, siteSettingsQuery, opts)
}

func query[T any](ctx context.Context, c *SanityClient, q string, opts Options) (*T, error) {
	var doc T
	if err := c.Query(ctx, q, opts, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

var _ Source = (*SanityClient)(nil)
