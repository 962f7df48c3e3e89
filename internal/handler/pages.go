// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the site's HTTP handlers.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/reclaim-go/internal/cms"
	"github.com/olegiv/reclaim-go/internal/formbackend"
	"github.com/olegiv/reclaim-go/internal/formengine"
	"github.com/olegiv/reclaim-go/internal/metrics"
	"github.com/olegiv/reclaim-go/internal/render"
	"github.com/olegiv/reclaim-go/internal/util"
)

// Page paths.
const (
	PathHome     = "/"
	PathAbout    = "/about"
	PathContact  = "/contact"
	PathRegister = "/register"
)

// Metric status for submissions stopped by validation.
const statusInvalid = "invalid"

// PagesConfig holds the dependencies of PagesHandler.
type PagesConfig struct {
	Content        cms.Source
	Renderer       *render.Renderer
	Sessions       PreviewStore
	Transport      formengine.Transport
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	CaptchaSiteKey string
	SubmitTimeout  time.Duration
}

// PagesHandler serves the public pages and the forms embedded in them.
type PagesHandler struct {
	content        cms.Source
	renderer       *render.Renderer
	sessions       PreviewStore
	transport      formengine.Transport
	metrics        *metrics.Metrics
	logger         *slog.Logger
	captchaSiteKey string
	submitTimeout  time.Duration
}

// NewPagesHandler creates a new PagesHandler.
func NewPagesHandler(cfg PagesConfig) *PagesHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &PagesHandler{
		content:        cfg.Content,
		renderer:       cfg.Renderer,
		sessions:       cfg.Sessions,
		transport:      cfg.Transport,
		metrics:        cfg.Metrics,
		logger:         logger,
		captchaSiteKey: cfg.CaptchaSiteKey,
		submitTimeout:  cfg.SubmitTimeout,
	}
}

// Home handles GET /.
func (h *PagesHandler) Home(w http.ResponseWriter, r *http.Request) {
	page, site, preview := loadPage(h, r, cms.TypeHomePage, h.content.HomePage)
	var seo *cms.SEO
	if page != nil {
		seo = page.SEO
	}
	h.render(w, r, http.StatusOK, render.PageHome, render.TemplateData{
		Meta:    render.ResolveMeta(render.HomeSEO, seo),
		Site:    render.NewSiteView(site),
		Preview: preview,
		Data:    render.HomeData{Page: page},
	})
}

// About handles GET /about.
func (h *PagesHandler) About(w http.ResponseWriter, r *http.Request) {
	page, site, preview := loadPage(h, r, cms.TypeAboutPage, h.content.AboutPage)
	var seo *cms.SEO
	if page != nil {
		seo = page.SEO
	}
	h.render(w, r, http.StatusOK, render.PageAbout, render.TemplateData{
		Meta:    render.ResolveMeta(render.AboutSEO, seo),
		Site:    render.NewSiteView(site),
		Preview: preview,
		Data:    render.AboutData{Page: page},
	})
}

// Contact handles GET /contact.
func (h *PagesHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.renderContact(w, r, http.StatusOK, h.newContactForm())
}

// ContactSubmit handles POST /contact. The posted values are validated and
// handed to the form backend; the page is rendered again with the outcome.
func (h *PagesHandler) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	form := h.newContactForm()
	form.Bind(r.PostForm)
	h.renderContact(w, r, h.submit(r, form), form)
}

func (h *PagesHandler) newContactForm() *formengine.Form {
	return formengine.NewContactForm(
		formengine.WithSubmitTimeout(h.submitTimeout),
		formengine.WithLogger(h.logger),
	)
}

func (h *PagesHandler) renderContact(w http.ResponseWriter, r *http.Request, status int, form *formengine.Form) {
	page, site, preview := loadPage(h, r, cms.TypeContactPage, h.content.ContactPage)
	data := render.ContactData{
		Page: page,
		Form: render.NewFormView(form, PathContact, h.captchaSiteKey),
	}
	var seo *cms.SEO
	if page != nil {
		seo = page.SEO
	}
	if site != nil {
		data.Contact = site.ContactInfo
	}
	h.render(w, r, status, render.PageContact, render.TemplateData{
		Meta:    render.ResolveMeta(render.ContactSEO, seo),
		Site:    render.NewSiteView(site),
		Preview: preview,
		Data:    data,
	})
}

// Register handles GET /register.
func (h *PagesHandler) Register(w http.ResponseWriter, r *http.Request) {
	page, site, preview := loadPage(h, r, cms.TypeRegisterPage, h.content.RegisterPage)
	h.renderRegister(w, r, http.StatusOK, page, site, preview, h.newRegistration(page, preview))
}

// RegisterSubmit handles POST /register.
func (h *PagesHandler) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	page, site, preview := loadPage(h, r, cms.TypeRegisterPage, h.content.RegisterPage)
	reg := h.newRegistration(page, preview)

	status := http.StatusOK
	if reg.View == formengine.ViewForm {
		reg.Form.Bind(r.PostForm)
		status = h.submit(r, reg.Form)
	}
	h.renderRegister(w, r, status, page, site, preview, reg)
}

func (h *PagesHandler) newRegistration(page *cms.RegisterPage, preview bool) formengine.Registration {
	if page == nil {
		return formengine.Registration{View: formengine.ViewEmptySchema}
	}
	reg := formengine.NewRegistrationForm(
		page.FieldDescriptors(h.logger),
		preview,
		page.ThankYou,
		formengine.WithSubmitTimeout(h.submitTimeout),
		formengine.WithLogger(h.logger),
	)
	for _, d := range reg.Dropped {
		h.logger.Warn("registration field not rendered",
			"category", "content",
			"field", d.Descriptor.KeySource(),
			"key", d.Key,
			"reason", string(d.Reason),
		)
	}
	return reg
}

func (h *PagesHandler) renderRegister(w http.ResponseWriter, r *http.Request, status int, page *cms.RegisterPage, site *cms.SiteSettings, preview bool, reg formengine.Registration) {
	var seo *cms.SEO
	if page != nil {
		seo = page.SEO
	}
	h.render(w, r, status, render.PageRegister, render.TemplateData{
		Meta:    render.ResolveMeta(render.RegisterSEO, seo),
		Site:    render.NewSiteView(site),
		Preview: preview,
		Data: render.RegisterData{
			Page:         page,
			Registration: render.NewRegistrationView(reg, PathRegister, h.captchaSiteKey),
		},
	})
}

// submit sends the bound form through the transport and returns the status
// code of the page that reports the outcome.
func (h *PagesHandler) submit(r *http.Request, form *formengine.Form) int {
	ctx := formbackend.WithClient(r.Context(), formbackend.Client{
		IP:        util.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	ctx = formbackend.WithTransportFields(ctx, formbackend.TransportFields{
		Honeypot:        r.PostForm.Get(formengine.HoneypotKey),
		CaptchaResponse: r.PostForm.Get(formengine.HCaptchaKey),
	})

	err := form.Submit(ctx, h.transport)
	if errors.Is(err, formengine.ErrValidation) {
		h.metrics.FormSubmit(form.Name(), statusInvalid)
		return http.StatusUnprocessableEntity
	}
	h.metrics.FormSubmit(form.Name(), form.Status().String())
	return http.StatusOK
}

// NotFound renders the 404 page.
func (h *PagesHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	site, preview := h.siteOnly(r)
	h.render(w, r, http.StatusNotFound, render.PageError, render.TemplateData{
		Meta:    render.Meta{Title: "Page not found - " + render.DefaultSiteName},
		Site:    render.NewSiteView(site),
		Preview: preview,
		Data: render.ErrorData{
			Status:  http.StatusNotFound,
			Title:   "Page not found",
			Message: "The page you are looking for does not exist.",
		},
	})
}

func (h *PagesHandler) siteOnly(r *http.Request) (*cms.SiteSettings, bool) {
	preview := h.isPreview(r)
	site := fetch(r.Context(), h.logger, cms.TypeSiteSettings, h.content.SiteSettings, cms.Options{Preview: preview})
	return site, preview
}

func (h *PagesHandler) isPreview(r *http.Request) bool {
	return h.sessions != nil && h.sessions.IsPreview(r.Context())
}

func (h *PagesHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data render.TemplateData) {
	if err := h.renderer.RenderStatus(w, r, status, name, data); err != nil {
		logAndInternalError(w, h.logger, "failed to render page", "page", name, "error", err)
	}
}

// loadPage fetches a page document and the site settings in parallel.
// Missing or failing documents come back nil.
func loadPage[T any](h *PagesHandler, r *http.Request, docType string, get func(context.Context, cms.Options) (*T, error)) (*T, *cms.SiteSettings, bool) {
	preview := h.isPreview(r)
	opts := cms.Options{Preview: preview}

	var (
		page *T
		site *cms.SiteSettings
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		page = fetch(ctx, h.logger, docType, get, opts)
		return nil
	})
	g.Go(func() error {
		site = fetch(ctx, h.logger, cms.TypeSiteSettings, h.content.SiteSettings, opts)
		return nil
	})
	_ = g.Wait()

	return page, site, preview
}

func fetch[T any](ctx context.Context, logger *slog.Logger, docType string, get func(context.Context, cms.Options) (*T, error), opts cms.Options) *T {
	doc, err := get(ctx, opts)
	switch {
	case errors.Is(err, cms.ErrNotFound):
		logger.Info("content document missing", "type", docType, "preview", opts.Preview)
		return nil
	case err != nil:
		logger.Error("failed to load content",
			"category", "content",
			"type", docType,
			"preview", opts.Preview,
			"error", err,
		)
		return nil
	}
	return doc
}
