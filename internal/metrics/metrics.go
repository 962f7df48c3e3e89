// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics exposes Prometheus counters for form submissions,
// content revalidation and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reclaim"

// Submission outcomes recorded by the form backend.
const (
	OutcomeAccepted      = "accepted"
	OutcomeSpam          = "spam"
	OutcomeCaptchaFailed = "captcha_failed"
	OutcomeUnknownForm   = "unknown_form"
	OutcomeError         = "error"
)

// Metrics holds the application collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	submissions   *prometheus.CounterVec
	formSubmits   *prometheus.CounterVec
	revalidations *prometheus.CounterVec
	webhooks      *prometheus.CounterVec
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// New registers the collectors with reg. Passing nil uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "form_submissions_received_total",
			Help:      "Form submissions received by the backend, by form and outcome",
		}, []string{"form", "outcome"}),
		formSubmits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "form_submits_total",
			Help:      "Form engine submit attempts, by form and resulting status",
		}, []string{"form", "status"}),
		revalidations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_revalidations_total",
			Help:      "Content revalidation requests, by document type",
		}, []string{"type"}),
		webhooks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_dispatches_total",
			Help:      "Webhook events queued or dropped",
		}, []string{"result"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code",
		}, []string{"route", "method", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Submission records a submission received by the backend.
func (m *Metrics) Submission(form, outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(form, outcome).Inc()
}

// FormSubmit records the status a form reached after Submit.
func (m *Metrics) FormSubmit(form, status string) {
	if m == nil {
		return
	}
	m.formSubmits.WithLabelValues(form, status).Inc()
}

// Revalidation records a content revalidation for docType.
func (m *Metrics) Revalidation(docType string) {
	if m == nil {
		return
	}
	m.revalidations.WithLabelValues(docType).Inc()
}

// WebhookDispatch records whether a webhook event was queued.
func (m *Metrics) WebhookDispatch(queued bool) {
	if m == nil {
		return
	}
	result := "queued"
	if !queued {
		result = "dropped"
	}
	m.webhooks.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
