// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package formbackend receives form submissions: it filters spam, verifies
// CAPTCHA responses, stores submissions and notifies a webhook.
package formbackend

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/reclaim-go/internal/formengine"
	"github.com/olegiv/reclaim-go/internal/metrics"
	"github.com/olegiv/reclaim-go/internal/store"
	"github.com/olegiv/reclaim-go/internal/webhook"
)

// ErrUnknownForm is returned for a form-name no form is registered under.
var ErrUnknownForm = errors.New("unknown form")

// Submission is one posted form.
type Submission struct {
	Payload formengine.Payload
	Client  Client
}

// Result describes an accepted submission. Spam submissions are reported
// as accepted with Spam set and no ID.
type Result struct {
	ID   string
	Spam bool
}

// Service processes submissions for a fixed set of form names.
type Service struct {
	queries    *store.Queries
	logger     *slog.Logger
	forms      map[string]struct{}
	captcha    CaptchaVerifier
	dispatcher *webhook.Dispatcher
	metrics    *metrics.Metrics
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithForms replaces the accepted form names.
func WithForms(names ...string) Option {
	return func(s *Service) {
		s.forms = make(map[string]struct{}, len(names))
		for _, n := range names {
			s.forms[n] = struct{}{}
		}
	}
}

// WithCaptcha enables CAPTCHA verification.
func WithCaptcha(v CaptchaVerifier) Option {
	return func(s *Service) { s.captcha = v }
}

// WithDispatcher sends a form.submitted webhook for every stored submission.
func WithDispatcher(d *webhook.Dispatcher) Option {
	return func(s *Service) { s.dispatcher = d }
}

// WithMetrics records submission outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a Service storing into db. By default it accepts the
// contact and registration forms.
func NewService(db *sql.DB, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		queries: store.New(db),
		logger:  logger,
		now:     time.Now,
	}
	WithForms(formengine.ContactFormName, formengine.RegistrationFormName)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Accept processes one submission.
func (s *Service) Accept(ctx context.Context, sub Submission) (Result, error) {
	name := sub.Payload.Get(formengine.FormNameKey)
	if _, ok := s.forms[name]; !ok {
		s.metrics.Submission("unknown", metrics.OutcomeUnknownForm)
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownForm, name)
	}

	if sub.Payload.Get(formengine.HoneypotKey) != "" {
		// Bot detected, silently pretend success
		s.logger.Info("honeypot triggered", "form_name", name, "ip", sub.Client.IP)
		s.metrics.Submission(name, metrics.OutcomeSpam)
		return Result{Spam: true}, nil
	}

	if s.captcha != nil {
		if err := s.captcha.Verify(ctx, sub.Payload.Get(formengine.HCaptchaKey), sub.Client.IP); err != nil {
			s.metrics.Submission(name, metrics.OutcomeCaptchaFailed)
			return Result{}, err
		}
	}

	values := submissionValues(sub.Payload)
	dataJSON, err := json.Marshal(values)
	if err != nil {
		s.metrics.Submission(name, metrics.OutcomeError)
		return Result{}, fmt.Errorf("marshaling submission data: %w", err)
	}

	now := s.now().UTC()
	submission, err := s.queries.CreateSubmission(ctx, store.CreateSubmissionParams{
		UUID:      uuid.NewString(),
		FormName:  name,
		Data:      string(dataJSON),
		IPAddress: sub.Client.IP,
		UserAgent: sub.Client.UserAgent,
		CreatedAt: now,
	})
	if err != nil {
		s.metrics.Submission(name, metrics.OutcomeError)
		return Result{}, fmt.Errorf("saving %s submission: %w", name, err)
	}

	s.logger.Info("form submission saved", "form_name", name, "submission_id", submission.UUID)
	s.metrics.Submission(name, metrics.OutcomeAccepted)
	s.dispatchFormEvent(ctx, submission, values, describeClient(sub.Client.UserAgent))

	return Result{ID: submission.UUID}, nil
}

// dispatchFormEvent dispatches a form submission webhook event.
func (s *Service) dispatchFormEvent(ctx context.Context, sub store.Submission, values map[string]string, client *webhook.ClientInfo) {
	if !s.dispatcher.Enabled() {
		return
	}

	eventData := webhook.FormEventData{
		FormName:     sub.FormName,
		SubmissionID: sub.UUID,
		Data:         values,
		Client:       client,
		SubmittedAt:  sub.CreatedAt,
	}
	err := s.dispatcher.DispatchEvent(ctx, webhook.EventFormSubmitted, eventData)
	s.metrics.WebhookDispatch(err == nil)
	if err != nil {
		s.logger.Error("failed to dispatch webhook event",
			"error", err,
			"event_type", webhook.EventFormSubmitted,
			"submission_id", sub.UUID)
	}
}

// submissionValues returns the authored fields of p, without the keys the
// transport owns. Repeated keys resolve to the last value.
func submissionValues(p formengine.Payload) map[string]string {
	values := make(map[string]string, len(p))
	for _, pair := range p {
		if formengine.IsReservedKey(pair.Key) {
			continue
		}
		values[pair.Key] = pair.Value
	}
	return values
}
