// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic retention purge of stored
// submissions and diagnostic events.
package scheduler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/reclaim-go/internal/store"
)

// ErrRetentionDisabled is returned by Start when no retention is configured.
var ErrRetentionDisabled = errors.New("retention purge disabled")

// Config controls the retention job.
type Config struct {
	// Schedule is a standard cron expression or descriptor such as "@daily".
	Schedule string
	// Retention is how long submissions and events are kept. Zero disables the job.
	Retention time.Duration
}

// PurgeResult reports what a purge removed.
type PurgeResult struct {
	Submissions int64
	Events      int64
	Cutoff      time.Time
}

// Scheduler handles scheduled maintenance tasks.
type Scheduler struct {
	db     *sql.DB
	cron   *cron.Cron
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// New creates a new scheduler instance.
func New(db *sql.DB, logger *slog.Logger, cfg Config) *Scheduler {
	if cfg.Schedule == "" {
		cfg.Schedule = "@daily"
	}
	return &Scheduler{
		db:     db,
		cron:   cron.New(),
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// ValidateSchedule reports whether expr is a schedule Start accepts.
func ValidateSchedule(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}
	return nil
}

// Start registers the retention job and starts the cron runner.
func (s *Scheduler) Start() error {
	if s.cfg.Retention <= 0 {
		return ErrRetentionDisabled
	}

	_, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		if _, err := s.Purge(context.Background()); err != nil {
			s.logger.Error("failed to purge expired submissions", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling retention purge: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		"jobs", len(s.cron.Entries()),
		"schedule", s.cfg.Schedule,
		"retention", s.cfg.Retention.String())
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running purge.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Purge deletes submissions and events older than the retention period.
func (s *Scheduler) Purge(ctx context.Context) (PurgeResult, error) {
	queries := store.New(s.db)
	now := s.now().UTC()
	res := PurgeResult{Cutoff: now.Add(-s.cfg.Retention)}

	var err error
	res.Submissions, err = queries.DeleteSubmissionsBefore(ctx, res.Cutoff)
	if err != nil {
		return res, fmt.Errorf("deleting submissions: %w", err)
	}
	res.Events, err = queries.DeleteEventsBefore(ctx, res.Cutoff)
	if err != nil {
		return res, fmt.Errorf("deleting events: %w", err)
	}

	if res.Submissions == 0 && res.Events == 0 {
		return res, nil
	}

	s.logger.Info("purged expired records",
		"submissions", res.Submissions,
		"events", res.Events,
		"cutoff", res.Cutoff.Format(time.RFC3339))

	metadata := map[string]any{
		"submissions": res.Submissions,
		"events":      res.Events,
		"cutoff":      res.Cutoff.Format(time.RFC3339),
	}
	metadataJSON, _ := json.Marshal(metadata)

	_, err = queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     store.EventLevelInfo,
		Category:  store.EventCategorySystem,
		Message:   "Expired submissions purged by scheduler",
		Metadata:  string(metadataJSON),
		CreatedAt: now,
	})
	if err != nil {
		s.logger.Warn("failed to log purge event", "error", err)
	}

	return res, nil
}
