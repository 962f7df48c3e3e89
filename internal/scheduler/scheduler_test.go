// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/reclaim-go/internal/store"
	"github.com/olegiv/reclaim-go/internal/testutil"
)

func TestNew(t *testing.T) {
	logger := testutil.TestLoggerSilent()

	s := New(nil, logger, Config{Retention: time.Hour})
	require.NotNil(t, s)
	assert.NotNil(t, s.cron)
	assert.Equal(t, "@daily", s.cfg.Schedule)
	assert.Same(t, logger, s.logger)
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(nil, testutil.TestLoggerSilent(), Config{Schedule: "0 3 * * *", Retention: 24 * time.Hour})

	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)
	s.Stop()
}

func TestScheduler_StartErrors(t *testing.T) {
	s := New(nil, testutil.TestLoggerSilent(), Config{})
	assert.ErrorIs(t, s.Start(), ErrRetentionDisabled)

	s = New(nil, testutil.TestLoggerSilent(), Config{Schedule: "every tuesday", Retention: time.Hour})
	assert.Error(t, s.Start())
}

func TestValidateSchedule(t *testing.T) {
	for _, expr := range []string{"@daily", "@every 1h", "30 2 * * *"} {
		assert.NoError(t, ValidateSchedule(expr), expr)
	}
	for _, expr := range []string{"", "* * *", "@fortnightly"} {
		assert.Error(t, ValidateSchedule(expr), expr)
	}
}

func TestPurge(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	ctx := context.Background()

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	ages := []time.Duration{0, 24 * time.Hour, 40 * 24 * time.Hour, 90 * 24 * time.Hour}
	for i, age := range ages {
		_, err := q.CreateSubmission(ctx, store.CreateSubmissionParams{
			UUID:      fmt.Sprintf("s-%d", i),
			FormName:  "contact",
			Data:      "{}",
			CreatedAt: now.Add(-age),
		})
		require.NoError(t, err)
		_, err = q.CreateEvent(ctx, store.CreateEventParams{
			Level:     store.EventLevelWarning,
			Category:  store.EventCategoryForm,
			Message:   "old warning",
			Metadata:  "{}",
			CreatedAt: now.Add(-age),
		})
		require.NoError(t, err)
	}

	s := New(db, testutil.TestLoggerSilent(), Config{Retention: 30 * 24 * time.Hour})
	s.now = func() time.Time { return now }

	res, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Submissions)
	assert.Equal(t, int64(2), res.Events)
	assert.Equal(t, now.Add(-30*24*time.Hour), res.Cutoff)

	count, err := q.CountSubmissionsByForm(ctx, "contact")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	events, err := q.ListRecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 3, "two kept events plus the purge record")

	// Nothing left to purge: no new event is written.
	res, err = s.Purge(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Submissions)
	events, err = q.ListRecentEvents(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}
