// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/reclaim-go/internal/store"
	"github.com/olegiv/reclaim-go/internal/testutil"
)

func TestMigrate(t *testing.T) {
	db := testutil.TestDB(t)

	version, err := store.MigrationStatus(db)
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)

	// running again is a no-op
	require.NoError(t, store.Migrate(db))
}

func TestNewDB_Pragmas(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()

	// Hold one connection so the queries below run on another.
	held, err := db.Conn(ctx)
	require.NoError(t, err)
	defer func() { _ = held.Close() }()

	var mode string
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var timeout, foreignKeys int
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
	assert.Equal(t, 5000, timeout)
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&foreignKeys))
	assert.Equal(t, 1, foreignKeys)
}

func TestSubmissions(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"a-1", "a-2", "a-3"} {
		_, err := q.CreateSubmission(ctx, store.CreateSubmissionParams{
			UUID:      id,
			FormName:  "contact",
			Data:      `{"name":"Sam"}`,
			IPAddress: "203.0.113.7",
			UserAgent: "test",
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	_, err := q.CreateSubmission(ctx, store.CreateSubmissionParams{
		UUID: "r-1", FormName: "registration", Data: "{}", CreatedAt: now,
	})
	require.NoError(t, err)

	count, err := q.CountSubmissionsByForm(ctx, "contact")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	list, err := q.ListSubmissionsByForm(ctx, store.ListSubmissionsByFormParams{FormName: "contact", Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a-3", list[0].UUID)
	assert.Equal(t, "a-2", list[1].UUID)

	got, err := q.GetSubmissionByUUID(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", got.IPAddress)
	assert.False(t, got.IsRead)

	require.NoError(t, q.MarkSubmissionRead(ctx, "a-1"))
	got, err = q.GetSubmissionByUUID(ctx, "a-1")
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	_, err = q.GetSubmissionByUUID(ctx, "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestDeleteSubmissionsBefore(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	old := now.Add(-200 * 24 * time.Hour)
	for id, at := range map[string]time.Time{"old": old, "new": now} {
		_, err := q.CreateSubmission(ctx, store.CreateSubmissionParams{
			UUID: id, FormName: "contact", Data: "{}", CreatedAt: at,
		})
		require.NoError(t, err)
	}

	n, err := q.DeleteSubmissionsBefore(ctx, now.Add(-180*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = q.GetSubmissionByUUID(ctx, "new")
	assert.NoError(t, err)
}

func TestEvents(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	_, err := q.CreateEvent(ctx, store.CreateEventParams{
		Level: store.EventLevelWarning, Category: store.EventCategoryForm,
		Message: "first", Metadata: "{}", CreatedAt: now.Add(-time.Minute),
	})
	require.NoError(t, err)
	_, err = q.CreateEvent(ctx, store.CreateEventParams{
		Level: store.EventLevelError, Category: store.EventCategorySystem,
		Message: "second", Metadata: `{"k":"v"}`, CreatedAt: now,
	})
	require.NoError(t, err)

	events, err := q.ListRecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "second", events[0].Message)
	assert.Equal(t, store.EventLevelError, events[0].Level)

	n, err := q.DeleteEventsBefore(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
