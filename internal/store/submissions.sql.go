// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const createSubmission = `-- name: CreateSubmission :one
INSERT INTO submissions (uuid, form_name, data, ip_address, user_agent, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, uuid, form_name, data, ip_address, user_agent, is_read, created_at
`

// CreateSubmissionParams holds the columns of a new submission.
type CreateSubmissionParams struct {
	UUID      string    `json:"uuid"`
	FormName  string    `json:"form_name"`
	Data      string    `json:"data"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreateSubmission(ctx context.Context, arg CreateSubmissionParams) (Submission, error) {
	row := q.db.QueryRowContext(ctx, createSubmission,
		arg.UUID,
		arg.FormName,
		arg.Data,
		arg.IPAddress,
		arg.UserAgent,
		arg.CreatedAt,
	)
	var i Submission
	err := row.Scan(
		&i.ID,
		&i.UUID,
		&i.FormName,
		&i.Data,
		&i.IPAddress,
		&i.UserAgent,
		&i.IsRead,
		&i.CreatedAt,
	)
	return i, err
}

const getSubmissionByUUID = `-- name: GetSubmissionByUUID :one
SELECT id, uuid, form_name, data, ip_address, user_agent, is_read, created_at
FROM submissions WHERE uuid = ?
`

func (q *Queries) GetSubmissionByUUID(ctx context.Context, uuid string) (Submission, error) {
	row := q.db.QueryRowContext(ctx, getSubmissionByUUID, uuid)
	var i Submission
	err := row.Scan(
		&i.ID,
		&i.UUID,
		&i.FormName,
		&i.Data,
		&i.IPAddress,
		&i.UserAgent,
		&i.IsRead,
		&i.CreatedAt,
	)
	return i, err
}

const listSubmissionsByForm = `-- name: ListSubmissionsByForm :many
SELECT id, uuid, form_name, data, ip_address, user_agent, is_read, created_at
FROM submissions
WHERE form_name = ?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?
`

// ListSubmissionsByFormParams selects one page of a form's submissions.
type ListSubmissionsByFormParams struct {
	FormName string `json:"form_name"`
	Limit    int64  `json:"limit"`
	Offset   int64  `json:"offset"`
}

func (q *Queries) ListSubmissionsByForm(ctx context.Context, arg ListSubmissionsByFormParams) ([]Submission, error) {
	rows, err := q.db.QueryContext(ctx, listSubmissionsByForm, arg.FormName, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []Submission{}
	for rows.Next() {
		var i Submission
		if err := rows.Scan(
			&i.ID,
			&i.UUID,
			&i.FormName,
			&i.Data,
			&i.IPAddress,
			&i.UserAgent,
			&i.IsRead,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countSubmissionsByForm = `-- name: CountSubmissionsByForm :one
SELECT COUNT(*) FROM submissions WHERE form_name = ?
`

func (q *Queries) CountSubmissionsByForm(ctx context.Context, formName string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countSubmissionsByForm, formName)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const markSubmissionRead = `-- name: MarkSubmissionRead :exec
UPDATE submissions SET is_read = 1 WHERE uuid = ?
`

func (q *Queries) MarkSubmissionRead(ctx context.Context, uuid string) error {
	_, err := q.db.ExecContext(ctx, markSubmissionRead, uuid)
	return err
}

const deleteSubmissionsBefore = `-- name: DeleteSubmissionsBefore :execrows
DELETE FROM submissions WHERE created_at < ?
`

func (q *Queries) DeleteSubmissionsBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteSubmissionsBefore, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
