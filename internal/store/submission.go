// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// SubmissionStore captures public form posts.
type SubmissionStore struct {
	db *sql.DB
}

// NewSubmissionStore creates a new SubmissionStore with the given database connection.
func NewSubmissionStore(db *sql.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

// Create stores a submission.
func (s *SubmissionStore) Create(ctx context.Context, sub *models.FormSubmission) (*models.FormSubmission, error) {
	values, err := json.Marshal(sub.Values)
	if err != nil {
		return nil, fmt.Errorf("encode submission values: %w", err)
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO form_submissions (blog_id, page_id, component_id, field_values, remote_addr)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, sub.BlogID, sub.PageID, sub.ComponentID, values, sub.RemoteAddr).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	return sub, nil
}

// ListByBlog returns a blog's submissions, newest first.
func (s *SubmissionStore) ListByBlog(ctx context.Context, blogID uuid.UUID, limit, offset int) ([]models.FormSubmission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, blog_id, page_id, component_id, field_values, remote_addr, created_at
		FROM form_submissions
		WHERE blog_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, blogID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	subs := []models.FormSubmission{}
	for rows.Next() {
		var sub models.FormSubmission
		var values []byte
		if err := rows.Scan(&sub.ID, &sub.BlogID, &sub.PageID, &sub.ComponentID,
			&values, &sub.RemoteAddr, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if err := json.Unmarshal(values, &sub.Values); err != nil {
			return nil, fmt.Errorf("decode submission values: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
