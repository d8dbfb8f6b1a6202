// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"inkwell/internal/models"
)

// BlogStore handles tenant (blog) rows.
type BlogStore struct {
	db *sql.DB
}

// NewBlogStore creates a new BlogStore with the given database connection.
func NewBlogStore(db *sql.DB) *BlogStore {
	return &BlogStore{db: db}
}

const blogColumns = `id, owner_id, slug, name, description, background_color, font_family, created_at, updated_at`

func scanBlog(s scanner) (*models.Blog, error) {
	var b models.Blog
	if err := s.Scan(&b.ID, &b.OwnerID, &b.Slug, &b.Name, &b.Description,
		&b.BackgroundColor, &b.FontFamily, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a blog. A taken slug yields ErrConflict.
func (s *BlogStore) Create(ctx context.Context, b *models.Blog) (*models.Blog, error) {
	if b.BackgroundColor == "" {
		b.BackgroundColor = models.DefaultBackgroundColor
	}
	if b.FontFamily == "" {
		b.FontFamily = models.DefaultFontFamily
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO blogs (owner_id, slug, name, description, background_color, font_family)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+blogColumns,
		b.OwnerID, b.Slug, b.Name, b.Description, b.BackgroundColor, b.FontFamily)
	created, err := scanBlog(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create blog %q: %w", b.Slug, ErrConflict)
		}
		return nil, fmt.Errorf("create blog: %w", err)
	}
	return created, nil
}

// FindBySlug returns the blog with the given tenant slug, or nil.
func (s *BlogStore) FindBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	b, err := scanBlog(s.db.QueryRowContext(ctx, `SELECT `+blogColumns+` FROM blogs WHERE slug = $1`, slug))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find blog by slug: %w", err)
	}
	return b, nil
}

// ListByOwner returns the caller's blogs, oldest first.
func (s *BlogStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Blog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+blogColumns+` FROM blogs WHERE owner_id = $1 ORDER BY created_at
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	blogs := []models.Blog{}
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan blog: %w", err)
		}
		blogs = append(blogs, *b)
	}
	return blogs, rows.Err()
}

// Owned returns the blog with the given slug if ownerID owns it. A missing
// blog yields (nil, nil); a blog owned by someone else yields ErrForbidden.
func (s *BlogStore) Owned(ctx context.Context, slug string, ownerID uuid.UUID) (*models.Blog, error) {
	b, err := s.FindBySlug(ctx, slug)
	if err != nil || b == nil {
		return nil, err
	}
	if b.OwnerID != ownerID {
		return nil, fmt.Errorf("blog %q: %w", slug, ErrForbidden)
	}
	return b, nil
}

// UpdateSettings stores the blog-level presentation settings.
func (s *BlogStore) UpdateSettings(ctx context.Context, b *models.Blog) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE blogs SET name = $1, description = $2, background_color = $3,
			font_family = $4, updated_at = NOW()
		WHERE id = $5
	`, b.Name, b.Description, b.BackgroundColor, b.FontFamily, b.ID)
	if err != nil {
		return fmt.Errorf("update blog settings: %w", err)
	}
	return nil
}

// Delete removes a blog and, through cascades, everything it owns.
func (s *BlogStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blogs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
