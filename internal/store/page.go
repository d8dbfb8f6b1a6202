// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// PageStore handles page rows. Deleting a page cascades to its components.
type PageStore struct {
	db *sql.DB
}

// NewPageStore creates a new PageStore with the given database connection.
func NewPageStore(db *sql.DB) *PageStore {
	return &PageStore{db: db}
}

const pageColumns = `id, blog_id, name, slug, sort_order, created_at, updated_at`

func scanPage(s scanner) (*models.Page, error) {
	var p models.Page
	if err := s.Scan(&p.ID, &p.BlogID, &p.Name, &p.Slug, &p.Order, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create appends a page after the blog's existing pages.
func (s *PageStore) Create(ctx context.Context, p *models.Page) (*models.Page, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO pages (blog_id, name, slug, sort_order)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM pages WHERE blog_id = $1))
		RETURNING `+pageColumns,
		p.BlogID, p.Name, p.Slug)
	created, err := scanPage(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create page %q: %w", p.Slug, ErrConflict)
		}
		return nil, fmt.Errorf("create page: %w", err)
	}
	return created, nil
}

// ListByBlog returns a blog's pages in display order.
func (s *PageStore) ListByBlog(ctx context.Context, blogID uuid.UUID) ([]models.Page, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+pageColumns+` FROM pages WHERE blog_id = $1 ORDER BY sort_order, slug
	`, blogID)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	pages := []models.Page{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, *p)
	}
	return pages, rows.Err()
}

// FindBySlug returns one page of a blog, or nil.
func (s *PageStore) FindBySlug(ctx context.Context, blogID uuid.UUID, slug string) (*models.Page, error) {
	p, err := scanPage(s.db.QueryRowContext(ctx, `
		SELECT `+pageColumns+` FROM pages WHERE blog_id = $1 AND slug = $2
	`, blogID, slug))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by slug: %w", err)
	}
	return p, nil
}

// Count returns the number of pages a blog has.
func (s *PageStore) Count(ctx context.Context, blogID uuid.UUID) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages WHERE blog_id = $1`, blogID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return n, nil
}

// Delete removes a page and its components, then closes the gap in the
// remaining pages' order.
func (s *PageStore) Delete(ctx context.Context, blogID, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete page begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE id = $1 AND blog_id = $2`, id, blogID); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE pages p SET sort_order = r.rn
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY sort_order, slug) - 1 AS rn
			FROM pages WHERE blog_id = $1
		) r
		WHERE p.id = r.id AND p.sort_order <> r.rn
	`, blogID); err != nil {
		return fmt.Errorf("renumber pages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete page commit: %w", err)
	}
	return nil
}
