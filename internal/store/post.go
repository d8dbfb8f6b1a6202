// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// PostStore handles blog posts.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, blog_id, author_id, title, slug, body, excerpt, cover_image_url,
	status, published_at, created_at, updated_at`

func scanPost(s scanner) (*models.Post, error) {
	var p models.Post
	if err := s.Scan(&p.ID, &p.BlogID, &p.AuthorID, &p.Title, &p.Slug, &p.Body,
		&p.Excerpt, &p.CoverImageURL, &p.Status, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostStore) list(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// Create inserts a post. Publishing sets published_at when it is unset.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	if p.Status == "" {
		p.Status = models.PostStatusDraft
	}
	if p.Status == models.PostStatusPublished && p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (blog_id, author_id, title, slug, body, excerpt, cover_image_url, status, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+postColumns,
		p.BlogID, p.AuthorID, p.Title, p.Slug, p.Body, p.Excerpt, p.CoverImageURL, p.Status, p.PublishedAt)
	created, err := scanPost(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create post %q: %w", p.Slug, ErrConflict)
		}
		return nil, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

// ListByBlog returns every post of a blog, newest first.
func (s *PostStore) ListByBlog(ctx context.Context, blogID uuid.UUID) ([]models.Post, error) {
	posts, err := s.list(ctx, `
		SELECT `+postColumns+` FROM posts WHERE blog_id = $1 ORDER BY created_at DESC
	`, blogID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// RecentPublished returns up to limit published posts of the blog with the
// given slug, most recently published first. It backs dynamic grids.
func (s *PostStore) RecentPublished(ctx context.Context, blogSlug string, limit int) ([]models.Post, error) {
	posts, err := s.list(ctx, `
		SELECT p.id, p.blog_id, p.author_id, p.title, p.slug, p.body, p.excerpt, p.cover_image_url,
		       p.status, p.published_at, p.created_at, p.updated_at
		FROM posts p JOIN blogs b ON b.id = p.blog_id
		WHERE b.slug = $1 AND p.status = 'published'
		ORDER BY p.published_at DESC, p.id
		LIMIT $2
	`, blogSlug, limit)
	if err != nil {
		return nil, fmt.Errorf("recent published posts: %w", err)
	}
	return posts, nil
}

// FindPublished returns a published post by slug within a blog, or nil.
func (s *PostStore) FindPublished(ctx context.Context, blogID uuid.UUID, slug string) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE blog_id = $1 AND slug = $2 AND status = 'published'
	`, blogID, slug))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find published post: %w", err)
	}
	return p, nil
}

// Publish marks a post published. It returns false if the post does not
// belong to the blog.
func (s *PostStore) Publish(ctx context.Context, blogID, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET status = 'published', published_at = COALESCE(published_at, NOW()), updated_at = NOW()
		WHERE id = $1 AND blog_id = $2
	`, id, blogID)
	if err != nil {
		return false, fmt.Errorf("publish post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("publish post: %w", err)
	}
	return n > 0, nil
}

// Delete removes a post. It returns false if the post does not belong to
// the blog.
func (s *PostStore) Delete(ctx context.Context, blogID, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1 AND blog_id = $2`, id, blogID)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	return n > 0, nil
}

// CountSince returns how many posts the blog created at or after since.
func (s *PostStore) CountSince(ctx context.Context, blogID uuid.UUID, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM posts WHERE blog_id = $1 AND created_at >= $2
	`, blogID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}
