// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Post is a Markdown article written for a blog. Published posts feed
// dynamic grids and are served at /posts/{slug}.
type Post struct {
	ID            uuid.UUID  `json:"id"`
	BlogID        uuid.UUID  `json:"blog_id"`
	AuthorID      uuid.UUID  `json:"author_id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Body          string     `json:"body"`
	Excerpt       *string    `json:"excerpt,omitempty"`
	CoverImageURL *string    `json:"cover_image_url,omitempty"`
	Status        PostStatus `json:"status"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsPublished returns true if the post is in published status.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}
