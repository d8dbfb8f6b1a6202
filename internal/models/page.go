// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// HomeSlug is the page served at the root of a blog's subdomain.
const HomeSlug = "home"

// Page is an ordered collection of components within a blog.
type Page struct {
	ID        uuid.UUID `json:"id"`
	BlogID    uuid.UUID `json:"blog_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ComponentRow is the stored form of one component: a type tag and an
// opaque JSON payload whose shape the tag determines.
type ComponentRow struct {
	ID        uuid.UUID       `json:"id"`
	PageID    uuid.UUID       `json:"page_id"`
	Type      string          `json:"type"`
	Order     int             `json:"order"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PageTree is a page with its components in ascending order.
type PageTree struct {
	Page       Page           `json:"page"`
	Components []ComponentRow `json:"components"`
}

// BlogTree is a blog with its pages in ascending order. Pages is never nil.
type BlogTree struct {
	Blog  Blog       `json:"blog"`
	Pages []PageTree `json:"pages"`
}

// FindPage returns the page with the given slug, or nil.
func (t *BlogTree) FindPage(slug string) *PageTree {
	for i := range t.Pages {
		if t.Pages[i].Page.Slug == slug {
			return &t.Pages[i]
		}
	}
	return nil
}
