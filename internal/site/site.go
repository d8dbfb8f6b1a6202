// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package site resolves a public request (tenant slug plus page path) to
// the blog and the ordered components of the page to render.
package site

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inkwell/internal/component"
	"inkwell/internal/models"
)

// ErrNotFound is returned when the tenant or the page does not exist.
var ErrNotFound = errors.New("not found")

// TreeLoader loads a blog with all its pages and components. A missing
// blog is reported as (nil, nil).
type TreeLoader interface {
	LoadForDisplay(ctx context.Context, blogSlug string) (*models.BlogTree, error)
}

// Page is a resolved public page.
type Page struct {
	Blog       models.Blog
	Page       models.Page
	Components []component.Component
}

// Resolver implements the public page lookup.
type Resolver struct {
	loader TreeLoader
}

// NewResolver creates a Resolver backed by loader.
func NewResolver(loader TreeLoader) *Resolver {
	return &Resolver{loader: loader}
}

// Resolve finds the page at path within the tenant. An empty path or "/"
// means the home page. Both an unknown tenant and an unknown page yield
// ErrNotFound; storage failures are returned wrapped.
func (r *Resolver) Resolve(ctx context.Context, tenant, path string) (*Page, error) {
	tree, err := r.Load(ctx, tenant)
	if err != nil {
		return nil, err
	}

	slug := PageSlug(path)
	pt := tree.FindPage(slug)
	if pt == nil && slug == models.HomeSlug && len(tree.Pages) > 0 {
		// A blog without a "home" page opens on its first page.
		pt = &tree.Pages[0]
	}
	if pt == nil {
		return nil, fmt.Errorf("page %q of %q: %w", slug, tenant, ErrNotFound)
	}

	comps := make([]component.Component, 0, len(pt.Components))
	for _, row := range pt.Components {
		comps = append(comps, component.FromRow(row.ID, row.Order, row.Type, row.Data))
	}
	return &Page{Blog: tree.Blog, Page: pt.Page, Components: comps}, nil
}

// Load returns the tenant's whole tree. A blog with no pages yields a tree
// with an empty page list, not an error.
func (r *Resolver) Load(ctx context.Context, tenant string) (*models.BlogTree, error) {
	if tenant == "" {
		return nil, fmt.Errorf("empty tenant: %w", ErrNotFound)
	}
	tree, err := r.loader.LoadForDisplay(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant %q: %w", tenant, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("tenant %q: %w", tenant, ErrNotFound)
	}
	return tree, nil
}

// PageSlug normalizes a request path to a page slug.
func PageSlug(path string) string {
	slug := strings.ToLower(strings.Trim(path, "/"))
	if slug == "" {
		return models.HomeSlug
	}
	return slug
}
