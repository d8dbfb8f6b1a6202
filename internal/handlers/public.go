// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"

	"inkwell/internal/cache"
	"inkwell/internal/engine"
	"inkwell/internal/metrics"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/site"
)

// Cache variants. The same page renders differently depending on where
// the site is mounted, so each mount point is cached separately.
const (
	variantHost = "host"
	variantPath = "path"
)

// BlogFinder looks up a blog by its slug.
type BlogFinder interface {
	FindBySlug(ctx context.Context, slug string) (*models.Blog, error)
}

// Public serves tenant sites. Rendered documents go through the Valkey
// page cache; concurrent misses on the same key share one render.
type Public struct {
	resolver *site.Resolver
	engine   *engine.Engine
	blogs    BlogFinder
	posts    PostRepo
	cache    *cache.PageCache
	group    singleflight.Group
}

// NewPublic creates a new Public handler group. pageCache may be nil.
func NewPublic(resolver *site.Resolver, eng *engine.Engine, blogs BlogFinder, posts PostRepo, pageCache *cache.PageCache) *Public {
	return &Public{
		resolver: resolver,
		engine:   eng,
		blogs:    blogs,
		posts:    posts,
		cache:    pageCache,
	}
}

// Page renders a builder page. The tenant comes from the {tenant} URL
// parameter under /sites, or from the request host otherwise; the page
// path is the rest of the URL.
func (p *Public) Page(w http.ResponseWriter, r *http.Request) {
	tenant, variant, baseURL := mount(r)
	path := strings.Trim(chi.URLParam(r, "*"), "/")

	p.serve(w, r, tenant, cache.Key(tenant, variant, path), func(ctx context.Context) ([]byte, error) {
		pg, err := p.resolver.Resolve(ctx, tenant, path)
		if err != nil {
			return nil, err
		}
		return p.engine.RenderDocument(ctx, engine.Document{
			Blog:       pg.Blog,
			BaseURL:    baseURL,
			Title:      pg.Page.Name,
			PageSlug:   pg.Page.Slug,
			Components: pg.Components,
		})
	})
}

// Post renders a published post at posts/{slug}.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	tenant, variant, baseURL := mount(r)
	postSlug := chi.URLParam(r, "slug")

	p.serve(w, r, tenant, cache.Key(tenant, variant, "posts/"+postSlug), func(ctx context.Context) ([]byte, error) {
		blog, err := p.blogs.FindBySlug(ctx, tenant)
		if err != nil {
			return nil, err
		}
		if blog == nil {
			return nil, site.ErrNotFound
		}
		post, err := p.posts.FindPublished(ctx, blog.ID, postSlug)
		if err != nil {
			return nil, err
		}
		if post == nil {
			return nil, site.ErrNotFound
		}
		return p.engine.RenderPost(*blog, post, baseURL)
	})
}

// serve answers from the page cache, rendering and storing on a miss.
func (p *Public) serve(w http.ResponseWriter, r *http.Request, tenant, key string, render func(context.Context) ([]byte, error)) {
	ctx := r.Context()
	if p.cache != nil {
		if cached, ok := p.cache.Get(ctx, key); ok {
			writeHTML(w, cached, "HIT")
			return
		}
	}

	// Requests arriving after an invalidation must not join a render that
	// started before it, so the generation is part of the flight key.
	gen, cacheable := "", false
	if p.cache != nil {
		gen, cacheable = p.cache.Generation(ctx, tenant)
	}

	v, err, _ := p.group.Do(key+"@"+gen, func() (any, error) {
		// Detached so one client going away does not fail the others.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()

		start := time.Now()
		html, err := render(rctx)
		metrics.PublicRenderSeconds.Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}
		if cacheable {
			p.cache.SetIfCurrent(rctx, tenant, gen, key, html)
		}
		return html, nil
	})
	if errors.Is(err, site.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("render public page failed", "error", err, "key", key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, v.([]byte), "MISS")
}

// mount reports which tenant the request is for, how its site is mounted
// and the base URL relative links resolve against.
func mount(r *http.Request) (tenant, variant, baseURL string) {
	if t := chi.URLParam(r, "tenant"); t != "" {
		t = strings.ToLower(t)
		return t, variantPath, pathBaseURL(t)
	}
	return middleware.TenantFromCtx(r.Context()), variantHost, "/"
}

// pathBaseURL is the base URL of a site served under /sites.
func pathBaseURL(tenant string) string {
	return "/sites/" + tenant + "/"
}

func writeHTML(w http.ResponseWriter, html []byte, cacheStatus string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Cache", cacheStatus)
	w.Write(html)
}
