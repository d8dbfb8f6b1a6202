// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine renders page-builder components to HTML. It owns the
// dispatch table from component kind to template, used unchanged by the
// builder preview and by the public site, and the document shell that
// applies blog-level styling around the rendered fragments.
package engine

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"slices"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/google/uuid"

	"inkwell/internal/component"
	"inkwell/internal/markdown"
	"inkwell/internal/metrics"
	"inkwell/internal/models"
)

// PostSource supplies the live collection behind dynamic grids.
type PostSource interface {
	RecentPublished(ctx context.Context, blogSlug string, limit int) ([]models.Post, error)
}

// view is the value every component template executes against.
type view struct {
	ID   string
	Type string
	Data any
}

// gridView is the data shape of the grid template. Static grids fill it
// from their stored items, dynamic grids from the tenant's posts.
type gridView struct {
	Title    string
	Columns  int
	Template string
	Items    []component.GridItem
	Dynamic  bool
}

// dynamicRenderer renders a kind whose content depends on live tenant data.
type dynamicRenderer func(ctx context.Context, c component.Component, tenant string) template.HTML

// Engine renders components and documents. Static kinds are pure
// functions of the component and are memoised in an L1 fragment cache;
// dynamic kinds go through a separate table and are never cached.
type Engine struct {
	static   map[component.Kind]*template.Template
	dynamic  map[component.Kind]dynamicRenderer
	fallback *template.Template
	section  *template.Template
	document *template.Template
	post     *template.Template
	posts    PostSource
	cache    *fragmentCache
}

// New compiles every component template. posts may be nil, in which case
// dynamic grids render empty.
func New(posts PostSource) (*Engine, error) {
	funcs := sprig.FuncMap()
	funcs["linkClass"] = func(variant string) string {
		if variant == "button" {
			return "btn btn--primary"
		}
		return "link"
	}

	e := &Engine{
		static: make(map[component.Kind]*template.Template, len(componentTemplates)),
		posts:  posts,
		cache:  newFragmentCache(),
	}

	for kind, src := range componentTemplates {
		tmpl, err := template.New(string(kind)).Funcs(funcs).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("compile %s template: %w", kind, err)
		}
		e.static[kind] = tmpl
	}

	gridTmpl, err := template.New("grid-dynamic").Funcs(funcs).Parse(gridTemplate)
	if err != nil {
		return nil, fmt.Errorf("compile dynamic grid template: %w", err)
	}
	e.dynamic = map[component.Kind]dynamicRenderer{
		component.KindGridDynamic: e.dynamicGrid(gridTmpl),
	}

	shells := []struct {
		dst  **template.Template
		name string
		src  string
	}{
		{&e.fallback, "fallback", fallbackTemplate},
		{&e.section, "section", sectionTemplate},
		{&e.document, "document", documentTemplate},
		{&e.post, "post", postTemplate},
	}
	for _, sh := range shells {
		tmpl, err := template.New(sh.name).Funcs(funcs).Parse(sh.src)
		if err != nil {
			return nil, fmt.Errorf("compile %s template: %w", sh.name, err)
		}
		*sh.dst = tmpl
	}

	return e, nil
}

// Render renders one component inside its keyed section. tenant is the
// blog slug the component belongs to; only dynamic kinds read it. Render
// never fails: a component without a renderer, or whose template fails,
// is shown as a JSON dump.
func (e *Engine) Render(ctx context.Context, c component.Component, tenant string) template.HTML {
	var body template.HTML
	if fn, ok := e.dynamic[c.Kind()]; ok {
		body = fn(ctx, c, tenant)
	} else {
		body = e.renderStatic(c)
	}
	return e.wrap(c, body)
}

// RenderAll renders components in ascending order.
func (e *Engine) RenderAll(ctx context.Context, comps []component.Component, tenant string) []template.HTML {
	out := make([]template.HTML, 0, len(comps))
	for _, c := range sortedByOrder(comps) {
		out = append(out, e.Render(ctx, c, tenant))
	}
	return out
}

// Document describes a full page to render. BaseURL is the path the
// tenant's site is mounted at ("/" on its own host, "/sites/{slug}/"
// otherwise); relative links in fragments resolve against it.
type Document struct {
	Blog       models.Blog
	BaseURL    string
	Title      string
	PageSlug   string
	Components []component.Component
	Preview    bool
}

// documentData is what documentTemplate executes against.
type documentData struct {
	BaseURL     string
	BlogName    string
	Title       string
	Description string
	PageSlug    string
	Background  string
	Font        string
	Preview     bool
	Sections    []template.HTML
}

// RenderDocument renders a page's components inside the blog's document
// shell.
func (e *Engine) RenderDocument(ctx context.Context, doc Document) ([]byte, error) {
	data := documentData{
		BaseURL:     doc.BaseURL,
		BlogName:    doc.Blog.Name,
		Title:       doc.Title,
		Description: doc.Blog.Description,
		PageSlug:    doc.PageSlug,
		Background:  doc.Blog.Background(),
		Font:        doc.Blog.FontStack(),
		Preview:     doc.Preview,
		Sections:    e.RenderAll(ctx, doc.Components, doc.Blog.Slug),
	}
	return e.execute(e.document, data)
}

// RenderPost renders a published post inside the blog's document shell.
// The Markdown body is converted and sanitized before it is trusted as HTML.
func (e *Engine) RenderPost(blog models.Blog, post *models.Post, baseURL string) ([]byte, error) {
	body, err := markdown.ToHTML(post.Body)
	if err != nil {
		return nil, fmt.Errorf("convert post body: %w", err)
	}

	publishedAt := ""
	if post.PublishedAt != nil {
		publishedAt = post.PublishedAt.Format("January 2, 2006")
	}
	cover := ""
	if post.CoverImageURL != nil {
		cover = *post.CoverImageURL
	}

	article, err := e.execute(e.post, struct {
		Title         string
		PublishedAt   string
		CoverImageURL string
		Body          template.HTML
	}{
		Title:         post.Title,
		PublishedAt:   publishedAt,
		CoverImageURL: cover,
		Body:          template.HTML(body),
	})
	if err != nil {
		return nil, err
	}

	return e.execute(e.document, documentData{
		BaseURL:     baseURL,
		BlogName:    blog.Name,
		Title:       post.Title,
		Description: deref(post.Excerpt),
		PageSlug:    "posts/" + post.Slug,
		Background:  blog.Background(),
		Font:        blog.FontStack(),
		Sections:    []template.HTML{template.HTML(article)},
	})
}

// Invalidate drops every cached fragment of a component.
func (e *Engine) Invalidate(id uuid.UUID) {
	e.cache.invalidate(id)
}

// renderStatic dispatches a pure component to its template, consulting the
// L1 cache first.
func (e *Engine) renderStatic(c component.Component) template.HTML {
	tmpl, ok := e.static[c.Kind()]
	if !ok {
		return e.renderFallback(c, "no renderer")
	}

	tag, data, err := component.Encode(c.Payload)
	if err != nil {
		return e.renderFallback(c, err.Error())
	}
	key := keyFor(c.ID, tag, data)
	if html, ok := e.cache.get(key); ok {
		return html
	}

	v := view{ID: c.ID.String(), Type: tag, Data: c.Payload}
	if g, ok := c.Payload.(component.GridStatic); ok {
		v.Data = gridView{Title: g.Title, Columns: g.Columns, Template: g.Template, Items: g.Items}
	}

	out, err := e.execute(tmpl, v)
	if err != nil {
		slog.Warn("component render failed, using fallback", "id", c.ID, "kind", c.Kind(), "error", err)
		return e.renderFallback(c, err.Error())
	}

	html := template.HTML(out)
	e.cache.put(key, html)
	return html
}

// dynamicGrid builds the renderer for grids sourced from the tenant's most
// recent published posts. Stored items are ignored.
func (e *Engine) dynamicGrid(tmpl *template.Template) dynamicRenderer {
	return func(ctx context.Context, c component.Component, tenant string) template.HTML {
		g, ok := c.Payload.(component.GridDynamic)
		if !ok {
			return e.renderFallback(c, "dynamic grid payload mismatch")
		}

		gv := gridView{Title: g.Title, Columns: g.Columns, Template: g.Template, Dynamic: true}
		if e.posts != nil && tenant != "" {
			posts, err := e.posts.RecentPublished(ctx, tenant, g.Limit)
			if err != nil {
				slog.Warn("dynamic grid source failed", "tenant", tenant, "id", c.ID, "error", err)
			}
			gv.Items = postItems(posts)
		}

		out, err := e.execute(tmpl, view{ID: c.ID.String(), Type: component.TypeGrid, Data: gv})
		if err != nil {
			slog.Warn("dynamic grid render failed, using fallback", "id", c.ID, "error", err)
			return e.renderFallback(c, err.Error())
		}
		return template.HTML(out)
	}
}

// renderFallback dumps a component's stored data as indented JSON.
func (e *Engine) renderFallback(c component.Component, reason string) template.HTML {
	tag, data, err := component.Encode(c.Payload)
	if err != nil {
		tag, data = string(c.Kind()), nil
	}
	metrics.RenderFallbacks.WithLabelValues(tag).Inc()
	slog.Debug("component rendered as fallback", "id", c.ID, "type", tag, "reason", reason)

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(data)
	}

	out, err := e.execute(e.fallback, struct {
		Type string
		JSON string
	}{Type: tag, JSON: pretty.String()})
	if err != nil {
		return template.HTML(template.HTMLEscapeString(pretty.String()))
	}
	return template.HTML(out)
}

// wrap places a fragment inside its keyed section.
func (e *Engine) wrap(c component.Component, body template.HTML) template.HTML {
	out, err := e.execute(e.section, struct {
		ID   string
		Type string
		Body template.HTML
	}{ID: c.ID.String(), Type: c.StoredType(), Body: body})
	if err != nil {
		return body
	}
	return template.HTML(out)
}

// execute runs a template into a fresh buffer.
func (e *Engine) execute(tmpl *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute %s template: %w", tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}

// postItems maps posts to grid cards linking to the post page.
func postItems(posts []models.Post) []component.GridItem {
	items := make([]component.GridItem, 0, len(posts))
	for _, p := range posts {
		item := component.GridItem{
			Title:       p.Title,
			Description: deref(p.Excerpt),
			ImageURL:    deref(p.CoverImageURL),
			Href:        "posts/" + p.Slug,
		}
		if item.Description == "" && p.PublishedAt != nil {
			item.Description = p.PublishedAt.Format(time.DateOnly)
		}
		items = append(items, item)
	}
	return items
}

// sortedByOrder returns a copy of comps in ascending Order. Ties keep
// their input order.
func sortedByOrder(comps []component.Component) []component.Component {
	out := slices.Clone(comps)
	slices.SortStableFunc(out, func(a, b component.Component) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
