// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/builder"
	"inkwell/internal/cache"
	"inkwell/internal/engine"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/plans"
	"inkwell/internal/session"
	"inkwell/internal/slug"
)

// Default and maximum page sizes for paginated admin lists.
const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// AdminDeps are the collaborators of the admin API. Cache and Storage may
// be nil; uploads then answer 503 and nothing is invalidated.
type AdminDeps struct {
	Blogs         BlogRepo
	Pages         PageRepo
	Posts         PostRepo
	Submissions   SubmissionRepo
	Assets        AssetRepo
	Subscriptions SubscriptionRepo
	Builder       *builder.Manager
	Engine        *engine.Engine
	Cache         *cache.PageCache
	Storage       ObjectStorage
}

// Admin serves the authenticated JSON API used by the dashboard and the
// page builder.
type Admin struct {
	AdminDeps
	now func() time.Time
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(deps AdminDeps) *Admin {
	return &Admin{AdminDeps: deps, now: time.Now}
}

// --- Blogs ---

// BlogsList returns the caller's blogs.
func (a *Admin) BlogsList(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	blogs, err := a.Blogs.ListByOwner(r.Context(), sess.UserID)
	if err != nil {
		fail(w, r, "list blogs", err)
		return
	}
	if blogs == nil {
		blogs = []models.Blog{}
	}
	writeJSON(w, http.StatusOK, blogs)
}

type blogRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// BlogCreate creates a blog owned by the caller. The slug defaults to one
// generated from the name and becomes the blog's subdomain.
func (a *Admin) BlogCreate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	var req blogRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateName("Blog", req.Name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if utf8.RuneCountInString(req.Description) > maxDescriptionLen {
		writeError(w, http.StatusBadRequest, "Description is too long (max 500 characters).")
		return
	}

	s := strings.TrimSpace(req.Slug)
	if s == "" {
		s = slug.Truncate(slug.Generate(req.Name))
	}
	if !slug.Valid(s) {
		writeError(w, http.StatusBadRequest, "Slug may only contain lowercase letters, digits and single hyphens.")
		return
	}
	if slug.Reserved(s) {
		writeError(w, http.StatusBadRequest, "That slug is reserved.")
		return
	}

	blog, err := a.Blogs.Create(r.Context(), &models.Blog{
		OwnerID:         sess.UserID,
		Slug:            s,
		Name:            strings.TrimSpace(req.Name),
		Description:     strings.TrimSpace(req.Description),
		BackgroundColor: models.DefaultBackgroundColor,
		FontFamily:      models.DefaultFontFamily,
	})
	if err != nil {
		fail(w, r, "create blog", err)
		return
	}
	slog.Info("blog created", "slug", blog.Slug, "owner", sess.UserID)
	writeJSON(w, http.StatusCreated, blog)
}

// BlogGet returns one of the caller's blogs.
func (a *Admin) BlogGet(w http.ResponseWriter, r *http.Request) {
	blog, _, ok := a.ownedBlog(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, blog)
}

type settingsRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	BackgroundColor string `json:"background_color"`
	FontFamily      string `json:"font_family"`
}

// BlogSettings updates the blog-level presentation settings. Every page
// of the blog is re-rendered on its next request.
func (a *Admin) BlogSettings(w http.ResponseWriter, r *http.Request) {
	blog, _, ok := a.ownedBlog(w, r)
	if !ok {
		return
	}
	req := settingsRequest{
		Name:            blog.Name,
		Description:     blog.Description,
		BackgroundColor: blog.BackgroundColor,
		FontFamily:      blog.FontFamily,
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateName("Blog", req.Name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validateSettings(req.Description, req.BackgroundColor, req.FontFamily); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	blog.Name = strings.TrimSpace(req.Name)
	blog.Description = strings.TrimSpace(req.Description)
	blog.BackgroundColor = req.BackgroundColor
	blog.FontFamily = req.FontFamily
	if err := a.Blogs.UpdateSettings(r.Context(), blog); err != nil {
		fail(w, r, "update settings", err)
		return
	}
	a.invalidateTenant(r.Context(), blog.Slug)
	writeJSON(w, http.StatusOK, blog)
}

// --- Pages ---

// PagesList returns the blog's pages in display order.
func (a *Admin) PagesList(w http.ResponseWriter, r *http.Request) {
	blog, _, ok := a.ownedBlog(w, r)
	if !ok {
		return
	}
	pages, err := a.Pages.ListByBlog(r.Context(), blog.ID)
	if err != nil {
		fail(w, r, "list pages", err)
		return
	}
	if pages == nil {
		pages = []models.Page{}
	}
	writeJSON(w, http.StatusOK, pages)
}

type pageRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PageCreate adds a page at the end of the blog, subject to the caller's
// plan.
func (a *Admin) PageCreate(w http.ResponseWriter, r *http.Request) {
	blog, sess, ok := a.ownedBlog(w, r)
	if !ok {
		return
	}
	var req pageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateName("Page", req.Name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	s := strings.TrimSpace(req.Slug)
	if s == "" {
		s = slug.Truncate(slug.Generate(req.Name))
	}
	if !slug.Valid(s) {
		writeError(w, http.StatusBadRequest, "Slug may only contain lowercase letters, digits and single hyphens.")
		return
	}
	if s == "posts" {
		writeError(w, http.StatusBadRequest, "That slug is reserved.")
		return
	}

	tier, err := a.tier(r.Context(), sess.UserID)
	if err != nil {
		fail(w, r, "load subscription", err)
		return
	}
	count, err := a.Pages.Count(r.Context(), blog.ID)
	if err != nil {
		fail(w, r, "count pages", err)
		return
	}
	if err := plans.CheckPages(tier, count); err != nil {
		fail(w, r, "create page", err)
		return
	}

	page, err := a.Pages.Create(r.Context(), &models.Page{
		BlogID: blog.ID,
		Name:   strings.TrimSpace(req.Name),
		Slug:   s,
	})
	if err != nil {
		fail(w, r, "create page", err)
		return
	}
	a.invalidateTenant(r.Context(), blog.Slug)
	writeJSON(w, http.StatusCreated, page)
}

// PageDelete removes a page with its components. Open builder sessions of
// the page are dropped.
func (a *Admin) PageDelete(w http.ResponseWriter, r *http.Request) {
	blog, page, _, ok := a.ownedPage(w, r)
	if !ok {
		return
	}
	if err := a.Pages.Delete(r.Context(), blog.ID, page.ID); err != nil {
		fail(w, r, "delete page", err)
		return
	}
	if a.Builder != nil {
		a.Builder.ClosePage(page.ID)
	}
	a.invalidateTenant(r.Context(), blog.Slug)
	w.WriteHeader(http.StatusNoContent)
}

// --- Posts ---

// PostsList returns all posts of the blog, newest first.
func (a *Admin) PostsList(w http.ResponseWriter, r *http.Request) {
	blog, _, ok := a.ownedBlog(w, r)
	if !ok {
		return
	}
	posts, err := a.Posts.ListByBlog(r.Context(), blog.ID)
	if err != nil {
		fail(w, r, "list posts", err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

type postRequest struct {
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	Body          string `json:"body"`
	Excerpt       string `json:"excerpt"`
	CoverImageURL string `json:"cover_image_url"`
	Publish       bool   `json:"publish"`
}

// PostCreate writes a new post, subject to the caller's monthly allowance.
// With publish set it goes live immediately.
func (a *Admin) PostCreate(w http.ResponseWriter, r *http.Request) {
	blog, sess, ok := a.ownedBlog(w, r)
	if !ok {
		return
	}
	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validatePost(req.Title, req.Body, req.Excerpt, req.CoverImageURL); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	s := strings.TrimSpace(req.Slug)
	if s == "" {
		s = slug.Truncate(slug.Generate(req.Title))
	}
	if !slug.Valid(s) {
		writeError(w, http.StatusBadRequest, "Slug may only contain lowercase letters, digits and single hyphens.")
		return
	}

	tier, err := a.tier(r.Context(), sess.UserID)
	if err != nil {
		fail(w, r, "load subscription", err)
		return
	}
	count, err := a.Posts.CountSince(r.Context(), blog.ID, plans.MonthStart(a.now()))
	if err != nil {
		fail(w, r, "count posts", err)
		return
	}
	if err := plans.CheckPosts(tier, count); err != nil {
		fail(w, r, "create post", err)
		return
	}

	post := &models.Post{
		BlogID:        blog.ID,
		AuthorID:      sess.UserID,
		Title:         strings.TrimSpace(req.Title),
		Slug:          s,
		Body:          req.Body,
		Excerpt:       optional(req.Excerpt),
		CoverImageURL: optional(req.CoverImageURL),
		Status:        models.PostStatusDraft,
	}
	if req.Publish {
		now := a.now().UTC()
		post.Status = models.PostStatusPublished
		post.PublishedAt = &now
	}

	created, err := a.Posts.Create(r.Context(), post)
	if err != nil {
		fail(w, r, "create post", err)
		return
	}
	if created.IsPublished() {
		a.invalidateTenant(r.Context(), blog.Slug)
	}
	writeJSON(w, http.StatusCreated, created)
}

// PostPublish makes a draft post public.
func (a *Admin) PostPublish(w http.ResponseWriter, r *http.Request) {
	blog, _, ok := a.ownedBlog(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	found, err := a.Posts.Publish(r.Context(), blog.ID, id)
	if err != nil {
		fail(w, r, "publish post", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	a.invalidateTenant(r.Context(), blog.Slug)
	w.WriteHeader(http.StatusNoContent)
}

// PostDelete removes a post.
func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	blog, _, ok := a.ownedBlog(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	found, err := a.Posts.Delete(r.Context(), blog.ID, id)
	if err != nil {
		fail(w, r, "delete post", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	a.invalidateTenant(r.Context(), blog.Slug)
	w.WriteHeader(http.StatusNoContent)
}

// --- Submissions ---

// SubmissionsList returns captured form submissions, newest first.
// Supports limit and offset query parameters.
func (a *Admin) SubmissionsList(w http.ResponseWriter, r *http.Request) {
	blog, _, ok := a.ownedBlog(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r)
	subs, err := a.Submissions.ListByBlog(r.Context(), blog.ID, limit, offset)
	if err != nil {
		fail(w, r, "list submissions", err)
		return
	}
	if subs == nil {
		subs = []models.FormSubmission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

// --- Helpers ---

// ownedBlog loads the blog named by the {blog} URL parameter and checks
// that the caller owns it. On failure a response has been written.
func (a *Admin) ownedBlog(w http.ResponseWriter, r *http.Request) (*models.Blog, *session.Data, bool) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return nil, nil, false
	}
	blog, err := a.Blogs.Owned(r.Context(), chi.URLParam(r, "blog"), sess.UserID)
	if err != nil {
		fail(w, r, "load blog", err)
		return nil, nil, false
	}
	if blog == nil {
		writeError(w, http.StatusNotFound, "blog not found")
		return nil, nil, false
	}
	return blog, sess, true
}

// ownedPage resolves the {page} slug within an owned blog.
func (a *Admin) ownedPage(w http.ResponseWriter, r *http.Request) (*models.Blog, *models.Page, *session.Data, bool) {
	blog, sess, ok := a.ownedBlog(w, r)
	if !ok {
		return nil, nil, nil, false
	}
	page, err := a.Pages.FindBySlug(r.Context(), blog.ID, chi.URLParam(r, "page"))
	if err != nil {
		fail(w, r, "load page", err)
		return nil, nil, nil, false
	}
	if page == nil {
		writeError(w, http.StatusNotFound, "page not found")
		return nil, nil, nil, false
	}
	return blog, page, sess, true
}

// tier returns the caller's plan tier in force now.
func (a *Admin) tier(ctx context.Context, userID uuid.UUID) (models.Tier, error) {
	sub, err := a.Subscriptions.FindByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return sub.EffectiveTier(a.now()), nil
}

// invalidateTenant drops every cached public page of a blog.
func (a *Admin) invalidateTenant(ctx context.Context, tenant string) {
	if a.Cache != nil {
		a.Cache.InvalidateTenant(ctx, tenant)
	}
}

// uuidParam parses a UUID URL parameter, answering 400 when malformed.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads limit and offset, clamping them to sane values.
func pagination(r *http.Request) (limit, offset int) {
	limit = defaultListLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, maxListLimit)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// optional returns nil for blank strings.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Me returns the caller's session.
func (a *Admin) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.SessionFromCtx(r.Context()))
}
