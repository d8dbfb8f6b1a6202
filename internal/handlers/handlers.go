// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the service: the admin
// JSON API (blogs, pages, the page builder, posts, submissions, uploads)
// and the public tenant sites. Handlers receive their dependencies through
// the handler structs.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/builder"
	"inkwell/internal/component"
	"inkwell/internal/models"
	"inkwell/internal/plans"
	"inkwell/internal/site"
	"inkwell/internal/store"
)

// BlogRepo is the blog storage the admin API needs.
type BlogRepo interface {
	Create(ctx context.Context, b *models.Blog) (*models.Blog, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Blog, error)
	Owned(ctx context.Context, slug string, ownerID uuid.UUID) (*models.Blog, error)
	UpdateSettings(ctx context.Context, b *models.Blog) error
}

// PageRepo is the page storage the admin API needs.
type PageRepo interface {
	Create(ctx context.Context, p *models.Page) (*models.Page, error)
	ListByBlog(ctx context.Context, blogID uuid.UUID) ([]models.Page, error)
	FindBySlug(ctx context.Context, blogID uuid.UUID, slug string) (*models.Page, error)
	Count(ctx context.Context, blogID uuid.UUID) (int, error)
	Delete(ctx context.Context, blogID, id uuid.UUID) error
}

// PostRepo is the post storage used by the admin API and the public site.
type PostRepo interface {
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	ListByBlog(ctx context.Context, blogID uuid.UUID) ([]models.Post, error)
	FindPublished(ctx context.Context, blogID uuid.UUID, slug string) (*models.Post, error)
	Publish(ctx context.Context, blogID, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, blogID, id uuid.UUID) (bool, error)
	CountSince(ctx context.Context, blogID uuid.UUID, since time.Time) (int, error)
}

// SubmissionRepo stores captured form submissions.
type SubmissionRepo interface {
	Create(ctx context.Context, sub *models.FormSubmission) (*models.FormSubmission, error)
	ListByBlog(ctx context.Context, blogID uuid.UUID, limit, offset int) ([]models.FormSubmission, error)
}

// AssetRepo records uploaded files.
type AssetRepo interface {
	Create(ctx context.Context, a *models.Asset) (*models.Asset, error)
	ListByBlog(ctx context.Context, blogID uuid.UUID, limit, offset int) ([]models.Asset, error)
	Delete(ctx context.Context, blogID, id uuid.UUID) (*models.Asset, error)
}

// SubscriptionRepo looks up a user's plan.
type SubscriptionRepo interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
}

// ComponentFinder locates a stored component and its blog.
type ComponentFinder interface {
	FindWithBlog(ctx context.Context, id uuid.UUID) (uuid.UUID, *models.ComponentRow, error)
}

// ObjectStorage stores uploaded files and returns their public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
}

// maxJSONBody bounds admin request bodies.
const maxJSONBody = 1 << 20

// writeJSON sends v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write json response failed", "error", err)
	}
}

// writeError sends a JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads a bounded JSON request body into dst, rejecting
// unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// fail maps a domain error to its HTTP status. Unexpected errors are
// logged and reported as 500 without detail.
func fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *component.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, site.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, store.ErrConflict), errors.Is(err, builder.ErrDiscarded):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, plans.ErrLimitReached):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, builder.ErrIndex),
		errors.Is(err, builder.ErrUnknownKind),
		errors.Is(err, builder.ErrPatch),
		errors.Is(err, component.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, builder.ErrTimeout):
		slog.Warn(op+" timed out", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusGatewayTimeout, builder.ErrTimeout.Error())
	case errors.Is(err, builder.ErrPersist):
		slog.Error(op+" failed", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, builder.ErrPersist.Error())
	default:
		slog.Error(op+" failed", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
