// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains. Requests
// on a tenant subdomain are served that tenant's site; on the platform
// host the admin API, form endpoint and /sites/{tenant} paths are served.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/handlers"
	"inkwell/internal/metrics"
	"inkwell/internal/middleware"
)

// Options configures the router.
type Options struct {
	// BaseDomain is the platform domain; tenant sites live on its
	// subdomains.
	BaseDomain string
	// SecureCookies marks the CSRF cookie Secure.
	SecureCookies bool
	// FormLimiter throttles public form posts. Nil disables throttling.
	FormLimiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessions middleware.SessionLoader, admin *handlers.Admin, public *handlers.Public, forms *handlers.Forms, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.Tenant(opts.BaseDomain))

	r.Get("/health", healthHandler)
	r.Handle("/metrics", metrics.Handler())

	// Form posts come from any tenant's pages, so no session or CSRF.
	r.Group(func(r chi.Router) {
		if opts.FormLimiter != nil {
			r.Use(opts.FormLimiter.Middleware)
		}
		r.Post("/forms/{component}", forms.Submit)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.LoadSession(sessions))
		r.Use(middleware.RequireAuth)
		r.Use(middleware.NewCSRF(opts.SecureCookies))

		r.Get("/me", admin.Me)

		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", admin.BlogsList)
			r.Post("/", admin.BlogCreate)

			r.Route("/{blog}", func(r chi.Router) {
				r.Get("/", admin.BlogGet)
				r.Put("/settings", admin.BlogSettings)

				r.Route("/pages", func(r chi.Router) {
					r.Get("/", admin.PagesList)
					r.Post("/", admin.PageCreate)

					r.Route("/{page}", func(r chi.Router) {
						r.Delete("/", admin.PageDelete)

						// Page builder
						r.Route("/builder", func(r chi.Router) {
							r.Get("/", admin.BuilderState)
							r.Delete("/", admin.BuilderClose)
							r.Get("/preview", admin.BuilderPreview)
							r.Get("/drafts/{kind}", admin.DraftGet)
							r.Patch("/drafts/{kind}", admin.DraftUpdate)
							r.Delete("/drafts/{kind}", admin.DraftReset)
							r.Post("/drafts/{kind}/commit", admin.DraftCommit)
							r.Post("/reorder", admin.ComponentReorder)
							r.Delete("/components/{index}", admin.ComponentRemove)
						})
					})
				})

				r.Route("/posts", func(r chi.Router) {
					r.Get("/", admin.PostsList)
					r.Post("/", admin.PostCreate)
					r.Delete("/{id}", admin.PostDelete)
					r.Post("/{id}/publish", admin.PostPublish)
				})

				r.Get("/submissions", admin.SubmissionsList)

				// Media
				r.Post("/uploads", admin.Upload)
				r.Get("/assets", admin.AssetsList)
				r.Delete("/assets/{id}", admin.AssetDelete)
			})
		})
	})

	// Tenant sites under the platform host.
	r.Route("/sites/{tenant}", func(r chi.Router) {
		r.Get("/posts/{slug}", public.Post)
		r.Get("/*", public.Page)
	})

	// Tenant sites on their own subdomain. Without a tenant these 404.
	r.Get("/posts/{slug}", public.Post)
	r.Get("/*", public.Page)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
