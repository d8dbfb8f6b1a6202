// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics declares the Prometheus collectors exported on /metrics.
// Collectors are registered on the default registry at init.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inkwell"

var (
	// RenderFallbacks counts components rendered as a JSON dump, by stored type.
	RenderFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "render",
		Name:      "fallbacks_total",
		Help:      "Components rendered through the fallback path, by stored type.",
	}, []string{"type"})

	// BuilderCommits counts draft commits by kind and outcome (ok, invalid,
	// persist_error, timeout, discarded).
	BuilderCommits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "builder",
		Name:      "commits_total",
		Help:      "Builder draft commits by component kind and outcome.",
	}, []string{"kind", "outcome"})

	// BuilderRollbacks counts optimistic appends that were undone after a
	// failed save.
	BuilderRollbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "builder",
		Name:      "rollbacks_total",
		Help:      "Optimistic component appends rolled back after a failed save.",
	})

	// PageCache counts public page cache lookups by result (hit, miss).
	PageCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "public",
		Name:      "page_cache_total",
		Help:      "Public page cache lookups by result.",
	}, []string{"result"})

	// PublicRenderSeconds measures full-page public renders that missed the cache.
	PublicRenderSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "public",
		Name:      "render_seconds",
		Help:      "Time spent loading and rendering a public page on cache miss.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	// FormSubmissions counts accepted and rejected public form posts.
	FormSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "forms",
		Name:      "submissions_total",
		Help:      "Public form submissions by outcome.",
	}, []string{"outcome"})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
