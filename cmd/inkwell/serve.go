// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"inkwell/internal/builder"
	"inkwell/internal/cache"
	"inkwell/internal/database"
	"inkwell/internal/engine"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/router"
	"inkwell/internal/session"
	"inkwell/internal/site"
	"inkwell/internal/storage"
	"inkwell/internal/store"
)

// sweepInterval is how often idle builder sessions are looked for.
const sweepInterval = time.Minute

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"base_domain", cfg.BaseDomain,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	// Connect to Valkey (page cache and session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		return fmt.Errorf("connect valkey: %w", err)
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient, cfg.SecureCookies())
	pageCache := cache.NewPageCache(valkeyClient, cfg.PageCacheTTL)

	// Object storage is optional; uploads answer 503 without it.
	var objects handlers.ObjectStorage
	storageClient, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
	if err != nil {
		return fmt.Errorf("init s3 storage: %w", err)
	}
	if storageClient != nil {
		objects = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, uploads disabled")
	}

	// Initialize data stores.
	blogStore := store.NewBlogStore(db)
	pageStore := store.NewPageStore(db)
	postStore := store.NewPostStore(db)
	componentStore := store.NewComponentStore(db)
	submissionStore := store.NewSubmissionStore(db)

	eng, err := engine.New(postStore)
	if err != nil {
		return fmt.Errorf("init render engine: %w", err)
	}

	manager := builder.NewManager(componentStore, cfg.BuilderSaveTimeout)
	go manager.RunSweeper(ctx, sweepInterval, cfg.BuilderIdleTimeout)

	formLimiter := middleware.NewRateLimiter(cfg.FormRateLimit, time.Minute)
	defer formLimiter.Stop()

	admin := handlers.NewAdmin(handlers.AdminDeps{
		Blogs:         blogStore,
		Pages:         pageStore,
		Posts:         postStore,
		Submissions:   submissionStore,
		Assets:        store.NewAssetStore(db),
		Subscriptions: store.NewSubscriptionStore(db),
		Builder:       manager,
		Engine:        eng,
		Cache:         pageCache,
		Storage:       objects,
	})
	public := handlers.NewPublic(site.NewResolver(componentStore), eng, blogStore, postStore, pageCache)
	forms := handlers.NewForms(componentStore, submissionStore)

	r := router.New(sessionStore, admin, public, forms, router.Options{
		BaseDomain:    cfg.BaseDomain,
		SecureCookies: cfg.SecureCookies(),
		FormLimiter:   formLimiter,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
