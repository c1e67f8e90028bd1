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
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"signage/internal/cache"
	"signage/internal/config"
	"signage/internal/database"
	"signage/internal/handlers"
	"signage/internal/media"
	"signage/internal/merge"
	"signage/internal/middleware"
	"signage/internal/router"
	"signage/internal/storage"
	"signage/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	// Development data; no-op when templates exist.
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			return err
		}
	}

	var l2 *cache.LayoutCache
	if cfg.ValkeyHost != "" {
		var vk *redis.Client
		vk, err = cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return err
		}
		defer vk.Close()
		l2 = cache.NewLayoutCache(vk, cfg.LayoutCacheTTL)
	} else {
		slog.Warn("valkey not configured, layout plans cached in process only")
	}
	layouts := cache.NewLayouts(l2)

	probeOpts := []media.Option{
		media.WithTimeout(cfg.ProbeTimeout),
		media.WithMaxBytes(cfg.ProbeMaxBytes),
		media.WithRate(cfg.ProbeRate, 1),
	}
	s3, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3PublicBucket, cfg.S3PublicURL)
	if err != nil {
		return fmt.Errorf("s3 storage: %w", err)
	}
	if s3 != nil {
		probeOpts = append(probeOpts, media.WithStorage(s3))
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", s3.Bucket())
	} else {
		slog.Warn("s3 storage not configured, media probed over HTTP only")
	}
	prober := media.NewProber(probeOpts...)

	templates := store.NewTemplateStore(db)
	blocks := store.NewBlockStore(db)
	contents := store.NewContentStore(db)
	backfill := media.NewBackfill(prober, contents)

	api := handlers.New(handlers.Deps{
		Templates: templates,
		Blocks:    blocks,
		Contents:  contents,
		Merger:    merge.NewService(store.MergeStore{Templates: templates, Blocks: blocks}, layouts),
		Cache:     layouts,
		Prober:    prober,
		Backfill:  backfill,
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	// WriteTimeout covers a media probe, which may download a whole file.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.New(api, limiter),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.ProbeTimeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
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
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	backfill.Wait()

	slog.Info("server stopped gracefully")
	return nil
}
