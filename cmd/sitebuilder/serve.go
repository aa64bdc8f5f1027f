package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sitebuilder/internal/authz"
	"sitebuilder/internal/cache"
	"sitebuilder/internal/config"
	"sitebuilder/internal/content"
	"sitebuilder/internal/events"
	"sitebuilder/internal/handlers"
	"sitebuilder/internal/imaging"
	"sitebuilder/internal/maintenance"
	"sitebuilder/internal/middleware"
	"sitebuilder/internal/router"
	"sitebuilder/internal/session"
	"sitebuilder/internal/storage"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, db, dialect, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"dialect", string(dialect),
	)

	media, err := openStorage(cfg)
	if err != nil {
		return err
	}

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()

	// Valkey backs sessions and the site cache when configured.
	var backend session.Backend = session.NewMemory()
	var siteCache *cache.Site
	if cfg.ValkeyEnabled() {
		client, err := cache.Connect(ctx, cache.Options{
			Host:     cfg.ValkeyHost,
			Port:     cfg.ValkeyPort,
			Password: cfg.ValkeyPassword,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		backend = session.NewValkey(client)
		siteCache = cache.NewSite(client, cache.DefaultTTL)
	} else {
		slog.Warn("valkey not configured, sessions kept in memory and site cache disabled")
	}
	sessions := session.NewStore(backend, secureCookies)

	bus := events.NewBus()
	svc := content.NewService(db, dialect, bus)
	engine := authz.NewEngine(db, dialect, bus)
	if err := engine.EnsureCatalog(ctx); err != nil {
		return fmt.Errorf("ensure role catalog: %w", err)
	}

	grabber := imaging.FFmpeg{Binary: cfg.FFmpegPath}
	if !grabber.Available() {
		slog.Warn("ffmpeg not found, video thumbnails will fail", "binary", cfg.FFmpegPath)
	}
	content.Register(bus, content.NewThumbnails(db, media, grabber), media)
	if siteCache != nil {
		siteCache.Register(bus)
	}

	r := router.New(router.Deps{
		DB:            db,
		Sessions:      sessions,
		Identities:    engine,
		Public:        handlers.NewPublic(svc, media, siteCache),
		Auth:          handlers.NewAuth(engine, sessions),
		Maintenance:   handlers.NewMaintenance(maintenance.NewRegistry(svc)),
		Admin:         handlers.NewAdmin(engine),
		AuthLimiter:   middleware.NewRateLimiter(10, time.Minute),
		SecureCookies: secureCookies,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	errs := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errs:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
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

// openStorage picks S3 when configured and the local media directory
// otherwise.
func openStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3, err := storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			return nil, fmt.Errorf("initialize S3 storage: %w", err)
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		return s3, nil
	}
	dir, err := storage.NewDir(cfg.MediaDir, middleware.MediaPrefix)
	if err != nil {
		return nil, err
	}
	slog.Info("media stored on disk", "dir", dir.Root())
	return dir, nil
}
