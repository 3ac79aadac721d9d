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

	"github.com/lysyi3m/storyfeed/app/api"
	"github.com/lysyi3m/storyfeed/app/cache"
	"github.com/lysyi3m/storyfeed/app/cfg"
	"github.com/lysyi3m/storyfeed/app/database"
	"github.com/lysyi3m/storyfeed/app/feed"
	"github.com/lysyi3m/storyfeed/app/importer"
	"github.com/lysyi3m/storyfeed/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := run(appCfg); err != nil {
		slog.Error("Storyfeed stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(appCfg *cfg.Cfg) error {
	slog.Info("Starting Storyfeed server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	users := database.NewUserRepo(db)
	articles := database.NewArticleRepo(db)
	pageViews := database.NewPageViewRepo(db)

	exclusions, err := feed.NewExclusionResolver(appCfg.FeedExclusion, pageViews)
	if err != nil {
		return fmt.Errorf("failed to configure feed exclusion: %w", err)
	}
	feeds := feed.NewService(articles, exclusions, feed.Options{
		MinScore:    appCfg.HomeFeedMinimumScore,
		PageSize:    appCfg.FeedPageSize,
		CTAPosition: appCfg.FeedCTAPosition,
	})

	configCache := importer.NewConfigCache(appCfg.FeedsDir)
	if err := configCache.Run(); err != nil {
		return fmt.Errorf("failed to load import sources: %w", err)
	}
	slog.Info("Import sources loaded", "dir", appCfg.FeedsDir, "count", configCache.GetConfigCount())

	var pageCache cache.PageCache
	if appCfg.RedisAddr != "" && appCfg.GetPageCacheTTL() > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisCache, err := cache.NewRedisCache(ctx, appCfg.RedisAddr)
		cancel()
		if err != nil {
			slog.Warn("Page cache disabled", "addr", appCfg.RedisAddr, "error", err)
		} else {
			pageCache = redisCache
			defer redisCache.Close()
		}
	}

	fetcher := importer.NewFetcher(&http.Client{}, appCfg.UserAgent)
	scheduler := tasks.NewScheduler(configCache, users, articles,
		fetcher, importer.NewParser(), importer.NewImporter(articles, importer.NewFilterer()),
		importer.NewContentExtractor(), appCfg.GetSchedulerInterval(), appCfg.WorkerCount)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.GetSchedulerInterval().String())
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(appCfg, users, articles, pageViews, feeds, configCache, pageCache)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case serveErr = <-serverErrChan:
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	return serveErr
}
