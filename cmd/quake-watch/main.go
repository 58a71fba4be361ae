package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mmquake/quake-watch/internal/api"
	"github.com/mmquake/quake-watch/internal/casualty"
	"github.com/mmquake/quake-watch/internal/config"
	"github.com/mmquake/quake-watch/internal/feed"
	"github.com/mmquake/quake-watch/internal/logging"
	"github.com/mmquake/quake-watch/internal/observability"
	"github.com/mmquake/quake-watch/internal/pipeline"
	"github.com/mmquake/quake-watch/internal/refresh"
	"github.com/mmquake/quake-watch/internal/stream"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	metrics := observability.NewMetrics()
	client := feed.NewClient(cfg.Upstream, metrics)
	pl := pipeline.New(client, metrics)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Background snapshot warming + fan-out for SSE subscribers
	var (
		hub       *stream.Hub
		refresher *refresh.Refresher
		snapshots api.SnapshotSource
	)
	if cfg.Refresh.Enabled {
		hub = stream.NewHub()
		refresher = refresh.New(cfg.Refresh.Interval, cfg.Worker.Count, cfg.Worker.BufferSize, pl, hub, metrics)
		refresher.Start(ctx)
		snapshots = refresher
	}

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.API.RateLimitRPS))

	handler := api.NewHandler(pl, casualty.NewStatic(), snapshots, hub)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	if refresher != nil {
		refresher.Stop()
	}
	if hub != nil {
		hub.Close() // Close all streams gracefully
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
