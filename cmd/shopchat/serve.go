package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lojasmm/shopchat/internal/config"
	"github.com/lojasmm/shopchat/internal/messaging"
	"github.com/lojasmm/shopchat/internal/renderer"
	"github.com/lojasmm/shopchat/internal/session"
	"github.com/lojasmm/shopchat/internal/store"
	"github.com/lojasmm/shopchat/internal/widget"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the widget HTTP and WebSocket API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)
	log := logrus.NewEntry(logger)

	db, err := store.NewBoltStore(filepath.Join(cfg.DataDir, "shopchat.db"))
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer db.Close()

	pub, closePub, err := newPublisher(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("messaging: %w", err)
	}
	defer closePub()

	renderLog := log.WithField("component", "renderer")
	sessions := session.NewManager(func(conversationID string) *renderer.Renderer {
		return renderer.New(messaging.Bind(pub, conversationID, log.WithField("component", "messaging")), renderLog)
	})

	// Periodic cleanup of idle conversations to prevent memory leaks
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			sessions.Cleanup(1 * time.Hour)
		}
	}()

	widgetLog := log.WithField("component", "widget")
	h := widget.NewHandler(db, sessions, cfg.Button, widgetLog)
	ws := widget.NewWSHandler(h, cfg.AllowedOrigins, widgetLog)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      widget.NewRouter(h, ws),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("shopchat: listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}
	log.Info("shopchat: shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("shopchat: stopped")
	return nil
}

// newPublisher picks the outbound transport: Redis pub/sub, the backend's
// HTTP API, or log-only when neither is configured.
func newPublisher(ctx context.Context, cfg *config.Config, log *logrus.Entry) (messaging.Publisher, func(), error) {
	switch {
	case cfg.RedisURL != "":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		log.Info("messaging: publishing to redis")
		return messaging.NewRedisPublisher(rdb, cfg.RedisChannelPrefix), func() { rdb.Close() }, nil

	case cfg.MessagingURL != "":
		log.WithField("url", cfg.MessagingURL).Info("messaging: posting to conversation backend")
		return messaging.NewHTTPPublisher(cfg.MessagingURL, cfg.MessagingToken), func() {}, nil

	default:
		log.Warn("messaging: no transport configured, outbound messages are only logged")
		return messaging.NewLogPublisher(log.WithField("component", "messaging")), func() {}, nil
	}
}
