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

	app "github.com/kode4food/blockplan"
	"github.com/kode4food/blockplan/internal/catalog"
	"github.com/kode4food/blockplan/internal/config"
	"github.com/kode4food/blockplan/internal/server"
	"github.com/kode4food/blockplan/internal/storage"
	"github.com/kode4food/blockplan/pkg/log"
)

type blockplan struct {
	cfg        *config.Config
	redis      *storage.RedisStore
	files      *storage.FileStore
	apiServer  *server.Server
	httpServer *http.Server
	quit       chan os.Signal
}

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrOpenFileStore = errors.New("failed to open file store")
)

func main() {
	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}

	s := &blockplan{
		cfg:  cfg,
		quit: make(chan os.Signal, 1),
	}
	s.setupLogging()

	if err := s.run(); err != nil {
		slog.Error("Failed to start application", log.Error(err))
		os.Exit(1)
	}
}

func (s *blockplan) run() error {
	if err := s.cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := s.initializeStores(); err != nil {
		return err
	}
	s.startServer()

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *blockplan) setupLogging() {
	level := log.ParseLevel(s.cfg.LogLevel)

	env := os.Getenv("ENV")
	logger := log.NewWithLevel(app.Name, env, app.Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Info("Blockplan starting",
		slog.String("log_level", s.cfg.LogLevel))

	slog.Info("Configuration loaded",
		slog.String("redis_addr", s.cfg.Redis.Addr),
		slog.Int("redis_db", s.cfg.Redis.DB),
		slog.String("redis_prefix", s.cfg.Redis.Prefix),
		slog.String("blob_url", s.cfg.BlobURL),
		slog.Int("max_stack_depth", s.cfg.Limits.MaxStackDepth),
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort))
}

func (s *blockplan) initializeStores() error {
	files, err := storage.OpenFileStore(
		context.Background(), s.cfg.BlobURL, s.cfg.BlobPrefix,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenFileStore, err)
	}
	s.files = files

	// Redis connects lazily; an unreachable server shows up in /health
	s.redis = storage.NewRedisStore(s.cfg.Redis)
	return nil
}

func (s *blockplan) startServer() {
	s.apiServer = server.NewServer(catalog.NewDispatcher(),
		server.Dependencies{
			Logger:       slog.Default(),
			Redis:        s.redis,
			Files:        s.files,
			Limits:       s.cfg.Limits,
			MaxBodyBytes: s.cfg.MaxBodyBytes,
		},
	)
	mux := s.apiServer.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler: mux,
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
		}
	}()
}

func (s *blockplan) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	if err := s.files.Close(); err != nil {
		slog.Error("File store close failed", log.Error(err))
	}
	if err := s.redis.Close(); err != nil {
		slog.Error("Redis close failed", log.Error(err))
	}

	slog.Info("Server exited")
}
