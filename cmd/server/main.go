package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docspace-io/docspace/internal/crdt"
	"github.com/docspace-io/docspace/internal/server/config"
	"github.com/docspace-io/docspace/internal/server/docsync"
	"github.com/docspace-io/docspace/internal/server/handlers"
	"github.com/docspace-io/docspace/internal/server/middleware"
	"github.com/docspace-io/docspace/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("DocSpace server starting",
		slog.String("version", Version),
		slog.String("addr", cfg.Addr))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	jwtConfig := handlers.JWTConfig{
		Secret:          []byte(cfg.JWTSecret),
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	}

	resolver := crdt.NewResolver(crdt.StrategyTimestamp)
	coordinator := docsync.New(logger, store, store, resolver)

	authHandler := handlers.NewAuthHandler(logger, store, store, jwtConfig)
	healthHandler := handlers.NewHealthHandler(logger)
	spacesHandler := handlers.NewSpacesHandler(logger, store)
	documentsHandler := handlers.NewDocumentsHandler(logger, store, store, coordinator)
	attachmentsHandler := handlers.NewAttachmentsHandler(logger, store, store, store)
	syncHandler := handlers.NewSyncHandler(logger, store, store, coordinator)

	authRequired := middleware.AuthMiddleware(logger, jwtConfig)

	mux := http.NewServeMux()

	// Публичные маршруты
	mux.HandleFunc("GET /api/v1/health", healthHandler.Health)
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout)

	// Маршруты, требующие авторизации
	protected := func(h http.HandlerFunc) http.Handler {
		return authRequired(h)
	}
	mux.Handle("POST /api/v1/spaces", protected(spacesHandler.Create))
	mux.Handle("GET /api/v1/spaces", protected(spacesHandler.List))
	mux.Handle("GET /api/v1/spaces/{spaceID}", protected(spacesHandler.Get))
	mux.Handle("DELETE /api/v1/spaces/{spaceID}", protected(spacesHandler.Delete))

	mux.Handle("POST /api/v1/spaces/{spaceID}/documents", protected(documentsHandler.Create))
	mux.Handle("GET /api/v1/spaces/{spaceID}/documents", protected(documentsHandler.List))
	mux.Handle("GET /api/v1/documents/{docID}", protected(documentsHandler.Get))
	mux.Handle("PUT /api/v1/documents/{docID}", protected(documentsHandler.Update))
	mux.Handle("DELETE /api/v1/documents/{docID}", protected(documentsHandler.Delete))

	mux.Handle("POST /api/v1/documents/{docID}/sync", protected(syncHandler.Sync))
	mux.Handle("GET /api/v1/documents/{docID}/sync", protected(syncHandler.State))

	mux.Handle("POST /api/v1/documents/{docID}/attachments", protected(attachmentsHandler.Upload))
	mux.Handle("GET /api/v1/documents/{docID}/attachments", protected(attachmentsHandler.List))
	mux.Handle("GET /api/v1/attachments/{attID}", protected(attachmentsHandler.Download))
	mux.Handle("DELETE /api/v1/attachments/{attID}", protected(attachmentsHandler.Delete))

	// Цепочка: recovery снаружи, затем логирование и rate limit
	var handler http.Handler = mux
	handler = middleware.RateLimitMiddleware(cfg.RateLimit, cfg.RateWindow, logger)(handler)
	handler = middleware.LoggingWithSkip(logger, []string{"/api/v1/health"})(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Фоновая чистка протухших refresh token'ов
	go cleanupExpiredTokens(ctx, logger, store)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// cleanupExpiredTokens раз в час удаляет истекшие refresh token'ы
func cleanupExpiredTokens(ctx context.Context, logger *slog.Logger, store *sqlite.Storage) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := store.DeleteExpiredTokens(ctx)
			if err != nil {
				logger.Error("failed to delete expired tokens", slog.Any("error", err))
				continue
			}
			if deleted > 0 {
				logger.Info("expired tokens deleted", slog.Int("count", deleted))
			}
		}
	}
}

func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func printVersion() {
	fmt.Printf("DocSpace Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
