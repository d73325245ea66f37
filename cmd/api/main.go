package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bimakw/swap-router/internal/app"
	"github.com/bimakw/swap-router/internal/config"
	"github.com/bimakw/swap-router/internal/infrastructure/logging"
	"github.com/bimakw/swap-router/internal/presentation/handlers"
)

const (
	version = "0.3.0"
)

func main() {
	cfg, err := config.Load(config.DefaultSearchPaths()...)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	application, err := app.New(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal("failed to start", zap.Error(err))
	}
	defer application.Close()

	protocolIDs := make([]string, 0, application.Protocols.Len())
	for _, p := range application.Protocols.All() {
		protocolIDs = append(protocolIDs, string(p.ID))
	}

	healthHandler := handlers.NewHealthHandler(version, cfg.ChainID, protocolIDs)
	quoteHandler := handlers.NewQuoteHandler(application.Router, application.Tokens)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(handlers.RequestLogger(logger.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(handlers.CORS)

	r.Get("/health", healthHandler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/tokens", quoteHandler.ListTokens)
		r.Get("/pools", quoteHandler.GetPools)
		r.Get("/quote", quoteHandler.GetQuote)
		r.Post("/swap", quoteHandler.BuildSwap)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting swap router api",
			zap.String("version", version),
			zap.String("port", cfg.Port),
			zap.Strings("protocols", protocolIDs),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}
