// Command persona-server runs the PerzonAI persona generation API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/perzonai/persona-engine/internal/config"
	"github.com/perzonai/persona-engine/internal/llm"
	"github.com/perzonai/persona-engine/internal/server"
	"github.com/perzonai/persona-engine/internal/store"
)

func main() {
	cfg := config.Load()

	logger, _ := zap.NewProduction()
	if cfg.DevMode {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gateway, err := llm.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMTimeout, logger)
	if err != nil {
		logger.Fatal("failed to create LLM gateway", zap.Error(err))
	}
	defer gateway.Close()

	// Stores live for the process lifetime; contents are lost on restart.
	personas := store.NewPersonaStore(logger)
	shares := store.NewShareRegistry(cfg.ShareTTL, logger)
	conversations := store.NewConversationStore(cfg.MaxTurns)

	handler := server.NewHandler(cfg, logger, gateway, personas, shares, conversations)
	router := server.NewRouter(handler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("persona server starting",
			zap.String("port", cfg.Port),
			zap.Bool("llmOnline", gateway.Online()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
