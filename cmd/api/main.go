// cmd/api is the application entry point.
// It wires together all layers and starts the HTTP server.
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rahulsidpara/event-finder/internal/database"
	"github.com/rahulsidpara/event-finder/internal/enrich"
	"github.com/rahulsidpara/event-finder/internal/handler"
	"github.com/rahulsidpara/event-finder/internal/repository"
	"github.com/rahulsidpara/event-finder/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()

	// ── 1. Connect to MongoDB ────────────────────────────────────────────
	dbCfg := database.ConfigFromEnv()
	client, err := database.Connect(ctx, dbCfg)
	if err != nil {
		logger.Error("database connect", "error", err)
		os.Exit(1)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	logger.Info("connected to mongodb", "db", dbCfg.DBName)

	// ── 2. Wire up layers ────────────────────────────────────────────────
	eventRepo := repository.NewEventRepository(database.Collection(client, dbCfg, "events"))
	if err := eventRepo.EnsureIndexes(ctx); err != nil {
		logger.Error("ensure indexes", "error", err)
		os.Exit(1)
	}
	enricher := enrich.NewClient(nil, enrich.ConfigFromEnv())
	eventSvc := service.NewEventService(eventRepo, enricher)
	eventHandler := handler.NewEventHandler(eventSvc)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // structured access log with request ids
	r.Use(handler.CORS)            // CORS for the configured frontend

	// Liveness
	r.Get("/test", handler.Liveness)

	// API routes
	r.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		r.Post("/", eventHandler.CreateEvent)
	})

	// Every unmatched route gets the enveloped 404.
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.NotFound)

	// ── 4. Start server with graceful shutdown ────────────────────────────
	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		logger.Info("server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
