package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/config"
	"bookshelf/internal/httpx"
	"bookshelf/internal/jobs"
	"bookshelf/internal/platform/awsclient"
	"bookshelf/internal/platform/logger"
	"bookshelf/internal/platform/postgres"
	"bookshelf/internal/queue"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const maxRequestBytes = 1 << 20

type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Setup(cfg.App.LogLevel, cfg.App.LogFormat)
	if err := cfg.RequireQueue(); err != nil {
		log.Fatal().Err(err).Send()
	}
	if cfg.App.InternalSecret == "" {
		log.Warn().Msg("INTERNAL_SECRET is empty; internal routes are unauthenticated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := postgres.Open(ctx, cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	defer dbPool.Close()

	awsCfg, err := awsclient.LoadConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	bookRepository := book.NewPostgresRepo(dbPool, cfg.Database.QueryTimeout)
	publisher := queue.NewPublisher(awsclient.NewSQS(awsCfg), cfg.Queue.URL)
	jobsHandler := jobs.NewHTTPHandler(jobs.NewService(bookRepository, publisher))

	rateLimiter := httpx.NewRateLimitMiddleware(ctx, 10, 20)

	httpServer := &http.Server{
		Addr:         cfg.App.Addr,
		Handler:      newRouter(dbPool, jobsHandler, rateLimiter, cfg.App.InternalSecret),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.App.Addr).Msg("Starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("Server stopped")
}

func newRouter(db pinger, jobsHandler *jobs.HTTPHandler, rateLimiter *httpx.RateLimitMiddleware, internalSecret string) http.Handler {
	r := chi.NewRouter()
	r.Use(httpx.RequestIDMiddleware)
	r.Use(httpx.AccessLogMiddleware)
	r.Use(httpx.RecoveryMiddleware)
	r.Use(httpx.SecurityHeadersMiddleware)
	r.Use(httpx.RequestSizeLimitMiddleware(maxRequestBytes))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Route("/internal", func(r chi.Router) {
		r.Use(rateLimiter.Middleware)
		r.Use(httpx.InternalSecretMiddleware(internalSecret))
		r.Post("/books/{id}/process", jobsHandler.ProcessBook)
	})
	return r
}
