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
	"bookshelf/internal/enrich"
	"bookshelf/internal/images"
	"bookshelf/internal/platform/awsclient"
	"bookshelf/internal/platform/googlebooks"
	"bookshelf/internal/platform/logger"
	"bookshelf/internal/platform/postgres"
	"bookshelf/internal/queue"
	"bookshelf/internal/worker"

	"github.com/rs/zerolog/log"
	redis "gopkg.in/redis.v5"
)

const userAgent = "bookshelf-worker/1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Setup(cfg.App.LogLevel, cfg.App.LogFormat)

	if err := cfg.RequireQueue(); err != nil {
		log.Fatal().Err(err).Send()
	}
	if err := cfg.RequireStorage(); err != nil {
		log.Fatal().Err(err).Send()
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

	var catalog googlebooks.Searcher = googlebooks.NewClient(googlebooks.Config{
		BaseURL:    cfg.Catalog.BaseURL,
		APIKey:     cfg.Catalog.APIKey,
		UserAgent:  userAgent,
		RPS:        cfg.Catalog.RPS,
		MaxRetries: cfg.Catalog.MaxRetries,
		Timeout:    cfg.Catalog.Timeout,
	})
	if cfg.Catalog.CacheAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Catalog.CacheAddr})
		defer rdb.Close()
		catalog = googlebooks.NewCachedClient(catalog, rdb, cfg.Catalog.CacheTTL)
		log.Info().Str("addr", cfg.Catalog.CacheAddr).Msg("Catalog response cache enabled")
	}

	store := images.NewStore(awsclient.NewS3(awsCfg, cfg.Storage.Endpoint), images.Config{
		Bucket:        cfg.Storage.Bucket,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
		MaxBytes:      cfg.Storage.ImageMaxBytes,
	})

	pipeline := enrich.NewPipeline(
		book.NewPostgresRepo(dbPool, cfg.Database.QueryTimeout),
		catalog,
		store,
	)
	w := worker.New(pipeline)

	healthServer := &http.Server{
		Addr:         cfg.App.WorkerAddr,
		Handler:      w.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.App.WorkerAddr).Msg("Starting health server")
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
			stop()
		}
	}()

	subscriber := queue.NewSubscriber(awsclient.NewSQS(awsCfg), queue.SubscriberConfig{
		QueueURL:    cfg.Queue.URL,
		WaitSeconds: cfg.Queue.WaitSeconds,
		MaxMessages: cfg.Queue.MaxMessages,
	})
	if err := subscriber.Run(ctx, w.HandleMessage); err != nil {
		log.Error().Err(err).Msg("subscription stopped")
	}

	log.Info().Msg("Shutting down, waiting for in-flight books")
	w.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server shutdown")
	}
	log.Info().Int64("processed", w.Processed()).Msg("Worker stopped")
}
