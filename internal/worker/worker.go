package worker

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"bookshelf/internal/enrich"
	"bookshelf/internal/httpx"
	"bookshelf/internal/queue"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Processor interface {
	Process(ctx context.Context, bookID string, processed *enrich.Counter) error
}

// Worker dispatches queue messages to the enrichment pipeline. Each message
// runs in its own goroutine with no limit on how many are in flight.
type Worker struct {
	pipeline  Processor
	processed enrich.Counter
	wg        sync.WaitGroup
}

func New(pipeline Processor) *Worker {
	return &Worker{pipeline: pipeline}
}

// HandleMessage is the queue.Handler for the books subscription.
func (w *Worker) HandleMessage(ctx context.Context, msg queue.Message) {
	if msg.Action != queue.ActionProcessBook {
		log.Warn().Str("action", msg.Action).Str("book_id", msg.BookID).Msg("Unknown request")
		return
	}
	if msg.BookID == "" {
		log.Warn().Str("action", msg.Action).Msg("Request without book id")
		return
	}

	log.Info().Str("book_id", msg.BookID).Msg("Received request to process book")

	// Pipelines are not cancelled once started, even on shutdown.
	pctx := context.WithoutCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.processBook(pctx, msg.BookID)
	}()
}

func (w *Worker) processBook(ctx context.Context, bookID string) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("book_id", bookID).Interface("panic", r).Msg("Pipeline recovered from panic")
		}
	}()

	if err := w.pipeline.Process(ctx, bookID, &w.processed); err != nil {
		log.Error().Err(err).Str("book_id", bookID).Msg("Error occurred")
		return
	}
	log.Info().
		Str("book_id", bookID).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("Updated book")
}

// Wait blocks until every dispatched pipeline has finished.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) Processed() int64 {
	return w.processed.Value()
}

// Routes serves the worker's status page and health checks.
func (w *Worker) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(httpx.RequestIDMiddleware)
	r.Use(httpx.AccessLogMiddleware)
	r.Use(httpx.RecoveryMiddleware)

	r.Get("/", w.status)
	r.Get("/_ah/health", ok)
	r.Get("/healthz", ok)
	return r
}

func (w *Worker) status(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(rw, "This worker has processed %d books.", w.Processed())
}

func ok(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
