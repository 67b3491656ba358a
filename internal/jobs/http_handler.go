package jobs

import (
	"errors"
	"net/http"
	"strings"

	"bookshelf/internal/book"
	"bookshelf/internal/httpx"
	"bookshelf/internal/queue"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// ProcessBook handles POST /internal/books/{id}/process
func (h *HTTPHandler) ProcessBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")
	if bookID == "" || strings.Contains(bookID, "/") {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "book not found", nil)
		return
	}

	messageID, err := h.svc.QueueBook(r.Context(), bookID)
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "book not found", nil)
			return
		}
		log.Error().Err(err).Str("book_id", bookID).Str("request_id", httpx.RequestIDFrom(r)).Msg("Failed to queue book")
		if errors.Is(err, ErrPublish) {
			httpx.JSONError(w, r, http.StatusBadGateway, "QUEUE_FAILED", "could not queue book", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONAccepted(w, r, map[string]string{
		"book_id":    bookID,
		"action":     queue.ActionProcessBook,
		"message_id": messageID,
	})
}
