package jobs

import (
	"context"
	"errors"
	"fmt"

	"bookshelf/internal/book"
	"bookshelf/internal/queue"
)

// ErrPublish marks failures to hand the message to the queue.
var ErrPublish = errors.New("publish failed")

type Publisher interface {
	Publish(ctx context.Context, msg queue.Message) (string, error)
}

// Service queues enrichment work for books that exist.
type Service struct {
	books     book.Repository
	publisher Publisher
}

func NewService(books book.Repository, publisher Publisher) *Service {
	return &Service{books: books, publisher: publisher}
}

// QueueBook publishes a processBook message for bookID and returns the
// queue's message id.
func (s *Service) QueueBook(ctx context.Context, bookID string) (string, error) {
	if _, err := s.books.Read(ctx, bookID); err != nil {
		return "", fmt.Errorf("load book %s: %w", bookID, err)
	}
	messageID, err := s.publisher.Publish(ctx, queue.ProcessBook(bookID))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPublish, err)
	}
	return messageID, nil
}
