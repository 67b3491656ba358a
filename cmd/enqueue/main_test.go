package main

import (
	"context"
	"errors"
	"os"
	"testing"

	"bookshelf/internal/queue"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, msg queue.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

func TestEnqueueBooks(t *testing.T) {
	t.Run("publishes one message per id", func(t *testing.T) {
		pub := new(mockPublisher)
		pub.On("Publish", mock.Anything, queue.ProcessBook("1")).Return("m1", nil).Once()
		pub.On("Publish", mock.Anything, queue.ProcessBook("2")).Return("m2", nil).Once()

		err := enqueueBooks(context.Background(), pub, []string{"1", " ", "2"})

		require.NoError(t, err)
		pub.AssertExpectations(t)
	})

	t.Run("stops at first failure", func(t *testing.T) {
		pub := new(mockPublisher)
		pub.On("Publish", mock.Anything, queue.ProcessBook("1")).Return("", errors.New("throttled")).Once()

		err := enqueueBooks(context.Background(), pub, []string{"1", "2"})

		assert.ErrorContains(t, err, "queue book 1")
		pub.AssertNumberOfCalls(t, "Publish", 1)
	})

	t.Run("rejects blank ids", func(t *testing.T) {
		pub := new(mockPublisher)
		err := enqueueBooks(context.Background(), pub, []string{""})
		assert.Error(t, err)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestApp_ProcessBook(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, queue.ProcessBook("a")).Return("m1", nil)
	pub.On("Publish", mock.Anything, queue.ProcessBook("b")).Return("m2", nil)

	var gotURL string
	app := newApp(func(ctx context.Context, queueURL string) (publisher, error) {
		gotURL = queueURL
		return pub, nil
	})

	err := app.Run([]string{"enqueue", "process-book", "--queue-url", "https://sqs.local/q", "--book-id", "a", "--book-id", "b"})

	require.NoError(t, err)
	assert.Equal(t, "https://sqs.local/q", gotURL)
	pub.AssertExpectations(t)
}
