package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"bookshelf/internal/config"
	"bookshelf/internal/platform/awsclient"
	"bookshelf/internal/platform/logger"
	"bookshelf/internal/queue"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

type publisher interface {
	Publish(ctx context.Context, msg queue.Message) (string, error)
}

type publisherFactory func(ctx context.Context, queueURL string) (publisher, error)

func main() {
	config.LoadEnvFiles()
	logger.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	if err := newApp(sqsPublisher).Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("Application failed")
	}
}

func sqsPublisher(ctx context.Context, queueURL string) (publisher, error) {
	awsCfg, err := awsclient.LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return queue.NewPublisher(awsclient.NewSQS(awsCfg), queueURL), nil
}

func newApp(newPublisher publisherFactory) *cli.App {
	return &cli.App{
		Name:  "enqueue",
		Usage: "Publish work messages to the books queue",
		Commands: []*cli.Command{
			{
				Name:  "process-book",
				Usage: "Queue one or more books for catalog enrichment",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "book-id",
						Usage:    "Book id to enrich (repeatable)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "queue-url",
						Usage:    "AWS SQS queue URL",
						Required: true,
						EnvVars:  []string{"QUEUE_URL"},
					},
				},
				Action: func(c *cli.Context) error {
					pub, err := newPublisher(c.Context, c.String("queue-url"))
					if err != nil {
						return err
					}
					return enqueueBooks(c.Context, pub, c.StringSlice("book-id"))
				},
			},
		},
	}
}

// enqueueBooks publishes one processBook message per non-blank id and stops
// at the first publish failure.
func enqueueBooks(ctx context.Context, pub publisher, ids []string) error {
	queued := 0
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		messageID, err := pub.Publish(ctx, queue.ProcessBook(id))
		if err != nil {
			return fmt.Errorf("queue book %s: %w", id, err)
		}
		log.Info().Str("book_id", id).Str("message_id", messageID).Msg("Queued book")
		queued++
	}
	if queued == 0 {
		return fmt.Errorf("no book ids given")
	}
	return nil
}
