package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
)

type SQSClientInterface interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Handler receives every decoded message. It must not block for long; the
// receive loop waits for it before polling again.
type Handler func(ctx context.Context, msg Message)

type SubscriberConfig struct {
	QueueURL    string
	WaitSeconds int32
	MaxMessages int32
	ErrorPause  time.Duration
}

type Subscriber struct {
	client SQSClientInterface
	cfg    SubscriberConfig
}

func NewSubscriber(client SQSClientInterface, cfg SubscriberConfig) *Subscriber {
	if cfg.MaxMessages <= 0 || cfg.MaxMessages > 10 {
		cfg.MaxMessages = 10
	}
	if cfg.WaitSeconds < 0 || cfg.WaitSeconds > 20 {
		cfg.WaitSeconds = 20
	}
	if cfg.ErrorPause <= 0 {
		cfg.ErrorPause = 5 * time.Second
	}
	return &Subscriber{client: client, cfg: cfg}
}

// Run long-polls the queue until ctx is cancelled. Messages are deleted as
// soon as they are received; delivery failures are not redriven.
func (s *Subscriber) Run(ctx context.Context, handle Handler) error {
	log.Info().Str("queue_url", s.cfg.QueueURL).Msg("Subscribed to queue")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		result, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(s.cfg.QueueURL),
			MaxNumberOfMessages: s.cfg.MaxMessages,
			WaitTimeSeconds:     s.cfg.WaitSeconds, // Long polling
		})
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			log.Error().Err(err).Msg("Failed to receive messages from queue")
			select {
			case <-time.After(s.cfg.ErrorPause):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		if len(result.Messages) > 0 {
			log.Debug().Int("count", len(result.Messages)).Msg("Received messages from queue")
		}
		for _, sqsMsg := range result.Messages {
			s.receive(ctx, sqsMsg, handle)
		}
	}
}

func (s *Subscriber) receive(ctx context.Context, sqsMsg types.Message, handle Handler) {
	messageID := aws.ToString(sqsMsg.MessageId)
	// A message that is still on the queue will be redelivered, so it is only
	// handled once the delete has gone through.
	if err := s.delete(context.WithoutCancel(ctx), sqsMsg); err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to delete message from queue")
		return
	}

	var msg Message
	if err := json.Unmarshal([]byte(aws.ToString(sqsMsg.Body)), &msg); err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to parse message")
		return
	}

	handle(ctx, msg)
}

func (s *Subscriber) delete(ctx context.Context, sqsMsg types.Message) error {
	_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.cfg.QueueURL),
		ReceiptHandle: sqsMsg.ReceiptHandle,
	})
	return err
}

type Publisher struct {
	client   SQSClientInterface
	queueURL string
}

func NewPublisher(client SQSClientInterface, queueURL string) *Publisher {
	return &Publisher{client: client, queueURL: queueURL}
}

func (p *Publisher) Publish(ctx context.Context, msg Message) (string, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}

	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return "", fmt.Errorf("send %s message: %w", msg.Action, err)
	}
	return aws.ToString(out.MessageId), nil
}
