package messaging

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/gridrisk/internal/config"
	"github.com/turtacn/gridrisk/pkg/logger"
)

// RescoreRequest asks for a fresh score of the listed entities.
type RescoreRequest struct {
	EntityIDs   []string `json:"entity_ids"`
	RequestedBy string   `json:"requested_by,omitempty"`
}

// RescoreHandler scores the given entities. A returned error leaves the
// message uncommitted so it is redelivered.
type RescoreHandler func(ctx context.Context, entityIDs []string) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// RescoreConsumer listens for rescore requests, e.g. emitted by the warehouse
// loader after new adverse events land, and hands them to the scoring service.
type RescoreConsumer struct {
	reader  messageReader
	handler RescoreHandler
	logger  logger.Logger
}

// NewRescoreConsumer creates a new consumer for rescore requests.
func NewRescoreConsumer(cfg config.KafkaConfig, handler RescoreHandler, log logger.Logger) *RescoreConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.RescoreTopic,
		GroupID:        cfg.ConsumerGroup, // All instances of the service share the same group ID
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})
	return newRescoreConsumer(reader, handler, log)
}

func newRescoreConsumer(r messageReader, handler RescoreHandler, log logger.Logger) *RescoreConsumer {
	return &RescoreConsumer{
		reader:  r,
		handler: handler,
		logger:  log.WithComponent("RescoreConsumer"),
	}
}

// Run consumes until ctx is cancelled. It is a blocking call and should be run in a goroutine.
func (c *RescoreConsumer) Run(ctx context.Context) error {
	c.logger.Info(ctx, "starting rescore consumer")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || stderrors.Is(err, context.Canceled) {
				c.logger.Info(ctx, "stopping rescore consumer")
				return nil
			}
			c.logger.Error(ctx, "failed to fetch message from kafka", err)
			continue
		}
		c.handleMessage(ctx, msg)
	}
}

func (c *RescoreConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	var req RescoreRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil || len(req.EntityIDs) == 0 {
		c.logger.Warn(ctx, "discarding malformed rescore request", logger.Fields{
			"offset":    msg.Offset,
			"partition": msg.Partition,
		})
		// Acknowledge the message to avoid reprocessing a poison pill.
		c.commit(ctx, msg)
		return
	}

	if err := c.handler(ctx, req.EntityIDs); err != nil {
		c.logger.Error(ctx, "failed to handle rescore request", err, logger.Fields{
			"entities":     len(req.EntityIDs),
			"requested_by": req.RequestedBy,
		})
		return
	}
	c.commit(ctx, msg)
}

func (c *RescoreConsumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error(ctx, "failed to commit kafka message", err)
	}
}

// Close closes the underlying reader.
func (c *RescoreConsumer) Close() error {
	return c.reader.Close()
}
