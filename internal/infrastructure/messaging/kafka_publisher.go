// Package messaging connects the scoring service to Kafka: scored profiles are
// published for downstream consumers and rescore requests are consumed.
package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/gridrisk/internal/config"
	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/internal/domain/service"
	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/logger"
)

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProfilePublisher is a Kafka-backed implementation of service.ProfilePublisher.
// Messages are keyed by entity id so every profile of an entity lands on one partition.
type KafkaProfilePublisher struct {
	writer messageWriter
	logger logger.Logger
}

var _ service.ProfilePublisher = (*KafkaProfilePublisher)(nil)

// NewKafkaProfilePublisher creates a new KafkaProfilePublisher.
func NewKafkaProfilePublisher(cfg config.KafkaConfig, log logger.Logger) *KafkaProfilePublisher {
	topic := cfg.ProfileTopic
	if topic == "" {
		topic = constants.DefaultProfileTopic
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: time.Duration(cfg.BatchTimeout) * time.Millisecond,
	}
	return newKafkaProfilePublisher(writer, log)
}

func newKafkaProfilePublisher(w messageWriter, log logger.Logger) *KafkaProfilePublisher {
	return &KafkaProfilePublisher{
		writer: w,
		logger: log.WithComponent("KafkaProfilePublisher"),
	}
}

func (p *KafkaProfilePublisher) Name() string { return "kafka" }

// Publish sends one message per profile in a single write.
func (p *KafkaProfilePublisher) Publish(ctx context.Context, profiles []*models.EntityRiskProfile) error {
	msgs := make([]kafka.Message, 0, len(profiles))
	for _, profile := range profiles {
		if profile == nil {
			continue
		}
		bytes, err := json.Marshal(profile)
		if err != nil {
			p.logger.Error(ctx, "failed to marshal risk profile", err, logger.Fields{"entity_id": profile.EntityID})
			return errors.ErrPublish(p.Name(), err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(profile.EntityID),
			Value: bytes,
			Headers: []kafka.Header{
				{Key: "severity_tier", Value: []byte(profile.SeverityTier)},
			},
		})
	}
	if len(msgs) == 0 {
		return nil
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.Error(ctx, "failed to write profiles to Kafka", err, logger.Fields{"profiles": len(msgs)})
		return errors.ErrPublish(p.Name(), err)
	}
	return nil
}

// Close closes the underlying Kafka writer.
func (p *KafkaProfilePublisher) Close() error {
	return p.writer.Close()
}
