// Package gcsbridge publishes mission intents to the ground control station
// bridge over Kafka.
package gcsbridge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"dronedelivery/internal/core/domain/model/mission"
	"dronedelivery/internal/pkg/errs"
	"dronedelivery/internal/pkg/retry"
)

const serviceName = "gcs-bridge"

// messageWriter is the slice of kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher implements ports.MissionPublisher on top of a Kafka topic.
// Messages are keyed by order id so retried submissions for the same order
// land on the same partition in order.
type Publisher struct {
	writer messageWriter
	closer func() error
	policy retry.Policy
}

// NewPublisher creates a publisher writing to the given brokers and topic.
func NewPublisher(brokers []string, topic string, policy retry.Policy) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errs.NewInvalidInputError("at least one kafka broker is required")
	}
	if topic == "" {
		return nil, errs.NewInvalidInputError("kafka topic is required")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           100 * time.Millisecond,
	}

	return &Publisher{
		writer: writer,
		closer: writer.Close,
		policy: policy,
	}, nil
}

// PublishIntent serializes the intent and writes it to the bridge topic.
// Broker failures surface as Unavailable and are retried per the policy.
func (p *Publisher) PublishIntent(ctx context.Context, intent mission.Intent) error {
	if err := intent.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(intent)
	if err != nil {
		return errs.NewInvalidInputErrorWithCause("mission intent cannot be serialized", err)
	}

	message := kafka.Message{
		Key:   []byte(intent.OrderID),
		Value: payload,
	}

	return p.policy.Do(ctx, func(ctx context.Context) error {
		if err := p.writer.WriteMessages(ctx, message); err != nil {
			return errs.NewUnavailableErrorWithCause(serviceName, "mission intent publish failed", err)
		}
		return nil
	})
}

// Close flushes and releases the underlying writer.
func (p *Publisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}
