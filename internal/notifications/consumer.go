package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"wedly/internal/shared/config"
	"wedly/pkg/logger"

	"github.com/IBM/sarama"
)

// Mailer is the external templated-email collaborator. Delivery itself lives
// outside this service; only the hook is defined here.
type Mailer interface {
	SendCheckInNotice(ctx context.Context, event *LifecycleEvent) error
}

// Consumer reads lifecycle events and forwards check-in notices to the
// mailer collaborator. Redemption events are consumed for the audit log only.
type Consumer struct {
	group  sarama.ConsumerGroup
	topic  string
	mailer Mailer
	log    *logger.Logger
}

// NewConsumer creates a lifecycle event consumer.
func NewConsumer(cfg config.KafkaConfig, mailer Mailer, log *logger.Logger) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer group: %w", err)
	}

	return &Consumer{
		group:  group,
		topic:  cfg.LifecycleTopic,
		mailer: mailer,
		log:    log,
	}, nil
}

// Start consumes until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	handler := &consumerHandler{mailer: c.mailer, log: c.log}
	for {
		if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
			return fmt.Errorf("consumer group error: %w", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type consumerHandler struct {
	mailer Mailer
	log    *logger.Logger
}

func (h *consumerHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var event LifecycleEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			h.log.ErrorWithContext(session.Context(), "Malformed lifecycle event", err,
				map[string]interface{}{"offset": msg.Offset, "partition": msg.Partition})
			session.MarkMessage(msg, "")
			continue
		}

		if event.Type == EventGuestCheckedIn && h.mailer != nil {
			if err := h.mailer.SendCheckInNotice(session.Context(), &event); err != nil {
				// Mail failures never block the stream.
				h.log.ErrorWithContext(session.Context(), "Check-in notice delivery failed", err,
					map[string]interface{}{"guest_id": event.GuestID.String()})
			}
		}

		session.MarkMessage(msg, "")
	}
	return nil
}
