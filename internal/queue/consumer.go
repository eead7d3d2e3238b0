package queue

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
)

// TaskHandler processes one persist task. Returning an error leaves the
// message marked so redelivery semantics stay with the broker config.
type TaskHandler func(ctx context.Context, task *PersistTask) error

// Consumer wraps a sarama consumer group for the persist topic.
type Consumer struct {
	consumer sarama.ConsumerGroup
}

func NewConsumer(brokers []string, groupID string) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	c, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, err
	}

	return &Consumer{consumer: c}, nil
}

type consumerHandler struct {
	fn  TaskHandler
	ctx context.Context
}

func (h *consumerHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var task PersistTask
		if err := json.Unmarshal(msg.Value, &task); err != nil {
			// Malformed payloads are skipped, not retried.
			session.MarkMessage(msg, "")
			continue
		}
		if err := h.fn(h.ctx, &task); err == nil {
			session.MarkMessage(msg, "")
		}
	}
	return nil
}

// Consume blocks, dispatching messages from topic to handler until ctx ends.
func (c *Consumer) Consume(ctx context.Context, topic string, handler TaskHandler) error {
	h := &consumerHandler{fn: handler, ctx: ctx}
	return c.consumer.Consume(ctx, []string{topic}, h)
}

func (c *Consumer) Close() error {
	return c.consumer.Close()
}
