package queue

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
)

// Producer publishes persist tasks for the worker.
type Producer interface {
	SendPersistTask(ctx context.Context, topic string, task *PersistTask) error
	Close() error
}

type producer struct {
	producer sarama.SyncProducer
}

// NewProducer builds a synchronous Kafka producer with full acks.
func NewProducer(brokers []string) (Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	p, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return &producer{producer: p}, nil
}

func (p *producer) SendPersistTask(ctx context.Context, topic string, task *PersistTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(task.ImageID),
		Value: sarama.ByteEncoder(data),
	}

	_, _, err = p.producer.SendMessage(msg)
	return err
}

func (p *producer) Close() error {
	return p.producer.Close()
}
