// Package redpanda publishes activity events to Redpanda/Kafka.
package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"

	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

// TopicActivity is the default topic for activity events.
const TopicActivity = "activity-events"

// recordProducer is the subset of *kgo.Client used to publish.
type recordProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Ping(ctx context.Context) error
	Close()
}

// Producer publishes activity events and implements domain.ActivityPublisher.
type Producer struct {
	client recordProducer
	topic  string
}

// NewProducer connects to brokers, ensures topic exists and returns an
// idempotent, traced producer. An empty topic means TopicActivity.
func NewProducer(ctx context.Context, brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("op=redpanda.NewProducer: no seed brokers provided")
	}
	if topic == "" {
		topic = TopicActivity
	}
	slog.Info("creating redpanda producer",
		slog.Any("brokers", brokers),
		slog.String("topic", topic))

	tracing := kotel.NewKotel(kotel.WithTracer(kotel.NewTracer()))
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequestRetries(10),
		kgo.ProducerBatchMaxBytes(1000000),
		kgo.WithHooks(tracing.Hooks()...),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		slog.Error("failed to create redpanda client", slog.Any("error", err))
		return nil, fmt.Errorf("op=redpanda.NewProducer: %w", err)
	}

	if err := ensureTopics(ctx, client, topicSpec{Name: topic, Partitions: 3, ReplicationFactor: 1}); err != nil {
		// The broker may auto-create topics or deny admin requests.
		slog.Warn("topic bootstrap failed; relying on broker auto-create",
			slog.String("topic", topic),
			slog.Any("error", err))
	}
	return &Producer{client: client, topic: topic}, nil
}

// Publish writes ev keyed by its subject so a user's events stay ordered.
func (p *Producer) Publish(ctx domain.Context, ev domain.ActivityEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("op=redpanda.Publish: marshal: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(ev.Subject),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "event_id", Value: []byte(ev.ID)},
			{Key: "action", Value: []byte(ev.Action)},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		slog.Error("failed to produce activity event",
			slog.String("topic", p.topic),
			slog.String("action", string(ev.Action)),
			slog.Any("error", err))
		return fmt.Errorf("op=redpanda.Publish: %w", err)
	}
	slog.Debug("activity event produced",
		slog.String("topic", p.topic),
		slog.String("action", string(ev.Action)),
		slog.String("event_id", ev.ID))
	return nil
}

// Ping checks that at least one broker is reachable.
func (p *Producer) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx); err != nil {
		return fmt.Errorf("op=redpanda.Ping: %w", err)
	}
	return nil
}

// Close closes the producer.
func (p *Producer) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}
