package redpanda

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kmsg"
)

// requester issues raw Kafka protocol requests; *kgo.Client implements it.
type requester interface {
	Request(ctx context.Context, req kmsg.Request) (kmsg.Response, error)
}

// topicSpec describes a topic the producer needs before its first write.
type topicSpec struct {
	Name              string
	Partitions        int32
	ReplicationFactor int16
}

func (s topicSpec) validate() error {
	switch {
	case s.Name == "":
		return errors.New("topic name cannot be empty")
	case s.Partitions <= 0:
		return fmt.Errorf("topic %s: partitions must be greater than 0", s.Name)
	case s.ReplicationFactor <= 0:
		return fmt.Errorf("topic %s: replication factor must be greater than 0", s.Name)
	}
	return nil
}

// ensureTopics creates the given topics in one CreateTopics request.
// Topics that already exist are left as they are.
func ensureTopics(ctx context.Context, client requester, specs ...topicSpec) error {
	req := kmsg.NewPtrCreateTopicsRequest()
	req.TimeoutMillis = 30000
	for _, s := range specs {
		if err := s.validate(); err != nil {
			return fmt.Errorf("op=redpanda.ensureTopics: %w", err)
		}
		t := kmsg.NewCreateTopicsRequestTopic()
		t.Topic = s.Name
		t.NumPartitions = s.Partitions
		t.ReplicationFactor = s.ReplicationFactor
		req.Topics = append(req.Topics, t)
	}
	if len(req.Topics) == 0 {
		return nil
	}

	resp, err := req.RequestWith(ctx, client)
	if err != nil {
		return fmt.Errorf("op=redpanda.ensureTopics: %w", err)
	}
	var errs []error
	for _, t := range resp.Topics {
		err := kerr.ErrorForCode(t.ErrorCode)
		switch {
		case err == nil:
			slog.Info("topic created", slog.String("topic", t.Topic))
		case errors.Is(err, kerr.TopicAlreadyExists):
			slog.Debug("topic already exists", slog.String("topic", t.Topic))
		default:
			detail := err.Error()
			if t.ErrorMessage != nil && *t.ErrorMessage != "" {
				detail = *t.ErrorMessage
			}
			errs = append(errs, fmt.Errorf("topic %s: %s: %w", t.Topic, detail, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("op=redpanda.ensureTopics: %w", errors.Join(errs...))
	}
	return nil
}
