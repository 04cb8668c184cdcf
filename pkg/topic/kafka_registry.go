package topic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type metadataClient interface {
	Metadata(ctx context.Context, req *kafka.MetadataRequest) (*kafka.MetadataResponse, error)
}

// KafkaRegistry checks topic existence against cluster metadata.
type KafkaRegistry struct {
	client metadataClient
}

// NewKafkaRegistry queries the given brokers. A zero timeout leaves the
// kafka-go default in place.
func NewKafkaRegistry(brokers []string, timeout time.Duration) *KafkaRegistry {
	return &KafkaRegistry{client: &kafka.Client{
		Addr:    kafka.TCP(brokers...),
		Timeout: timeout,
	}}
}

func (r *KafkaRegistry) TopicExists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, nil
	}

	resp, err := r.client.Metadata(ctx, &kafka.MetadataRequest{Topics: []string{name}})
	if err != nil {
		return false, fmt.Errorf("%w: metadata for %q: %v", ErrRegistryUnavailable, name, err)
	}

	for _, t := range resp.Topics {
		if t.Name != name {
			continue
		}
		switch {
		case t.Error == nil:
			return true, nil
		case errors.Is(t.Error, kafka.UnknownTopicOrPartition):
			return false, nil
		default:
			return false, fmt.Errorf("%w: topic %q: %v", ErrRegistryUnavailable, name, t.Error)
		}
	}
	return false, nil
}
