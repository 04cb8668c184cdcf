package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Reserved sink context keys. They configure the sink itself and are never
// passed through to the producer.
const (
	KeyType         = "type"
	KeyChannel      = "channel"
	KeyDefaultTopic = "defaultTopic"
	KeyDynamicTopic = "dynamicTopic"
)

var reservedKeys = map[string]struct{}{
	KeyType:         {},
	KeyChannel:      {},
	KeyDefaultTopic: {},
	KeyDynamicTopic: {},
}

var ErrInvalidConfig = errors.New("config: invalid sink configuration")

// Context is the flat key/value configuration handed to a sink.
type Context map[string]string

// Properties is the producer configuration derived from a Context.
type Properties map[string]string

// Keys returns the property names in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsReserved reports whether key is consumed by the sink rather than the producer.
func IsReserved(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}

// ProducerProperties copies every non-reserved entry of ctx.
func ProducerProperties(ctx Context) Properties {
	props := make(Properties, len(ctx))
	for k, v := range ctx {
		if IsReserved(k) {
			continue
		}
		props[k] = v
	}
	return props
}

// SinkConfig is the parsed form of a sink Context.
type SinkConfig struct {
	DefaultTopic string `validate:"required"`
	// DynamicTopic is the raw pattern; empty means no dynamic topic.
	DynamicTopic string
	Producer     Properties `validate:"required"`
}

// Parse splits ctx into sink settings and producer properties.
func Parse(ctx Context) (SinkConfig, error) {
	cfg := SinkConfig{
		DefaultTopic: strings.TrimSpace(ctx[KeyDefaultTopic]),
		DynamicTopic: strings.TrimSpace(ctx[KeyDynamicTopic]),
		Producer:     ProducerProperties(ctx),
	}
	if err := cfg.Validate(); err != nil {
		return SinkConfig{}, err
	}
	return cfg, nil
}

func (c SinkConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
