package topic

import (
	"context"
	"errors"
)

var ErrRegistryUnavailable = errors.New("topic: registry unavailable")

// Registry answers whether a topic has been provisioned.
type Registry interface {
	TopicExists(ctx context.Context, name string) (bool, error)
}

// RegistryFunc adapts a function to Registry.
type RegistryFunc func(ctx context.Context, name string) (bool, error)

func (f RegistryFunc) TopicExists(ctx context.Context, name string) (bool, error) {
	return f(ctx, name)
}

// StaticRegistry is a fixed set of provisioned topics.
type StaticRegistry map[string]struct{}

func NewStaticRegistry(names ...string) StaticRegistry {
	r := make(StaticRegistry, len(names))
	for _, n := range names {
		if n != "" {
			r[n] = struct{}{}
		}
	}
	return r
}

func (r StaticRegistry) TopicExists(_ context.Context, name string) (bool, error) {
	_, ok := r[name]
	return ok, nil
}
