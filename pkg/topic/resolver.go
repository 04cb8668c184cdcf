// Package topic resolves the destination topic of outgoing events.
//
// A dynamic topic is built from extra data fields of the enriched event body
// and is only used once the registry confirms it exists. Every other outcome
// lands on the configured default topic.
package topic

import (
	"context"
	"errors"

	"github.com/quiby-ai/kafkasink/pkg/events"
)

var ErrNilRegistry = errors.New("topic: registry is required")

// Decoder extracts the extra data of an event body.
type Decoder func(body []byte) (map[string]string, error)

// Resolver picks the topic of each event. It holds no per-call state.
type Resolver struct {
	registry Registry
	decode   Decoder
	observer Observer
}

type Option func(*Resolver)

func WithObserver(o Observer) Option {
	return func(r *Resolver) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithDecoder replaces the enriched body decoder.
func WithDecoder(d Decoder) Option {
	return func(r *Resolver) {
		if d != nil {
			r.decode = d
		}
	}
}

func NewResolver(registry Registry, opts ...Option) (*Resolver, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	r := &Resolver{
		registry: registry,
		decode:   events.ExtraData,
		observer: NopObserver{},
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// Resolve returns the destination of body: the topic built from pattern when
// every key is present and the topic exists, defaultTopic otherwise. It never
// fails; the reason for a fallback goes to the observer.
func (r *Resolver) Resolve(ctx context.Context, pattern Pattern, defaultTopic string, body []byte) string {
	if pattern.IsZero() {
		r.observer.OnFallback(ctx, FallbackEvent{Reason: ReasonPatternAbsent, DefaultTopic: defaultTopic})
		return defaultTopic
	}

	fallback := FallbackEvent{Pattern: pattern.String(), DefaultTopic: defaultTopic}

	extra, err := r.decode(body)
	if err != nil {
		fallback.Reason, fallback.Err = ReasonBodyCorrupt, err
		r.observer.OnFallback(ctx, fallback)
		return defaultTopic
	}

	candidate, missing, ok := pattern.Build(extra)
	if !ok {
		fallback.Reason, fallback.MissingKey = ReasonKeyMissing, missing
		r.observer.OnFallback(ctx, fallback)
		return defaultTopic
	}
	fallback.Candidate = candidate

	exists, err := r.registry.TopicExists(ctx, candidate)
	switch {
	case err != nil:
		fallback.Reason, fallback.Err = ReasonLookupFailed, err
	case !exists:
		fallback.Reason = ReasonTopicMissing
	default:
		r.observer.OnResolved(ctx, candidate)
		return candidate
	}

	r.observer.OnFallback(ctx, fallback)
	return defaultTopic
}
