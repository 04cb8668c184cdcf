package topic

import (
	"context"

	"github.com/quiby-ai/kafkasink/pkg/obs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Reason names why a resolution fell back to the default topic.
type Reason string

const (
	ReasonPatternAbsent Reason = "pattern_absent"
	ReasonBodyCorrupt   Reason = "body_corrupt"
	ReasonKeyMissing    Reason = "key_missing"
	ReasonTopicMissing  Reason = "topic_missing"
	ReasonLookupFailed  Reason = "lookup_failed"
)

// FallbackEvent describes one resolution that ended on the default topic.
type FallbackEvent struct {
	Reason       Reason
	Pattern      string
	DefaultTopic string
	// Candidate is set once every key resolved.
	Candidate string
	// MissingKey is set for ReasonKeyMissing.
	MissingKey string
	Err        error
}

// Observer receives the outcome of every resolution. Implementations must be
// safe for concurrent use.
type Observer interface {
	OnResolved(ctx context.Context, topic string)
	OnFallback(ctx context.Context, ev FallbackEvent)
}

type NopObserver struct{}

func (NopObserver) OnResolved(context.Context, string)        {}
func (NopObserver) OnFallback(context.Context, FallbackEvent) {}

// Observers fans out to every member.
type Observers []Observer

func (all Observers) OnResolved(ctx context.Context, topic string) {
	for _, o := range all {
		o.OnResolved(ctx, topic)
	}
}

func (all Observers) OnFallback(ctx context.Context, ev FallbackEvent) {
	for _, o := range all {
		o.OnFallback(ctx, ev)
	}
}

// LogObserver writes fallbacks to a structured logger.
type LogObserver struct {
	Logger *obs.Logger
}

func (l LogObserver) OnResolved(ctx context.Context, topic string) {
	l.Logger.Debug(obs.WithTopic(ctx, topic), "dynamic topic resolved", "status", obs.StatusOK)
}

func (l LogObserver) OnFallback(ctx context.Context, ev FallbackEvent) {
	ctx = obs.WithTopic(ctx, ev.DefaultTopic)
	attrs := []any{"status", obs.StatusFallback, "reason", string(ev.Reason), "pattern", ev.Pattern}

	switch ev.Reason {
	case ReasonPatternAbsent:
		l.Logger.Debug(ctx, "dynamic topic not configured, using default topic",
			"status", obs.StatusFallback, "reason", string(ev.Reason))
	case ReasonKeyMissing:
		l.Logger.Debug(ctx, "extra data lacks pattern key, using default topic",
			append(attrs, "key", ev.MissingKey)...)
	case ReasonBodyCorrupt:
		l.Logger.Warn(ctx, "extra data corrupt, using default topic",
			append(attrs, "error_kind", obs.ErrKindCorrupt, "error", errString(ev.Err))...)
	case ReasonTopicMissing:
		l.Logger.Warn(ctx, "topic does not exist, using default topic",
			append(attrs, "candidate", ev.Candidate)...)
	default:
		l.Logger.Warn(ctx, "topic lookup failed, using default topic",
			append(attrs, "candidate", ev.Candidate, "error_kind", obs.ErrKindRegistry, "error", errString(ev.Err))...)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// MetricsObserver counts resolutions by outcome and reason.
type MetricsObserver struct {
	resolutions metric.Int64Counter
}

func NewMetricsObserver(meter metric.Meter) (*MetricsObserver, error) {
	c, err := meter.Int64Counter("kafkasink_topic_resolutions_total",
		metric.WithDescription("Topic resolutions by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}
	return &MetricsObserver{resolutions: c}, nil
}

func (m *MetricsObserver) OnResolved(ctx context.Context, _ string) {
	m.resolutions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", "dynamic"),
	))
}

func (m *MetricsObserver) OnFallback(ctx context.Context, ev FallbackEvent) {
	m.resolutions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", "default"),
		attribute.String("reason", string(ev.Reason)),
	))
}
