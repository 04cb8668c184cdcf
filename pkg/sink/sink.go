// Package sink writes collected events to Kafka, one topic per event.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/quiby-ai/kafkasink/pkg/config"
	"github.com/quiby-ai/kafkasink/pkg/obs"
	"github.com/quiby-ai/kafkasink/pkg/topic"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrNilWriter   = errors.New("sink: writer is required")
	ErrNilResolver = errors.New("sink: resolver is required")
	ErrWriteFailed = errors.New("sink: write failed")
)

const tracerName = "github.com/quiby-ai/kafkasink/pkg/sink"

// MessageWriter is the subset of *kafka.Writer used by the sink.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Event is one collected log event.
type Event struct {
	// Key partitions the message; a random key is used when empty.
	Key     []byte
	Body    []byte
	Headers map[string]string
}

type Sink struct {
	cfg      config.SinkConfig
	pattern  topic.Pattern
	writer   MessageWriter
	resolver *topic.Resolver
	counter  *Counter
	logger   *obs.Logger
	tracer   trace.Tracer
	latency  metric.Float64Histogram
	now      func() time.Time
}

type Option func(*Sink)

func WithLogger(l *obs.Logger) Option {
	return func(s *Sink) { s.logger = l }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Sink) { s.tracer = t }
}

func WithCounter(c *Counter) Option {
	return func(s *Sink) { s.counter = c }
}

// WithLatencyHistogram records the duration of each batch write in milliseconds.
func WithLatencyHistogram(h metric.Float64Histogram) Option {
	return func(s *Sink) { s.latency = h }
}

func New(cfg config.SinkConfig, writer MessageWriter, resolver *topic.Resolver, opts ...Option) (*Sink, error) {
	if writer == nil {
		return nil, ErrNilWriter
	}
	if resolver == nil {
		return nil, ErrNilResolver
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Sink{
		cfg:      cfg,
		pattern:  topic.ParsePattern(cfg.DynamicTopic),
		writer:   writer,
		resolver: resolver,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.counter == nil {
		s.counter = NewCounter()
	}
	if s.logger == nil {
		s.logger = obs.NewLogger(obs.DefaultConfig(), io.Discard)
	}
	if s.tracer == nil {
		s.tracer = obs.Tracer(tracerName)
	}
	return s, nil
}

func (s *Sink) Counter() *Counter {
	return s.counter
}

// Process resolves the topic of every event and writes the batch in one call.
// On failure the whole batch counts as failed.
func (s *Sink) Process(ctx context.Context, batch ...Event) error {
	if len(batch) == 0 {
		return nil
	}

	ctx, span := s.tracer.Start(ctx, "kafkasink.process",
		trace.WithAttributes(attribute.Int("kafkasink.batch_size", len(batch))))
	defer span.End()

	elapsed := obs.StartTimer()

	msgs := make([]kafka.Message, len(batch))
	for i, ev := range batch {
		msgs[i] = s.message(ctx, ev)
	}

	err := s.writer.WriteMessages(ctx, msgs...)
	took := elapsed()
	if s.latency != nil {
		s.latency.Record(ctx, float64(took.Microseconds())/1000)
	}

	if err != nil {
		s.counter.IncreaseErrors(ctx, len(batch))
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		s.logger.Error(ctx, "failed to write batch", err,
			"status", obs.StatusError, "error_kind", errKind(err), "count", len(batch))
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	s.counter.IncreaseSent(ctx, len(batch))
	s.logger.Debug(ctx, "batch written",
		"status", obs.StatusOK, "count", len(batch), "latency_ms", took.Milliseconds())
	return nil
}

func errKind(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return obs.ErrKindTimeout
	}
	return obs.ErrKindKafka
}

func (s *Sink) message(ctx context.Context, ev Event) kafka.Message {
	key := ev.Key
	if len(key) == 0 {
		key = []byte(uuid.NewString())
	}
	return kafka.Message{
		Topic:   s.resolver.Resolve(ctx, s.pattern, s.cfg.DefaultTopic, ev.Body),
		Key:     key,
		Value:   ev.Body,
		Headers: kafkaHeaders(ev.Headers),
		Time:    s.now(),
	}
}

// kafkaHeaders converts event headers, sorted by name for a stable wire order.
func kafkaHeaders(h map[string]string) []kafka.Header {
	if len(h) == 0 {
		return nil
	}
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]kafka.Header, 0, len(keys))
	for _, k := range keys {
		out = append(out, kafka.Header{Key: k, Value: []byte(h[k])})
	}
	return out
}

func (s *Sink) Close() error {
	return s.writer.Close()
}
