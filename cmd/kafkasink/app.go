package main

import (
	"context"
	"fmt"
	"os"

	"github.com/quiby-ai/kafkasink/pkg/config"
	"github.com/quiby-ai/kafkasink/pkg/httpx"
	"github.com/quiby-ai/kafkasink/pkg/obs"
	"github.com/quiby-ai/kafkasink/pkg/sink"
	"github.com/quiby-ai/kafkasink/pkg/topic"
	clientv3 "go.etcd.io/etcd/client/v3"
	"gopkg.in/yaml.v3"
)

// app owns the sink and the resources behind its topic registry.
type app struct {
	sink    *sink.Sink
	closers []func() error
}

func newApp(ctx context.Context, opts *Options, cfg config.SinkConfig, o *obs.Observability) (*app, error) {
	a := &app{}

	registry, err := a.registry(opts, cfg.Producer)
	if err != nil {
		return nil, err
	}

	metricsObserver, err := topic.NewMetricsObserver(o.Meter(obs.MeterName))
	if err != nil {
		a.Close()
		return nil, err
	}
	resolver, err := topic.NewResolver(registry, topic.WithObserver(topic.Observers{
		topic.LogObserver{Logger: o.Logger()},
		metricsObserver,
	}))
	if err != nil {
		a.Close()
		return nil, err
	}

	writer, err := config.NewWriter(cfg.Producer)
	if err != nil {
		a.Close()
		return nil, err
	}

	counter := sink.NewCounter()
	if err := counter.Register(o.MetricsProvider()); err != nil {
		_ = writer.Close()
		a.Close()
		return nil, err
	}
	latency, err := o.MetricsProvider().Histogram("kafkasink_write_latency_ms", "Duration of one producer write", "ms")
	if err != nil {
		_ = writer.Close()
		a.Close()
		return nil, err
	}

	a.sink, err = sink.New(cfg, writer, resolver,
		sink.WithLogger(o.Logger()),
		sink.WithTracer(o.Tracer("github.com/quiby-ai/kafkasink/pkg/sink")),
		sink.WithCounter(counter),
		sink.WithLatencyHistogram(latency),
	)
	if err != nil {
		_ = writer.Close()
		a.Close()
		return nil, err
	}
	a.closers = append([]func() error{a.sink.Close}, a.closers...)

	o.Logger().Debug(ctx, "registry ready", "registry", opts.Registry)
	return a, nil
}

func (a *app) registry(opts *Options, producer config.Properties) (topic.Registry, error) {
	switch opts.Registry {
	case "kafka":
		brokers := producer.Brokers()
		if len(brokers) == 0 {
			return nil, config.ErrNoBrokers
		}
		return topic.NewKafkaRegistry(brokers, opts.Kafka.Timeout), nil
	case "etcd":
		cli, err := clientv3.New(clientv3.Config{
			Endpoints:   []string{opts.Etcd.Address},
			DialTimeout: opts.Etcd.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("dial etcd: %w", err)
		}
		a.closers = append(a.closers, cli.Close)
		return topic.NewEtcdRegistry(cli, opts.Etcd.Prefix), nil
	case "rest":
		client := httpx.New(httpx.Config{MaxRetries: opts.REST.MaxRetries})
		return topic.NewRESTRegistry(client, opts.REST.URL), nil
	case "static":
		return topic.NewStaticRegistry(opts.Static.Topics...), nil
	}
	return nil, fmt.Errorf("unknown registry %q", opts.Registry)
}

// Close releases the sink first, then the registry.
func (a *app) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// loadContext reads a flat YAML mapping of sink context keys to scalar values.
func loadContext(path string) (config.Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sink context: %w", err)
	}
	return parseContext(data)
}

func parseContext(data []byte) (config.Context, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	ctx := make(config.Context, len(doc))
	for k, n := range doc {
		if n.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: %q is not a scalar", config.ErrInvalidConfig, k)
		}
		ctx[k] = n.Value
	}
	return ctx, nil
}
