package obs

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MeterName is the instrumentation scope of the sink's own instruments.
const MeterName = "github.com/quiby-ai/kafkasink"

type MetricsProvider struct {
	provider *sdkmetric.MeterProvider
	registry *prometheus.Registry
	exporter *promexporter.Exporter
	config   Config
}

func newMetricsProvider(ctx context.Context, config Config) (*MetricsProvider, error) {
	if !config.MetricsEnabled {
		return &MetricsProvider{config: config}, nil
	}

	res, err := newResource(ctx, config)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
		promexporter.WithoutUnits(),
		promexporter.WithoutScopeInfo(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(provider)

	return &MetricsProvider{
		provider: provider,
		registry: registry,
		exporter: exporter,
		config:   config,
	}, nil
}

func (mp *MetricsProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// HTTPHandler serves the registry in Prometheus/OpenMetrics text format.
func (mp *MetricsProvider) HTTPHandler() http.Handler {
	if mp.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(mp.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

func (mp *MetricsProvider) Registry() *prometheus.Registry {
	return mp.registry
}

func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	return mp.provider.Shutdown(ctx)
}

func (mp *MetricsProvider) ForceFlush(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	return mp.provider.ForceFlush(ctx)
}

func (mp *MetricsProvider) Counter(name, description, unit string) (metric.Int64Counter, error) {
	return mp.Meter(MeterName).Int64Counter(name,
		metric.WithDescription(description),
		metric.WithUnit(unit),
	)
}

func (mp *MetricsProvider) Histogram(name, description, unit string) (metric.Float64Histogram, error) {
	return mp.Meter(MeterName).Float64Histogram(name,
		metric.WithDescription(description),
		metric.WithUnit(unit),
	)
}

// Gauge registers an observable gauge whose value is read from fn at collection time.
func (mp *MetricsProvider) Gauge(name, description, unit string, fn func() float64) (metric.Float64ObservableGauge, error) {
	return mp.Meter(MeterName).Float64ObservableGauge(name,
		metric.WithDescription(description),
		metric.WithUnit(unit),
		metric.WithFloat64Callback(func(_ context.Context, o metric.Float64Observer) error {
			o.Observe(fn())
			return nil
		}),
	)
}
