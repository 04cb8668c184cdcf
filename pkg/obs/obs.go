package obs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Observability bundles the logging, tracing and metrics providers of a process.
type Observability struct {
	config       Config
	tracing      *TracingProvider
	metrics      *MetricsProvider
	logging      *LoggingProvider
	shutdownOnce sync.Once
	shutdownErr  error
}

var (
	globalObs *Observability
	globalMu  sync.RWMutex
)

// Init builds the providers once per process. Later calls return the
// existing instance until it is shut down.
func Init(ctx context.Context, config Config) (*Observability, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	globalMu.Lock()
	defer globalMu.Unlock()

	if globalObs != nil {
		return globalObs, nil
	}

	o := &Observability{config: config}

	var err error
	if o.logging, err = newLoggingProvider(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoggingInitFailed, err)
	}
	if o.tracing, err = newTracingProvider(ctx, config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTracingInitFailed, err)
	}
	if o.metrics, err = newMetricsProvider(ctx, config); err != nil {
		_ = o.tracing.Shutdown(ctx)
		return nil, fmt.Errorf("%w: %v", ErrMetricsInitFailed, err)
	}

	o.logging.Info(ctx, "observability initialized",
		"otlp_endpoint", config.OTLPEndpoint,
		"metrics_enabled", config.MetricsEnabled,
	)

	globalObs = o
	return o, nil
}

func Global() *Observability {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalObs
}

func MustInit(ctx context.Context, config Config) *Observability {
	o, err := Init(ctx, config)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize observability: %v", err))
	}
	return o
}

// Shutdown flushes and stops every provider. It is safe to call more than once;
// later calls return the first result.
func (o *Observability) Shutdown(ctx context.Context) error {
	o.shutdownOnce.Do(func() {
		globalMu.Lock()
		if globalObs == o {
			globalObs = nil
		}
		globalMu.Unlock()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()

		var errs []error
		if o.tracing != nil {
			if err := o.tracing.ForceFlush(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("flush traces: %w", err))
			}
			if err := o.tracing.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
			}
		}
		if o.metrics != nil {
			if err := o.metrics.ForceFlush(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("flush metrics: %w", err))
			}
			if err := o.metrics.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown metrics: %w", err))
			}
		}
		if o.logging != nil {
			if err := o.logging.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown logging: %w", err))
			}
		}

		if len(errs) > 0 {
			o.shutdownErr = fmt.Errorf("%w: %w", ErrShutdownFailed, errors.Join(errs...))
			return
		}
		o.logging.Info(shutdownCtx, "observability shutdown completed")
	})
	return o.shutdownErr
}

func Shutdown(ctx context.Context) error {
	o := Global()
	if o == nil {
		return ErrNotInitialized
	}
	return o.Shutdown(ctx)
}

func (o *Observability) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if o.tracing == nil {
		return noop.NewTracerProvider().Tracer(name, opts...)
	}
	return o.tracing.Tracer(name, opts...)
}

func (o *Observability) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if o.metrics == nil {
		return otel.Meter(name, opts...)
	}
	return o.metrics.Meter(name, opts...)
}

func (o *Observability) Logger() *Logger {
	return o.logging.Logger()
}

func (o *Observability) TracingProvider() *TracingProvider {
	return o.tracing
}

func (o *Observability) MetricsProvider() *MetricsProvider {
	return o.metrics
}

func (o *Observability) LoggingProvider() *LoggingProvider {
	return o.logging
}

func (o *Observability) Config() Config {
	return o.config
}

func Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if o := Global(); o != nil {
		return o.Tracer(name, opts...)
	}
	return otel.Tracer(name, opts...)
}

func Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if o := Global(); o != nil {
		return o.Meter(name, opts...)
	}
	return otel.Meter(name, opts...)
}
