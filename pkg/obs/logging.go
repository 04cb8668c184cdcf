package obs

import (
	"context"
	"os"

	"go.opentelemetry.io/otel/trace"
)

type LoggingProvider struct {
	logger *Logger
	config Config
}

func newLoggingProvider(config Config) (*LoggingProvider, error) {
	return &LoggingProvider{
		logger: NewLogger(config, os.Stdout),
		config: config,
	}, nil
}

func (lp *LoggingProvider) Logger() *Logger {
	return lp.logger
}

// withTracing copies the active span's ids into ctx for log correlation.
func (lp *LoggingProvider) withTracing(ctx context.Context) context.Context {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ctx
	}
	return withSpan(ctx, sc.TraceID().String(), sc.SpanID().String())
}

func (lp *LoggingProvider) Debug(ctx context.Context, msg string, attrs ...any) {
	lp.logger.Debug(lp.withTracing(ctx), msg, attrs...)
}

func (lp *LoggingProvider) Info(ctx context.Context, msg string, attrs ...any) {
	lp.logger.Info(lp.withTracing(ctx), msg, attrs...)
}

func (lp *LoggingProvider) Warn(ctx context.Context, msg string, attrs ...any) {
	lp.logger.Warn(lp.withTracing(ctx), msg, attrs...)
}

func (lp *LoggingProvider) Error(ctx context.Context, msg string, err error, attrs ...any) {
	lp.logger.Error(lp.withTracing(ctx), msg, err, attrs...)
}

func (lp *LoggingProvider) Event(ctx context.Context, event, status string, attrs ...any) {
	lp.logger.Event(lp.withTracing(ctx), event, status, attrs...)
}

func (lp *LoggingProvider) Shutdown(ctx context.Context) error {
	return nil
}

func globalLogging() *LoggingProvider {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalObs == nil {
		return nil
	}
	return globalObs.logging
}

func Debug(ctx context.Context, msg string, attrs ...any) {
	if lp := globalLogging(); lp != nil {
		lp.Debug(ctx, msg, attrs...)
	}
}

func Info(ctx context.Context, msg string, attrs ...any) {
	if lp := globalLogging(); lp != nil {
		lp.Info(ctx, msg, attrs...)
	}
}

func Warn(ctx context.Context, msg string, attrs ...any) {
	if lp := globalLogging(); lp != nil {
		lp.Warn(ctx, msg, attrs...)
	}
}

func Error(ctx context.Context, msg string, err error, attrs ...any) {
	if lp := globalLogging(); lp != nil {
		lp.Error(ctx, msg, err, attrs...)
	}
}

func Event(ctx context.Context, event, status string, attrs ...any) {
	if lp := globalLogging(); lp != nil {
		lp.Event(ctx, event, status, attrs...)
	}
}
