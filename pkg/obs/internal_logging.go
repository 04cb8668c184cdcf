package obs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"
)

type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	spanIDKey  contextKey = "span_id"
	topicKey   contextKey = "topic"
	eventIDKey contextKey = "event_id"
	channelKey contextKey = "channel"

	StatusOK       = "ok"
	StatusError    = "error"
	StatusFallback = "fallback"

	ErrKindCorrupt  = "corrupt"
	ErrKindRegistry = "registry"
	ErrKindKafka    = "kafka"
	ErrKindTimeout  = "timeout"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

var (
	// secretKeys matches attribute keys whose values must never be logged,
	// e.g. sasl.password or sasl.jaas.config among the producer properties.
	secretKeys = regexp.MustCompile(`(?i)(password|secret|token|jaas|credential|ssl\.key|keystore|truststore)`)

	secretInline = regexp.MustCompile(`(?i)(password|secret|token|jaas\.config)\s*[:=]\s*["']?[^"'\s,]+["']?`)
)

type Logger struct {
	*slog.Logger
	redact bool
	hash   bool
}

func (c Config) levelName() string {
	name := strings.ToLower(strings.TrimSpace(c.LogLevel))
	if name == "" {
		return "info"
	}
	return name
}

// NewLogger builds a Logger writing to w. JSON output unless LogPretty is set.
func NewLogger(config Config, w io.Writer) *Logger {
	level, ok := logLevels[config.levelName()]
	if !ok {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	}

	var handler slog.Handler
	if config.LogPretty {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	hostname, _ := os.Hostname()

	return &Logger{
		Logger: slog.New(handler).With(
			"service", config.ServiceName,
			"version", config.ServiceVersion,
			"env", config.Environment,
			"hostname", hostname,
			"git_sha", gitSHA(),
		),
		redact: config.LogRedactSecrets,
		hash:   config.LogHashSecrets,
	}
}

func gitSHA() string {
	for _, name := range []string{"GIT_SHA", "COMMIT_SHA"} {
		if sha := os.Getenv(name); sha != "" {
			return sha
		}
	}
	return "unknown"
}

// WithTopic tags ctx so log lines emitted under it carry the destination topic.
func WithTopic(ctx context.Context, topic string) context.Context {
	if topic == "" {
		return ctx
	}
	return context.WithValue(ctx, topicKey, topic)
}

// WithEventID tags ctx with the id of the event being handled.
func WithEventID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, eventIDKey, id)
}

// WithChannel tags ctx with the name of the channel feeding the sink.
func WithChannel(ctx context.Context, channel string) context.Context {
	if channel == "" {
		return ctx
	}
	return context.WithValue(ctx, channelKey, channel)
}

func withSpan(ctx context.Context, traceID, spanID string) context.Context {
	if traceID != "" {
		ctx = context.WithValue(ctx, traceIDKey, traceID)
	}
	if spanID != "" {
		ctx = context.WithValue(ctx, spanIDKey, spanID)
	}
	return ctx
}

func (l *Logger) withContext(ctx context.Context) *Logger {
	var attrs []any
	for _, key := range []contextKey{traceIDKey, spanIDKey, topicKey, eventIDKey, channelKey} {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			attrs = append(attrs, string(key), v)
		}
	}
	if len(attrs) == 0 {
		return l
	}
	return &Logger{Logger: l.With(attrs...), redact: l.redact, hash: l.hash}
}

func (l *Logger) mask(value string) string {
	if l.hash {
		sum := sha256.Sum256([]byte(value))
		return "[REDACTED:" + hex.EncodeToString(sum[:8]) + "]"
	}
	return "[REDACTED]"
}

func (l *Logger) redactMessage(msg string) string {
	if !l.redact {
		return msg
	}
	return secretInline.ReplaceAllStringFunc(msg, l.mask)
}

func (l *Logger) redactAttrs(attrs []any) []any {
	if !l.redact {
		return attrs
	}

	out := make([]any, len(attrs))
	copy(out, attrs)

	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if !ok || !secretKeys.MatchString(key) {
			continue
		}
		if value, ok := out[i+1].(string); ok {
			out[i+1] = l.mask(value)
		}
	}
	return out
}

func (l *Logger) Log(ctx context.Context, level slog.Level, msg string, attrs ...any) {
	l.withContext(ctx).Logger.Log(ctx, level, l.redactMessage(msg), l.redactAttrs(attrs)...)
}

func (l *Logger) Debug(ctx context.Context, msg string, attrs ...any) {
	l.Log(ctx, slog.LevelDebug, msg, attrs...)
}

func (l *Logger) Info(ctx context.Context, msg string, attrs ...any) {
	l.Log(ctx, slog.LevelInfo, msg, attrs...)
}

func (l *Logger) Warn(ctx context.Context, msg string, attrs ...any) {
	l.Log(ctx, slog.LevelWarn, msg, attrs...)
}

func (l *Logger) Error(ctx context.Context, msg string, err error, attrs ...any) {
	if err != nil {
		attrs = append(attrs, "error", err.Error())
	}
	l.Log(ctx, slog.LevelError, msg, attrs...)
}

// Event logs a structured lifecycle event at info level.
func (l *Logger) Event(ctx context.Context, event, status string, attrs ...any) {
	attrs = append([]any{"event", event, "status", status}, attrs...)
	l.Info(ctx, event, attrs...)
}

func (l *Logger) EventWithLatency(ctx context.Context, event, status string, latency time.Duration, attrs ...any) {
	attrs = append([]any{"latency_ms", latency.Milliseconds()}, attrs...)
	l.Event(ctx, event, status, attrs...)
}

func StartTimer() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
