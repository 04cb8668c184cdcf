package obs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLoggerDefaultAttributes(t *testing.T) {
	var buf bytes.Buffer
	config := DefaultConfig()
	config.ServiceName = "sink-test"

	NewLogger(config, &buf).Info(context.Background(), "hello", "key", "value")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "hello", lines[0]["msg"])
	assert.Equal(t, "sink-test", lines[0]["service"])
	assert.Equal(t, "development", lines[0]["env"])
	assert.Equal(t, "value", lines[0]["key"])
	assert.Contains(t, lines[0], "hostname")
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	config := DefaultConfig()
	config.LogLevel = "warn"
	logger := NewLogger(config, &buf)
	ctx := context.Background()

	logger.Debug(ctx, "debug")
	logger.Info(ctx, "info")
	logger.Warn(ctx, "warn")
	logger.Error(ctx, "error", errors.New("boom"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "warn", lines[0]["msg"])
	assert.Equal(t, "error", lines[1]["msg"])
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestLoggerContextCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(DefaultConfig(), &buf)

	ctx := WithTopic(context.Background(), "eu-west")
	ctx = WithEventID(ctx, "evt-1")
	ctx = WithChannel(ctx, "c1")
	ctx = WithTopic(ctx, "")

	logger.Info(ctx, "sent")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "eu-west", lines[0]["topic"])
	assert.Equal(t, "evt-1", lines[0]["event_id"])
	assert.Equal(t, "c1", lines[0]["channel"])
	assert.NotContains(t, lines[0], "trace_id")
}

func TestLoggerRedactsSecrets(t *testing.T) {
	tests := []struct {
		name   string
		hash   bool
		prefix string
	}{
		{name: "plain mask", prefix: "[REDACTED]"},
		{name: "hashed mask", hash: true, prefix: "[REDACTED:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			config := DefaultConfig()
			config.LogHashSecrets = tt.hash
			logger := NewLogger(config, &buf)

			logger.Info(context.Background(), "connecting with password=hunter2",
				"sasl.password", "hunter2",
				"sasl.jaas.config", "org.apache.kafka.common.security.plain.PlainLoginModule",
				"brokers", "a:9092",
			)

			lines := decodeLines(t, &buf)
			require.Len(t, lines, 1)
			assert.NotContains(t, buf.String(), "hunter2")
			assert.True(t, strings.HasPrefix(lines[0]["sasl.password"].(string), tt.prefix))
			assert.True(t, strings.HasPrefix(lines[0]["sasl.jaas.config"].(string), tt.prefix))
			assert.Equal(t, "a:9092", lines[0]["brokers"])
		})
	}
}

func TestLoggerRedactionDisabled(t *testing.T) {
	var buf bytes.Buffer
	config := DefaultConfig()
	config.LogRedactSecrets = false

	NewLogger(config, &buf).Info(context.Background(), "m", "sasl.password", "hunter2")

	assert.Contains(t, buf.String(), "hunter2")
}

func TestLoggerEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(DefaultConfig(), &buf)

	logger.EventWithLatency(context.Background(), "batch_written", StatusOK, 1500*time.Millisecond, "count", 3)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "batch_written", lines[0]["event"])
	assert.Equal(t, StatusOK, lines[0]["status"])
	assert.Equal(t, float64(1500), lines[0]["latency_ms"])
	assert.Equal(t, float64(3), lines[0]["count"])
}

func TestLoggerPretty(t *testing.T) {
	var buf bytes.Buffer
	config := DefaultConfig()
	config.LogPretty = true

	NewLogger(config, &buf).Info(context.Background(), "pretty", "key", "value")

	assert.Contains(t, buf.String(), "msg=pretty")
	assert.Contains(t, buf.String(), "key=value")
}

func TestStartTimer(t *testing.T) {
	elapsed := StartTimer()
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, elapsed(), 5*time.Millisecond)
}

func TestGlobalLoggingFunctions(t *testing.T) {
	ctx := context.Background()

	globalMu.Lock()
	globalObs = nil
	globalMu.Unlock()

	// No-ops before Init.
	Debug(ctx, "debug message", "key", "value")
	Info(ctx, "info message", "key", "value")
	Warn(ctx, "warn message", "key", "value")
	Error(ctx, "error message", errors.New("test error"), "key", "value")
	Event(ctx, "test_event", StatusOK, "key", "value")

	config := DefaultConfig()
	config.LogLevel = "debug"
	o, err := Init(ctx, config)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, o.Shutdown(ctx))
	}()

	spanCtx, span := o.Tracer("test-tracer").Start(ctx, "test-span")
	defer span.End()

	Debug(spanCtx, "debug with trace", "key", "value")
	Info(spanCtx, "info with trace", "key", "value")
	Warn(spanCtx, "warn with trace", "key", "value")
	Error(spanCtx, "error with trace", errors.New("test error"), "key", "value")
	Event(spanCtx, "traced_event", StatusOK, "key", "value")
}
