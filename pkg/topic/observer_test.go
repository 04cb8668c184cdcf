package topic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/quiby-ai/kafkasink/pkg/obs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	config := obs.DefaultConfig()
	config.LogLevel = "debug"
	observer := LogObserver{Logger: obs.NewLogger(config, &buf)}
	ctx := context.Background()

	observer.OnResolved(ctx, "eu-west")
	observer.OnFallback(ctx, FallbackEvent{Reason: ReasonPatternAbsent, DefaultTopic: defaultTopic})
	observer.OnFallback(ctx, FallbackEvent{Reason: ReasonKeyMissing, DefaultTopic: defaultTopic, Pattern: "region-dc", MissingKey: "dc"})
	observer.OnFallback(ctx, FallbackEvent{Reason: ReasonBodyCorrupt, DefaultTopic: defaultTopic, Err: errors.New("bad json")})
	observer.OnFallback(ctx, FallbackEvent{Reason: ReasonTopicMissing, DefaultTopic: defaultTopic, Candidate: "eu-west"})
	observer.OnFallback(ctx, FallbackEvent{Reason: ReasonLookupFailed, DefaultTopic: defaultTopic, Candidate: "eu-west", Err: errors.New("timeout")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)

	var entries []map[string]any
	for _, line := range lines {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		entries = append(entries, m)
	}

	assert.Equal(t, "eu-west", entries[0]["topic"])
	assert.Equal(t, "DEBUG", entries[1]["level"])
	assert.Equal(t, "dc", entries[2]["key"])
	assert.Equal(t, "WARN", entries[3]["level"])
	assert.Equal(t, "bad json", entries[3]["error"])
	assert.Equal(t, "eu-west", entries[4]["candidate"])
	assert.Equal(t, string(ReasonLookupFailed), entries[5]["reason"])
	assert.Equal(t, obs.StatusOK, entries[0]["status"])
	assert.Equal(t, obs.ErrKindCorrupt, entries[3]["error_kind"])
	assert.Nil(t, entries[4]["error_kind"])
	assert.Equal(t, obs.ErrKindRegistry, entries[5]["error_kind"])
	for _, e := range entries[1:] {
		assert.Equal(t, defaultTopic, e["topic"])
		assert.Equal(t, obs.StatusFallback, e["status"])
	}
}

func TestMetricsObserver(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(ctx)

	m, err := NewMetricsObserver(provider.Meter("test"))
	require.NoError(t, err)

	r, err := NewResolver(NewStaticRegistry("eu-west"), WithObserver(Observers{m, NopObserver{}}))
	require.NoError(t, err)

	pattern := ParsePattern("region-dc")
	r.Resolve(ctx, pattern, defaultTopic, body(t, map[string]string{"region": "eu", "dc": "west"}))
	r.Resolve(ctx, pattern, defaultTopic, body(t, map[string]string{"region": "us", "dc": "east"}))
	r.Resolve(ctx, pattern, defaultTopic, body(t, map[string]string{"region": "us", "dc": "east"}))
	r.Resolve(ctx, pattern, defaultTopic, []byte("corrupt"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)

	sum, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	require.True(t, ok)

	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
		reason, _ := dp.Attributes.Value(attribute.Key("reason"))
		counts[outcome.AsString()+"/"+reason.AsString()] = dp.Value
	}

	assert.Equal(t, map[string]int64{
		"dynamic/":              1,
		"default/topic_missing": 2,
		"default/body_corrupt":  1,
	}, counts)
}
