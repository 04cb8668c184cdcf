package obs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobal() {
	globalMu.Lock()
	globalObs = nil
	globalMu.Unlock()
}

func TestInit(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "default config", config: DefaultConfig()},
		{
			name: "custom config",
			config: Config{
				ServiceName:        "test-service",
				ServiceVersion:     "1.0.0",
				Environment:        "test",
				TracingSampleRatio: 0.5,
				MetricsEnabled:     true,
				MetricsPort:        8080,
				LogLevel:           "debug",
			},
		},
		{
			name:    "empty service name",
			config:  Config{TracingSampleRatio: 1.0, MetricsPort: 9090},
			wantErr: true,
		},
		{
			name:    "bad sample ratio",
			config:  Config{ServiceName: "test-service", TracingSampleRatio: 2.0, MetricsPort: 9090},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetGlobal()

			o, err := Init(ctx, tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, o)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.config.ServiceName, o.Config().ServiceName)
			assert.Same(t, o, Global())
			assert.NoError(t, o.Shutdown(ctx))
			assert.Nil(t, Global())
		})
	}
}

func TestInitReturnsExisting(t *testing.T) {
	ctx := context.Background()
	resetGlobal()

	first, err := Init(ctx, DefaultConfig())
	require.NoError(t, err)
	defer first.Shutdown(ctx)

	other := DefaultConfig()
	other.ServiceName = "other"
	second, err := Init(ctx, other)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestMustInit(t *testing.T) {
	ctx := context.Background()
	resetGlobal()

	o := MustInit(ctx, DefaultConfig())
	assert.NotNil(t, o)
	assert.NoError(t, o.Shutdown(ctx))

	assert.Panics(t, func() {
		MustInit(ctx, Config{})
	})
}

func TestObservabilityAccessors(t *testing.T) {
	ctx := context.Background()
	resetGlobal()

	o, err := Init(ctx, DefaultConfig())
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, o.Shutdown(ctx))
	}()

	assert.NotNil(t, o.Tracer("test-tracer"))
	assert.NotNil(t, o.Meter("test-meter"))
	assert.NotNil(t, o.Logger())
	assert.NotNil(t, o.TracingProvider())
	assert.NotNil(t, o.MetricsProvider())
	assert.NotNil(t, o.LoggingProvider())
	assert.Equal(t, DefaultConfig(), o.Config())
}

func TestGlobalTracerAndMeter(t *testing.T) {
	ctx := context.Background()
	resetGlobal()

	assert.NotNil(t, Tracer("test-tracer"))
	assert.NotNil(t, Meter("test-meter"))

	_, err := Init(ctx, DefaultConfig())
	require.NoError(t, err)

	assert.NotNil(t, Tracer("test-tracer"))
	assert.NotNil(t, Meter("test-meter"))
	assert.NoError(t, Shutdown(ctx))
}

func TestShutdown(t *testing.T) {
	ctx := context.Background()
	resetGlobal()

	assert.ErrorIs(t, Shutdown(ctx), ErrNotInitialized)

	o, err := Init(ctx, DefaultConfig())
	require.NoError(t, err)
	assert.NoError(t, o.Shutdown(ctx))
	assert.NoError(t, o.Shutdown(ctx), "second shutdown repeats the first result")

	// A cancelled caller context still gets a bounded flush.
	o, err = Init(ctx, DefaultConfig())
	require.NoError(t, err)
	cancelled, cancel := context.WithTimeout(ctx, time.Nanosecond)
	defer cancel()
	<-cancelled.Done()
	assert.NoError(t, o.Shutdown(cancelled))
}

func TestConcurrentInit(t *testing.T) {
	ctx := context.Background()
	resetGlobal()

	const n = 10
	results := make(chan *Observability, n)
	for i := 0; i < n; i++ {
		go func() {
			o, err := Init(ctx, DefaultConfig())
			assert.NoError(t, err)
			results <- o
		}()
	}

	var first *Observability
	for i := 0; i < n; i++ {
		select {
		case o := <-results:
			if first == nil {
				first = o
			}
			assert.Same(t, first, o)
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for goroutines")
		}
	}
	assert.NoError(t, first.Shutdown(ctx))
}
