package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducerProperties(t *testing.T) {
	ctx := Context{
		"type":         "kafka",
		"channel":      "c1",
		"defaultTopic": "d",
		"dynamicTopic": "p",
		"brokers":      "a:9092",
		"acks":         "1",
	}

	props := ProducerProperties(ctx)

	assert.Equal(t, Properties{"brokers": "a:9092", "acks": "1"}, props)
	assert.Equal(t, []string{"acks", "brokers"}, props.Keys())
}

func TestProducerPropertiesEmpty(t *testing.T) {
	props := ProducerProperties(nil)
	assert.NotNil(t, props)
	assert.Empty(t, props)

	props = ProducerProperties(Context{"type": "kafka", "channel": "c1"})
	assert.Empty(t, props)
}

func TestProducerPropertiesKeepsValuesVerbatim(t *testing.T) {
	ctx := Context{"serializer.class": " kafka.serializer.DefaultEncoder ", "Type": "kept"}
	props := ProducerProperties(ctx)

	assert.Equal(t, " kafka.serializer.DefaultEncoder ", props["serializer.class"])
	assert.Equal(t, "kept", props["Type"], "reserved keys are case sensitive")
}

func TestIsReserved(t *testing.T) {
	for _, k := range []string{KeyType, KeyChannel, KeyDefaultTopic, KeyDynamicTopic} {
		assert.True(t, IsReserved(k), k)
	}
	assert.False(t, IsReserved("brokers"))
	assert.False(t, IsReserved("defaulttopic"))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		ctx     Context
		want    SinkConfig
		wantErr bool
	}{
		{
			name: "default and dynamic topic",
			ctx: Context{
				"type":         "kafka",
				"defaultTopic": "events-default",
				"dynamicTopic": "region-dc",
				"brokers":      "a:9092",
			},
			want: SinkConfig{
				DefaultTopic: "events-default",
				DynamicTopic: "region-dc",
				Producer:     Properties{"brokers": "a:9092"},
			},
		},
		{
			name: "no dynamic topic",
			ctx:  Context{"defaultTopic": " logs "},
			want: SinkConfig{
				DefaultTopic: "logs",
				Producer:     Properties{},
			},
		},
		{
			name:    "missing default topic",
			ctx:     Context{"dynamicTopic": "region"},
			wantErr: true,
		},
		{
			name:    "blank default topic",
			ctx:     Context{"defaultTopic": "   "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.ctx)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
