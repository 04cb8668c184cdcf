package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

var (
	ErrNoBrokers       = errors.New("config: no brokers configured")
	ErrInvalidProperty = errors.New("config: invalid producer property")
)

// Producer property names understood by NewWriter. Where two names are listed,
// the legacy producer name and the current one are both accepted, legacy first.
var (
	brokerKeys      = []string{"metadata.broker.list", "bootstrap.servers", "brokers"}
	acksKeys        = []string{"request.required.acks", "acks"}
	compressionKeys = []string{"compression.codec", "compression.type"}
	batchSizeKeys   = []string{"batch.num.messages", "batch.size"}
	lingerKeys      = []string{"queue.buffering.max.ms", "linger.ms"}
	retriesKeys     = []string{"message.send.max.retries", "retries"}
)

const (
	keyRequestTimeout = "request.timeout.ms"
	keyProducerType   = "producer.type"
	keyClientID       = "client.id"
	keyAutoCreate     = "allow.auto.create.topics"
)

// Brokers returns the broker addresses named by the properties.
func (p Properties) Brokers() []string {
	raw, _ := p.lookup(brokerKeys...)
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func (p Properties) lookup(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := p[k]; ok {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// NewWriter builds the kafka-go producer for the given properties. The writer
// has no fixed topic; every message carries its own.
func NewWriter(p Properties) (*kafka.Writer, error) {
	brokers := p.Brokers()
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}

	if v, ok := p.lookup(acksKeys...); ok {
		acks, err := parseAcks(v)
		if err != nil {
			return nil, err
		}
		w.RequiredAcks = acks
	}

	if v, ok := p.lookup(compressionKeys...); ok {
		codec, err := parseCompression(v)
		if err != nil {
			return nil, err
		}
		w.Compression = codec
	}

	if v, ok := p.lookup(batchSizeKeys...); ok {
		n, err := parsePositiveInt("batch size", v)
		if err != nil {
			return nil, err
		}
		w.BatchSize = n
	}

	if v, ok := p.lookup(lingerKeys...); ok {
		d, err := parseMillis("linger", v)
		if err != nil {
			return nil, err
		}
		w.BatchTimeout = d
	}

	if v, ok := p.lookup(keyRequestTimeout); ok {
		d, err := parseMillis(keyRequestTimeout, v)
		if err != nil {
			return nil, err
		}
		w.WriteTimeout = d
	}

	if v, ok := p.lookup(retriesKeys...); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: retries %q", ErrInvalidProperty, v)
		}
		// MaxAttempts counts the first attempt.
		w.MaxAttempts = n + 1
	}

	if v, ok := p.lookup(keyProducerType); ok {
		switch strings.ToLower(v) {
		case "sync":
			w.Async = false
		case "async":
			w.Async = true
		default:
			return nil, fmt.Errorf("%w: %s %q", ErrInvalidProperty, keyProducerType, v)
		}
	}

	if v, ok := p.lookup(keyAutoCreate); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q", ErrInvalidProperty, keyAutoCreate, v)
		}
		w.AllowAutoTopicCreation = b
	}

	if v, ok := p.lookup(keyClientID); ok && v != "" {
		w.Transport = &kafka.Transport{ClientID: v}
	}

	return w, nil
}

func parseAcks(v string) (kafka.RequiredAcks, error) {
	switch strings.ToLower(v) {
	case "0":
		return kafka.RequireNone, nil
	case "1":
		return kafka.RequireOne, nil
	case "-1", "all":
		return kafka.RequireAll, nil
	}
	return 0, fmt.Errorf("%w: acks %q", ErrInvalidProperty, v)
}

func parseCompression(v string) (kafka.Compression, error) {
	switch strings.ToLower(v) {
	case "", "none":
		return 0, nil
	case "gzip":
		return kafka.Gzip, nil
	case "snappy":
		return kafka.Snappy, nil
	case "lz4":
		return kafka.Lz4, nil
	case "zstd":
		return kafka.Zstd, nil
	}
	return 0, fmt.Errorf("%w: compression %q", ErrInvalidProperty, v)
}

func parsePositiveInt(name, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidProperty, name, v)
	}
	return n, nil
}

func parseMillis(name, v string) (time.Duration, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidProperty, name, v)
	}
	return time.Duration(n) * time.Millisecond, nil
}
