package sink

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Instruments creates the metric instruments a Counter publishes.
// *obs.MetricsProvider satisfies it.
type Instruments interface {
	Counter(name, description, unit string) (metric.Int64Counter, error)
	Gauge(name, description, unit string, fn func() float64) (metric.Float64ObservableGauge, error)
}

// Counter tracks delivered and failed messages and the resulting throughput.
type Counter struct {
	sent   atomic.Int64
	failed atomic.Int64

	now   func() time.Time
	start time.Time

	mu         sync.Mutex
	second     int64
	inSecond   int64
	lastSecond int64

	sentMetric   metric.Int64Counter
	failedMetric metric.Int64Counter
}

func NewCounter() *Counter {
	return newCounter(time.Now)
}

func newCounter(now func() time.Time) *Counter {
	start := now()
	return &Counter{now: now, start: start, second: start.Unix()}
}

// Register publishes the counter through ins.
func (c *Counter) Register(ins Instruments) error {
	var err error
	if c.sentMetric, err = ins.Counter("kafkasink_messages_sent_total", "Messages written to Kafka", "1"); err != nil {
		return err
	}
	if c.failedMetric, err = ins.Counter("kafkasink_send_errors_total", "Messages whose write failed", "1"); err != nil {
		return err
	}
	if _, err = ins.Gauge("kafkasink_throughput_current", "Messages sent during the last full second", "1",
		func() float64 { return float64(c.CurrentThroughput()) }); err != nil {
		return err
	}
	if _, err = ins.Gauge("kafkasink_throughput_average", "Messages sent per second since start", "1",
		func() float64 { return float64(c.AverageThroughput()) }); err != nil {
		return err
	}
	return nil
}

func (c *Counter) IncreaseSent(ctx context.Context, n int) {
	if n <= 0 {
		return
	}
	c.sent.Add(int64(n))
	if c.sentMetric != nil {
		c.sentMetric.Add(ctx, int64(n))
	}

	sec := c.now().Unix()
	c.mu.Lock()
	switch {
	case sec == c.second:
		c.inSecond += int64(n)
	case sec == c.second+1:
		c.lastSecond, c.inSecond, c.second = c.inSecond, int64(n), sec
	case sec > c.second:
		c.lastSecond, c.inSecond, c.second = 0, int64(n), sec
	default:
		// Clock stepped back; count it in the current second.
		c.inSecond += int64(n)
	}
	c.mu.Unlock()
}

func (c *Counter) IncreaseErrors(ctx context.Context, n int) {
	if n <= 0 {
		return
	}
	c.failed.Add(int64(n))
	if c.failedMetric != nil {
		c.failedMetric.Add(ctx, int64(n))
	}
}

func (c *Counter) MessagesSent() int64 {
	return c.sent.Load()
}

func (c *Counter) SendErrors() int64 {
	return c.failed.Load()
}

// CurrentThroughput returns the number of messages sent during the last full second.
func (c *Counter) CurrentThroughput() int64 {
	sec := c.now().Unix()
	c.mu.Lock()
	defer c.mu.Unlock()
	switch sec {
	case c.second:
		return c.lastSecond
	case c.second + 1:
		return c.inSecond
	}
	return 0
}

// AverageThroughput returns messages per second since the counter was created.
func (c *Counter) AverageThroughput() int64 {
	elapsed := c.now().Sub(c.start)
	if elapsed < time.Second {
		elapsed = time.Second
	}
	return int64(float64(c.sent.Load()) / elapsed.Seconds())
}
