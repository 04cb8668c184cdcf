// Command kafkasink reads newline-delimited events from stdin and writes them
// to Kafka, routing each one to the topic named by its extra data.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/quiby-ai/kafkasink/pkg/config"
	"github.com/quiby-ai/kafkasink/pkg/obs"
)

// Options are the command line flags, also settable from the environment.
type Options struct {
	Config   string        `long:"config" env:"KAFKASINK_CONFIG" required:"true" description:"Path to the YAML sink context"`
	Registry string        `long:"registry" env:"KAFKASINK_REGISTRY" default:"kafka" choice:"kafka" choice:"etcd" choice:"rest" choice:"static" description:"Where provisioned topics are looked up"`
	Batch    int           `long:"batch" env:"KAFKASINK_BATCH" default:"100" description:"Maximum events per producer write"`
	Linger   time.Duration `long:"linger" env:"KAFKASINK_LINGER" default:"1s" description:"Maximum time a partial batch waits for more events"`

	Kafka struct {
		Timeout time.Duration `long:"timeout" env:"TIMEOUT" default:"10s" description:"Metadata request timeout"`
	} `group:"Kafka" namespace:"kafka" env-namespace:"KAFKASINK_KAFKA"`

	Etcd struct {
		Address string        `long:"address" env:"ADDRESS" default:"http://localhost:2379" description:"Etcd service address endpoint"`
		Prefix  string        `long:"prefix" env:"PREFIX" default:"/config/topics/" description:"Key prefix of topic configuration nodes"`
		Timeout time.Duration `long:"timeout" env:"TIMEOUT" default:"5s" description:"Etcd dial timeout"`
	} `group:"Etcd" namespace:"etcd" env-namespace:"KAFKASINK_ETCD"`

	REST struct {
		URL        string `long:"url" env:"URL" default:"http://localhost:8082" description:"Kafka REST Proxy base URL"`
		MaxRetries int    `long:"max-retries" env:"MAX_RETRIES" default:"2" description:"Retries of a failed topic lookup"`
	} `group:"REST Proxy" namespace:"rest" env-namespace:"KAFKASINK_REST"`

	Static struct {
		Topics []string `long:"topics" env:"TOPICS" env-delim:"," description:"Provisioned topics"`
	} `group:"Static" namespace:"static" env-namespace:"KAFKASINK_STATIC"`

	Metrics struct {
		Port int    `long:"port" env:"PORT" default:"9090" description:"Port serving Prometheus metrics"`
		Path string `long:"path" env:"PATH" default:"/metrics" description:"Metrics HTTP path"`
	} `group:"Metrics" namespace:"metrics" env-namespace:"KAFKASINK_METRICS"`

	Log struct {
		Level  string `long:"level" env:"LEVEL" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"Logging level"`
		Pretty bool   `long:"pretty" env:"PRETTY" description:"Human readable log output"`
	} `group:"Logging" namespace:"log" env-namespace:"KAFKASINK_LOG"`

	OTLP struct {
		Endpoint string `long:"endpoint" env:"ENDPOINT" description:"OTLP/HTTP trace collector; tracing is local only when empty"`
		Insecure bool   `long:"insecure" env:"INSECURE" description:"Disable TLS to the collector"`
	} `group:"Tracing" namespace:"otlp" env-namespace:"KAFKASINK_OTLP"`
}

func (o *Options) obsConfig() obs.Config {
	c := obs.DefaultConfig()
	c.LogLevel = o.Log.Level
	c.LogPretty = o.Log.Pretty
	c.MetricsPort = o.Metrics.Port
	c.MetricsPath = o.Metrics.Path
	c.OTLPEndpoint = o.OTLP.Endpoint
	c.OTLPInsecure = o.OTLP.Insecure
	return c
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	parser.LongDescription = `kafkasink writes one event per stdin line to Kafka.

	Each event goes to the topic built from the sink's dynamicTopic pattern and
	the event's extra data, or to defaultTopic when that topic is not provisioned.`

	if _, err := parser.Parse(); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &opts); err != nil {
		fmt.Fprintf(os.Stderr, "kafkasink: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *Options) error {
	o, err := obs.Init(ctx, opts.obsConfig())
	if err != nil {
		return err
	}
	defer o.Shutdown(ctx)
	logger := o.Logger()

	sinkCtx, err := loadContext(opts.Config)
	if err != nil {
		return err
	}
	cfg, err := config.Parse(sinkCtx)
	if err != nil {
		return err
	}
	ctx = obs.WithChannel(ctx, sinkCtx[config.KeyChannel])

	app, err := newApp(ctx, opts, cfg, o)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Metrics.Port),
		Handler:           metricsMux(opts.Metrics.Path, o.MetricsProvider().HTTPHandler()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "metrics server stopped", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info(ctx, "sink started",
		"default_topic", cfg.DefaultTopic,
		"dynamic_topic", cfg.DynamicTopic,
		"registry", opts.Registry,
		"producer", cfg.Producer.Keys(),
	)

	err = pump(ctx, os.Stdin, opts.Batch, opts.Linger, app.sink.Process)

	c := app.sink.Counter()
	logger.Info(ctx, "sink stopped",
		"sent", c.MessagesSent(),
		"errors", c.SendErrors(),
		"avg_per_sec", c.AverageThroughput(),
	)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func metricsMux(path string, h http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(path, h)
	return mux
}
