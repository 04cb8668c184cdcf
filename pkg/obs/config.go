package obs

import (
	"time"
)

type Config struct {
	ServiceName        string            `env:"SERVICE_NAME" envDefault:"kafkasink"`
	ServiceVersion     string            `env:"SERVICE_VERSION" envDefault:"dev"`
	Environment        string            `env:"ENV" envDefault:"development"`
	OTLPEndpoint       string            `env:"OTLP_ENDPOINT" envDefault:""`
	OTLPInsecure       bool              `env:"OTLP_INSECURE" envDefault:"false"`
	OTLPTimeout        time.Duration     `env:"OTLP_TIMEOUT" envDefault:"30s"`
	TracingSampleRatio float64           `env:"TRACING_SAMPLE_RATIO" envDefault:"1.0"`
	MetricsEnabled     bool              `env:"METRICS_ENABLED" envDefault:"true"`
	MetricsPath        string            `env:"METRICS_PATH" envDefault:"/metrics"`
	MetricsPort        int               `env:"METRICS_PORT" envDefault:"9090"`
	LogLevel           string            `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty          bool              `env:"LOG_PRETTY" envDefault:"false"`
	// LogRedactSecrets masks producer credentials (SASL, SSL, JAAS) in log attributes.
	LogRedactSecrets bool `env:"LOG_REDACT_SECRETS" envDefault:"true"`
	// LogHashSecrets replaces masked values by a short digest so equal secrets stay comparable.
	LogHashSecrets     bool              `env:"LOG_HASH_SECRETS" envDefault:"false"`
	ResourceAttributes map[string]string `env:"RESOURCE_ATTRIBUTES"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:        "kafkasink",
		ServiceVersion:     "dev",
		Environment:        "development",
		OTLPTimeout:        30 * time.Second,
		TracingSampleRatio: 1.0,
		MetricsEnabled:     true,
		MetricsPath:        "/metrics",
		MetricsPort:        9090,
		LogLevel:           "info",
		LogRedactSecrets:   true,
		ResourceAttributes: make(map[string]string),
	}
}

func (c Config) Validate() error {
	if c.ServiceName == "" {
		return ErrInvalidServiceName
	}
	if c.TracingSampleRatio < 0 || c.TracingSampleRatio > 1 {
		return ErrInvalidSampleRatio
	}
	if c.MetricsPort <= 0 || c.MetricsPort > 65535 {
		return ErrInvalidMetricsPort
	}
	if _, ok := logLevels[c.levelName()]; !ok {
		return ErrInvalidLogLevel
	}
	return nil
}
