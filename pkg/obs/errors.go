package obs

import "errors"

var (
	ErrInvalidServiceName = errors.New("obs: service name cannot be empty")
	ErrInvalidSampleRatio = errors.New("obs: tracing sample ratio must be between 0 and 1")
	ErrInvalidMetricsPort = errors.New("obs: metrics port must be between 1 and 65535")
	ErrInvalidLogLevel    = errors.New("obs: log level must be one of debug, info, warn, error")
	ErrNotInitialized     = errors.New("obs: observability not initialized")
	ErrTracingInitFailed  = errors.New("obs: failed to initialize tracing")
	ErrMetricsInitFailed  = errors.New("obs: failed to initialize metrics")
	ErrLoggingInitFailed  = errors.New("obs: failed to initialize logging")
	ErrShutdownFailed     = errors.New("obs: shutdown failed")
)
