// Package httpx is a small retrying HTTP client for JSON admin APIs.
package httpx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"time"
)

var (
	ErrEmptyURL   = errors.New("httpx: empty URL")
	ErrInvalidURL = errors.New("httpx: invalid URL")
	ErrMaxRetries = errors.New("httpx: max retries reached")
)

type Config struct {
	Timeout        time.Duration
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
	// UserAgent defaults to "kafkasink".
	UserAgent   string
	BaseHeaders map[string]string
	RetryStatus []int
	RetryOn     func(status int, err error) bool
}

type Request struct {
	Method  string
	URL     string
	Params  map[string]string
	Headers map[string]string
	Body    []byte
}

type Response struct {
	Status  int
	Body    []byte
	Headers http.Header
	URL     string
}

type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
	DoGET(ctx context.Context, rawURL string, params, headers map[string]string) (Response, error)
}

type realClient struct {
	http  *http.Client
	cfg   Config
	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg Config) Client {
	normalizeConfig(&cfg)

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &realClient{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: tr,
		},
		cfg:   cfg,
		sleep: sleepContext,
	}
}

func NewWithHTTP(hc *http.Client, cfg Config) Client {
	if hc == nil {
		return New(cfg)
	}
	normalizeConfig(&cfg)
	return &realClient{http: hc, cfg: cfg, sleep: sleepContext}
}

func (c *realClient) DoGET(ctx context.Context, rawURL string, params, headers map[string]string) (Response, error) {
	return c.Do(ctx, Request{
		Method:  http.MethodGet,
		URL:     rawURL,
		Params:  params,
		Headers: headers,
	})
}

// Do sends r, retrying transport errors and retryable statuses with
// exponential backoff. A retryable status on the last attempt is an error.
func (c *realClient) Do(ctx context.Context, r Request) (Response, error) {
	if r.URL == "" {
		return Response{}, ErrEmptyURL
	}
	if r.Method == "" {
		r.Method = http.MethodGet
	}

	u, err := buildURL(r.URL, r.Params)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, c.backoff(attempt-1)); err != nil {
				return Response{}, err
			}
		}

		res, err := c.once(ctx, r, u)
		if err != nil {
			if ctx.Err() != nil {
				return Response{}, ctx.Err()
			}
			if !c.shouldRetry(0, err) {
				return Response{}, err
			}
			lastErr = err
			continue
		}

		if c.shouldRetry(res.Status, nil) {
			lastErr = fmt.Errorf("httpx: retryable status %d", res.Status)
			continue
		}
		return res, nil
	}

	return Response{}, fmt.Errorf("%w: %v", ErrMaxRetries, lastErr)
}

func (c *realClient) once(ctx context.Context, r Request, u string) (Response, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, u, body)
	if err != nil {
		return Response{}, fmt.Errorf("httpx: build request: %w", err)
	}
	c.setRequestHeaders(req, r.Headers)

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("httpx: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("httpx: read body: %w", err)
	}
	return Response{
		Status:  resp.StatusCode,
		Body:    data,
		Headers: resp.Header.Clone(),
		URL:     u,
	}, nil
}

func (c *realClient) setRequestHeaders(req *http.Request, customHeaders map[string]string) {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range c.cfg.BaseHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range customHeaders {
		req.Header.Set(k, v)
	}
}

func (c *realClient) shouldRetry(status int, err error) bool {
	if c.cfg.RetryOn != nil {
		return c.cfg.RetryOn(status, err)
	}
	if err != nil {
		return true
	}
	for _, s := range c.cfg.RetryStatus {
		if status == s {
			return true
		}
	}
	return false
}

// backoff doubles from BackoffInitial with up to 10% jitter, capped at BackoffMax.
func (c *realClient) backoff(attempt int) time.Duration {
	d := float64(c.cfg.BackoffInitial) * math.Pow(2, float64(attempt))
	d += d * 0.1 * rand.Float64()
	if d > float64(c.cfg.BackoffMax) {
		return c.cfg.BackoffMax
	}
	return time.Duration(d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func normalizeConfig(cfg *Config) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BackoffInitial <= 0 {
		cfg.BackoffInitial = 200 * time.Millisecond
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = 5 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "kafkasink"
	}
	if len(cfg.RetryStatus) == 0 && cfg.RetryOn == nil {
		cfg.RetryStatus = []int{http.StatusTooManyRequests}
		for code := 500; code <= 599; code++ {
			cfg.RetryStatus = append(cfg.RetryStatus, code)
		}
	}
}

func buildURL(raw string, params map[string]string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("missing scheme or host in %q", raw)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
