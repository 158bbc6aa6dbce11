// Package external holds the HTTP plumbing shared by the provider clients:
// request pacing, tracing transport, status checking and JSON decoding.
package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/go-walking-tours/app/observability/metrics"
)

// ErrUnexpectedStatus is wrapped by every non-2xx provider response.
var ErrUnexpectedStatus = errors.New("unexpected status code")

const maxErrorBody = 512

type Options struct {
	// Name labels metrics and log lines, e.g. "overpass".
	Name      string
	Timeout   time.Duration
	UserAgent string
	// Interval is the minimum spacing between requests. Zero disables pacing.
	Interval time.Duration
	// HTTPClient overrides the default traced client, mostly for tests.
	HTTPClient *http.Client
}

type Client struct {
	name      string
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.Interval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.Interval), 1)
	}
	return &Client{
		name:      opts.Name,
		http:      httpClient,
		limiter:   limiter,
		userAgent: opts.UserAgent,
		logger:    logger.With(slog.String("provider", opts.Name)),
	}
}

// GetJSON issues a GET and decodes a 2xx JSON body into dst.
func (c *Client) GetJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", c.name, err)
	}
	return c.Do(req, dst)
}

// PostJSON encodes body as JSON, POSTs it and decodes a 2xx JSON reply into dst.
func (c *Client) PostJSON(ctx context.Context, url string, body, dst any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", c.name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", c.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.Do(req, dst)
}

// Do waits for the limiter, sends req and decodes the response into dst.
// A nil dst discards the body.
func (c *Client) Do(req *http.Request, dst any) error {
	ctx := req.Context()
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limiter: %w", c.name, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("provider", c.name))
	start := time.Now()
	err := c.do(req, dst)
	m.ExternalCallSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		m.ExternalCallErrorsTotal.Add(ctx, 1, attrs)
		c.logger.DebugContext(ctx, "Provider call failed", slog.String("url", req.URL.Redacted()), slog.Any("error", err))
	}
	return err
}

func (c *Client) do(req *http.Request, dst any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%s: %w %d: %s", c.name, ErrUnexpectedStatus, resp.StatusCode, bytes.TrimSpace(body))
	}
	if dst == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.name, err)
	}
	return nil
}
