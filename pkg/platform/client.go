// Package platform is the HTTP client for the remote coding platform: problem store, judge and
// assistant endpoints.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultSessionCookie = "token"

var (
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "codecraft",
		Subsystem: "platform",
		Name:      "request_duration_seconds",
		Help:      "Duration of requests issued to the coding platform",
	}, []string{"operation"})

	requestFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codecraft",
		Subsystem: "platform",
		Name:      "request_failures_total",
		Help:      "Number of failed requests issued to the coding platform",
	}, []string{"operation"})
)

// Config describes how to reach the platform.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	SessionCookie string
	HTTPClient    *http.Client
	Logger        zerolog.Logger
}

// Client talks to the platform REST API. A Client is safe for concurrent use.
type Client struct {
	baseURL    string
	cookieName string
	token      string
	http       *http.Client
	schema     *jsonschema.Schema
	tracer     trace.Tracer
	logger     zerolog.Logger
}

// New builds a platform client without session credentials.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("platform base url is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	cookieName := strings.TrimSpace(cfg.SessionCookie)
	if cookieName == "" {
		cookieName = defaultSessionCookie
	}

	schema, err := compileProblemSchema()
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &Client{
		baseURL:    base,
		cookieName: cookieName,
		http:       httpClient,
		schema:     schema,
		tracer:     otel.Tracer("github.com/noah-isme/codecraft-workspace/pkg/platform"),
		logger:     logger.With().Str("component", "platform_client").Logger(),
	}, nil
}

// WithSession returns a copy of the client that authenticates as the owner of token.
func (c *Client) WithSession(token string) *Client {
	clone := *c
	clone.token = strings.TrimSpace(token)
	return &clone
}

// HasSession reports whether the client carries session credentials.
func (c *Client) HasSession() bool {
	return c.token != ""
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// do performs a JSON request and decodes the response body into out when it is non-nil.
func (c *Client) do(parent context.Context, operation, method, path string, body, out interface{}) error {
	ctx, span := c.tracer.Start(parent, "platform."+operation, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("platform.path", path),
	))
	defer span.End()

	start := time.Now()
	err := c.roundTrip(ctx, method, path, body, out)
	requestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		requestFailures.WithLabelValues(operation).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Debug().Err(err).Str("operation", operation).Str("path", path).Msg("platform request failed")
		return err
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: c.token})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(status int, raw []byte) error {
	message := strings.TrimSpace(string(raw))
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		message = env.Message
	}

	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, message)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, message)
	default:
		return &StatusError{StatusCode: status, Message: message}
	}
}

// decodeData unwraps the platform's {"data": ...} envelope.
func decodeData(env envelope, out interface{}) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("decode response: missing data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
