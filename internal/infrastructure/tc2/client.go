package tc2

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hermes/backend/internal/domain/shared"
	"github.com/hermes/backend/internal/infrastructure/config"
	"github.com/hermes/backend/internal/infrastructure/ratelimit"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const maxResponseSize = 10 * 1024 * 1024

// Client talks to the TC2 REST API using token authentication.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	tracer     trace.Tracer
	logger     *zap.Logger
}

// NewClient creates a TC2 API client.
func NewClient(cfg *config.TC2Config, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    ratelimit.New(cfg.RateLimit, cfg.RateWindow),
		tracer:     otel.Tracer("tc2"),
		logger:     logger,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	ctx, span := c.tracer.Start(ctx, "tc2 "+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
		),
	)
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding tc2 request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "token "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("tc2 %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("reading tc2 response: %w", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return shared.ErrNotFound
	case resp.StatusCode >= 400:
		span.SetStatus(codes.Error, resp.Status)
		return fmt.Errorf("tc2 %s %s: unexpected status %d: %s",
			method, path, resp.StatusCode, truncate(data, 200))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding tc2 response: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// GetCligency fetches one client record.
func (c *Client) GetCligency(ctx context.Context, cligencyID int64) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/clients/%d/", cligencyID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchClient is GetCligency under the name the invoice event flow uses.
func (c *Client) FetchClient(ctx context.Context, cligencyID int64) (map[string]any, error) {
	return c.GetCligency(ctx, cligencyID)
}

// UpdateCligency posts a partial update for one client record. TC2 upserts
// on the embedded id, so the payload must not carry fields that should stay
// untouched.
func (c *Client) UpdateCligency(ctx context.Context, cligencyID int64, payload map[string]any) error {
	body := map[string]any{"id": cligencyID}
	for k, v := range payload {
		body[k] = v
	}
	return c.do(ctx, http.MethodPost, "/api/clients/", body, nil)
}
