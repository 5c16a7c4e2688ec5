package pipedrive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
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

// maxResponseSize is the maximum allowed response size from the Pipedrive
// API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// maxRetries429 is how many times a rate-limited request is retried before
// giving up. Waits grow linearly: 2s, 4s, 6s.
const maxRetries429 = 3

const retryBackoffStep = 2 * time.Second

// Client talks to the Pipedrive REST API. All calls go through a shared
// blocking rate limiter, and 429 responses are retried with a linear
// backoff.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	tracer     trace.Tracer
	logger     *zap.Logger

	// sleep is swappable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Pipedrive API client.
func NewClient(cfg *config.PipedriveConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiToken:   cfg.APIToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    ratelimit.New(cfg.RateLimit, cfg.RateWindow),
		tracer:     otel.Tracer("pipedrive"),
		logger:     logger,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// apiResponse is the envelope every Pipedrive endpoint wraps its payload in.
type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	ctx, span := c.tracer.Start(ctx, "pipedrive "+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
		),
	)
	defer span.End()

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encoding pipedrive request: %w", err)
		}
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("api_token", c.apiToken)
	endpoint := c.baseURL + path + "?" + query.Encode()

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("pipedrive %s %s: %w", method, path, err)
		}

		data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading pipedrive response: %w", readErr)
		}

		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			if attempt >= maxRetries429 {
				span.SetStatus(codes.Error, "rate limited")
				return fmt.Errorf("pipedrive %s %s: rate limited after %d retries", method, path, maxRetries429)
			}
			wait := retryBackoffStep * time.Duration(attempt+1)
			c.logger.Warn("pipedrive rate limited, backing off",
				zap.String("path", path),
				zap.Duration("wait", wait),
				zap.Int("attempt", attempt+1),
			)
			if err := c.sleep(ctx, wait); err != nil {
				return err
			}
			continue

		case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
			return shared.ErrNotFound

		case resp.StatusCode >= 400:
			span.SetStatus(codes.Error, resp.Status)
			return fmt.Errorf("pipedrive %s %s: unexpected status %d: %s",
				method, path, resp.StatusCode, truncate(data, 200))
		}

		if out == nil {
			return nil
		}
		var envelope apiResponse
		if err := json.Unmarshal(data, &envelope); err != nil {
			return fmt.Errorf("decoding pipedrive response: %w", err)
		}
		if envelope.Data == nil || string(envelope.Data) == "null" {
			return shared.ErrNotFound
		}
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decoding pipedrive payload: %w", err)
		}
		return nil
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// idHolder extracts the numeric id from a returned object.
type idHolder struct {
	ID int64 `json:"id"`
}

// GetOrganization fetches one organization.
func (c *Client) GetOrganization(ctx context.Context, pdOrgID int64) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/organizations/%d", pdOrgID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateOrganization creates an organization and returns its ID.
func (c *Client) CreateOrganization(ctx context.Context, payload map[string]any) (int64, error) {
	var out idHolder
	if err := c.do(ctx, http.MethodPost, "/organizations", nil, payload, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// UpdateOrganization updates an organization.
func (c *Client) UpdateOrganization(ctx context.Context, pdOrgID int64, payload map[string]any) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/organizations/%d", pdOrgID), nil, payload, &map[string]any{})
}

// searchResult is the shape of /search endpoints.
type searchResult struct {
	Items []struct {
		Item idHolder `json:"item"`
	} `json:"items"`
}

// SearchOrganizationByCligencyID looks for an organization already carrying
// the given TC2 cligency ID in any custom field.
func (c *Client) SearchOrganizationByCligencyID(ctx context.Context, cligencyID int64) (int64, bool, error) {
	query := url.Values{}
	query.Set("term", strconv.FormatInt(cligencyID, 10))
	query.Set("fields", "custom_fields")
	query.Set("exact_match", "true")

	var out searchResult
	err := c.do(ctx, http.MethodGet, "/organizations/search", query, nil, &out)
	if err != nil {
		if err == shared.ErrNotFound {
			return 0, false, nil
		}
		return 0, false, err
	}
	if len(out.Items) == 0 {
		return 0, false, nil
	}
	return out.Items[0].Item.ID, true, nil
}

// GetPerson fetches one person.
func (c *Client) GetPerson(ctx context.Context, pdPersonID int64) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/persons/%d", pdPersonID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePerson creates a person and returns its ID.
func (c *Client) CreatePerson(ctx context.Context, payload map[string]any) (int64, error) {
	var out idHolder
	if err := c.do(ctx, http.MethodPost, "/persons", nil, payload, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// UpdatePerson updates a person.
func (c *Client) UpdatePerson(ctx context.Context, pdPersonID int64, payload map[string]any) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/persons/%d", pdPersonID), nil, payload, &map[string]any{})
}

// GetDeal fetches one deal.
func (c *Client) GetDeal(ctx context.Context, pdDealID int64) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/deals/%d", pdDealID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateDeal creates a deal and returns its ID.
func (c *Client) CreateDeal(ctx context.Context, payload map[string]any) (int64, error) {
	var out idHolder
	if err := c.do(ctx, http.MethodPost, "/deals", nil, payload, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// UpdateDeal updates a deal.
func (c *Client) UpdateDeal(ctx context.Context, pdDealID int64, payload map[string]any) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/deals/%d", pdDealID), nil, payload, &map[string]any{})
}
