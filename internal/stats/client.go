package stats

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/prohmpiriya/explore-events/pkg/retry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HTTPClient implements HitRecorder and ViewCounter over the collector's HTTP API
type HTTPClient struct {
	baseURL    string
	policy     retry.Policy
	httpClient *http.Client
}

// NewHTTPClient creates a client for the collector at baseURL. Calls are
// bounded only by the caller's context. Transport failures and 5xx
// responses are retried according to policy; see RetryPolicy.
func NewHTTPClient(baseURL string, policy retry.Policy) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		policy:  policy,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// RetryPolicy returns the backoff used for collector calls. Zero maxRetries
// makes every call a single attempt whose failure propagates.
func RetryPolicy(maxRetries int) retry.Policy {
	policy := retry.DefaultPolicy()
	policy.MaxRetries = maxRetries
	return policy
}

// RecordHit posts one hit to /hit
func (c *HTTPClient) RecordHit(ctx context.Context, hit Hit) error {
	body, err := json.Marshal(toWireHit(hit))
	if err != nil {
		return fmt.Errorf("failed to encode hit: %w", err)
	}

	return retry.Do(ctx, c.policy, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to record hit: %w", err)
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
			return statusError("record hit", resp.StatusCode)
		}
		return nil
	})
}

// Views queries /stats for the hit counts of uris within [start, end]
func (c *HTTPClient) Views(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]ViewStats, error) {
	q := url.Values{}
	q.Set("start", start.Format(TimeLayout))
	q.Set("end", end.Format(TimeLayout))
	for _, uri := range uris {
		q.Add("uris", uri)
	}
	q.Set("unique", strconv.FormatBool(unique))

	var stats []ViewStats
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+q.Encode(), nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch view stats: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return statusError("fetch view stats", resp.StatusCode)
		}

		stats = nil
		if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
			return retry.Permanent(fmt.Errorf("failed to decode view stats: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// statusError reports an unexpected status. Only server errors are retried.
func statusError(op string, code int) error {
	err := fmt.Errorf("%s: unexpected status code: %d", op, code)
	if code >= http.StatusInternalServerError {
		return err
	}
	return retry.Permanent(err)
}
