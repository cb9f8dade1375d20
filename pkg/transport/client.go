// Package transport provides the concrete HTTP transport for the Analytics
// API: URL construction, error classification, retry with backoff, and JSON
// decoding of result pages. It implements the query.Transport interface.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/analytics-tools/ga-reporting-client/pkg/query"
	"github.com/analytics-tools/ga-reporting-client/pkg/quota"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for transport operations.
var (
	gaRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ga_requests_total",
		Help: "Total Analytics API requests by path and status",
	}, []string{"path", "status"})

	gaRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ga_request_duration_seconds",
		Help:    "Analytics API request duration in seconds by path",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"path"})

	gaErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ga_errors_total",
		Help: "Total Analytics API errors by class",
	}, []string{"class"})
)

// DefaultBaseURL is the Core Reporting API v3 endpoint.
const DefaultBaseURL = "https://www.googleapis.com/analytics/v3"

// dataPath is the report query endpoint under the base URL.
const dataPath = "/data/ga"

// Config holds the transport configuration.
type Config struct {
	// HTTPClient performs the actual requests. Use an OAuth2-authenticated
	// client from pkg/auth. Required.
	HTTPClient *http.Client

	// BaseURL overrides the API endpoint (primarily for tests).
	BaseURL string

	// UserAgent identifies the application in requests. Required.
	UserAgent string

	// Quota gates requests against the daily request budget when set.
	Quota *quota.Tracker
}

// Client is the HTTP transport for the Analytics API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	quota      *quota.Tracker
	logger     zerolog.Logger
}

// New creates a new transport client.
func New(cfg Config) (*Client, error) {
	if cfg.HTTPClient == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: cfg.HTTPClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  cfg.UserAgent,
		quota:      cfg.Quota,
		logger:     log.With().Str("component", "ga-transport").Logger(),
	}, nil
}

// Execute performs one report query call and decodes the result page.
// It implements query.Transport.
func (c *Client) Execute(ctx context.Context, params query.Params) (*query.Page, error) {
	var page query.Page
	if err := c.GetJSON(ctx, dataPath, wireValues(params), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetJSON performs a GET request against path with the given query values
// and decodes the JSON response into out. Used by both the report transport
// and the management client.
func (c *Client) GetJSON(ctx context.Context, path string, values url.Values, out any) error {
	if c.quota != nil {
		allowed, err := c.quota.ShouldAllowRequest(ctx)
		if err != nil {
			c.logger.Error().Err(err).Msg("Quota check failed")
			return fmt.Errorf("quota check: %w", err)
		}
		if !allowed {
			c.logger.Warn().Str("path", path).Msg("Request blocked by quota tracker")
			gaRequestsTotal.WithLabelValues(path, "quota_blocked").Inc()
			return ErrQuotaExceeded
		}
	}

	requestURL := c.baseURL + path
	if len(values) > 0 {
		requestURL += "?" + values.Encode()
	}

	startTime := time.Now()
	defer func() {
		gaRequestDuration.WithLabelValues(path).Observe(time.Since(startTime).Seconds())
	}()

	var body []byte

	err := retryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, reqErr := c.httpClient.Do(req)
		if reqErr != nil {
			c.logger.Error().Err(reqErr).Str("path", path).Msg("HTTP request failed")
			gaErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			gaRequestsTotal.WithLabelValues(path, "network_error").Inc()
			return &APIError{ErrorClass: ErrorClassNetwork, Message: "request failed", Err: reqErr}
		}
		defer resp.Body.Close()

		if c.quota != nil {
			if err := c.quota.Record(ctx); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to record request against quota")
			}
		}

		gaRequestsTotal.WithLabelValues(path, fmt.Sprintf("%d", resp.StatusCode)).Inc()

		if resp.StatusCode != http.StatusOK {
			apiErr := c.errorFromResponse(resp)
			gaErrorsTotal.WithLabelValues(string(apiErr.ErrorClass)).Inc()

			c.logger.Warn().
				Str("path", path).
				Int("status", resp.StatusCode).
				Str("error_class", string(apiErr.ErrorClass)).
				Msg("Analytics API request error")
			return apiErr
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			gaErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			return &APIError{ErrorClass: ErrorClassNetwork, Message: "read response body", Err: err}
		}
		return nil
	}, classifyError)

	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// apiErrorBody is the JSON error envelope Google APIs return on failure.
type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// errorFromResponse builds an APIError from a non-200 response, pulling the
// message out of the Google error envelope when present.
func (c *Client) errorFromResponse(resp *http.Response) *APIError {
	message := resp.Status

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil {
		var envelope apiErrorBody
		if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
			message = envelope.Error.Message
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		ErrorClass: classifyStatus(resp.StatusCode),
		Message:    message,
	}
}

// classifyStatus categorizes an HTTP status code.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// classifyError categorizes an error for retry decisions.
func classifyError(err error) ErrorClass {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.ErrorClass
	}
	return ErrorClassNetwork
}

// wireValues translates the engine's underscored parameter keys to the
// dashed wire form (start_date -> start-date). The ids, metrics, dimensions,
// filters, sort and segment keys have no underscore and pass through as is.
func wireValues(params query.Params) url.Values {
	values := make(url.Values, len(params))
	for key, value := range params {
		values.Set(strings.ReplaceAll(key, "_", "-"), value)
	}
	return values
}
