package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openreview/openreview-web/shared/api"
	"github.com/openreview/openreview-web/shared/logger"
)

var (
	ErrTimeout     = errors.New("api request timed out")
	ErrUnavailable = errors.New("api unavailable")
)

// APIError is a non-2xx answer from the API, normalized from its error body.
type APIError struct {
	Status  int
	Name    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsUserNotFound matches the API's answer for unknown emails on /resettable and /activatable.
func IsUserNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "user not found")
}

type Config struct {
	// ReadTimeout is used for GET requests
	ReadTimeout time.Duration
	// WriteTimeout is used for POST, PUT, PATCH, DELETE requests
	WriteTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

// APIClient struct handles all communication with the OpenReview API.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
	config     Config
}

func New(baseURL string, cfg Config) *APIClient {
	return &APIClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HttpClient: &http.Client{},
		config:     cfg,
	}
}

// do is the single, unified helper for making API requests. The response is decoded
// into out before the method-based timeout is released.
func (c *APIClient) do(ctx context.Context, method, path string, query url.Values, body io.Reader, out any) error {
	timeout := c.config.ReadTimeout
	if method != http.MethodGet {
		timeout = c.config.WriteTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	start := time.Now()
	resp, err := c.HttpClient.Do(req)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("method", method).Str("path", path).
			Dur("duration", time.Since(start)).Msg("api request failed")
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: %s %s", ErrTimeout, method, path)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	logger.Ctx(ctx).Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).Msg("api request completed")
	return decodeResponse(resp, out)
}

func (c *APIClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *APIClient) postJSON(ctx context.Context, path string, in, out any) error {
	jsonBody, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request for %s: %w", path, err)
	}
	return c.do(ctx, http.MethodPost, path, nil, bytes.NewReader(jsonBody), out)
}

func decodeResponse(resp *http.Response, out any) error {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return normalizeError(resp.StatusCode, bodyBytes)
	}
	if out == nil || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func normalizeError(status int, body []byte) error {
	var e api.ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		if e.Status == 0 {
			e.Status = status
		}
		return &APIError{Status: e.Status, Name: e.Name, Message: e.Message}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}
