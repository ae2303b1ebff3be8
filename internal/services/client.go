// HTTP client for the JustMusik REST API
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/justmusik/jmk/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Client is the single outbound API client shared by every service.
//
// Each request reads the bearer token from the configured [oauth2.TokenSource]
// immediately before dispatch, so a token written by the session store is
// visible to the very next call. A 401 from any endpoint fires the registered
// unauthorized hook exactly once per response and surfaces as
// [shared.ErrUnauthorized]; every other failure is returned to the caller
// unmodified.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         oauth2.TokenSource
	limiter        *rate.Limiter
	logger         *log.Logger
	onUnauthorized func()
}

// NewClient creates a new API client for the given base URL.
func NewClient(baseURL string, httpClient *http.Client, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080/api"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// SetTokenSource installs the bearer token source, typically the session store.
func (c *Client) SetTokenSource(ts oauth2.TokenSource) {
	c.tokens = ts
}

// SetRateLimit throttles outbound requests to rps requests per second with the given burst.
func (c *Client) SetRateLimit(rps float64, burst int) {
	if rps <= 0 {
		c.limiter = nil
		return
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// OnUnauthorized registers the hook fired when any response comes back 401.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// APIError is a non-2xx response carrying the server-supplied message when one
// was present, so callers can surface it inline.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error (status %d)", e.StatusCode)
}

func (e *APIError) Unwrap() error { return shared.ErrAPIRequest }

// Get performs a GET request to the specified path.
func (c *Client) Get(ctx context.Context, path string) (*APIResponse, error) {
	return c.do(ctx, http.MethodGet, path, nil, "")
}

// Post performs a POST request with the given body and content type.
func (c *Client) Post(ctx context.Context, path string, body io.Reader, contentType string) (*APIResponse, error) {
	return c.do(ctx, http.MethodPost, path, body, contentType)
}

// Put performs a PUT request with the given body and content type.
func (c *Client) Put(ctx context.Context, path string, body io.Reader, contentType string) (*APIResponse, error) {
	return c.do(ctx, http.MethodPut, path, body, contentType)
}

// Delete performs a DELETE request to the specified path.
func (c *Client) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return c.do(ctx, http.MethodDelete, path, nil, "")
}

// GetJSON performs a GET request and decodes a 2xx response body into result.
func (c *Client) GetJSON(ctx context.Context, path string, result any) error {
	resp, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	return decodeInto(resp, result)
}

// PostJSON performs a POST request with a JSON-encoded body and decodes a 2xx
// response into result when result is non-nil.
func (c *Client) PostJSON(ctx context.Context, path string, payload, result any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	resp, err := c.Post(ctx, path, strings.NewReader(string(data)), "application/json")
	if err != nil {
		return err
	}
	return decodeInto(resp, result)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*APIResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	// Correlation ID so client logs can be matched to server-side entries.
	reqID := shared.GenerateID()
	req.Header.Set("X-Request-ID", reqID)

	// Read the token per request rather than caching it: the session store may
	// have been written between calls.
	if c.tokens != nil {
		if tok, err := c.tokens.Token(); err == nil && tok.AccessToken != "" {
			req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Warn("received 401, tearing down session", "method", method, "path", path, "request_id", reqID)
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		if msg := serverMessage(apiResp); msg != "" {
			return apiResp, fmt.Errorf("%w: %s", shared.ErrUnauthorized, msg)
		}
		return apiResp, fmt.Errorf("%w: %s %s", shared.ErrUnauthorized, method, path)
	}

	return apiResp, nil
}

// decodeInto converts resp into result for 2xx responses and into an [APIError]
// otherwise.
func decodeInto(resp *APIResponse, result any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return respError(resp)
	}

	if result == nil || len(resp.Body) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.Body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// respError builds an [APIError] from a non-2xx response, carrying the
// server's "message" field when one was present.
func respError(resp *APIResponse) error {
	return &APIError{StatusCode: resp.StatusCode, Message: serverMessage(resp)}
}

func serverMessage(resp *APIResponse) string {
	if obj, ok := resp.JSONData.(map[string]any); ok {
		if msg, ok := obj["message"].(string); ok {
			return msg
		}
	}
	return ""
}
