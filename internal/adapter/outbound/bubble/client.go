package bubble

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/bubblco/bubble-mcp/internal/usecase"
)

// Client implements the usecase.BubbleAPI interface over one Bubble
// application's Data API and Workflow API. Each method performs exactly one
// HTTP request: no retries, no pagination handling beyond forwarding the
// caller's limit/cursor, and no state between calls except the memoized
// schema.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger

	// mu guards schema. It is not held across the network call, so two
	// concurrent first fetches may both hit the upstream; either result
	// wins and later calls are served from the cache.
	mu     sync.Mutex
	schema interface{}
}

// ClientConfig holds the settings for NewClient. HTTPClient and Logger may be
// nil; APIToken may be empty for apps whose API is publicly readable.
type ClientConfig struct {
	AppURL     string
	APIToken   string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient creates a client for the Bubble app rooted at cfg.AppURL.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.AppURL, "/"),
		token:   cfg.APIToken,
		client:  httpClient,
		logger:  logger.With("component", "bubble_client"),
	}
}

// GetSchema fetches the application metadata: data types with their fields,
// and the exposed API workflows. The first successful response is retained
// for the lifetime of the process and returned on every later call; a failed
// fetch leaves the cache empty so the next call tries again.
func (c *Client) GetSchema(ctx context.Context) (interface{}, error) {
	c.mu.Lock()
	cached := c.schema
	c.mu.Unlock()
	if cached != nil {
		c.logger.Debug("Serving schema from cache.")
		return cached, nil
	}

	result, err := c.do(ctx, http.MethodGet, "/api/1.1/meta", nil, nil, "application schema")
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.schema = result
	c.mu.Unlock()
	return result, nil
}

// List fetches records of the given data type. A nil option is not forwarded
// at all; any non-nil value, zero included, is sent verbatim.
func (c *Client) List(ctx context.Context, dataType string, opts usecase.ListOptions) (interface{}, error) {
	query := url.Values{}
	if opts.Limit != nil {
		query.Set("limit", fmt.Sprintf("%v", opts.Limit))
	}
	if opts.Cursor != nil {
		query.Set("cursor", fmt.Sprintf("%v", opts.Cursor))
	}
	return c.do(ctx, http.MethodGet, "/api/1.1/obj/"+dataType, query, nil, "type "+dataType)
}

// Get fetches one record by its unique id.
func (c *Client) Get(ctx context.Context, dataType, id string) (interface{}, error) {
	return c.do(ctx, http.MethodGet, "/obj/"+dataType+"/"+id, nil, nil, fmt.Sprintf("type %s id %s", dataType, id))
}

// Create inserts a new record and returns the upstream response, which
// carries the new record's id.
func (c *Client) Create(ctx context.Context, dataType string, data map[string]interface{}) (interface{}, error) {
	return c.do(ctx, http.MethodPost, "/obj/"+dataType, nil, data, "type "+dataType)
}

// Update changes the given fields of an existing record. Fields absent from
// data keep their value.
func (c *Client) Update(ctx context.Context, dataType, id string, data map[string]interface{}) (interface{}, error) {
	return c.do(ctx, http.MethodPatch, "/obj/"+dataType+"/"+id, nil, data, fmt.Sprintf("type %s id %s", dataType, id))
}

// Delete removes one record by its unique id.
func (c *Client) Delete(ctx context.Context, dataType, id string) (interface{}, error) {
	return c.do(ctx, http.MethodDelete, "/obj/"+dataType+"/"+id, nil, nil, fmt.Sprintf("type %s id %s", dataType, id))
}

// TriggerWorkflow runs the named API workflow. A nil payload is sent as an
// empty JSON object, which is what the Workflow API expects for workflows
// without parameters.
func (c *Client) TriggerWorkflow(ctx context.Context, workflow string, data map[string]interface{}) (interface{}, error) {
	if data == nil {
		data = map[string]interface{}{}
	}
	return c.do(ctx, http.MethodPost, "/wf/"+workflow, nil, data, "workflow "+workflow)
}

// do performs one request against the app. The schema and list endpoints pass
// paths under /api/1.1 while the remaining operations pass bare /obj and /wf
// paths, matching how each endpoint family is addressed; do joins whatever it
// is given onto the configured base URL without normalizing.
func (c *Client) do(ctx context.Context, method, apiPath string, query url.Values, body map[string]interface{}, target string) (interface{}, error) {
	fullURL := c.baseURL + apiPath
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("bubble: marshal request body for %s: %w", target, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("bubble: create request for %s: %w", target, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	log := c.logger.With(slog.String("method", method), slog.String("url", fullURL))
	log.Debug("Calling Bubble API.")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Error("Bubble API request failed.", slog.Any("error", err))
		return nil, fmt.Errorf("bubble: %s: %w", target, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("bubble: read response for %s: %w", target, err)
	}

	log.Debug("Bubble API responded.",
		slog.Int("status_code", resp.StatusCode),
		slog.Int("bytes", len(respBody)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Status:  resp.StatusCode,
			Target:  target,
			Message: upstreamMessage(respBody, resp.Status),
		}
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") && len(respBody) > 0 {
		var result interface{}
		if err := json.Unmarshal(respBody, &result); err != nil {
			log.Warn("Failed to unmarshal JSON response, returning raw body.", slog.Any("error", err))
			return string(respBody), nil
		}
		return result, nil
	}
	return string(respBody), nil
}

// APIError is a non-2xx answer from the Bubble API.
type APIError struct {
	Status  int
	Target  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Bubble API error (%s): HTTP %d: %s", e.Target, e.Status, e.Message)
}

// upstreamMessage digs the human-readable error out of a Bubble error body.
// The Data API wraps errors as {"statusCode":..,"body":{"message":..}}, the
// Workflow API as {"statusCode":..,"message":..,"translation":..}. Anything
// unrecognized is surfaced as-is.
func upstreamMessage(body []byte, fallback string) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fallback
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return trimmed
	}
	if nested, ok := parsed["body"].(map[string]interface{}); ok {
		if msg := getString(nested, "message"); msg != "" {
			return msg
		}
	}
	for _, key := range []string{"message", "translation"} {
		if msg := getString(parsed, key); msg != "" {
			return msg
		}
	}
	return trimmed
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
