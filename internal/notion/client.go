package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/unive-tools/schedule-sync/internal/logger"
)

const (
	DefaultBaseURL = "https://api.notion.com"
	DefaultVersion = "2022-06-28"
	timeout        = 30 * time.Second
	userAgent      = "unive-schedule/1.0 (github.com/unive-tools/schedule-sync)"
)

// Client represents a Notion API client
type Client struct {
	apiKey     string
	baseURL    string
	version    string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithVersion sets the Notion-Version header
func WithVersion(v string) Option {
	return func(c *Client) {
		if v != "" {
			c.version = v
		}
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a new Notion client
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("notion API key is required")
	}

	c := &Client{
		apiKey:    apiKey,
		baseURL:   DefaultBaseURL,
		version:   DefaultVersion,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateRecord creates a page in the database and returns its id.
func (c *Client) CreateRecord(ctx context.Context, databaseID string, props Properties) (string, error) {
	payload := map[string]interface{}{
		"parent":     map[string]string{"database_id": databaseID},
		"properties": props,
	}

	var result struct {
		ID string `json:"id"`
	}
	status, err := c.post(ctx, "/v1/pages", payload, &result)
	if err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", missingField(status, "id")
	}

	logger.IncrCounter("notion.pages.created")
	logger.Debug("notion page created", logger.Fields{
		"database": databaseID,
		"id":       result.ID,
	})
	return result.ID, nil
}

// QueryRecords returns every page of the database, following pagination cursors.
func (c *Client) QueryRecords(ctx context.Context, databaseID string) ([]Record, error) {
	records := make([]Record, 0)
	cursor := ""

	for {
		payload := map[string]interface{}{}
		if cursor != "" {
			payload["start_cursor"] = cursor
		}

		var result struct {
			Results    *[]Record `json:"results"`
			HasMore    bool      `json:"has_more"`
			NextCursor *string   `json:"next_cursor"`
		}
		status, err := c.post(ctx, "/v1/databases/"+databaseID+"/query", payload, &result)
		if err != nil {
			return nil, err
		}
		if result.Results == nil {
			return nil, missingField(status, "results")
		}
		logger.IncrCounter("notion.queries")

		records = append(records, *result.Results...)
		// a cursor that does not advance would page forever
		if !result.HasMore || result.NextCursor == nil || *result.NextCursor == "" || *result.NextCursor == cursor {
			break
		}
		cursor = *result.NextCursor
	}

	logger.Debug("notion database queried", logger.Fields{
		"database": databaseID,
		"records":  len(records),
	})
	return records, nil
}

// post sends a JSON request and decodes a 200 response into out.
func (c *Client) post(ctx context.Context, path string, payload, out interface{}) (int, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	logger.IncrCounter("http.requests")
	logger.RecordTiming("notion.request", time.Since(start))
	if err != nil {
		return 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, parseError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("parsing response: %w", err)
	}
	return resp.StatusCode, nil
}

func parseError(status int, body []byte) *APIError {
	var result struct {
		Object  string `json:"object"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &result); err == nil && result.Object == "error" {
		return &APIError{Status: status, Code: result.Code, Message: result.Message}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}
