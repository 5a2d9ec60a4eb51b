package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client wraps calls to the relay gateway
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// APIError is returned when the gateway answers with a non-200 status
type APIError struct {
	StatusCode int    // Gateway status code
	Body       []byte // Raw gateway response body
}

func (e *APIError) Error() string {
	return fmt.Sprintf("relay returned %d: %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// Decode parses the gateway error envelope. The zero value is returned for bodies that are not one
func (e *APIError) Decode() ErrorResponse {
	var out ErrorResponse
	_ = json.Unmarshal(e.Body, &out)
	return out
}

// NewClient creates a client for the gateway at baseURL. apiKey is the optional
// gateway key, not an Attio credential
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// doJSON is a helper to perform JSON requests to the gateway
func (c *Client) doJSON(ctx context.Context, method, path string, in any) (json.RawMessage, error) {
	// Create request body if input is provided
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewBuffer(b)
	}

	// Create the request
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	// Perform the request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: b}
	}

	return json.RawMessage(b), nil
}
