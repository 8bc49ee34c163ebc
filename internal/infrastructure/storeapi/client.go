// internal/infrastructure/storeapi/client.go
package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/your-org/storefront-gateway/internal/config"
)

// Client is a typed HTTP client for the remote store API. Every business rule
// (pricing, stock validation, status transitions) lives behind it; the gateway
// only issues requests and decodes responses.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a store API client from config
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.StoreAPI.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.StoreAPI.RequestTimeout,
		},
	}
}

// do issues a JSON request and decodes the response into out when out is
// non-nil. A non-2xx response is returned as *StatusError.
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request data: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("store API call failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, method, path, out)
}

// decodeResponse reads the body, maps non-2xx statuses to *StatusError and
// decodes successful payloads into out when out is non-nil.
func decodeResponse(resp *http.Response, method, path string, out interface{}) error {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return newStatusError(method, path, resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response from %s %s: %w", method, path, err)
		}
	}

	return nil
}
