// Package apiserver communicates with the control plane API.
package apiserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"trustplane/config/appconf"
	"trustplane/internal/httpclient"
)

type client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
}

func NewClient(cfg Config) (*client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &client{
		httpClient: httpclient.NewClient(cfg.Timeout, cfg.Credentials),
		baseURL:    cfg.BaseURL,
		maxRetries: cfg.MaxRetries,
	}, nil
}

// NewDefaultClient builds a client against the configured control plane URL.
// Credentials may be nil for the registration call, which is the only
// operation accepted without them.
func NewDefaultClient(creds httpclient.CredentialSource) (*client, error) {
	return NewClient(Config{
		BaseURL:     appconf.ControlPlaneURL(),
		Credentials: creds,
		Timeout:     30 * time.Second,
	})
}

func (c *client) do(ctx context.Context, method, path string, body any, result any) error {
	var jsonData []byte
	if body != nil {
		var err error
		jsonData, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	resp, err := c.executeWithRetry(ctx, method, c.baseURL+path, jsonData)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.handleErrorResponse(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// executeWithRetry rebuilds the request per attempt so the body reader is
// fresh each time. Responses below 500 are returned as-is; 5xx and transport
// errors retry with a linear backoff.
func (c *client) executeWithRetry(ctx context.Context, method, url string, jsonData []byte) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		var bodyReader io.Reader
		if jsonData != nil {
			bodyReader = bytes.NewReader(jsonData)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if jsonData != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode < 500 {
			return resp, nil
		}

		lastErr = fmt.Errorf("server returned status %d", resp.StatusCode)
		resp.Body.Close()
	}
	return nil, fmt.Errorf("request failed after %d retries: %w", c.maxRetries, lastErr)
}

func (c *client) Get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *client) Post(ctx context.Context, path string, body any, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *client) handleErrorResponse(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(resp.Body)

	var serverErr struct {
		Error string `json:"error"`
	}
	message := string(bodyBytes)
	if err := json.Unmarshal(bodyBytes, &serverErr); err == nil && serverErr.Error != "" {
		message = serverErr.Error
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}
