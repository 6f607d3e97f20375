package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/opsforge/sage/pkg/auth"
)

// Client is the typed REST client for the service's collaborator
// endpoints. The streaming endpoint has its own transport in pkg/stream;
// everything request/response shaped goes through here.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      auth.Provider
}

// Error is a non-2xx response from the service
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api request failed with status %d: %s", e.Status, e.Body)
}

func NewClient(baseURL string, creds auth.Provider) *Client {
	return NewClientWithTimeout(baseURL, creds, 30*time.Second)
}

func NewClientWithTimeout(baseURL string, creds auth.Provider, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		creds: creds,
	}
}

// do sends one JSON request and decodes the response into out when both
// are non-nil. Non-2xx statuses come back as *Error.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.creds.Token(); ok {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &Error{Status: resp.StatusCode, Body: strings.TrimSpace(string(detail))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
