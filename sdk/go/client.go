// Package contactrelay is a Go client for the contactrelay API.
package contactrelay

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

// Config holds the configuration for the contactrelay client.
type Config struct {
	// BaseURL is the root URL of the relay.
	// Examples: "https://relay.example.com" or "https://relay.example.com/api/v1"
	// The "/api/v1" suffix is appended automatically if missing.
	BaseURL string

	// HTTPClient is an optional custom HTTP client.
	// If nil, a default client with 30s timeout is used.
	HTTPClient *http.Client
}

func (c *Config) defaults() {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if !strings.HasSuffix(c.BaseURL, "/api/v1") {
		c.BaseURL = c.BaseURL + "/api/v1"
	}
}

// ContactRequest is the body of a contact submission.
type ContactRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	Subject  string `json:"subject,omitempty"`
}

// Client calls the relay's remote procedures.
type Client struct {
	cfg Config
}

// NewClient creates a new client with the given configuration.
func NewClient(cfg Config) *Client {
	cfg.defaults()
	return &Client{cfg: cfg}
}

// SendContact submits one contact request. Failures reported by the relay
// are returned as *APIError.
func (c *Client) SendContact(ctx context.Context, in ContactRequest) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("contactrelay: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/contact", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("contactrelay: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("contactrelay: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("contactrelay: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return parseAPIError(resp.StatusCode, body)
	}

	var ok struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal(body, &ok); err != nil || !ok.OK {
		return &APIError{StatusCode: resp.StatusCode, Code: "unexpected_response", Message: string(body)}
	}
	return nil
}
