package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openkassa/kassaterm/internal/models"
	"github.com/openkassa/kassaterm/pkg/logger"
)

const (
	// RequestTimeout bounds every call to the remote payment API.
	RequestTimeout = 30 * time.Second

	headerAccessKey   = "accessKey"
	headerAccountGUID = "accountIdGuid"
	headerCustomerID  = "customerId"
)

// Client talks to the remote payment-processing API. All response
// normalization (value-envelope vs flat bodies, error message extraction)
// happens here so the rest of the service only sees canonical DTOs.
type Client struct {
	logger  *logger.Logger
	baseURL string
	http    *http.Client
}

var _ models.PaymentProvider = (*Client)(nil)

// NewClient creates a client for the payment API at baseURL.
func NewClient(baseURL string, logger *logger.Logger) *Client {
	return &Client{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: RequestTimeout,
		},
	}
}

// APIError is a non-2xx response from the remote API. Message is the
// human-readable part extracted from the body; RawBody preserves the
// literal response text for diagnostics.
type APIError struct {
	StatusCode int
	Message    string
	RawBody    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payment API returned %d: %s", e.StatusCode, e.Message)
}

// errorBody is the error shape of the remote API. Some endpoints report
// through "message", others through "title".
type errorBody struct {
	Message string `json:"message"`
	Title   string `json:"title"`
}

// extractMessage pulls a readable error message out of a failed response
// body, falling back to the raw text when the body is not the expected
// JSON shape.
func extractMessage(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Title != "" {
			return body.Title
		}
	}
	return strings.TrimSpace(string(raw))
}

func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Debug("Payment API error response ", "path ", path, " status ", resp.StatusCode)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    extractMessage(raw),
			RawBody:    string(raw),
		}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}
	return nil
}
