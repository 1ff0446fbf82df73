package ups

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// rateTool is the Rating API tool name appended to the endpoint URL.
const rateTool = "Rate"

// HTTPAPIClient is the production implementation of APIClient, posting
// rate-request documents to the UPS Rating endpoint.
type HTTPAPIClient struct {
	endpoint   string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAPIClient{
		endpoint: cfg.Endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Rate posts the encoded rate-request document and returns the raw
// response body. Non-2xx statuses become APIErrors; the caller decides
// whether to continue with other services.
func (c *HTTPAPIClient) Rate(ctx context.Context, request string) ([]byte, error) {
	url := c.endpoint + rateTool

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(request))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			Code:        fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Description: string(body),
		}
	}
	return body, nil
}

var _ APIClient = (*HTTPAPIClient)(nil)
