package ups

import (
	"context"
	"sync"
	"time"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnRate func(ctx context.Context, request string) ([]byte, error)

	mu       sync.Mutex
	requests []string
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// Rate records the request document and returns a canned rated
// response, or delegates to OnRate when set.
func (m *MockAPIClient) Rate(ctx context.Context, request string) ([]byte, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	m.mu.Lock()
	m.requests = append(m.requests, request)
	m.mu.Unlock()

	if m.SimulateErrors {
		return nil, &APIError{Code: "MOCK_ERROR", Description: "Simulated API error"}
	}

	if m.OnRate != nil {
		return m.OnRate(ctx, request)
	}

	return []byte(`<?xml version="1.0"?>
<RatingServiceSelectionResponse>
  <Response>
    <ResponseStatusCode>1</ResponseStatusCode>
    <ResponseStatusDescription>Success</ResponseStatusDescription>
  </Response>
  <RatedShipment>
    <Service><Code>03</Code></Service>
    <TotalCharges>
      <CurrencyCode>USD</CurrencyCode>
      <MonetaryValue>12.65</MonetaryValue>
    </TotalCharges>
  </RatedShipment>
</RatingServiceSelectionResponse>`), nil
}

// Requests returns the rate-request documents seen so far.
func (m *MockAPIClient) Requests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.requests...)
}

var _ APIClient = (*MockAPIClient)(nil)
