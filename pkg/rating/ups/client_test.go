package ups_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/upsrate/pkg/rating"
	"github.com/tournevent/upsrate/pkg/rating/ups"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const ratedResponse = `<?xml version="1.0"?>
<RatingServiceSelectionResponse>
  <Response><ResponseStatusCode>1</ResponseStatusCode></Response>
  <RatedShipment>
    <TotalCharges>
      <CurrencyCode>USD</CurrencyCode>
      <MonetaryValue>12.50</MonetaryValue>
    </TotalCharges>
  </RatedShipment>
</RatingServiceSelectionResponse>`

func newTestClient(cfg ups.Config, mockAPI *ups.MockAPIClient) *ups.Client {
	logger := otelzap.New(zap.NewNop())
	return ups.NewWithAPIClient(cfg, testStore(), mockAPI, logger, nil)
}

func quoteItem() rating.LineItem {
	return rating.LineItem{
		ProductID:  "sku-1",
		Model:      "Widget",
		Qty:        5,
		Price:      19.99,
		Weight:     2,
		WeightUnit: rating.Pound,
		Length:     10,
		Width:      5,
		Height:     4,
		LengthUnit: rating.Inch,
	}
}

func quoteRequest() *ups.QuoteRequest {
	return &ups.QuoteRequest{
		Items:       []rating.LineItem{quoteItem()},
		Destination: testDestination(),
	}
}

func TestClient_Name(t *testing.T) {
	client := newTestClient(testConfig(), ups.NewMockAPIClient())
	assert.Equal(t, "ups", client.Name())
}

func TestClient_GetQuotes_EndToEnd(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, request string) ([]byte, error) {
		return []byte(ratedResponse), nil
	}

	cfg := testConfig()
	cfg.PackageQty = 5
	client := newTestClient(cfg, mockAPI)

	set, err := client.GetQuotes(context.Background(), quoteRequest())
	require.NoError(t, err)
	require.Len(t, set.Quotes, 1)
	assert.Empty(t, set.Failures)

	quote := set.Quotes[0]
	assert.Equal(t, "03", quote.ServiceCode)
	assert.Equal(t, "UPS Ground", quote.Description)
	assert.Equal(t, 12.50, quote.Amount)
	assert.Equal(t, "USD", quote.Currency)
	assert.False(t, quote.Negotiated)

	// Five units at a configured per-package quantity of five make one
	// package record holding a single unit's weight.
	reqs := mockAPI.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, 1, strings.Count(reqs[0], "<Package>"))
	assert.Contains(t, reqs[0], "<Weight>2.0</Weight>")
}

func TestClient_GetQuotes_DefaultMock(t *testing.T) {
	cfg := testConfig()
	cfg.UseMock = true
	logger := otelzap.New(zap.NewNop())

	client := ups.New(cfg, testStore(), logger, nil)
	set, err := client.GetQuotes(context.Background(), quoteRequest())
	require.NoError(t, err)
	require.Len(t, set.Quotes, 1)
	assert.Equal(t, 12.65, set.Quotes[0].Amount)
}

func TestClient_GetQuotes_MissingCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.Password = ""
	client := newTestClient(cfg, ups.NewMockAPIClient())

	_, err := client.GetQuotes(context.Background(), quoteRequest())
	assert.ErrorIs(t, err, rating.ErrMissingCredentials)
	assert.True(t, rating.IsConfigurationError(err))
}

func TestClient_GetQuotes_NoServices(t *testing.T) {
	cfg := testConfig()
	cfg.Services = nil
	client := newTestClient(cfg, ups.NewMockAPIClient())

	_, err := client.GetQuotes(context.Background(), quoteRequest())
	assert.ErrorIs(t, err, rating.ErrNoServices)
}

func TestClient_GetQuotes_UnknownService(t *testing.T) {
	cfg := testConfig()
	cfg.Services = []string{"03", "99"}
	client := newTestClient(cfg, ups.NewMockAPIClient())

	_, err := client.GetQuotes(context.Background(), quoteRequest())
	assert.ErrorIs(t, err, rating.ErrUnknownService)
}

func TestClient_GetQuotes_APIError(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(testConfig(), mockAPI)

	_, err := client.GetQuotes(context.Background(), quoteRequest())
	assert.ErrorIs(t, err, rating.ErrNoQuotes)

	var apiErr *ups.APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestClient_GetQuotes_FailureIsolation(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, request string) ([]byte, error) {
		if strings.Contains(request, "UPS Next Day Air") {
			return nil, &ups.APIError{Code: "110002", Description: "service unavailable"}
		}
		return []byte(ratedResponse), nil
	}

	cfg := testConfig()
	cfg.Services = []string{"03", "01"}
	client := newTestClient(cfg, mockAPI)

	set, err := client.GetQuotes(context.Background(), quoteRequest())
	require.NoError(t, err)

	// The failing service must not take the healthy one with it.
	require.Len(t, set.Quotes, 1)
	assert.Equal(t, "03", set.Quotes[0].ServiceCode)
	require.Len(t, set.Failures, 1)
	assert.Equal(t, "01", set.Failures[0].ServiceCode)
}

func TestClient_GetQuotes_CurrencyMismatch(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, request string) ([]byte, error) {
		return []byte(strings.Replace(ratedResponse, "USD", "CAD", 1)), nil
	}
	client := newTestClient(testConfig(), mockAPI)

	_, err := client.GetQuotes(context.Background(), quoteRequest())
	assert.ErrorIs(t, err, rating.ErrNoQuotes)
	assert.ErrorIs(t, err, rating.ErrCurrencyMismatch)
}

func TestClient_GetQuotes_NegotiatedRate(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, request string) ([]byte, error) {
		return []byte(`<?xml version="1.0"?>
<RatingServiceSelectionResponse>
  <Response><ResponseStatusCode>1</ResponseStatusCode></Response>
  <RatedShipment>
    <TotalCharges>
      <CurrencyCode>USD</CurrencyCode>
      <MonetaryValue>12.65</MonetaryValue>
    </TotalCharges>
    <NegotiatedRates>
      <NetSummaryCharges>
        <GrandTotal>
          <CurrencyCode>USD</CurrencyCode>
          <MonetaryValue>10.10</MonetaryValue>
        </GrandTotal>
      </NetSummaryCharges>
    </NegotiatedRates>
  </RatedShipment>
</RatingServiceSelectionResponse>`), nil
	}
	client := newTestClient(testConfig(), mockAPI)

	set, err := client.GetQuotes(context.Background(), quoteRequest())
	require.NoError(t, err)
	require.Len(t, set.Quotes, 1)
	assert.Equal(t, 10.10, set.Quotes[0].Amount)
	assert.True(t, set.Quotes[0].Negotiated)
}

func TestClient_GetQuotes_RateMarkup(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, request string) ([]byte, error) {
		return []byte(ratedResponse), nil
	}

	cfg := testConfig()
	cfg.RateMarkup = rating.Markup{Raw: "10", Kind: rating.MarkupPercentage}
	client := newTestClient(cfg, mockAPI)

	set, err := client.GetQuotes(context.Background(), quoteRequest())
	require.NoError(t, err)
	require.Len(t, set.Quotes, 1)
	assert.InDelta(t, 13.75, set.Quotes[0].Amount, 1e-9)
}

func TestClient_GetQuotes_SumsAcrossGroups(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, request string) ([]byte, error) {
		return []byte(ratedResponse), nil
	}
	client := newTestClient(testConfig(), mockAPI)

	a := quoteItem()
	a.Qty = 1
	a.Origin = rating.Address{Street1: "123 Main St", City: "Portland", Zone: "OR", PostalCode: "97201", Country: "US"}
	b := quoteItem()
	b.ProductID = "sku-2"
	b.Qty = 1
	b.Origin = rating.Address{Street1: "900 Harbor Blvd", City: "Oakland", Zone: "CA", PostalCode: "94607", Country: "US"}

	set, err := client.GetQuotes(context.Background(), &ups.QuoteRequest{
		Items:       []rating.LineItem{a, b},
		Destination: testDestination(),
	})
	require.NoError(t, err)
	require.Len(t, set.Quotes, 1)
	assert.InDelta(t, 25.0, set.Quotes[0].Amount, 1e-9)
	assert.Len(t, mockAPI.Requests(), 2)
}

func TestClient_GetQuotes_WithCatalog(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, request string) ([]byte, error) {
		return []byte(ratedResponse), nil
	}

	catalog := rating.StaticCatalog{
		"sku-1": {Length: 10, Width: 5, Height: 4, LengthUnit: rating.Inch},
	}
	client := newTestClient(testConfig(), mockAPI).WithCatalog(catalog)

	item := quoteItem()
	item.Length, item.Width, item.Height = 0, 0, 0

	set, err := client.GetQuotes(context.Background(), &ups.QuoteRequest{
		Items:       []rating.LineItem{item},
		Destination: testDestination(),
	})
	require.NoError(t, err)
	assert.Len(t, set.Quotes, 1)
}

func TestClient_GetQuotes_CatalogMiss(t *testing.T) {
	client := newTestClient(testConfig(), ups.NewMockAPIClient()).
		WithCatalog(rating.StaticCatalog{})

	item := quoteItem()
	item.Length, item.Width, item.Height = 0, 0, 0

	_, err := client.GetQuotes(context.Background(), &ups.QuoteRequest{
		Items:       []rating.LineItem{item},
		Destination: testDestination(),
	})
	assert.ErrorIs(t, err, rating.ErrMissingAttributes)
}

func TestServiceFailure_MarshalJSON(t *testing.T) {
	failure := ups.ServiceFailure{
		ServiceCode: "03",
		Group:       1,
		Err:         errors.New("boom"),
	}

	data, err := json.Marshal(failure)
	require.NoError(t, err)
	assert.JSONEq(t, `{"service_code":"03","group":1,"error":"boom"}`, string(data))
}
