package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/upsrate/internal/server"
	"github.com/tournevent/upsrate/pkg/rating"
	"github.com/tournevent/upsrate/pkg/rating/ups"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

type fakeQuoter struct {
	set     *ups.QuoteSet
	err     error
	lastReq *ups.QuoteRequest
}

func (f *fakeQuoter) GetQuotes(ctx context.Context, req *ups.QuoteRequest) (*ups.QuoteSet, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.set, nil
}

func newTestServer(quoter *fakeQuoter) *server.Server {
	logger := otelzap.New(zap.NewNop())
	return server.New(server.Config{Port: 0}, quoter, logger)
}

const quoteBody = `{
  "items": [
    {
      "product_id": "sku-1",
      "model": "Widget",
      "qty": 2,
      "price": 19.99,
      "weight": 2,
      "weight_unit": "lb",
      "length": 10,
      "width": 5,
      "height": 4,
      "length_unit": "in",
      "origin": {"street1": "123 Main St", "city": "Portland", "zone": "OR", "postal_code": "97201", "country": "US"}
    }
  ],
  "destination": {"street1": "42 Delivery Ln", "city": "Seattle", "zone": "WA", "postal_code": "98101", "country": "US"}
}`

func TestServer_Health(t *testing.T) {
	srv := newTestServer(&fakeQuoter{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(&fakeQuoter{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Quote_Success(t *testing.T) {
	quoter := &fakeQuoter{
		set: &ups.QuoteSet{
			Quotes: []rating.RateQuote{
				{ServiceCode: "03", Description: "UPS Ground", Amount: 12.50, Currency: "USD"},
			},
		},
	}
	srv := newTestServer(quoter)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/quote", strings.NewReader(quoteBody))
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Quotes []struct {
			ServiceCode string  `json:"service_code"`
			Amount      float64 `json:"amount"`
			Currency    string  `json:"currency"`
		} `json:"quotes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Quotes, 1)
	assert.Equal(t, "03", resp.Quotes[0].ServiceCode)
	assert.Equal(t, 12.50, resp.Quotes[0].Amount)
	assert.Equal(t, "USD", resp.Quotes[0].Currency)

	// The JSON body reached the quoter as typed line items.
	require.NotNil(t, quoter.lastReq)
	require.Len(t, quoter.lastReq.Items, 1)
	assert.Equal(t, "sku-1", quoter.lastReq.Items[0].ProductID)
	assert.Equal(t, rating.Pound, quoter.lastReq.Items[0].WeightUnit)
	assert.Equal(t, "98101", quoter.lastReq.Destination.PostalCode)
}

func TestServer_Quote_IncludesFailures(t *testing.T) {
	quoter := &fakeQuoter{
		set: &ups.QuoteSet{
			Quotes: []rating.RateQuote{
				{ServiceCode: "03", Amount: 12.50, Currency: "USD"},
			},
			Failures: []ups.ServiceFailure{
				{ServiceCode: "01", Group: 0, Err: errors.New("service unavailable")},
			},
		},
	}
	srv := newTestServer(quoter)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/quote", strings.NewReader(quoteBody))
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Failures []struct {
			ServiceCode string `json:"service_code"`
			Error       string `json:"error"`
		} `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, "01", resp.Failures[0].ServiceCode)
	assert.Equal(t, "service unavailable", resp.Failures[0].Error)
}

func TestServer_Quote_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(&fakeQuoter{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quote", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_Quote_InvalidBody(t *testing.T) {
	srv := newTestServer(&fakeQuoter{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/quote", strings.NewReader("{not json"))
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Quote_ErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"missing attributes", rating.ErrMissingAttributes, http.StatusBadRequest},
		{"missing credentials", rating.ErrMissingCredentials, http.StatusInternalServerError},
		{"no services", rating.ErrNoServices, http.StatusInternalServerError},
		{"no quotes", errors.Join(rating.ErrNoQuotes, errors.New("upstream down")), http.StatusNotFound},
		{"transport failure", errors.New("connection reset"), http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(&fakeQuoter{err: tc.err})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/quote", strings.NewReader(quoteBody))
			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)

			var resp struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}
