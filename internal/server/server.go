// Package server exposes the rate-quoting client over a small JSON
// HTTP facade, plus health and metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/upsrate/internal/telemetry"
	"github.com/tournevent/upsrate/pkg/rating"
	"github.com/tournevent/upsrate/pkg/rating/ups"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Quoter computes rate quotes for an order. Satisfied by *ups.Client.
type Quoter interface {
	GetQuotes(ctx context.Context, req *ups.QuoteRequest) (*ups.QuoteSet, error)
}

// Server is the HTTP server for the rating service.
type Server struct {
	port     int
	quoter   Quoter
	logger   *otelzap.Logger
	registry *prometheus.Registry
	metrics  *telemetry.Metrics
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance. Metrics live on a server-owned
// registry rather than the process-global one.
func New(cfg Config, quoter Quoter, logger *otelzap.Logger) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Server{
		port:     cfg.Port,
		quoter:   quoter,
		logger:   logger,
		registry: registry,
		metrics:  telemetry.NewMetrics(registry),
	}
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Handler returns the HTTP handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/quote", s.handleQuote)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// JSON request/response types

type addressJSON struct {
	Street1    string `json:"street1"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city"`
	Zone       string `json:"zone"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type lineItemJSON struct {
	ProductID  string      `json:"product_id"`
	Model      string      `json:"model,omitempty"`
	Qty        int         `json:"qty"`
	Price      float64     `json:"price"`
	Weight     float64     `json:"weight"`
	WeightUnit string      `json:"weight_unit"`
	PkgQty     int         `json:"pkg_qty,omitempty"`
	Length     float64     `json:"length"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	LengthUnit string      `json:"length_unit"`
	Container  string      `json:"container,omitempty"`
	Origin     addressJSON `json:"origin"`
}

type quoteRequestJSON struct {
	Items       []lineItemJSON `json:"items"`
	Destination addressJSON    `json:"destination"`
}

type quoteJSON struct {
	ServiceCode string  `json:"service_code"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Negotiated  bool    `json:"negotiated,omitempty"`
}

type failureJSON struct {
	ServiceCode string `json:"service_code"`
	Group       int    `json:"group"`
	Error       string `json:"error"`
}

type quoteResponseJSON struct {
	Quotes   []quoteJSON   `json:"quotes"`
	Failures []failureJSON `json:"failures,omitempty"`
	Error    string        `json:"error,omitempty"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(quoteResponseJSON{Error: "method not allowed, use POST"})
		return
	}

	requestID := uuid.New().String()
	logger := s.logger.With(zap.String("request_id", requestID))

	var body quoteRequestJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(quoteResponseJSON{Error: "invalid request body: " + err.Error()})
		return
	}

	req := toQuoteRequest(&body)
	start := time.Now()
	set, err := s.quoter.GetQuotes(r.Context(), req)
	duration := time.Since(start).Seconds()

	if err != nil {
		s.metrics.RecordQuote("error", duration)
		logger.Warn("Quote computation failed", zap.Error(err))
		w.WriteHeader(quoteStatus(err))
		json.NewEncoder(w).Encode(quoteResponseJSON{Error: err.Error()})
		return
	}

	s.metrics.RecordQuote("ok", duration)
	for _, f := range set.Failures {
		if errors.Is(f.Err, rating.ErrCurrencyMismatch) {
			s.metrics.RecordCurrencyMismatch(f.ServiceCode)
		}
		s.metrics.RecordServiceFailure(f.ServiceCode, failureReason(f.Err))
	}

	logger.Info("Quote computed",
		zap.Int("quotes", len(set.Quotes)),
		zap.Int("failures", len(set.Failures)),
	)
	json.NewEncoder(w).Encode(toQuoteResponse(set))
}

// quoteStatus maps the error taxonomy onto HTTP statuses: bad input is
// the caller's problem, configuration is ours, and a quote-less outcome
// is reported distinctly rather than as an empty success.
func quoteStatus(err error) int {
	switch {
	case errors.Is(err, rating.ErrMissingAttributes):
		return http.StatusBadRequest
	case rating.IsConfigurationError(err):
		return http.StatusInternalServerError
	case errors.Is(err, rating.ErrNoQuotes):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, rating.ErrCurrencyMismatch):
		return "currency_mismatch"
	case errors.Is(err, rating.ErrNoQuote):
		return "no_quote"
	default:
		return "api_error"
	}
}

func toQuoteRequest(body *quoteRequestJSON) *ups.QuoteRequest {
	items := make([]rating.LineItem, len(body.Items))
	for i, it := range body.Items {
		items[i] = rating.LineItem{
			ProductID:  it.ProductID,
			Model:      it.Model,
			Qty:        it.Qty,
			Price:      it.Price,
			Weight:     it.Weight,
			WeightUnit: rating.WeightUnit(it.WeightUnit),
			PkgQty:     it.PkgQty,
			Length:     it.Length,
			Width:      it.Width,
			Height:     it.Height,
			LengthUnit: rating.LengthUnit(it.LengthUnit),
			Container:  it.Container,
			Origin:     toAddress(it.Origin),
		}
	}
	return &ups.QuoteRequest{
		Items:       items,
		Destination: toAddress(body.Destination),
	}
}

func toAddress(a addressJSON) rating.Address {
	return rating.Address{
		Street1:    a.Street1,
		Street2:    a.Street2,
		City:       a.City,
		Zone:       a.Zone,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

func toQuoteResponse(set *ups.QuoteSet) quoteResponseJSON {
	resp := quoteResponseJSON{Quotes: make([]quoteJSON, len(set.Quotes))}
	for i, q := range set.Quotes {
		resp.Quotes[i] = quoteJSON{
			ServiceCode: q.ServiceCode,
			Description: q.Description,
			Amount:      q.Amount,
			Currency:    q.Currency,
			Negotiated:  q.Negotiated,
		}
	}
	for _, f := range set.Failures {
		resp.Failures = append(resp.Failures, failureJSON{
			ServiceCode: f.ServiceCode,
			Group:       f.Group,
			Error:       f.Err.Error(),
		})
	}
	return resp
}
