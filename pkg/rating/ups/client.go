// Package ups computes shipping-rate quotes through the legacy UPS
// Rating API (XML over HTTP).
package ups

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/tournevent/upsrate/pkg/rating"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const carrierName = "ups"

// QuoteRequest describes one order to be rated: its purchased line
// items and the delivery destination. KnownAddresses optionally seeds
// the package grouping so group keys line up with addresses the caller
// already tracks.
type QuoteRequest struct {
	Items          []rating.LineItem
	Destination    rating.Address
	KnownAddresses []rating.Address
}

// ServiceFailure records one isolated per-service (and per package
// group) failure. Failures never abort the remaining services.
type ServiceFailure struct {
	ServiceCode string
	Group       int
	Err         error
}

// MarshalJSON flattens the wrapped error into its text so failures
// survive serialization.
func (f ServiceFailure) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ServiceCode string `json:"service_code"`
		Group       int    `json:"group"`
		Error       string `json:"error"`
	}{f.ServiceCode, f.Group, f.Err.Error()})
}

// QuoteSet is the outcome of one quote computation: usable quotes in
// enabled-service order, plus every isolated failure encountered.
type QuoteSet struct {
	Quotes   []rating.RateQuote `json:"quotes"`
	Failures []ServiceFailure   `json:"failures,omitempty"`
}

// Client is the UPS rating client.
type Client struct {
	config  Config
	store   rating.StoreProfile
	api     APIClient
	catalog rating.Catalog
	logger  *otelzap.Logger
	tracer  trace.Tracer
}

// New creates a new UPS client.
func New(cfg Config, store rating.StoreProfile, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var api APIClient

	if cfg.UseMock {
		api = NewMockAPIClient()
	} else {
		api = NewHTTPAPIClient(HTTPAPIClientConfig{
			Endpoint: cfg.Endpoint,
			Timeout:  cfg.Timeout,
		})
	}

	return &Client{
		config: cfg,
		store:  store,
		api:    api,
		logger: logger,
		tracer: tracer,
	}
}

// NewWithAPIClient creates a new UPS client with a custom API client.
func NewWithAPIClient(cfg Config, store rating.StoreProfile, api APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return &Client{
		config: cfg,
		store:  store,
		api:    api,
		logger: logger,
		tracer: tracer,
	}
}

// WithCatalog attaches a product catalog used to populate line items
// missing physical attributes before packaging.
func (c *Client) WithCatalog(catalog rating.Catalog) *Client {
	c.catalog = catalog
	return c
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// GetQuotes computes one rate quote per enabled service for the order.
// Packages are built once; each (package group, service) pair becomes
// one Rating API call, issued in parallel across services. Per-call
// failures are isolated into the QuoteSet; configuration and line-item
// data errors abort the whole computation. When no service yields a
// usable quote the error wraps rating.ErrNoQuotes.
func (c *Client) GetQuotes(ctx context.Context, req *QuoteRequest) (*QuoteSet, error) {
	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.Start(ctx, "ups.GetQuotes")
		defer span.End()
	}

	if c.config.AccessLicense == "" || c.config.UserID == "" || c.config.Password == "" {
		return nil, rating.ErrMissingCredentials
	}
	if len(c.config.Services) == 0 {
		return nil, rating.ErrNoServices
	}
	for _, code := range c.config.Services {
		if _, err := ServiceDescription(code); err != nil {
			return nil, err
		}
	}

	items, err := rating.ResolveLineItems(ctx, c.catalog, req.Items)
	if err != nil {
		return nil, err
	}

	strategy := rating.StrategyPerLineItem
	if c.config.AllInOne {
		strategy = rating.StrategyAllInOne
	}
	groups, err := rating.BuildPackages(items, req.KnownAddresses, strategy, c.config.PackageQty)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Requesting UPS rates",
		zap.Int("groups", len(groups)),
		zap.Strings("services", c.config.Services),
		zap.String("destination_postal", req.Destination.PostalCode),
	)

	totals := make(map[string]float64)
	negotiated := make(map[string]bool)
	rated := make(map[string]bool)
	var failures []ServiceFailure
	mu := &sync.Mutex{}

	g, ctx := errgroup.WithContext(ctx)
	for _, code := range c.config.Services {
		code := code
		g.Go(func() error {
			for gi := range groups {
				quote, err := c.rateGroup(ctx, groups[gi], req.Destination, code)
				mu.Lock()
				if err != nil {
					failures = append(failures, ServiceFailure{ServiceCode: code, Group: gi, Err: err})
					mu.Unlock()
					c.logServiceFailure(code, gi, err)
					continue
				}
				totals[code] += quote.Amount
				negotiated[code] = negotiated[code] || quote.Negotiated
				rated[code] = true
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	set := &QuoteSet{Failures: failures}
	for _, code := range c.config.Services {
		if !rated[code] {
			continue
		}
		amount, err := c.config.RateMarkup.Apply(totals[code])
		if err != nil {
			return nil, err
		}
		set.Quotes = append(set.Quotes, rating.RateQuote{
			ServiceCode: code,
			Description: Services[code],
			Amount:      amount,
			Currency:    c.store.Currency,
			Negotiated:  negotiated[code],
		})
	}

	if len(set.Quotes) == 0 {
		errs := make([]error, 0, len(failures)+1)
		errs = append(errs, rating.ErrNoQuotes)
		for _, f := range failures {
			errs = append(errs, f.Err)
		}
		return nil, errors.Join(errs...)
	}
	return set, nil
}

// rateGroup runs one Rating API round trip for a package group.
func (c *Client) rateGroup(ctx context.Context, group rating.PackageGroup, destination rating.Address, serviceCode string) (*rating.RateQuote, error) {
	origin := group.Origin
	if origin == (rating.Address{}) {
		origin = c.store.Address
	}

	doc, err := BuildRateRequest(c.config, c.store, group.Packages, origin, destination, serviceCode)
	if err != nil {
		return nil, err
	}

	body, err := c.api.Rate(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s rate call: %w", carrierName, err)
	}

	return ParseRate(body, serviceCode, c.store.Currency)
}

// logServiceFailure keeps currency mismatches visible as their own
// log signal instead of folding them into generic API failures.
func (c *Client) logServiceFailure(serviceCode string, group int, err error) {
	if errors.Is(err, rating.ErrCurrencyMismatch) {
		c.logger.Warn("Dropping quote on currency mismatch",
			zap.String("service", serviceCode),
			zap.Int("group", group),
			zap.Error(err),
		)
		return
	}
	c.logger.Warn("UPS rate call failed",
		zap.String("service", serviceCode),
		zap.Int("group", group),
		zap.Error(err),
	)
}
