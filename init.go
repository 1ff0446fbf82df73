package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tournevent/upsrate/internal/config"
	"github.com/tournevent/upsrate/internal/telemetry"
	"github.com/tournevent/upsrate/pkg/rating"
	"github.com/tournevent/upsrate/pkg/rating/ups"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return nil, func(context.Context) error { return nil }, nil
	}
	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
}

func newUPSClient(cfg *config.Config, logger *otelzap.Logger, tracer trace.Tracer) *ups.Client {
	return ups.New(cfg.UPS(), cfg.Store(), logger, tracer)
}

// orderFile is the on-disk order format for the quote command: line
// items plus the delivery address, mirroring the server's JSON body.
type orderFile struct {
	Items       []rating.LineItem `json:"items"`
	Destination rating.Address    `json:"destination"`
}

func loadOrderFile(path string) (*ups.QuoteRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading order file: %w", err)
	}
	var order orderFile
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("parsing order file: %w", err)
	}
	return &ups.QuoteRequest{
		Items:       order.Items,
		Destination: order.Destination,
	}, nil
}
