package ups

import (
	"context"
	"time"

	"github.com/tournevent/upsrate/pkg/rating"
)

// Config holds UPS Rating API configuration: credentials, enabled
// services, packaging strategy, and the request flags the Rating API
// understands.
type Config struct {
	// Credentials for the AccessRequest block.
	AccessLicense string
	UserID        string
	Password      string

	// ShipperNumber is the UPS account number of the shipper.
	ShipperNumber string

	// Endpoint is the Rating API base URL; the "Rate" tool name is
	// appended per call.
	Endpoint string

	// Services lists the enabled service codes (see Services).
	Services []string

	PickupType     string
	Classification string

	// UnitSystem selects the measurement system sent to UPS:
	// rating.Inch pairs with pounds, rating.Centimeter with kilograms.
	UnitSystem rating.LengthUnit

	// AllInOne selects the all-in-one packaging strategy for
	// multi-item orders.
	AllInOne bool

	// PackageQty is the per-package quantity that splits a line item's
	// order quantity into identical full packages.
	PackageQty int

	ResidentialQuotes bool
	NegotiatedRates   bool
	Insurance         bool

	RateMarkup   rating.Markup
	WeightMarkup rating.Markup

	Timeout time.Duration
	UseMock bool
}

// APIClient defines the transport for Rating API calls. The request is
// a fully encoded rate-request document; the response is the raw XML
// body. This abstraction allows mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// Rate posts a rate-request document and returns the response body.
	Rate(ctx context.Context, request string) ([]byte, error)
}

// APIError represents an error reported by the UPS API, either at the
// HTTP layer or inside a response document.
type APIError struct {
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Description
}
