package rating

import (
	"errors"
	"fmt"
)

// QuoteError represents a failure while computing a shipping-rate
// quote, attributed to a carrier service code where one applies.
type QuoteError struct {
	ServiceCode string
	Code        string
	Message     string
	StatusCode  int
	Cause       error
}

// Error implements the error interface.
func (e *QuoteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("service %s (%s): %s: %v", e.ServiceCode, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("service %s (%s): %s", e.ServiceCode, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *QuoteError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for QuoteError.
func (e *QuoteError) Is(target error) bool {
	t, ok := target.(*QuoteError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewQuoteError creates a new QuoteError.
func NewQuoteError(serviceCode, code, message string) *QuoteError {
	return &QuoteError{
		ServiceCode: serviceCode,
		Code:        code,
		Message:     message,
	}
}

// WithCause adds a cause to the error.
func (e *QuoteError) WithCause(err error) *QuoteError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *QuoteError) WithStatusCode(code int) *QuoteError {
	e.StatusCode = code
	return e
}

// Sentinel errors for the quote-computation taxonomy. Configuration
// and data errors abort the computation; transport and parse errors
// only skip the affected service.
var (
	// ErrUnknownUnit indicates an unsupported weight or length unit.
	ErrUnknownUnit = errors.New("unknown measurement unit")

	// ErrUnknownMarkupKind indicates an unrecognized markup type.
	ErrUnknownMarkupKind = errors.New("unknown markup kind")

	// ErrMissingAttributes indicates a line item without the physical
	// attributes packaging needs (weight, dimensions).
	ErrMissingAttributes = errors.New("line item missing physical attributes")

	// ErrMissingCredentials indicates incomplete carrier credentials.
	ErrMissingCredentials = errors.New("missing carrier credentials")

	// ErrNoServices indicates no carrier services are enabled.
	ErrNoServices = errors.New("no carrier services enabled")

	// ErrUnknownService indicates a service code the carrier catalog
	// does not know.
	ErrUnknownService = errors.New("unknown carrier service code")

	// ErrNoQuote indicates the carrier response carried no rated
	// shipment for the requested service.
	ErrNoQuote = errors.New("no rate for service")

	// ErrCurrencyMismatch indicates the carrier charge is denominated
	// in a currency other than the store currency. The quote is
	// dropped for that service, never converted.
	ErrCurrencyMismatch = errors.New("charge currency does not match store currency")

	// ErrNoQuotes indicates no service produced a usable quote.
	ErrNoQuotes = errors.New("no usable quotes")
)

// IsConfigurationError reports whether the error aborts quote
// computation outright rather than skipping a single service.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrUnknownUnit) ||
		errors.Is(err, ErrUnknownMarkupKind) ||
		errors.Is(err, ErrMissingCredentials) ||
		errors.Is(err, ErrNoServices)
}
