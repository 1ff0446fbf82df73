package rating

import (
	"fmt"
	"strconv"
	"strings"
)

// MarkupKind selects how a markup value transforms its input.
type MarkupKind string

const (
	// MarkupPercentage adds value*markup/100.
	MarkupPercentage MarkupKind = "percentage"

	// MarkupMultiplier multiplies by the markup.
	MarkupMultiplier MarkupKind = "multiplier"

	// MarkupCurrency adds the markup as a flat currency amount.
	// Used for rate markup.
	MarkupCurrency MarkupKind = "currency"

	// MarkupMass adds the markup as a flat weight amount.
	// Used for pre-request weight markup.
	MarkupMass MarkupKind = "mass"
)

// Markup is a configured markup transform applied to a computed rate
// before the customer sees it, or to a shipment weight before the
// carrier is asked for a quote.
type Markup struct {
	// Raw is the configured markup value. A non-numeric value
	// disables the markup.
	Raw  string
	Kind MarkupKind
}

// Apply transforms value per the markup. A non-numeric Raw leaves the
// value unchanged. An unknown kind also leaves the value unchanged but
// reports ErrUnknownMarkupKind so misconfiguration is not silent.
func (m Markup) Apply(value float64) (float64, error) {
	raw := strings.TrimSpace(m.Raw)
	markup, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return value, nil
	}

	switch m.Kind {
	case MarkupPercentage:
		return value + value*markup/100, nil
	case MarkupMultiplier:
		return value * markup, nil
	case MarkupCurrency, MarkupMass:
		return value + markup, nil
	default:
		return value, fmt.Errorf("%w: %q", ErrUnknownMarkupKind, m.Kind)
	}
}
