// Package rating provides the carrier-agnostic core for computing
// shipping-rate quotes: unit conversion, packaging of order line items
// into physical packages, and rate/weight markup.
package rating

import (
	"strings"
)

// WeightUnit represents a weight measurement unit.
type WeightUnit string

const (
	Gram     WeightUnit = "g"
	Kilogram WeightUnit = "kg"
	Pound    WeightUnit = "lb"
	Ounce    WeightUnit = "oz"
)

// LengthUnit represents a dimension measurement unit.
type LengthUnit string

const (
	Inch       LengthUnit = "in"
	Centimeter LengthUnit = "cm"
)

// PackageSize classifies a package for carrier rating purposes.
type PackageSize string

const (
	SizeRegular PackageSize = "REGULAR"
	SizeLarge   PackageSize = "LARGE"
)

// PackagingStrategy selects how order line items are binned into packages.
type PackagingStrategy string

const (
	// StrategyAllInOne accumulates all line items of an origin address
	// into a single package. Only meaningful for multi-item orders.
	StrategyAllInOne PackagingStrategy = "all_in_one"

	// StrategyPerLineItem packs each line item separately, splitting
	// by the per-package quantity cap.
	StrategyPerLineItem PackagingStrategy = "per_line_item"
)

// Address represents a structured postal address.
type Address struct {
	Street1    string `json:"street1"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city"`
	Zone       string `json:"zone"` // state or province code
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// SamePhysicalLocation reports whether two addresses denote the same
// physical location. Comparison is case-insensitive on normalized
// fields; it is used for grouping packages by shipping origin, not for
// display equality.
func (a Address) SamePhysicalLocation(b Address) bool {
	return fold(a.Street1) == fold(b.Street1) &&
		fold(a.Street2) == fold(b.Street2) &&
		fold(a.City) == fold(b.City) &&
		fold(a.Zone) == fold(b.Zone) &&
		fold(a.PostalCode) == fold(b.PostalCode) &&
		fold(a.Country) == fold(b.Country)
}

func fold(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// LineItem is a purchased order line as seen by the packaging
// algorithm. It is fully populated before packaging begins and is
// read-only input; physical attributes come from the product catalog.
type LineItem struct {
	ProductID string `json:"product_id"`
	Model     string `json:"model,omitempty"` // used as package description

	Qty   int     `json:"qty"`
	Price float64 `json:"price"` // unit price in store currency

	Weight     float64    `json:"weight"`
	WeightUnit WeightUnit `json:"weight_unit"`

	// PkgQty is how many units of this product one full physical
	// package holds; it sizes the weight of full-package records.
	// Zero means one unit per package.
	PkgQty int `json:"pkg_qty,omitempty"`

	Length     float64    `json:"length"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	LengthUnit LengthUnit `json:"length_unit"`

	// Container is the UPS packaging-type code hint for this product
	// ("02" customer-supplied when empty).
	Container string `json:"container,omitempty"`

	// Origin is the default shipping-origin address of the product.
	Origin Address `json:"origin"`
}

// Package describes one physical shippable unit, or Qty identical such
// units. Weight is always kept normalized as whole pounds plus a
// fractional ounce remainder (0 <= Ounces < 16) once built.
type Package struct {
	Description string
	Price       float64
	Qty         int

	Container string // UPS packaging-type code

	Pounds float64
	Ounces float64

	Size       PackageSize
	Machinable bool

	// Dimensions in inches. Girth = 2*Width + 2*Height.
	Length float64
	Width  float64
	Height float64
	Girth  float64
}

// WeightLB returns the package weight in pounds.
func (p *Package) WeightLB() float64 {
	return p.Pounds + p.Ounces/ozPerLB
}

// PackageGroup is the ordered sequence of packages shipping from one
// origin address.
type PackageGroup struct {
	Origin   Address
	Packages []*Package
}

// StoreProfile identifies the store on whose behalf rates are
// requested: shipper identity, contact details, address and currency.
type StoreProfile struct {
	Name    string
	Owner   string
	Email   string
	Phone   string
	Fax     string
	Address Address

	// Currency is the ISO 4217 store currency code; carrier charges in
	// any other currency are rejected.
	Currency string
}

// RateQuote is a normalized per-service shipping rate.
type RateQuote struct {
	ServiceCode string  `json:"service_code"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`

	// Negotiated is set when the amount came from a negotiated-rates
	// block rather than the published total charges.
	Negotiated bool `json:"negotiated,omitempty"`
}
