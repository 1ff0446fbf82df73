package ups

import (
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/tournevent/upsrate/pkg/rating"
)

// Thresholds for the LargePackageIndicator: length plus girth above 130
// but within the 165 maximum, in the configured length unit.
const (
	largePackageMin = 130.0
	largePackageMax = 165.0
)

// XML structures for the legacy UPS Rating API. Element order follows
// the wire schema exactly; numeric fields are pre-formatted strings so
// weights always carry one decimal and dimensions two, with a '.'
// separator regardless of locale.

type accessRequest struct {
	XMLName             xml.Name `xml:"AccessRequest"`
	Lang                string   `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
	AccessLicenseNumber string   `xml:"AccessLicenseNumber"`
	UserID              string   `xml:"UserId"`
	Password            string   `xml:"Password"`
}

type ratingServiceSelectionRequest struct {
	XMLName                xml.Name      `xml:"RatingServiceSelectionRequest"`
	Lang                   string        `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
	Request                requestBlock  `xml:"Request"`
	PickupType             codeBlock     `xml:"PickupType"`
	CustomerClassification codeBlock     `xml:"CustomerClassification"`
	Shipment               shipmentBlock `xml:"Shipment"`
}

type requestBlock struct {
	TransactionReference transactionReference `xml:"TransactionReference"`
	RequestAction        string               `xml:"RequestAction"`
	RequestOption        string               `xml:"RequestOption"`
}

type transactionReference struct {
	CustomerContext string `xml:"CustomerContext"`
	XpciVersion     string `xml:"XpciVersion"`
}

type codeBlock struct {
	Code string `xml:"Code"`
}

type codeDescription struct {
	Code        string `xml:"Code"`
	Description string `xml:"Description"`
}

type shipmentBlock struct {
	Shipper         shipperBlock     `xml:"Shipper"`
	ShipTo          shipToBlock      `xml:"ShipTo"`
	ShipFrom        shipFromBlock    `xml:"ShipFrom"`
	ShipmentWeight  weightBlock      `xml:"ShipmentWeight"`
	Service         codeDescription  `xml:"Service"`
	Packages        []packageBlock   `xml:"Package"`
	RateInformation *rateInformation `xml:"RateInformation,omitempty"`
}

type shipperBlock struct {
	ShipperNumber string       `xml:"ShipperNumber"`
	Address       addressBlock `xml:"Address"`
}

type shipToBlock struct {
	Address addressBlock `xml:"Address"`
}

type shipFromBlock struct {
	Address addressBlock `xml:"Address"`
}

type addressBlock struct {
	City                        string    `xml:"City,omitempty"`
	StateProvinceCode           string    `xml:"StateProvinceCode"`
	PostalCode                  string    `xml:"PostalCode"`
	CountryCode                 string    `xml:"CountryCode"`
	ResidentialAddressIndicator *struct{} `xml:"ResidentialAddressIndicator,omitempty"`
}

type weightBlock struct {
	UnitOfMeasurement codeDescription `xml:"UnitOfMeasurement"`
	Weight            string          `xml:"Weight"`
}

type packageBlock struct {
	PackagingType         codeBlock              `xml:"PackagingType"`
	Dimensions            *dimensionsBlock       `xml:"Dimensions,omitempty"`
	PackageWeight         weightBlock            `xml:"PackageWeight"`
	LargePackageIndicator *struct{}              `xml:"LargePackageIndicator,omitempty"`
	ServiceOptions        *packageServiceOptions `xml:"PackageServiceOptions,omitempty"`
}

type dimensionsBlock struct {
	UnitOfMeasurement codeBlock `xml:"UnitOfMeasurement"`
	Length            string    `xml:"Length"`
	Width             string    `xml:"Width"`
	Height            string    `xml:"Height"`
}

type packageServiceOptions struct {
	InsuredValue insuredValue `xml:"InsuredValue"`
}

type insuredValue struct {
	CurrencyCode  string `xml:"CurrencyCode"`
	MonetaryValue string `xml:"MonetaryValue"`
}

type rateInformation struct {
	NegotiatedRatesIndicator struct{} `xml:"NegotiatedRatesIndicator"`
}

var present = &struct{}{}

// BuildRateRequest serializes one (package group, service) pair into
// the Rating API request: the AccessRequest document followed by the
// RatingServiceSelectionRequest document, each with its own XML
// declaration as the legacy endpoint expects. A Package record with
// Qty = N expands into N identical <Package> entries, and every entry's
// floored weight contributes to the aggregate shipment weight.
func BuildRateRequest(cfg Config, store rating.StoreProfile, packages []*rating.Package, origin, destination rating.Address, serviceCode string) (string, error) {
	unitCode, unitName, weightUnit, err := shipmentUnits(cfg.UnitSystem)
	if err != nil {
		return "", err
	}
	serviceDesc, err := ServiceDescription(serviceCode)
	if err != nil {
		return "", err
	}
	lengthFactor, err := rating.ConvertLength(1, rating.Inch, cfg.UnitSystem)
	if err != nil {
		return "", err
	}

	var shipmentWeight float64
	var blocks []packageBlock
	for _, pkg := range packages {
		weight, err := rating.ConvertWeight(pkg.WeightLB(), rating.Pound, weightUnit)
		if err != nil {
			return "", err
		}
		weight, err = cfg.WeightMarkup.Apply(weight)
		if err != nil {
			return "", err
		}
		weight = math.Max(1, weight)

		block := packageBlock{
			PackagingType: codeBlock{Code: pkg.Container},
			PackageWeight: weightBlock{
				UnitOfMeasurement: codeDescription{Code: unitCode, Description: unitName},
				Weight:            formatWeight(weight),
			},
		}

		if pkg.Container == rating.DefaultContainer && pkg.Length > 0 && pkg.Width > 0 && pkg.Height > 0 {
			length, width := pkg.Length, pkg.Width
			if length < width {
				length, width = width, length
			}
			block.Dimensions = &dimensionsBlock{
				UnitOfMeasurement: codeBlock{Code: string(cfg.UnitSystem)},
				Length:            formatDimension(length * lengthFactor),
				Width:             formatDimension(width * lengthFactor),
				Height:            formatDimension(pkg.Height * lengthFactor),
			}
		}

		size := pkg.Length*lengthFactor + lengthFactor*pkg.Girth
		if size > largePackageMin && size <= largePackageMax {
			block.LargePackageIndicator = present
		}

		if cfg.Insurance {
			block.ServiceOptions = &packageServiceOptions{
				InsuredValue: insuredValue{
					CurrencyCode:  store.Currency,
					MonetaryValue: formatMoney(pkg.Price),
				},
			}
		}

		for i := 0; i < pkg.Qty; i++ {
			shipmentWeight += weight
			blocks = append(blocks, block)
		}
	}

	req := ratingServiceSelectionRequest{
		Lang: "en-US",
		Request: requestBlock{
			TransactionReference: transactionReference{
				CustomerContext: "Complex Rate Request",
				XpciVersion:     "1.0001",
			},
			RequestAction: "Rate",
			RequestOption: "rate",
		},
		PickupType:             codeBlock{Code: cfg.PickupType},
		CustomerClassification: codeBlock{Code: cfg.Classification},
		Shipment: shipmentBlock{
			Shipper: shipperBlock{
				ShipperNumber: cfg.ShipperNumber,
				Address: addressBlock{
					City:              store.Address.City,
					StateProvinceCode: store.Address.Zone,
					PostalCode:        store.Address.PostalCode,
					CountryCode:       store.Address.Country,
				},
			},
			ShipTo: shipToBlock{
				Address: addressBlock{
					City:              destination.City,
					StateProvinceCode: destination.Zone,
					PostalCode:        destination.PostalCode,
					CountryCode:       destination.Country,
				},
			},
			ShipFrom: shipFromBlock{
				Address: addressBlock{
					StateProvinceCode: origin.Zone,
					PostalCode:        origin.PostalCode,
					CountryCode:       origin.Country,
				},
			},
			ShipmentWeight: weightBlock{
				UnitOfMeasurement: codeDescription{Code: unitCode, Description: unitName},
				Weight:            formatWeight(shipmentWeight),
			},
			Service:  codeDescription{Code: serviceCode, Description: serviceDesc},
			Packages: blocks,
		},
	}

	if cfg.ResidentialQuotes {
		req.Shipment.ShipTo.Address.ResidentialAddressIndicator = present
	}
	if cfg.NegotiatedRates {
		req.Shipment.RateInformation = &rateInformation{}
	}

	access := accessRequest{
		Lang:                "en-US",
		AccessLicenseNumber: cfg.AccessLicense,
		UserID:              cfg.UserID,
		Password:            cfg.Password,
	}

	accessDoc, err := xml.MarshalIndent(access, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling access request: %w", err)
	}
	rateDoc, err := xml.MarshalIndent(req, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling rate request: %w", err)
	}

	return xml.Header + string(accessDoc) + "\n" + xml.Header + string(rateDoc) + "\n", nil
}

// shipmentUnits maps the configured unit system to the Rating API
// weight unit: inches pair with pounds, centimeters with kilograms.
func shipmentUnits(system rating.LengthUnit) (code, name string, unit rating.WeightUnit, err error) {
	switch system {
	case rating.Inch:
		return "LBS", "Pounds", rating.Pound, nil
	case rating.Centimeter:
		return "KGS", "Kilograms", rating.Kilogram, nil
	default:
		return "", "", "", fmt.Errorf("%w: unit system %q", rating.ErrUnknownUnit, system)
	}
}

func formatWeight(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatDimension(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
