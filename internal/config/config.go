package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/tournevent/upsrate/pkg/rating"
	"github.com/tournevent/upsrate/pkg/rating/ups"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service: the UPS Rating API
// credentials and flags, and the store profile rates are computed for.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// UPS Rating API
	UPSAccessLicense  string   `envconfig:"UPS_ACCESS_LICENSE"`
	UPSUserID         string   `envconfig:"UPS_USER_ID"`
	UPSPassword       string   `envconfig:"UPS_PASSWORD"`
	UPSShipperNumber  string   `envconfig:"UPS_SHIPPER_NUMBER"`
	UPSEndpoint       string   `envconfig:"UPS_ENDPOINT" default:"https://wwwcie.ups.com/ups.app/xml/"`
	UPSServices       []string `envconfig:"UPS_SERVICES" default:"03"`
	UPSPickupType     string   `envconfig:"UPS_PICKUP_TYPE" default:"01"`
	UPSClassification string   `envconfig:"UPS_CLASSIFICATION" default:"04"`
	UPSUnitSystem     string   `envconfig:"UPS_UNIT_SYSTEM" default:"in"`
	UPSUseMock        bool     `envconfig:"UPS_USE_MOCK" default:"false"`

	// Packaging
	UPSAllInOne   bool `envconfig:"UPS_ALL_IN_ONE" default:"false"`
	UPSPackageQty int  `envconfig:"UPS_PACKAGE_QTY" default:"1"`

	// Quote options
	UPSResidential     bool `envconfig:"UPS_RESIDENTIAL_QUOTES" default:"false"`
	UPSNegotiatedRates bool `envconfig:"UPS_NEGOTIATED_RATES" default:"false"`
	UPSInsurance       bool `envconfig:"UPS_INSURANCE" default:"false"`

	// Markup
	UPSRateMarkup       string `envconfig:"UPS_RATE_MARKUP" default:"0"`
	UPSRateMarkupType   string `envconfig:"UPS_RATE_MARKUP_TYPE" default:"percentage"`
	UPSWeightMarkup     string `envconfig:"UPS_WEIGHT_MARKUP" default:"0"`
	UPSWeightMarkupType string `envconfig:"UPS_WEIGHT_MARKUP_TYPE" default:"mass"`

	// Store profile
	StoreName       string `envconfig:"STORE_NAME"`
	StoreOwner      string `envconfig:"STORE_OWNER"`
	StoreEmail      string `envconfig:"STORE_EMAIL"`
	StorePhone      string `envconfig:"STORE_PHONE"`
	StoreFax        string `envconfig:"STORE_FAX"`
	StoreStreet1    string `envconfig:"STORE_STREET1"`
	StoreStreet2    string `envconfig:"STORE_STREET2"`
	StoreCity       string `envconfig:"STORE_CITY"`
	StoreZone       string `envconfig:"STORE_ZONE"`
	StorePostalCode string `envconfig:"STORE_POSTAL_CODE"`
	StoreCountry    string `envconfig:"STORE_COUNTRY" default:"US"`
	StoreCurrency   string `envconfig:"STORE_CURRENCY" default:"USD"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"upsrate"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// UPS maps the environment configuration to the carrier client config.
func (c *Config) UPS() ups.Config {
	return ups.Config{
		AccessLicense:     c.UPSAccessLicense,
		UserID:            c.UPSUserID,
		Password:          c.UPSPassword,
		ShipperNumber:     c.UPSShipperNumber,
		Endpoint:          c.UPSEndpoint,
		Services:          c.UPSServices,
		PickupType:        c.UPSPickupType,
		Classification:    c.UPSClassification,
		UnitSystem:        rating.LengthUnit(c.UPSUnitSystem),
		AllInOne:          c.UPSAllInOne,
		PackageQty:        c.UPSPackageQty,
		ResidentialQuotes: c.UPSResidential,
		NegotiatedRates:   c.UPSNegotiatedRates,
		Insurance:         c.UPSInsurance,
		RateMarkup:        rating.Markup{Raw: c.UPSRateMarkup, Kind: rating.MarkupKind(c.UPSRateMarkupType)},
		WeightMarkup:      rating.Markup{Raw: c.UPSWeightMarkup, Kind: rating.MarkupKind(c.UPSWeightMarkupType)},
		UseMock:           c.UPSUseMock,
	}
}

// Store maps the environment configuration to the store profile.
func (c *Config) Store() rating.StoreProfile {
	return rating.StoreProfile{
		Name:  c.StoreName,
		Owner: c.StoreOwner,
		Email: c.StoreEmail,
		Phone: c.StorePhone,
		Fax:   c.StoreFax,
		Address: rating.Address{
			Street1:    c.StoreStreet1,
			Street2:    c.StoreStreet2,
			City:       c.StoreCity,
			Zone:       c.StoreZone,
			PostalCode: c.StorePostalCode,
			Country:    c.StoreCountry,
		},
		Currency: c.StoreCurrency,
	}
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.StringSlice("ups.services", c.UPSServices),
		attribute.Bool("ups.all_in_one", c.UPSAllInOne),
		attribute.Bool("ups.negotiated_rates", c.UPSNegotiatedRates),
	}
}
