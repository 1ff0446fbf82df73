package ups

import (
	"fmt"

	"github.com/tournevent/upsrate/pkg/rating"
)

// Services maps UPS Rating API service codes to display descriptions.
var Services = map[string]string{
	"01": "UPS Next Day Air",
	"02": "UPS 2nd Day Air",
	"03": "UPS Ground",
	"07": "UPS Worldwide Express",
	"08": "UPS Worldwide Expedited",
	"11": "UPS Standard",
	"12": "UPS 3 Day Select",
	"13": "UPS Next Day Air Saver",
	"14": "UPS Next Day Air Early A.M.",
	"54": "UPS Worldwide Express Plus",
	"59": "UPS 2nd Day Air A.M.",
	"65": "UPS Saver",
}

// PackageTypes maps UPS packaging-type codes to descriptions. "02"
// (customer supplied) is the only type that carries a dimensions block
// in rate requests.
var PackageTypes = map[string]string{
	"00": "Unknown",
	"01": "UPS Letter",
	"02": "Customer Supplied Package",
	"03": "Tube",
	"04": "PAK",
	"21": "UPS Express Box",
	"24": "UPS 25KG Box",
	"25": "UPS 10KG Box",
	"30": "Pallet",
	"2a": "Small Express Box",
	"2b": "Medium Express Box",
	"2c": "Large Express Box",
}

// ServiceDescription returns the description for a service code, or
// ErrUnknownService for codes outside the Rating API catalog.
func ServiceDescription(code string) (string, error) {
	desc, ok := Services[code]
	if !ok {
		return "", fmt.Errorf("%w: %q", rating.ErrUnknownService, code)
	}
	return desc, nil
}
