package ups

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/tournevent/upsrate/pkg/rating"
)

// XML structures for the Rating API response. Only the elements the
// quote computation reads are modeled.

type ratingServiceSelectionResponse struct {
	XMLName       xml.Name       `xml:"RatingServiceSelectionResponse"`
	Response      responseBlock  `xml:"Response"`
	RatedShipment *ratedShipment `xml:"RatedShipment"`
}

type responseBlock struct {
	ResponseStatusCode        string         `xml:"ResponseStatusCode"`
	ResponseStatusDescription string         `xml:"ResponseStatusDescription"`
	Error                     *responseError `xml:"Error"`
}

type responseError struct {
	ErrorSeverity    string `xml:"ErrorSeverity"`
	ErrorCode        string `xml:"ErrorCode"`
	ErrorDescription string `xml:"ErrorDescription"`
}

type ratedShipment struct {
	TotalCharges    chargeBlock      `xml:"TotalCharges"`
	NegotiatedRates *negotiatedRates `xml:"NegotiatedRates"`
}

type negotiatedRates struct {
	NetSummaryCharges netSummaryCharges `xml:"NetSummaryCharges"`
}

type netSummaryCharges struct {
	GrandTotal chargeBlock `xml:"GrandTotal"`
}

type chargeBlock struct {
	CurrencyCode  string `xml:"CurrencyCode"`
	MonetaryValue string `xml:"MonetaryValue"`
}

// ParseRate extracts a normalized rate quote from a Rating API
// response document. The negotiated net total takes precedence over the
// published total charges when both are present. A missing
// RatedShipment yields rating.ErrNoQuote; a charge in a currency other
// than expectedCurrency yields rating.ErrCurrencyMismatch and the quote
// is dropped rather than converted.
func ParseRate(doc []byte, serviceCode, expectedCurrency string) (*rating.RateQuote, error) {
	var resp ratingServiceSelectionResponse
	if err := xml.Unmarshal(doc, &resp); err != nil {
		return nil, fmt.Errorf("decoding rate response: %w", err)
	}

	if e := resp.Response.Error; e != nil && e.ErrorCode != "" {
		return nil, &APIError{Code: e.ErrorCode, Description: e.ErrorDescription}
	}
	if resp.RatedShipment == nil {
		return nil, fmt.Errorf("%w: %s", rating.ErrNoQuote, serviceCode)
	}

	charge := resp.RatedShipment.TotalCharges
	negotiated := false
	if nr := resp.RatedShipment.NegotiatedRates; nr != nil {
		charge = nr.NetSummaryCharges.GrandTotal
		negotiated = true
	}

	if charge.CurrencyCode != "" && charge.CurrencyCode != expectedCurrency {
		return nil, fmt.Errorf("%w: service %s quoted in %s, store currency is %s",
			rating.ErrCurrencyMismatch, serviceCode, charge.CurrencyCode, expectedCurrency)
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(charge.MonetaryValue), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s has unparseable charge %q",
			rating.ErrNoQuote, serviceCode, charge.MonetaryValue)
	}

	return &rating.RateQuote{
		ServiceCode: serviceCode,
		Description: Services[serviceCode],
		Amount:      amount,
		Currency:    expectedCurrency,
		Negotiated:  negotiated,
	}, nil
}
