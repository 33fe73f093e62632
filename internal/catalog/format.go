package catalog

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// PriceOnRequest is what an absent price renders as. Absence means the
// agent quotes on request; it is not a zero price.
const PriceOnRequest = "Price on request"

var pricePrinter = message.NewPrinter(language.English)

// FormatPrice renders a price for display: nil becomes PriceOnRequest, any
// number (including 0) becomes a grouped euro amount, e.g. "€250,000".
// Deterministic for a given input.
func FormatPrice(price *float64) string {
	if price == nil {
		return PriceOnRequest
	}
	return pricePrinter.Sprintf("€%v", number.Decimal(*price, number.MaxFractionDigits(0)))
}
