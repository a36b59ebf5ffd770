package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Display pricing rule applied when a draft is generated from a scraped product:
// the storefront shows twice the supplier price, struck through at three times.
var (
	DisplayPriceMultiplier         = decimal.NewFromInt(2)
	DisplayOriginalPriceMultiplier = decimal.NewFromInt(3)
)

// DisplayPricing applies the display pricing rule to the real supplier price.
func DisplayPricing(realPrice decimal.Decimal) (price, original decimal.Decimal) {
	return realPrice.Mul(DisplayPriceMultiplier).Round(2), realPrice.Mul(DisplayOriginalPriceMultiplier).Round(2)
}

// ParsePrice reads a scraped amount such as "19,99", "1 299.00" or "1.299,00".
// The last separator is decimal unless exactly three digits follow it.
func ParsePrice(raw string) (decimal.Decimal, error) {
	s := priceSpaces.Replace(strings.TrimSpace(raw))
	if i := strings.LastIndexAny(s, ".,"); i >= 0 {
		whole := strings.NewReplacer(".", "", ",", "").Replace(s[:i])
		frac := s[i+1:]
		if len(frac) == 3 {
			s = whole + frac
		} else {
			s = whole + "." + frac
		}
	}
	return decimal.NewFromString(s)
}

var priceSpaces = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "")

var currencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"CAD": "CA$",
}

// FormatPrice renders an amount with two decimals and its currency symbol.
// Euro amounts use the French convention ("39,98 €").
func FormatPrice(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	fixed := amount.StringFixed(2)
	symbol, ok := currencySymbols[strings.ToUpper(currency)]
	if !ok {
		return fixed + " " + strings.ToUpper(currency)
	}
	if strings.ToUpper(currency) == "EUR" {
		return strings.Replace(fixed, ".", ",", 1) + " " + symbol
	}
	return symbol + fixed
}
