package scraper

import (
	"regexp"
	"strconv"
)

var nonPriceChars = regexp.MustCompile(`[^\d.]`)

// NormalizePrice turns raw currency text into a validated numeric price.
// Everything that is not a digit or a decimal point is stripped, so "₹1,23,456.00"
// becomes 123456.0. A return of 0 is the "no valid price" sentinel; callers
// treat it the same as a missing field and drop the listing.
//
// Stripping separators as non-digits is safe for "," but corrupts prices that
// use "." as a thousands separator. Known limitation, kept on purpose.
func NormalizePrice(raw string, ceiling float64) float64 {
	if raw == "" {
		return 0
	}
	cleaned := nonPriceChars.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	// Plausibility filter: pages embed SKU codes and serial numbers in
	// price-adjacent markup.
	if price <= 0 || price >= ceiling {
		return 0
	}
	return price
}
