package pricing

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Extractor pulls one value out of a raw HTML page. It reports false when
// the page holds nothing usable. Implementations must accept any input.
type Extractor interface {
	Extract(html string) (string, bool)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(html string) (string, bool)

// Extract calls f.
func (f ExtractorFunc) Extract(html string) (string, bool) { return f(html) }

var (
	// PriceExtractor selects the smallest positive dollar amount of a page.
	PriceExtractor Extractor = ExtractorFunc(ExtractPrice) //nolint: gochecknoglobals
	// OfferExtractor returns the first promotional phrase of a page.
	OfferExtractor Extractor = ExtractorFunc(ExtractOffer) //nolint: gochecknoglobals

	// The trailing group catches amounts longer than the pattern allows
	// ("$12345", "$1,299") so that they are discarded instead of truncated.
	priceRe = regexp.MustCompile(`\$(\d{1,4}(?:[.,]\d{2})?)(\d?)`) //nolint: gochecknoglobals
	offerRe = regexp.MustCompile( //nolint: gochecknoglobals
		`(?i)(\d{1,3}\s?%\s?off|save\s?\$\s?\d+(?:[.,]\d{2})?|special offer|discount|promo)`)
)

// ExtractPrice scans html for dollar amounts and returns the smallest
// positive one, formatted with two decimals unless it is whole ("$9",
// "$9.99"). A comma is read as the decimal separator.
func ExtractPrice(html string) (string, bool) {
	best := math.Inf(1)
	for _, m := range priceRe.FindAllStringSubmatch(html, -1) {
		if m[2] != "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
		if err != nil || v <= 0 {
			continue
		}
		best = math.Min(best, v)
	}
	if math.IsInf(best, 1) {
		return "", false
	}

	return FormatPrice(best), true
}

// FormatPrice renders v as a dollar amount.
func FormatPrice(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("$%d", int64(v))
	}

	return fmt.Sprintf("$%.2f", v)
}

// ExtractOffer returns the first promotional phrase of html verbatim.
func ExtractOffer(html string) (string, bool) {
	m := offerRe.FindString(html)

	return m, m != ""
}
