package trust

import (
	"strings"
	"time"
)

// NotAvailable is the placeholder some sources use instead of a date.
const NotAvailable = "Information not available"

// yearHours is the length of a 365.25-day year in hours.
const yearHours = 365.25 * 24

// dateLayouts are the registration date formats seen in RDAP and WHOIS output.
var dateLayouts = []string{ //nolint: gochecknoglobals
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-2006 15:04:05 MST",
	"2006.01.02",
	"2006/01/02",
	"02.01.2006",
	"January 2 2006",
	"January 2, 2006",
	time.RFC1123,
	time.RFC1123Z,
	time.UnixDate,
}

// ParseDate parses a registration date in any of the supported layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// CalculateDomainAge returns the age in fractional 365.25-day years of a
// domain registered at registrationDate, measured against the current time.
// It reports false for empty, placeholder, unparsable or future dates.
func CalculateDomainAge(registrationDate string) (float64, bool) {
	return DomainAgeAt(registrationDate, time.Now())
}

// DomainAgeAt is CalculateDomainAge measured against now.
func DomainAgeAt(registrationDate string, now time.Time) (float64, bool) {
	s := strings.TrimSpace(registrationDate)
	if s == "" || strings.EqualFold(s, NotAvailable) {
		return 0, false
	}
	t, ok := ParseDate(s)
	if !ok || t.After(now) {
		return 0, false
	}

	return now.Sub(t).Hours() / yearHours, true
}
