package domain

import "time"

// NormalizedDomain is a lowercase hostname without scheme and without a
// leading "www." label. It is always derived from a syntactically valid URL.
type NormalizedDomain struct {
	Hostname string `json:"hostname"`
}

// String returns the hostname.
func (d NormalizedDomain) String() string { return d.Hostname }

// ValidationResult is the outcome of validating free-text URL input.
type ValidationResult struct {
	IsValid bool   `json:"isValid"`
	Error   string `json:"error,omitempty"`
}

// SSLSignal reports whether the raw input used the https scheme. It is a
// scheme-string heuristic and says nothing about the certificate.
type SSLSignal struct {
	HasSSL  bool   `json:"hasSSL"`
	Message string `json:"message"`
}

// TLDClass is the reputation class of a top-level domain.
type TLDClass string

const (
	TLDTrusted    TLDClass = "TRUSTED"
	TLDSuspicious TLDClass = "SUSPICIOUS"
	TLDNeutral    TLDClass = "NEUTRAL"
)

// GovernmentMatch is the result of matching a hostname against known
// government domains. Country is empty when Matched is false.
type GovernmentMatch struct {
	Matched bool   `json:"matched"`
	Country string `json:"country,omitempty"`
}

// TrustSignalSet holds the raw evidence collected for a single domain. It is
// assembled once per analysis and never mutated afterwards.
type TrustSignalSet struct {
	// Hostname is the normalized hostname the signals were collected for.
	Hostname string `json:"hostname"`
	// HasSSL mirrors SSLSignal.HasSSL.
	HasSSL bool `json:"hasSSL"`
	// TLD is the last label of the hostname including the leading dot, e.g. ".com".
	TLD string `json:"tld"`
	// TLDClass classifies TLD.
	TLDClass TLDClass `json:"tldClass"`
	// Registrar is the canonical registrar name, empty when unknown.
	Registrar string `json:"registrar,omitempty"`
	// TrustedRegistrar reports whether Registrar is on the trusted list.
	TrustedRegistrar bool `json:"trustedRegistrar"`
	// Government is the government-domain match.
	Government GovernmentMatch `json:"government"`
	// KeywordHits lists matched scam keywords; empty means no hit.
	KeywordHits []string `json:"keywordHits"`
	// AgeYears is the registration age in fractional years, nil when unknown.
	AgeYears *float64 `json:"ageYears"`
	// RegistrationSource names the data source that produced registrar/age.
	RegistrationSource string `json:"registrationSource,omitempty"`
}

// Band is a qualitative trust bucket derived from a score.
type Band string

const (
	BandVeryHigh Band = "VERY_HIGH"
	BandHigh     Band = "HIGH"
	BandMedium   Band = "MEDIUM"
	BandLow      Band = "LOW"
	BandVeryLow  Band = "VERY_LOW"
)

// BandFor maps a score to its band. Lower bounds are inclusive.
func BandFor(value int) Band {
	switch {
	case value >= 80:
		return BandVeryHigh
	case value >= 60:
		return BandHigh
	case value >= 40:
		return BandMedium
	case value >= 20:
		return BandLow
	default:
		return BandVeryLow
	}
}

// TrustScore is a composite score in [0,100] and its band.
type TrustScore struct {
	Value int  `json:"value"`
	Band  Band `json:"band"`
}

// Adjustment records one term that contributed to a score.
type Adjustment struct {
	Factor string  `json:"factor"`
	Delta  float64 `json:"delta"`
}

// TrustReport is the full outcome of a trust analysis.
type TrustReport struct {
	Input       string         `json:"input"`
	URL         string         `json:"url"`
	Domain      string         `json:"domain"`
	SSL         SSLSignal      `json:"ssl"`
	Signals     TrustSignalSet `json:"signals"`
	Score       TrustScore     `json:"score"`
	Adjustments []Adjustment   `json:"adjustments"`
	GeneratedAt time.Time      `json:"generatedAt"`
}
