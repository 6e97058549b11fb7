package trust

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"domainintel/pkg/domain"

	"gopkg.in/yaml.v3"
)

// PatternDef is a government hostname pattern and the country it identifies.
type PatternDef struct {
	Country string `yaml:"country"`
	Pattern string `yaml:"pattern"`
}

// TaxonomyDef is the declarative form of a Taxonomy, as found in YAML files.
type TaxonomyDef struct {
	TrustedTLDs        []string          `yaml:"trustedTLDs"`
	SuspiciousTLDs     []string          `yaml:"suspiciousTLDs"`
	GovernmentDomains  map[string]string `yaml:"governmentDomains"`
	GovernmentPatterns []PatternDef      `yaml:"governmentPatterns"`
	ScamKeywords       []string          `yaml:"scamKeywords"`
	TrustedRegistrars  []string          `yaml:"trustedRegistrars"`
	// Weights are the scoring weights. When merging, zero fields of the
	// extra definition keep the current values.
	Weights Weights `yaml:"weights"`
}

// DefaultTaxonomyDef returns the built-in classification tables.
func DefaultTaxonomyDef() TaxonomyDef {
	return TaxonomyDef{
		TrustedTLDs:    []string{".gov", ".edu", ".mil", ".org"},
		SuspiciousTLDs: []string{".tk", ".ml", ".ga", ".cf", ".gq", ".xyz", ".top", ".click", ".loan", ".review"},
		GovernmentDomains: map[string]string{
			"canada.ca":         "Canada",
			"gc.ca":             "Canada",
			"usa.gov":           "United States",
			"whitehouse.gov":    "United States",
			"gov.uk":            "United Kingdom",
			"australia.gov.au":  "Australia",
			"india.gov.in":      "India",
			"govt.nz":           "New Zealand",
			"gov.sg":            "Singapore",
			"europa.eu":         "European Union",
			"service-public.fr": "France",
			"bund.de":           "Germany",
			"gob.mx":            "Mexico",
			"gov.br":            "Brazil",
			"go.jp":             "Japan",
			"gov.za":            "South Africa",
		},
		GovernmentPatterns: []PatternDef{
			{Country: "Canada", Pattern: `^(www\.)?canada\.ca$`},
			{Country: "Canada", Pattern: `^(www\.)?([a-z0-9-]+\.)*gc\.ca$`},
			{Country: "United States", Pattern: `^([a-z0-9-]+\.)+(gov|mil)$`},
			{Country: "United Kingdom", Pattern: `^([a-z0-9-]+\.)*gov\.uk$`},
			{Country: "Australia", Pattern: `^([a-z0-9-]+\.)*gov\.au$`},
			{Country: "India", Pattern: `^([a-z0-9-]+\.)*(gov|nic)\.in$`},
			{Country: "New Zealand", Pattern: `^([a-z0-9-]+\.)*govt\.nz$`},
			{Country: "Singapore", Pattern: `^([a-z0-9-]+\.)*gov\.sg$`},
			{Country: "European Union", Pattern: `^([a-z0-9-]+\.)*europa\.eu$`},
			{Country: "Brazil", Pattern: `^([a-z0-9-]+\.)*gov\.br$`},
			{Country: "Mexico", Pattern: `^([a-z0-9-]+\.)*gob\.mx$`},
			{Country: "Japan", Pattern: `^([a-z0-9-]+\.)*go\.jp$`},
			{Country: "South Africa", Pattern: `^([a-z0-9-]+\.)*gov\.za$`},
			{Country: "Government", Pattern: `^(www\.)?government\.[a-z]{2,3}$`},
		},
		ScamKeywords: []string{
			"free-money", "win-prize", "claim-reward", "verify-account", "urgent-action", "limited-time",
			"act-now", "congratulations", "winner", "lottery", "inheritance", "refund",
		},
		TrustedRegistrars: []string{
			"GoDaddy", "Namecheap", "Google Domains", "Cloudflare", "AWS", "Amazon", "Microsoft", "Network Solutions",
		},
		Weights: DefaultWeights(),
	}
}

// Merge returns def extended with the entries of extra. Government domains in
// extra override built-in labels; weights in extra override non-zero fields.
func (def TaxonomyDef) Merge(extra TaxonomyDef) TaxonomyDef {
	out := TaxonomyDef{
		TrustedTLDs:        append(append([]string{}, def.TrustedTLDs...), extra.TrustedTLDs...),
		SuspiciousTLDs:     append(append([]string{}, def.SuspiciousTLDs...), extra.SuspiciousTLDs...),
		GovernmentDomains:  make(map[string]string, len(def.GovernmentDomains)+len(extra.GovernmentDomains)),
		GovernmentPatterns: append(append([]PatternDef{}, def.GovernmentPatterns...), extra.GovernmentPatterns...),
		ScamKeywords:       append(append([]string{}, def.ScamKeywords...), extra.ScamKeywords...),
		TrustedRegistrars:  append(append([]string{}, def.TrustedRegistrars...), extra.TrustedRegistrars...),
		Weights:            def.Weights.Merge(extra.Weights),
	}
	for k, v := range def.GovernmentDomains {
		out.GovernmentDomains[k] = v
	}
	for k, v := range extra.GovernmentDomains {
		out.GovernmentDomains[k] = v
	}

	return out
}

type governmentPattern struct {
	country string
	re      *regexp.Regexp
}

// Taxonomy holds the static classification tables. It is immutable after
// construction and safe for concurrent use.
type Taxonomy struct {
	trustedTLDs        map[string]struct{}
	suspiciousTLDs     map[string]struct{}
	governmentDomains  map[string]string
	governmentPatterns []governmentPattern
	scamKeywords       []string
	trustedRegistrars  map[string]struct{}
}

func normalizeTLD(tld string) string {
	tld = strings.ToLower(strings.TrimSpace(tld))
	if tld != "" && !strings.HasPrefix(tld, ".") {
		tld = "." + tld
	}

	return tld
}

func set(items []string, norm func(string) string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, it := range items {
		out[norm(it)] = struct{}{}
	}

	return out
}

// NewTaxonomy compiles def. A TLD listed as both trusted and suspicious, or
// an invalid pattern, is an error.
func NewTaxonomy(def TaxonomyDef) (*Taxonomy, error) {
	t := &Taxonomy{
		trustedTLDs:       set(def.TrustedTLDs, normalizeTLD),
		suspiciousTLDs:    set(def.SuspiciousTLDs, normalizeTLD),
		governmentDomains: make(map[string]string, len(def.GovernmentDomains)),
		trustedRegistrars: set(def.TrustedRegistrars, strings.TrimSpace),
	}
	for tld := range t.trustedTLDs {
		if _, ok := t.suspiciousTLDs[tld]; ok {
			return nil, fmt.Errorf("tld %s is both trusted and suspicious", tld)
		}
	}
	for d, country := range def.GovernmentDomains {
		t.governmentDomains[strings.ToLower(strings.TrimSpace(d))] = country
	}
	for _, p := range def.GovernmentPatterns {
		re, err := regexp.Compile("(?i)" + p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("could not compile government pattern %q: %w", p.Pattern, err)
		}
		t.governmentPatterns = append(t.governmentPatterns, governmentPattern{country: p.Country, re: re})
	}
	seen := make(map[string]struct{}, len(def.ScamKeywords))
	for _, k := range def.ScamKeywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if _, dup := seen[k]; k == "" || dup {
			continue
		}
		seen[k] = struct{}{}
		t.scamKeywords = append(t.scamKeywords, k)
	}

	return t, nil
}

// DefaultTaxonomy returns the compiled built-in taxonomy.
func DefaultTaxonomy() *Taxonomy {
	t, err := NewTaxonomy(DefaultTaxonomyDef())
	if err != nil {
		panic(err)
	}

	return t
}

// LoadTaxonomyDef reads a YAML override file and merges it onto the built-in
// definition.
func LoadTaxonomyDef(path string) (TaxonomyDef, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return TaxonomyDef{}, fmt.Errorf("could not read taxonomy file: %w", err)
	}
	var extra TaxonomyDef
	if err := yaml.Unmarshal(b, &extra); err != nil {
		return TaxonomyDef{}, fmt.Errorf("could not parse taxonomy file: %w", err)
	}

	return DefaultTaxonomyDef().Merge(extra), nil
}

// ClassifyTLD classifies a TLD such as ".com" (the leading dot is optional).
func (t *Taxonomy) ClassifyTLD(tld string) domain.TLDClass {
	tld = normalizeTLD(tld)
	if _, ok := t.trustedTLDs[tld]; ok {
		return domain.TLDTrusted
	}
	if _, ok := t.suspiciousTLDs[tld]; ok {
		return domain.TLDSuspicious
	}

	return domain.TLDNeutral
}

// MatchGovernment reports whether host is a known government domain. The
// literal table is consulted first so that it provides the country label when
// both the table and a pattern match.
func (t *Taxonomy) MatchGovernment(host string) domain.GovernmentMatch {
	h := strings.TrimPrefix(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), "."), "www.")
	if country, ok := t.governmentDomains[h]; ok {
		return domain.GovernmentMatch{Matched: true, Country: country}
	}
	for _, p := range t.governmentPatterns {
		if p.re.MatchString(h) {
			return domain.GovernmentMatch{Matched: true, Country: p.country}
		}
	}

	return domain.GovernmentMatch{}
}

// ScanKeywords returns the scam keywords contained in text, in table order.
// The result is empty, never nil, when nothing matches.
func (t *Taxonomy) ScanKeywords(text string) []string {
	lower := strings.ToLower(text)
	hits := []string{}
	for _, k := range t.scamKeywords {
		if strings.Contains(lower, k) {
			hits = append(hits, k)
		}
	}

	return hits
}

// IsTrustedRegistrar reports whether name is on the trusted registrar list.
// The comparison is exact and case-sensitive.
func (t *Taxonomy) IsTrustedRegistrar(name string) bool {
	_, ok := t.trustedRegistrars[name]

	return ok
}
