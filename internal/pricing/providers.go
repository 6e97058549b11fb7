package pricing

import (
	"net/url"
	"strings"

	"domainintel/pkg/domain"
	"domainintel/pkg/domainname"
)

// DomainPlaceholder is replaced by the query-escaped domain in URL templates.
const DomainPlaceholder = "{domain}"

// Target returns the domain a pricing report is built for: the lowercase
// hostname of raw without "www.". Unicode labels are kept as typed, so the
// report echoes the domain the caller asked about.
func Target(raw string) domain.NormalizedDomain {
	return domain.NormalizedDomain{Hostname: domainname.ExtractDomain(raw)}
}

// Provider describes one registrar storefront.
type Provider struct {
	Name domain.Provider `yaml:"name"`
	// URLTemplate is the search-results page, containing DomainPlaceholder.
	URLTemplate string `yaml:"urlTemplate"`
	// Freebies are static perks advertised by the provider.
	Freebies []string `yaml:"freebies"`
}

// URL returns the search-results page of p for d.
func (p Provider) URL(d string) string {
	return strings.ReplaceAll(p.URLTemplate, DomainPlaceholder, url.QueryEscape(d))
}

// DefaultProviders returns the built-in providers in report order.
func DefaultProviders() []Provider {
	return []Provider{
		{
			Name:        domain.ProviderHostinger,
			URLTemplate: "https://www.hostinger.com/domain-name-results?domain=" + DomainPlaceholder,
			Freebies:    []string{"Free WHOIS privacy protection", "Free SSL certificate", "Free email account"},
		},
		{
			Name:        domain.ProviderNamecheap,
			URLTemplate: "https://www.namecheap.com/domains/registration/results/?domain=" + DomainPlaceholder,
			Freebies:    []string{"Free WHOIS privacy forever", "Free DNS", "Free email forwarding"},
		},
		{
			Name:        domain.ProviderGoDaddy,
			URLTemplate: "https://www.godaddy.com/domainsearch/find?domainToCheck=" + DomainPlaceholder,
			Freebies:    []string{"Free domain with annual hosting plan", "24/7 support"},
		},
	}
}
