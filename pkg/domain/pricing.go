package domain

import "time"

// Provider names a registrar storefront scraped for indicative pricing.
type Provider string

const (
	ProviderHostinger Provider = "Hostinger"
	ProviderNamecheap Provider = "Namecheap"
	ProviderGoDaddy   Provider = "GoDaddy"
)

// ProviderOffer is the best-effort pricing information gathered from one
// provider. Price and Offer are nil when the page could not be fetched or
// nothing could be extracted from it.
type ProviderOffer struct {
	Provider Provider `json:"provider"`
	URL      string   `json:"url"`
	Price    *string  `json:"price"`
	Offer    *string  `json:"offer"`
	Freebies []string `json:"freebies"`
}

// PricingReport merges the offers of every configured provider. It always
// contains one entry per provider, in provider order.
type PricingReport struct {
	Domain    string          `json:"domain"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Offers    []ProviderOffer `json:"offers"`
}
