// Package registry defines how registration metadata (registrar, creation
// date) is looked up for a domain, and combines several unreliable sources
// into one best-effort answer.
package registry

import (
	"context"
	"time"
)

// Registration is the registration metadata reported by one or more sources.
// Empty fields mean the sources did not know the value.
type Registration struct {
	// Domain is the registrable domain that was looked up.
	Domain string `json:"domain"`
	// Registrar is the registrar name as reported by the source.
	Registrar string `json:"registrar,omitempty"`
	// CreatedAt is the raw registration date as reported by the source.
	CreatedAt string `json:"createdAt,omitempty"`
	// Source names the source(s) that contributed to this record, e.g. "rdap+dns".
	Source string `json:"source"`
}

// Client looks up registration metadata for a registrable domain.
//
//go:generate mockgen -package mockregistry -source=interface.go -destination=mock/mockregistry.go *
type Client interface {
	// Name identifies the source in logs and metrics.
	Name() string
	// Lookup returns registration metadata for domain. Implementations return
	// an error wrapping serrors.ErrNotFound when the source has no record.
	Lookup(ctx context.Context, domain string) (*Registration, error)
}

// Cache stores registrations between lookups.
type Cache interface {
	// Get returns the cached registration, or nil and no error on a miss.
	Get(ctx context.Context, domain string) (*Registration, error)
	// Set stores reg for ttl.
	Set(ctx context.Context, reg *Registration, ttl time.Duration) error
}
