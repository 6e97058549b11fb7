package registry

import (
	"context"
	"time"

	"domainintel/pkg/logger"

	"go.uber.org/zap"
)

// Cached serves lookups from a Cache and falls back to the wrapped client on
// a miss. Cache failures are logged and never fail a lookup.
type Cached struct {
	next  Client
	cache Cache
	ttl   time.Duration
}

// Ensure Cached conforms to the Client interface at compile time.
var _ Client = (*Cached)(nil)

// NewCached wraps next with cache; successful lookups are stored for ttl.
func NewCached(next Client, cache Cache, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: cache, ttl: ttl}
}

// Name returns the wrapped client's name.
func (c *Cached) Name() string { return c.next.Name() }

// Lookup returns the cached registration for domain when present, otherwise
// asks the wrapped client and caches a successful answer.
func (c *Cached) Lookup(ctx context.Context, domain string) (*Registration, error) {
	reg, err := c.cache.Get(ctx, domain)
	switch {
	case err != nil:
		logger.Warn(ctx, "could not read registration cache", zap.String("domain", domain), zap.Error(err))
	case reg != nil:
		logger.Debug(ctx, "registration cache hit", zap.String("domain", domain))

		return reg, nil
	}

	reg, err = c.next.Lookup(ctx, domain)
	if err != nil {
		return nil, err //nolint: wrapcheck
	}

	if err := c.cache.Set(ctx, reg, c.ttl); err != nil {
		logger.Warn(ctx, "could not write registration cache", zap.String("domain", domain), zap.Error(err))
	}

	return reg, nil
}
