// Package pricing gathers indicative registration prices from registrar
// storefronts. Every provider is fetched concurrently under its own timeout
// and a provider failure only empties that provider's entry.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"domainintel/pkg/domain"
	"domainintel/pkg/logger"
	"domainintel/pkg/metrics"
	"domainintel/pkg/serrors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds each provider fetch.
	DefaultTimeout = 8 * time.Second
	// DefaultBurst is the outbound burst size per provider when a rate is set.
	DefaultBurst = 4
)

const (
	outcomeOK          = "ok"
	outcomeTimeout     = "timeout"
	outcomeRateLimited = "rate_limited"
	outcomeError       = "error"
)

// Fetcher downloads a page and returns its decoded body.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// Options configures a Collector.
type Options struct {
	// Fetcher downloads provider pages. Required.
	Fetcher Fetcher
	// Providers defaults to DefaultProviders().
	Providers []Provider
	// Timeout bounds each provider fetch, including the wait for the limiter.
	Timeout time.Duration
	// RatePerSecond and Burst configure an optional per-provider limiter
	// shared by all requests. Zero disables it. When set, a request that
	// cannot get a token before its provider deadline loses that offer.
	RatePerSecond float64
	Burst         int
	// Price and Offer default to PriceExtractor and OfferExtractor.
	Price Extractor
	Offer Extractor
	// Meter records fetch metrics. Defaults to a no-op meter.
	Meter metric.Meter
	// Now defaults to time.Now.
	Now func() time.Time
}

type providerState struct {
	Provider

	limiter *rate.Limiter // nil when unlimited
}

// Collector builds pricing reports. It is safe for concurrent use.
type Collector struct {
	fetcher   Fetcher
	providers []providerState
	timeout   time.Duration
	price     Extractor
	offer     Extractor
	now       func() time.Time
	tracer    trace.Tracer
	duration  metric.Float64Histogram
	fetches   metric.Int64Counter
}

// NewCollector constructs a Collector.
func NewCollector(opts Options) (*Collector, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("pricing collector requires a fetcher")
	}
	if len(opts.Providers) == 0 {
		opts.Providers = DefaultProviders()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Burst <= 0 {
		opts.Burst = DefaultBurst
	}
	if opts.Price == nil {
		opts.Price = PriceExtractor
	}
	if opts.Offer == nil {
		opts.Offer = OfferExtractor
	}
	if opts.Meter == nil {
		opts.Meter = noop.NewMeterProvider().Meter("pricing")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	duration, err := metrics.LatencyHistogram(opts.Meter, "pricing.provider.fetch.duration",
		"Duration of provider page fetches")
	if err != nil {
		return nil, err //nolint: wrapcheck
	}
	fetches, err := opts.Meter.Int64Counter("pricing.provider.fetch",
		metric.WithDescription("Provider page fetches by outcome"))
	if err != nil {
		return nil, fmt.Errorf("could not create fetch counter: %w", err)
	}

	providers := make([]providerState, 0, len(opts.Providers))
	for _, p := range opts.Providers {
		state := providerState{Provider: p}
		if opts.RatePerSecond > 0 {
			state.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst)
		}
		providers = append(providers, state)
	}

	return &Collector{
		fetcher:   opts.Fetcher,
		providers: providers,
		timeout:   opts.Timeout,
		price:     opts.Price,
		offer:     opts.Offer,
		now:       opts.Now,
		tracer:    otel.Tracer("domainintel/internal/pricing"),
		duration:  duration,
		fetches:   fetches,
	}, nil
}

// FetchOffers queries every provider concurrently and returns one offer per
// provider, in provider order. It never fails: a provider that cannot be
// fetched or parsed keeps a nil price and offer.
func (c *Collector) FetchOffers(ctx context.Context, d domain.NormalizedDomain) domain.PricingReport {
	offers := make([]domain.ProviderOffer, len(c.providers))

	var wg sync.WaitGroup
	for i := range c.providers {
		p := &c.providers[i]
		offers[i] = domain.ProviderOffer{
			Provider: p.Name,
			URL:      p.URL(d.Hostname),
			Freebies: append([]string{}, p.Freebies...),
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			c.fill(ctx, p, &offers[i])
		}()
	}
	wg.Wait()

	return domain.PricingReport{
		Domain:    d.Hostname,
		UpdatedAt: c.now().UTC(),
		Offers:    offers,
	}
}

// fill fetches the page of one provider and extracts price and offer into
// out. Errors are logged and leave out untouched.
func (c *Collector) fill(ctx context.Context, p *providerState, out *domain.ProviderOffer) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "pricing.fetch", trace.WithAttributes(
		attribute.String("provider", string(p.Name)), attribute.String("url", out.URL)))
	defer span.End()
	ctx = logger.WithFields(ctx, zap.String("provider", string(p.Name)))

	start := time.Now()
	body, err := c.fetch(ctx, p, out.URL)
	outcome := outcomeOf(err)
	attrs := metric.WithAttributes(attribute.String("provider", string(p.Name)), attribute.String("outcome", outcome))
	c.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	c.fetches.Add(ctx, 1, attrs)

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		logger.Warn(ctx, "could not fetch provider page", zap.String("outcome", outcome), zap.Error(err))

		return
	}

	if v, ok := c.price.Extract(body); ok {
		out.Price = &v
	}
	if v, ok := c.offer.Extract(body); ok {
		out.Offer = &v
	}
	logger.Debug(ctx, "provider page parsed", zap.Bool("price", out.Price != nil), zap.Bool("offer", out.Offer != nil))
}

func (c *Collector) fetch(ctx context.Context, p *providerState, pageURL string) (string, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return "", serrors.Wrap(serrors.ErrTimeout, err, "outbound limit for %s", p.Name)
		}
	}

	body, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("could not fetch %s page: %w", p.Name, err)
	}

	return body, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, serrors.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return outcomeTimeout
	case errors.Is(err, serrors.ErrRateLimited):
		return outcomeRateLimited
	default:
		return outcomeError
	}
}
