package main

import (
	"context"
	"net/http"

	"domainintel/internal/config"
	"domainintel/internal/pricing"
	"domainintel/internal/trust"
	"domainintel/pkg/htmlfetch"
	"domainintel/pkg/logger"
	"domainintel/pkg/metrics"
	"domainintel/pkg/registry"
	"domainintel/pkg/registry/nsinfer"
	"domainintel/pkg/registry/rdap"
	"domainintel/pkg/registry/rediscache"
	"domainintel/pkg/registry/whois"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// getMeter creates a MeterProvider exported through the default Prometheus
// registry, installs it globally and returns its meter along with a cleanup
// function flushing it.
func getMeter(ctx context.Context) (metric.Meter, func()) {
	mp, err := metrics.NewMeterProvider(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal(ctx, "could not create meter provider", zap.Error(err))
	}
	otel.SetMeterProvider(mp)

	return mp.Meter(metrics.MeterName), func() {
		if err := mp.Shutdown(ctx); err != nil {
			logger.Warn(ctx, "could not shut down meter provider", zap.Error(err))
		}
	}
}

// getRegistry builds the registration lookup chain (RDAP, then WHOIS and NS
// inference when enabled) queried in parallel and, when Redis is configured,
// cached. The cleanup function closes the cache connection.
func getRegistry(ctx context.Context, cfg *config.Config, meter metric.Meter) (registry.Client, func()) {
	sources := []registry.Client{
		rdap.New(&http.Client{Timeout: cfg.Registry.LookupTimeout}, rdap.Options{
			FallbackURL: cfg.Registry.RDAPFallbackURL,
		}),
	}
	if !cfg.Registry.DisableWHOIS {
		sources = append(sources, whois.New(whois.Options{Timeout: cfg.Registry.LookupTimeout}))
	}
	if !cfg.Registry.DisableNSInference {
		sources = append(sources, nsinfer.New(nsinfer.Options{Server: cfg.Registry.DNSServer}))
	}

	parallel, err := registry.NewParallel(meter, sources...)
	if err != nil {
		logger.Fatal(ctx, "could not create registry client", zap.Error(err))
	}

	if cfg.Redis.Addr == "" {
		return parallel, func() {}
	}

	store := rediscache.New(rediscache.Options{
		Addr:         cfg.Redis.Addr,
		Username:     cfg.Redis.Username,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.Timeout,
		ReadTimeout:  cfg.Redis.Timeout,
		WriteTimeout: cfg.Redis.Timeout,
	})
	if err := store.Ping(ctx); err != nil {
		// lookups still work without the cache
		logger.Warn(ctx, "could not reach redis, registration cache degraded", zap.Error(err))
	}

	return registry.NewCached(parallel, store, cfg.Registry.CacheTTL), func() {
		logger.Info(ctx, "closing redis client...")
		if err := store.Close(); err != nil {
			logger.Warn(ctx, "could not close redis connection", zap.Error(err))
		}
	}
}

// getTrustEngine builds the trust engine from the built-in taxonomy, extended
// by the configured taxonomy file if any.
func getTrustEngine(ctx context.Context, cfg *config.Config, meter metric.Meter, reg registry.Client) *trust.Engine {
	def := trust.DefaultTaxonomyDef()
	if cfg.Trust.TaxonomyFile != "" {
		var err error
		def, err = trust.LoadTaxonomyDef(cfg.Trust.TaxonomyFile)
		if err != nil {
			logger.Fatal(ctx, "could not load taxonomy", zap.String("path", cfg.Trust.TaxonomyFile), zap.Error(err))
		}
	}
	taxonomy, err := trust.NewTaxonomy(def)
	if err != nil {
		logger.Fatal(ctx, "invalid taxonomy", zap.Error(err))
	}

	engine, err := trust.New(trust.Options{
		Taxonomy:      taxonomy,
		Weights:       &def.Weights,
		Registry:      reg,
		LookupTimeout: cfg.Registry.LookupTimeout,
		Meter:         meter,
	})
	if err != nil {
		logger.Fatal(ctx, "could not create trust engine", zap.Error(err))
	}

	return engine
}

// getFetcher returns the shared default fetcher unless the configuration
// overrides one of its settings.
func getFetcher(cfg *config.Config) *htmlfetch.Client {
	if cfg.Pricing.UserAgent == "" &&
		cfg.Pricing.MaxBodyBytes == htmlfetch.DefaultMaxBodyBytes &&
		cfg.Pricing.Timeout == htmlfetch.DefaultTimeout {
		return htmlfetch.Default()
	}

	return htmlfetch.New(htmlfetch.Options{
		UserAgent:    cfg.Pricing.UserAgent,
		MaxBodyBytes: cfg.Pricing.MaxBodyBytes,
		Timeout:      cfg.Pricing.Timeout,
	})
}

// getPricingCollector builds the pricing collector.
func getPricingCollector(ctx context.Context, cfg *config.Config, meter metric.Meter) *pricing.Collector {
	fetcher := getFetcher(cfg)

	collector, err := pricing.NewCollector(pricing.Options{
		Fetcher:       fetcher,
		Timeout:       cfg.Pricing.Timeout,
		RatePerSecond: cfg.Pricing.RatePerSecond,
		Burst:         cfg.Pricing.Burst,
		Meter:         meter,
	})
	if err != nil {
		logger.Fatal(ctx, "could not create pricing collector", zap.Error(err))
	}

	return collector
}
