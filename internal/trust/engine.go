// Package trust gathers independent trust signals about a domain and folds
// them into a composite score.
//
// Local classifiers (SSL scheme, TLD, government domains, scam keywords,
// registrar reputation) are pure table lookups and run inline. Registration
// metadata (registrar, creation date) is the only I/O and is fetched through a
// registry.Client under its own timeout; when it fails the corresponding
// signals are simply absent.
package trust

import (
	"context"
	"fmt"
	"time"

	"domainintel/pkg/domain"
	"domainintel/pkg/domainname"
	"domainintel/pkg/logger"
	"domainintel/pkg/registry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultLookupTimeout bounds the registration lookup of one analysis.
const DefaultLookupTimeout = 5 * time.Second

// Options configures an Engine.
type Options struct {
	// Taxonomy provides the classification tables. Defaults to DefaultTaxonomy().
	Taxonomy *Taxonomy
	// Weights are the scoring coefficients. Defaults to DefaultWeights().
	Weights *Weights
	// Registry looks up registration metadata. Nil disables the lookup.
	Registry registry.Client
	// LookupTimeout bounds the registration lookup.
	LookupTimeout time.Duration
	// Meter records analysis counters. Defaults to a no-op meter.
	Meter metric.Meter
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Engine produces trust reports. It holds no per-request state and is safe
// for concurrent use.
type Engine struct {
	taxonomy      *Taxonomy
	weights       Weights
	registry      registry.Client
	lookupTimeout time.Duration
	now           func() time.Time
	tracer        trace.Tracer
	analyses      metric.Int64Counter
}

// New constructs an Engine.
func New(opts Options) (*Engine, error) {
	if opts.Taxonomy == nil {
		opts.Taxonomy = DefaultTaxonomy()
	}
	weights := DefaultWeights()
	if opts.Weights != nil {
		weights = *opts.Weights
	}
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = DefaultLookupTimeout
	}
	if opts.Meter == nil {
		opts.Meter = noop.NewMeterProvider().Meter("trust")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	analyses, err := opts.Meter.Int64Counter("trust.analysis",
		metric.WithDescription("Trust analyses by resulting band"))
	if err != nil {
		return nil, fmt.Errorf("could not create analysis counter: %w", err)
	}

	return &Engine{
		taxonomy:      opts.Taxonomy,
		weights:       weights,
		registry:      opts.Registry,
		lookupTimeout: opts.LookupTimeout,
		now:           opts.Now,
		tracer:        otel.Tracer("domainintel/internal/trust"),
		analyses:      analyses,
	}, nil
}

// Analyze validates raw, collects every signal and scores them. Only invalid
// input is an error (serrors.ErrBadRequest); degraded sources yield absent
// signals.
func (e *Engine) Analyze(ctx context.Context, raw string) (*domain.TrustReport, error) {
	nd, err := domainname.Normalize(raw)
	if err != nil {
		return nil, err //nolint: wrapcheck
	}

	ctx, span := e.tracer.Start(ctx, "trust.Analyze", trace.WithAttributes(attribute.String("domain", nd.Hostname)))
	defer span.End()
	ctx = logger.WithFields(ctx, zap.String("domain", nd.Hostname))

	ssl := AnalyzeSSL(raw)
	signals := e.collect(ctx, raw, nd, ssl)
	score, adjustments := Score(signals, e.weights)

	span.SetAttributes(attribute.Int("score", score.Value), attribute.String("band", string(score.Band)))
	e.analyses.Add(ctx, 1, metric.WithAttributes(attribute.String("band", string(score.Band))))
	logger.Debug(ctx, "trust analysis finished", zap.Int("score", score.Value), zap.String("band", string(score.Band)))

	canonical, err := domainname.CanonicalURL(raw)
	if err != nil {
		canonical = raw
	}

	return &domain.TrustReport{
		Input:       raw,
		URL:         canonical,
		Domain:      nd.Hostname,
		SSL:         ssl,
		Signals:     signals,
		Score:       score,
		Adjustments: adjustments,
		GeneratedAt: e.now().UTC(),
	}, nil
}

// collect assembles the signal set of nd.
func (e *Engine) collect(
	ctx context.Context,
	raw string,
	nd domain.NormalizedDomain,
	ssl domain.SSLSignal,
) domain.TrustSignalSet {
	tld := domainname.TLD(nd.Hostname)
	signals := domain.TrustSignalSet{
		Hostname:    nd.Hostname,
		HasSSL:      ssl.HasSSL,
		TLD:         tld,
		TLDClass:    e.taxonomy.ClassifyTLD(tld),
		Government:  e.taxonomy.MatchGovernment(nd.Hostname),
		KeywordHits: e.taxonomy.ScanKeywords(nd.Hostname + scannedPath(raw)),
	}

	// government domains score 100 whatever their registration says
	if signals.Government.Matched || e.registry == nil {
		return signals
	}

	reg := e.lookup(ctx, domainname.Registrable(nd.Hostname))
	if reg == nil {
		return signals
	}
	signals.RegistrationSource = reg.Source
	if reg.Registrar != "" {
		signals.Registrar = registry.CanonicalRegistrar(reg.Registrar)
		signals.TrustedRegistrar = e.taxonomy.IsTrustedRegistrar(signals.Registrar)
	}
	if age, ok := DomainAgeAt(reg.CreatedAt, e.now()); ok {
		signals.AgeYears = &age
	}

	return signals
}

// lookup fetches registration metadata under the lookup timeout. Failures
// are logged and reported as nil.
func (e *Engine) lookup(ctx context.Context, registrable string) *registry.Registration {
	ctx, cancel := context.WithTimeout(ctx, e.lookupTimeout)
	defer cancel()

	reg, err := e.registry.Lookup(ctx, registrable)
	if err != nil {
		logger.Warn(ctx, "registration lookup failed",
			zap.String("registrable", registrable), zap.String("source", e.registry.Name()), zap.Error(err))

		return nil
	}

	return reg
}

// scannedPath returns the path of raw, which is scanned for scam keywords
// together with the hostname.
func scannedPath(raw string) string {
	u, err := domainname.Parse(raw)
	if err != nil {
		return ""
	}

	return u.Path
}
