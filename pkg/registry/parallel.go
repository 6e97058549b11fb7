package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"domainintel/pkg/logger"
	"domainintel/pkg/serrors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Parallel queries several sources concurrently and merges their answers.
// Sources are listed by priority: for each field the value of the first
// source that knows it wins, whatever the completion order.
type Parallel struct {
	sources []Client
	lookups metric.Int64Counter
}

// Ensure Parallel conforms to the Client interface at compile time.
var _ Client = (*Parallel)(nil)

// NewParallel builds a Parallel over sources. Lookup outcomes are counted on
// meter under "registry.lookup".
func NewParallel(meter metric.Meter, sources ...Client) (*Parallel, error) {
	lookups, err := meter.Int64Counter("registry.lookup",
		metric.WithDescription("Registration lookups by source and outcome"))
	if err != nil {
		return nil, fmt.Errorf("could not create lookup counter: %w", err)
	}

	return &Parallel{sources: sources, lookups: lookups}, nil
}

// Name returns the names of all sources joined with "+".
func (p *Parallel) Name() string {
	names := make([]string, 0, len(p.sources))
	for _, s := range p.sources {
		names = append(names, s.Name())
	}

	return strings.Join(names, "+")
}

type result struct {
	reg *Registration
	err error
}

// Lookup runs every source concurrently, waits for all of them and merges
// the answers. Each source is bounded by ctx; a failing source only loses its
// own contribution. When no source contributes anything the error wraps
// serrors.ErrNotFound together with the individual failures.
func (p *Parallel) Lookup(ctx context.Context, domain string) (*Registration, error) {
	results := make([]result, len(p.sources))

	var wg sync.WaitGroup
	for i, src := range p.sources {
		wg.Add(1)
		go func(i int, src Client) {
			defer wg.Done()
			reg, err := src.Lookup(ctx, domain)
			results[i] = result{reg: reg, err: err}
		}(i, src)
	}
	wg.Wait()

	merged := &Registration{Domain: domain}
	var contributors []string
	var errs []error
	for i, r := range results {
		name := p.sources[i].Name()
		if r.err != nil || r.reg == nil {
			outcome := "not_found"
			if r.err != nil && !errors.Is(r.err, serrors.ErrNotFound) {
				outcome = "error"
				logger.Debug(ctx, "registration source failed",
					zap.String("source", name), zap.String("domain", domain), zap.Error(r.err))
			}
			p.lookups.Add(ctx, 1, metric.WithAttributes(
				attribute.String("source", name), attribute.String("outcome", outcome)))
			if r.err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, r.err))
			}

			continue
		}
		p.lookups.Add(ctx, 1, metric.WithAttributes(
			attribute.String("source", name), attribute.String("outcome", "ok")))

		contributed := false
		if merged.Registrar == "" && r.reg.Registrar != "" {
			merged.Registrar = r.reg.Registrar
			contributed = true
		}
		if merged.CreatedAt == "" && r.reg.CreatedAt != "" {
			merged.CreatedAt = r.reg.CreatedAt
			contributed = true
		}
		if contributed {
			contributors = append(contributors, name)
		}
	}

	if len(contributors) == 0 {
		return nil, serrors.Wrap(serrors.ErrNotFound, errors.Join(errs...), "no registration data for %s", domain)
	}
	merged.Source = strings.Join(contributors, "+")

	return merged, nil
}
