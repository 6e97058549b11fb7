// Package metrics wires OpenTelemetry instruments to a Prometheus registry.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/otlptranslator"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MeterName is the instrumentation scope used by all engine instruments.
const MeterName = "domainintel"

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// NewMeterProvider creates a MeterProvider whose instruments are exported
// through reg. Pass prometheus.DefaultRegisterer to expose them on the
// default promhttp handler. Names are escaped with underscores and carry unit
// suffixes, so "pricing.provider.fetch.duration" is scraped as
// pricing_provider_fetch_duration_seconds.
func NewMeterProvider(reg prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New(
		otelprom.WithRegisterer(reg),
		otelprom.WithTranslationStrategy(otlptranslator.UnderscoreEscapingWithSuffixes),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}

// LatencyHistogram creates a seconds histogram using DefaultBuckets.
func LatencyHistogram(m metric.Meter, name, description string) (metric.Float64Histogram, error) {
	h, err := m.Float64Histogram(name,
		metric.WithDescription(description),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create histogram %s: %w", name, err)
	}

	return h, nil
}
