package app

import (
	"context"
	"sync/atomic"
	"time"

	"marionettist/internal/metrics"
)

type providerPair struct {
	provider *metrics.PrometheusProvider
	metadata *metrics.PrometheusMetadataProvider
}

// SwappableMetricsProvider is a metrics.Provider and metrics.MetadataProvider
// whose backing configuration can be replaced at runtime, used to pick up
// config file changes without restarting.
type SwappableMetricsProvider struct {
	current atomic.Pointer[providerPair]
}

// NewSwappableMetricsProvider starts out with the given backend config.
func NewSwappableMetricsProvider(config metrics.PrometheusConfig) *SwappableMetricsProvider {
	p := &SwappableMetricsProvider{}
	p.Swap(config)
	return p
}

// Swap replaces the backend configuration. In-flight fetches finish against
// the configuration they started with.
func (p *SwappableMetricsProvider) Swap(config metrics.PrometheusConfig) {
	p.current.Store(&providerPair{
		provider: metrics.NewPrometheusProvider(config),
		metadata: metrics.NewPrometheusMetadataProvider(config),
	})
}

// FetchMetricsForService implements metrics.Provider.
func (p *SwappableMetricsProvider) FetchMetricsForService(ctx context.Context, serviceName string, timeSpan, samplingPeriod time.Duration) ([]metrics.AggregateMetric, error) {
	return p.current.Load().provider.FetchMetricsForService(ctx, serviceName, timeSpan, samplingPeriod)
}

// LoadMetrics implements metrics.MetadataProvider.
func (p *SwappableMetricsProvider) LoadMetrics() metrics.MetricsConfiguration {
	return p.current.Load().metadata.LoadMetrics()
}
