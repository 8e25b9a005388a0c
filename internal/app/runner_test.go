package app

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marionettist/internal/domain"
	"marionettist/internal/experiment"
	"marionettist/internal/metrics"
	"marionettist/internal/ranking"
	"marionettist/internal/snapshot"
)

type stubExecutor struct {
	configurations []experiment.SystemBehaviourConfiguration
	result         *experiment.ExperimentRunResult
	err            error
}

func (e *stubExecutor) Execute(_ context.Context, configurations []experiment.SystemBehaviourConfiguration, _ time.Duration) (*experiment.ExperimentRunResult, error) {
	e.configurations = configurations
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

type stubMetadata struct {
	order metrics.MetricsConfiguration
}

func (m *stubMetadata) LoadMetrics() metrics.MetricsConfiguration {
	return m.order
}

func seedRegistry(t *testing.T) *domain.ConfigRegistry {
	t.Helper()

	available, err := domain.BehaviourIDSetFromStrings([]string{"bilinear", "nearest"})
	require.NoError(t, err)
	method, err := domain.NewMethodConfig("resize", "bilinear", "bilinear", available)
	require.NoError(t, err)
	class := domain.NewClassConfig("ImageProcessor", map[domain.MethodName]domain.MethodConfig{
		"resize": method,
	})
	cfg := domain.NewServiceConfig("image-service", map[domain.ClassName]domain.ClassConfig{
		"ImageProcessor": class,
	})

	endpoint, err := url.Parse("http://image-service.demo.svc.cluster.local:8080")
	require.NoError(t, err)

	registry := domain.NewConfigRegistry()
	require.NoError(t, registry.AddDiscoveredService("image-service", cfg, endpoint))
	return registry
}

func latencySample(serviceName string, value float64) metrics.SystemMetricsDataPoint {
	return metrics.SystemMetricsDataPoint{
		ServiceMetrics: []metrics.ServiceMetricsDataPoint{
			{
				ServiceConfiguration: snapshot.ForNonMarionetteNode(serviceName),
				Metrics: []metrics.AggregateMetric{
					{Name: "avg_latency", Value: value, Timestamp: time.Now(), Unit: "s"},
				},
			},
		},
	}
}

func TestRunnerRanksAndStoresResult(t *testing.T) {
	registry := seedRegistry(t)

	// conf-0 performs worse than conf-1 on the lower-is-better latency.
	metricsRegistry := experiment.NewGlobalMetricsRegistry()
	metricsRegistry.Put(snapshot.FromRegistry(registry), latencySample("image-service", 0.3))
	metricsRegistry.Put(snapshot.FromRegistry(registry), latencySample("image-service", 0.1))

	executor := &stubExecutor{result: &experiment.ExperimentRunResult{
		RunID:              "run-42",
		StartedAt:          time.Now().Add(-time.Minute),
		CompletedAt:        time.Now(),
		TimeSlice:          30 * time.Second,
		ConfigurationCount: 2,
		Metrics:            metricsRegistry,
	}}
	metadata := &stubMetadata{order: metrics.NewMetricsConfiguration([]metrics.OrderedMetricMetadata{
		{MetricName: "avg_latency", Order: 1, Direction: metrics.LowerIsBetter, Unit: "s"},
	})}
	results := ranking.NewResultsStorage()

	runner := NewAbnTestRunner(registry, executor, ranking.NewSystemConfigurationsRanker(ranking.NewSystemMetricsAggregator()), metadata, results)

	result, err := runner.Run(context.Background(), 60*time.Second)
	require.NoError(t, err)

	// One variation point with two behaviours yields two configurations.
	assert.Len(t, executor.configurations, 2)

	require.Len(t, result.Ranked, 2)
	assert.Equal(t, "run-42", result.RunID)
	assert.Equal(t, "conf-1", result.Ranked[0].ConfigurationID)
	assert.Equal(t, "conf-0", result.Ranked[1].ConfigurationID)

	stored, ok := results.Latest()
	require.True(t, ok)
	assert.Equal(t, "run-42", stored.RunID)
}

func TestRunnerRejectsEmptyRegistry(t *testing.T) {
	runner := NewAbnTestRunner(domain.NewConfigRegistry(), &stubExecutor{}, ranking.NewSystemConfigurationsRanker(ranking.NewSystemMetricsAggregator()), &stubMetadata{}, ranking.NewResultsStorage())

	_, err := runner.Run(context.Background(), 60*time.Second)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
}
