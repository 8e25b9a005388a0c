package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marionettist/internal/metrics"
	"marionettist/internal/snapshot"
)

func dataPointFor(samples ...[]metrics.AggregateMetric) metrics.SystemMetricsDataPoint {
	var services []metrics.ServiceMetricsDataPoint
	for i, serviceSamples := range samples {
		services = append(services, metrics.ServiceMetricsDataPoint{
			ServiceConfiguration: snapshot.ForNonMarionetteNode(string(rune('a' + i))),
			Metrics:              serviceSamples,
		})
	}
	return metrics.SystemMetricsDataPoint{ServiceMetrics: services}
}

func TestAggregateByAverageMeansAcrossServices(t *testing.T) {
	older := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Minute)

	dataPoint := dataPointFor(
		[]metrics.AggregateMetric{{Name: "latency_ms", Value: 100, Timestamp: older, Unit: "ms"}},
		[]metrics.AggregateMetric{{Name: "latency_ms", Value: 300, Timestamp: newer, Unit: "ms"}},
	)

	aggregated := NewSystemMetricsAggregator().AggregateByAverage(dataPoint)
	require.Len(t, aggregated, 1)
	assert.Equal(t, 200.0, aggregated[0].Value)
	assert.Equal(t, newer, aggregated[0].Timestamp, "latest timestamp wins")
	assert.Equal(t, "ms", aggregated[0].Unit)
}

func TestAggregateByAverageGroupsByName(t *testing.T) {
	now := time.Now()
	dataPoint := dataPointFor(
		[]metrics.AggregateMetric{
			{Name: "latency_ms", Value: 10, Timestamp: now, Unit: "ms"},
			{Name: "throughput", Value: 50, Timestamp: now, Unit: "rps"},
		},
		[]metrics.AggregateMetric{
			{Name: "throughput", Value: 150, Timestamp: now, Unit: "rps"},
		},
	)

	aggregated := NewSystemMetricsAggregator().AggregateByAverage(dataPoint)
	require.Len(t, aggregated, 2)

	// Sorted by name.
	assert.Equal(t, "latency_ms", aggregated[0].Name)
	assert.Equal(t, 10.0, aggregated[0].Value)
	assert.Equal(t, "throughput", aggregated[1].Name)
	assert.Equal(t, 100.0, aggregated[1].Value)
}

func TestAggregateByAverageRejectsMixedUnits(t *testing.T) {
	now := time.Now()
	dataPoint := dataPointFor(
		[]metrics.AggregateMetric{{Name: "latency", Value: 100, Timestamp: now, Unit: "ms"}},
		[]metrics.AggregateMetric{{Name: "latency", Value: 0.2, Timestamp: now, Unit: "seconds"}},
	)

	aggregated := NewSystemMetricsAggregator().AggregateByAverage(dataPoint)
	assert.Empty(t, aggregated, "mixed-unit groups must not be averaged")
}

func TestAggregateByAverageEmptyDataPoint(t *testing.T) {
	aggregated := NewSystemMetricsAggregator().AggregateByAverage(metrics.SystemMetricsDataPoint{})
	assert.Empty(t, aggregated)
}
