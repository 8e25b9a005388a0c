package ranking

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"marionettist/internal/metrics"
	"marionettist/pkg/logging"
)

// SystemMetricsAggregator reduces one configuration's per-service samples
// to a single value per distinct metric name.
type SystemMetricsAggregator struct{}

// NewSystemMetricsAggregator creates an aggregator.
func NewSystemMetricsAggregator() *SystemMetricsAggregator {
	return &SystemMetricsAggregator{}
}

// AggregateByAverage groups all samples by metric name across all services
// and reduces each group to its arithmetic mean. The retained timestamp is
// the latest in the group. A group whose samples disagree on the unit is
// rejected entirely, averaging seconds with milliseconds would silently
// corrupt the ranking. Results are sorted by metric name.
func (a *SystemMetricsAggregator) AggregateByAverage(dataPoint metrics.SystemMetricsDataPoint) []metrics.AggregateMetric {
	groups := make(map[string][]metrics.AggregateMetric)
	for _, service := range dataPoint.ServiceMetrics {
		for _, sample := range service.Metrics {
			groups[sample.Name] = append(groups[sample.Name], sample)
		}
	}

	aggregated := make([]metrics.AggregateMetric, 0, len(groups))
	for name, samples := range groups {
		reduced, ok := reduceGroup(name, samples)
		if !ok {
			continue
		}
		aggregated = append(aggregated, reduced)
	}

	sort.Slice(aggregated, func(i, j int) bool { return aggregated[i].Name < aggregated[j].Name })

	logging.Debug("Ranking", "Aggregated %d sample groups into %d system-level metrics", len(groups), len(aggregated))
	return aggregated
}

func reduceGroup(name string, samples []metrics.AggregateMetric) (metrics.AggregateMetric, bool) {
	if len(samples) == 0 {
		return metrics.AggregateMetric{}, false
	}
	if len(samples) == 1 {
		return samples[0], true
	}

	unit := samples[0].Unit
	values := make([]float64, 0, len(samples))
	latest := time.Time{}
	for _, sample := range samples {
		if sample.Unit != unit {
			logging.Warn("Ranking", "Metric %s reported in both %q and %q, rejecting the group", name, unit, sample.Unit)
			return metrics.AggregateMetric{}, false
		}
		values = append(values, sample.Value)
		if sample.Timestamp.After(latest) {
			latest = sample.Timestamp
		}
	}

	mean, err := stats.Mean(values)
	if err != nil {
		logging.Error("Ranking", err, "Failed to average %d samples of metric %s", len(values), name)
		return metrics.AggregateMetric{}, false
	}

	return metrics.AggregateMetric{
		Name:      name,
		Value:     mean,
		Timestamp: latest,
		Unit:      unit,
	}, true
}
