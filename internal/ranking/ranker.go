package ranking

import (
	"sort"

	"marionettist/internal/experiment"
	"marionettist/internal/metrics"
	"marionettist/internal/snapshot"
	"marionettist/pkg/logging"
)

// RankedSystemConfiguration is one entry of the final ranking: rank 0 is
// the best configuration found.
type RankedSystemConfiguration struct {
	Rank            int                                  `json:"rank"`
	ConfigurationID string                               `json:"configurationId"`
	Snapshot        snapshot.SystemConfigurationSnapshot `json:"snapshot"`
	SystemMetrics   []metrics.AggregateMetric            `json:"systemMetrics"`
	ServiceMetrics  []metrics.ServiceMetricsDataPoint    `json:"serviceMetrics"`
}

// SystemConfigurationsRanker aggregates and orders the records of one
// experiment run.
type SystemConfigurationsRanker struct {
	aggregator *SystemMetricsAggregator
}

// NewSystemConfigurationsRanker creates a ranker over the given aggregator.
func NewSystemConfigurationsRanker(aggregator *SystemMetricsAggregator) *SystemConfigurationsRanker {
	return &SystemConfigurationsRanker{aggregator: aggregator}
}

// RankConfigurations aggregates every record's per-service samples to
// system level, sorts the configurations lexicographically over the metric
// priority order and assigns ranks by final position. The sort is stable,
// full ties keep their recording order.
func (r *SystemConfigurationsRanker) RankConfigurations(records []experiment.ExperimentRecord, order metrics.MetricsConfiguration) []RankedSystemConfiguration {
	if len(records) == 0 {
		return nil
	}

	logging.Info("Ranking", "Ranking %d configurations lexicographically over %d metrics", len(records), order.Len())

	comparables := make([]ComparableSystemConfiguration, 0, len(records))
	serviceMetricsByID := make(map[string][]metrics.ServiceMetricsDataPoint, len(records))
	for _, record := range records {
		aggregated := r.aggregator.AggregateByAverage(record.Metrics)
		comparables = append(comparables, NewComparableSystemConfiguration(record.ConfigurationID, record.Snapshot, aggregated, order))
		serviceMetricsByID[record.ConfigurationID] = record.Metrics.ServiceMetrics
	}

	sort.SliceStable(comparables, func(i, j int) bool {
		return comparables[i].Compare(comparables[j]) < 0
	})

	ranked := make([]RankedSystemConfiguration, 0, len(comparables))
	for position, comparable := range comparables {
		ranked = append(ranked, RankedSystemConfiguration{
			Rank:            position,
			ConfigurationID: comparable.ConfigurationID(),
			Snapshot:        comparable.AppliedSnapshot(),
			SystemMetrics:   comparable.SystemMetrics(),
			ServiceMetrics:  serviceMetricsByID[comparable.ConfigurationID()],
		})
		logging.Info("Ranking", "Rank %d: %s", position, comparable)
	}

	return ranked
}
