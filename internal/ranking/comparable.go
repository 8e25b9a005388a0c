package ranking

import (
	"fmt"
	"strings"

	"marionettist/internal/metrics"
	"marionettist/internal/snapshot"
)

// ComparableSystemConfiguration holds one configuration's aggregated
// system-level metrics together with the shared priority order they are
// compared under.
type ComparableSystemConfiguration struct {
	configurationID string
	appliedSnapshot snapshot.SystemConfigurationSnapshot
	systemMetrics   []metrics.AggregateMetric
	metricsByName   map[string]metrics.AggregateMetric
	order           metrics.MetricsConfiguration
}

// NewComparableSystemConfiguration indexes the aggregated metrics by name
// for comparison.
func NewComparableSystemConfiguration(configurationID string, appliedSnapshot snapshot.SystemConfigurationSnapshot, systemMetrics []metrics.AggregateMetric, order metrics.MetricsConfiguration) ComparableSystemConfiguration {
	byName := make(map[string]metrics.AggregateMetric, len(systemMetrics))
	for _, metric := range systemMetrics {
		byName[metric.Name] = metric
	}
	return ComparableSystemConfiguration{
		configurationID: configurationID,
		appliedSnapshot: appliedSnapshot,
		systemMetrics:   systemMetrics,
		metricsByName:   byName,
		order:           order,
	}
}

// ConfigurationID returns the conf-N identifier.
func (c ComparableSystemConfiguration) ConfigurationID() string { return c.configurationID }

// SystemMetrics returns the aggregated system-level metrics.
func (c ComparableSystemConfiguration) SystemMetrics() []metrics.AggregateMetric {
	return c.systemMetrics
}

// AppliedSnapshot returns the behaviour snapshot the metrics were gathered
// under.
func (c ComparableSystemConfiguration) AppliedSnapshot() snapshot.SystemConfigurationSnapshot {
	return c.appliedSnapshot
}

// MetricValue returns the aggregated value of one metric.
func (c ComparableSystemConfiguration) MetricValue(name string) (float64, bool) {
	metric, ok := c.metricsByName[name]
	return metric.Value, ok
}

// Compare orders two configurations lexicographically over the shared
// metric priority list. It returns a negative value when the receiver ranks
// better, positive when worse, zero on a full tie. The first metric with a
// decisive difference settles the comparison; a configuration missing a
// metric the other has is strictly worse at that priority level.
func (c ComparableSystemConfiguration) Compare(other ComparableSystemConfiguration) int {
	for _, meta := range c.order.Ordered() {
		mine, haveMine := c.metricsByName[meta.MetricName]
		theirs, haveTheirs := other.metricsByName[meta.MetricName]

		switch {
		case !haveMine && !haveTheirs:
			continue
		case !haveMine:
			return 1
		case !haveTheirs:
			return -1
		}

		var comparison int
		if meta.Direction == metrics.HigherIsBetter {
			comparison = compareFloats(theirs.Value, mine.Value)
		} else {
			comparison = compareFloats(mine.Value, theirs.Value)
		}
		if comparison != 0 {
			return comparison
		}
	}
	return 0
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// String renders the configuration's metric values for logging.
func (c ComparableSystemConfiguration) String() string {
	parts := make([]string, 0, len(c.systemMetrics))
	for _, metric := range c.systemMetrics {
		parts = append(parts, fmt.Sprintf("%s=%g", metric.Name, metric.Value))
	}
	return fmt.Sprintf("Configuration[id=%s, metrics=%s]", c.configurationID, strings.Join(parts, ", "))
}
