package metrics

import (
	"context"
	"sort"
	"time"

	"marionettist/internal/snapshot"
)

// OptimizationDirection states whether larger or smaller raw values of a
// metric are preferable.
type OptimizationDirection string

const (
	HigherIsBetter OptimizationDirection = "HIGHER_IS_BETTER"
	LowerIsBetter  OptimizationDirection = "LOWER_IS_BETTER"
)

// AggregateMetric is one named, already-reduced metric value.
type AggregateMetric struct {
	Name      string    `json:"name"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	Unit      string    `json:"unit"`
}

// OrderedMetricMetadata describes one metric's position in the ranking
// priority order. Lower order means higher priority.
type OrderedMetricMetadata struct {
	MetricName string                `json:"metricName"`
	Order      int                   `json:"order"`
	Direction  OptimizationDirection `json:"direction"`
	Unit       string                `json:"unit"`
}

// MetricsConfiguration is the globally ordered list of ranking metadata,
// sorted ascending by order on construction.
type MetricsConfiguration struct {
	ordered []OrderedMetricMetadata
}

// NewMetricsConfiguration sorts the given metadata by ascending order.
func NewMetricsConfiguration(metadata []OrderedMetricMetadata) MetricsConfiguration {
	ordered := make([]OrderedMetricMetadata, len(metadata))
	copy(ordered, metadata)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })
	return MetricsConfiguration{ordered: ordered}
}

// Ordered returns the metadata in priority order.
func (c MetricsConfiguration) Ordered() []OrderedMetricMetadata {
	out := make([]OrderedMetricMetadata, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Len returns the number of configured metrics.
func (c MetricsConfiguration) Len() int { return len(c.ordered) }

// ServiceMetricsDataPoint couples the metrics sampled for one service with
// the behaviour snapshot that was live while they were gathered.
type ServiceMetricsDataPoint struct {
	ServiceConfiguration snapshot.ServiceSnapshot `json:"serviceConfiguration"`
	Metrics              []AggregateMetric        `json:"metrics"`
}

// SystemMetricsDataPoint is the full set of per-service samples collected
// during one experiment window.
type SystemMetricsDataPoint struct {
	ServiceMetrics []ServiceMetricsDataPoint `json:"serviceMetrics"`
}

// Provider fetches externally observed metrics for one service over a time
// window. Implementations talk to the metrics backend.
type Provider interface {
	FetchMetricsForService(ctx context.Context, serviceName string, timeSpan, samplingPeriod time.Duration) ([]AggregateMetric, error)
}

// MetadataProvider supplies the ordered ranking metadata.
type MetadataProvider interface {
	LoadMetrics() MetricsConfiguration
}

// NonMarionetteTracker lists nodes whose metrics matter but which are not
// behaviour-controllable.
type NonMarionetteTracker interface {
	NodeNames() []string
}

// StaticNonMarionetteTracker is a fixed list from configuration.
type StaticNonMarionetteTracker struct {
	nodes []string
}

// NewStaticNonMarionetteTracker creates a tracker over a fixed node list.
func NewStaticNonMarionetteTracker(nodes []string) *StaticNonMarionetteTracker {
	copied := make([]string, len(nodes))
	copy(copied, nodes)
	return &StaticNonMarionetteTracker{nodes: copied}
}

// NodeNames returns the tracked node names.
func (t *StaticNonMarionetteTracker) NodeNames() []string {
	out := make([]string, len(t.nodes))
	copy(out, t.nodes)
	return out
}
