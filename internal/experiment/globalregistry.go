package experiment

import (
	"fmt"
	"sync"

	"marionettist/internal/metrics"
	"marionettist/internal/snapshot"
)

// configurationKeyPrefix is the identifier pattern for recorded iterations:
// conf-0, conf-1, ...
const configurationKeyPrefix = "conf-"

// ExperimentRecord couples one iteration's applied snapshot with the
// metrics collected while it was live.
type ExperimentRecord struct {
	ConfigurationID string                               `json:"configurationId"`
	Snapshot        snapshot.SystemConfigurationSnapshot `json:"snapshot"`
	Metrics         metrics.SystemMetricsDataPoint       `json:"metrics"`
}

// GlobalMetricsRegistry assigns each experiment iteration a monotonically
// increasing identifier and stores the snapshot plus data point recorded
// under it. Created fresh per run, never persisted across runs.
type GlobalMetricsRegistry struct {
	mu      sync.Mutex
	counter int
	records map[string]ExperimentRecord
	order   []string
}

// NewGlobalMetricsRegistry creates an empty per-run registry.
func NewGlobalMetricsRegistry() *GlobalMetricsRegistry {
	return &GlobalMetricsRegistry{records: make(map[string]ExperimentRecord)}
}

// Put stores one iteration's result under the next sequential identifier
// and returns that identifier.
func (r *GlobalMetricsRegistry) Put(snap snapshot.SystemConfigurationSnapshot, dataPoint metrics.SystemMetricsDataPoint) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := fmt.Sprintf("%s%d", configurationKeyPrefix, r.counter)
	r.counter++
	r.records[id] = ExperimentRecord{ConfigurationID: id, Snapshot: snap, Metrics: dataPoint}
	r.order = append(r.order, id)
	return id
}

// Record returns the record stored under the given identifier.
func (r *GlobalMetricsRegistry) Record(id string) (ExperimentRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	return record, ok
}

// RecordByIndex returns the record of the i-th iteration.
func (r *GlobalMetricsRegistry) RecordByIndex(index int) (ExperimentRecord, bool) {
	return r.Record(fmt.Sprintf("%s%d", configurationKeyPrefix, index))
}

// Records returns all records in recording order.
func (r *GlobalMetricsRegistry) Records() []ExperimentRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ExperimentRecord, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.records[id])
	}
	return out
}

// Len returns the number of recorded iterations.
func (r *GlobalMetricsRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
