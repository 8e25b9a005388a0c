package experiment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marionettist/internal/metrics"
	"marionettist/internal/snapshot"
)

func TestGlobalMetricsRegistrySequentialIdentifiers(t *testing.T) {
	registry := NewGlobalMetricsRegistry()

	snap := snapshot.SystemConfigurationSnapshot{CapturedAt: time.Now()}
	first := registry.Put(snap, metrics.SystemMetricsDataPoint{})
	second := registry.Put(snap, metrics.SystemMetricsDataPoint{})

	assert.Equal(t, "conf-0", first)
	assert.Equal(t, "conf-1", second)
	assert.Equal(t, 2, registry.Len())
}

func TestGlobalMetricsRegistryLookup(t *testing.T) {
	registry := NewGlobalMetricsRegistry()

	snap := snapshot.SystemConfigurationSnapshot{CapturedAt: time.Now()}
	dataPoint := metrics.SystemMetricsDataPoint{
		ServiceMetrics: []metrics.ServiceMetricsDataPoint{
			{ServiceConfiguration: snapshot.ForNonMarionetteNode("edge")},
		},
	}
	id := registry.Put(snap, dataPoint)

	byID, ok := registry.Record(id)
	require.True(t, ok)
	assert.Len(t, byID.Metrics.ServiceMetrics, 1)

	byIndex, ok := registry.RecordByIndex(0)
	require.True(t, ok)
	assert.Equal(t, id, byIndex.ConfigurationID)

	_, ok = registry.Record("conf-99")
	assert.False(t, ok)
}

func TestGlobalMetricsRegistryRecordsInOrder(t *testing.T) {
	registry := NewGlobalMetricsRegistry()
	snap := snapshot.SystemConfigurationSnapshot{CapturedAt: time.Now()}
	for range 4 {
		registry.Put(snap, metrics.SystemMetricsDataPoint{})
	}

	records := registry.Records()
	require.Len(t, records, 4)
	for i, record := range records {
		assert.Equal(t, registry.order[i], record.ConfigurationID)
	}
	assert.Equal(t, "conf-3", records[3].ConfigurationID)
}
