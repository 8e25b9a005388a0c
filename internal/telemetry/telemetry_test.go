package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
}

func TestObserveDiscovery(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))

	before := testutil.ToFloat64(discoveryRunsTotal.WithLabelValues(OutcomeSuccess))
	ObserveDiscovery(OutcomeSuccess, 3)

	assert.Equal(t, before+1, testutil.ToFloat64(discoveryRunsTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 3.0, testutil.ToFloat64(registeredServices))

	// A failed pass must not overwrite the last known registry size.
	ObserveDiscovery(OutcomeError, -1)
	assert.Equal(t, 3.0, testutil.ToFloat64(registeredServices))
}

func TestObserveExperimentNormalizesOutcome(t *testing.T) {
	before := testutil.ToFloat64(experimentRunsTotal.WithLabelValues(OutcomeSuccess))

	ObserveExperiment(90*time.Second, "done")

	assert.Equal(t, before+1, testutil.ToFloat64(experimentRunsTotal.WithLabelValues(OutcomeSuccess)))
}

func TestObserveConfigurationApply(t *testing.T) {
	before := testutil.ToFloat64(configurationsAppliedTotal)

	ObserveConfigurationApply(250 * time.Millisecond)
	ObserveConfigurationApply(-time.Second)

	assert.Equal(t, before+2, testutil.ToFloat64(configurationsAppliedTotal))
}

func TestObservePodNotification(t *testing.T) {
	before := testutil.ToFloat64(podNotificationsTotal.WithLabelValues(OutcomeSuccess))

	ObservePodNotification(OutcomeSuccess)

	assert.Equal(t, before+1, testutil.ToFloat64(podNotificationsTotal.WithLabelValues(OutcomeSuccess)))
}

func TestObserveBehaviourChange(t *testing.T) {
	before := testutil.ToFloat64(behaviourChangesTotal.WithLabelValues(OutcomeError))

	ObserveBehaviourChange(OutcomeError)

	assert.Equal(t, before+1, testutil.ToFloat64(behaviourChangesTotal.WithLabelValues(OutcomeError)))
}
