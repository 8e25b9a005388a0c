package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels operations that completed normally.
	OutcomeSuccess = "success"
	// OutcomeError labels operations that failed.
	OutcomeError = "error"
)

var (
	discoveryRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marionettist",
			Name:      "discovery_runs_total",
			Help:      "Total number of discovery passes, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	registeredServices = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "marionettist",
			Name:      "registered_services",
			Help:      "Number of marionette services currently held in the registry.",
		},
	)

	experimentRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marionettist",
			Name:      "experiment_runs_total",
			Help:      "Total number of A/B test executions, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	experimentDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "marionettist",
			Name:      "experiment_seconds",
			Help:      "Wall-clock duration of complete A/B test executions in seconds.",
			Buckets:   []float64{10, 30, 60, 120, 300, 600, 1200, 1800, 3600},
		},
	)

	configurationsAppliedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "marionettist",
			Name:      "configurations_applied_total",
			Help:      "Total number of system configurations applied during experiments.",
		},
	)

	configurationApplySeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "marionettist",
			Name:      "configuration_apply_seconds",
			Help:      "Time spent writing one system configuration to the registry and fleet.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	podNotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marionettist",
			Name:      "pod_notifications_total",
			Help:      "Total number of per-pod behaviour change deliveries, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	behaviourChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marionettist",
			Name:      "behaviour_changes_total",
			Help:      "Total number of behaviour change notifications sent to services, partitioned by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register attaches marionettist collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		discoveryRunsTotal,
		registeredServices,
		experimentRunsTotal,
		experimentDurationSeconds,
		configurationsAppliedTotal,
		configurationApplySeconds,
		podNotificationsTotal,
		behaviourChangesTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveDiscovery records the outcome of a discovery pass and the resulting
// registry size.
func ObserveDiscovery(outcome string, serviceCount int) {
	discoveryRunsTotal.WithLabelValues(normalize(outcome)).Inc()
	if serviceCount >= 0 {
		registeredServices.Set(float64(serviceCount))
	}
}

// ObserveExperiment records an A/B test execution duration and outcome label.
func ObserveExperiment(duration time.Duration, outcome string) {
	experimentRunsTotal.WithLabelValues(normalize(outcome)).Inc()
	if duration < 0 {
		duration = 0
	}
	experimentDurationSeconds.Observe(duration.Seconds())
}

// ObserveConfigurationApply records the time one system configuration took
// to apply.
func ObserveConfigurationApply(duration time.Duration) {
	configurationsAppliedTotal.Inc()
	if duration < 0 {
		duration = 0
	}
	configurationApplySeconds.Observe(duration.Seconds())
}

// ObservePodNotification counts a single per-pod delivery.
func ObservePodNotification(outcome string) {
	podNotificationsTotal.WithLabelValues(normalize(outcome)).Inc()
}

// ObserveBehaviourChange counts a single behaviour change notification.
func ObserveBehaviourChange(outcome string) {
	behaviourChangesTotal.WithLabelValues(normalize(outcome)).Inc()
}

func normalize(outcome string) string {
	if outcome != OutcomeError {
		return OutcomeSuccess
	}
	return outcome
}
