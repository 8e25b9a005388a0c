package experiment

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"marionettist/internal/domain"
	"marionettist/internal/metrics"
	"marionettist/internal/snapshot"
	"marionettist/internal/telemetry"
	"marionettist/pkg/logging"
)

const (
	// stabilizationGrace lets a freshly applied configuration propagate
	// through the fleet before its sampling window opens.
	stabilizationGrace = 6 * time.Second

	// separationGrace keeps one configuration's metrics from bleeding
	// into the next configuration's window.
	separationGrace = 6 * time.Second

	// defaultSamplingPeriod is the backend sampling resolution used when
	// the caller does not override it.
	defaultSamplingPeriod = 20 * time.Second

	// timeSliceFloor is the per-configuration sampling time below which
	// results become statistically questionable.
	timeSliceFloor = 30 * time.Second

	// timeSliceCeiling is the per-configuration sampling time above which
	// the run is probably configured with more total time than intended.
	timeSliceCeiling = 10 * time.Minute
)

// BehaviourChange is the instruction pushed to a marionette node.
type BehaviourChange struct {
	ServiceName string `json:"serviceName"`
	ClassName   string `json:"className"`
	MethodName  string `json:"methodName"`
	BehaviourID string `json:"behaviourId"`
}

// BehaviourNotifier delivers a behaviour change to every replica behind a
// service endpoint. Implementations fan out per pod; a partial delivery is
// not an error at this boundary.
type BehaviourNotifier interface {
	NotifyBehaviourChange(ctx context.Context, endpoint *url.URL, change BehaviourChange) error
}

// ExperimentRunResult is everything one completed run produced.
type ExperimentRunResult struct {
	RunID              string
	StartedAt          time.Time
	CompletedAt        time.Time
	TimeSlice          time.Duration
	ConfigurationCount int
	Baseline           snapshot.SystemConfigurationSnapshot
	Metrics            *GlobalMetricsRegistry
}

// UniformAbnTestExecutor runs every generated configuration for an equal
// slice of the total experiment duration, strictly one at a time.
type UniformAbnTestExecutor struct {
	registry       *domain.ConfigRegistry
	notifier       BehaviourNotifier
	provider       metrics.Provider
	tracker        metrics.NonMarionetteTracker
	samplingPeriod time.Duration
	stabilization  time.Duration
	separation     time.Duration
}

// NewUniformAbnTestExecutor wires the executor to the live registry, the
// fleet notification gateway and the metrics backend.
func NewUniformAbnTestExecutor(registry *domain.ConfigRegistry, notifier BehaviourNotifier, provider metrics.Provider, tracker metrics.NonMarionetteTracker) *UniformAbnTestExecutor {
	return &UniformAbnTestExecutor{
		registry:       registry,
		notifier:       notifier,
		provider:       provider,
		tracker:        tracker,
		samplingPeriod: defaultSamplingPeriod,
		stabilization:  stabilizationGrace,
		separation:     separationGrace,
	}
}

// WithSamplingPeriod overrides the backend sampling resolution.
func (e *UniformAbnTestExecutor) WithSamplingPeriod(period time.Duration) *UniformAbnTestExecutor {
	if period > 0 {
		e.samplingPeriod = period
	}
	return e
}

// WithGracePeriods overrides the stabilization grace before each sampling
// window and the separation grace between configurations.
func (e *UniformAbnTestExecutor) WithGracePeriods(stabilization, separation time.Duration) *UniformAbnTestExecutor {
	if stabilization >= 0 {
		e.stabilization = stabilization
	}
	if separation >= 0 {
		e.separation = separation
	}
	return e
}

// Execute runs all given configurations in sequence, each getting an equal
// share of totalDuration. The registry state captured at entry is restored
// on the way out, also when the run is cut short by context cancellation.
// A single configuration's failure is logged and the loop moves on.
func (e *UniformAbnTestExecutor) Execute(ctx context.Context, configurations []SystemBehaviourConfiguration, totalDuration time.Duration) (*ExperimentRunResult, error) {
	if len(configurations) == 0 {
		return nil, domain.NewInvalidArgumentError("no configurations to execute")
	}

	timeSlice, err := computeTimeSlice(totalDuration, len(configurations))
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	startedAt := time.Now()
	baseline := snapshot.FromRegistry(e.registry)
	metricsRegistry := NewGlobalMetricsRegistry()

	logging.Info("AbnTest", "Run %s started: %d configurations, %s per slice, %s total", runID, len(configurations), timeSlice, totalDuration)

	runErr := e.runAllConfigurations(ctx, configurations, timeSlice, metricsRegistry)

	e.restoreBaseline(baseline)

	result := &ExperimentRunResult{
		RunID:              runID,
		StartedAt:          startedAt,
		CompletedAt:        time.Now(),
		TimeSlice:          timeSlice,
		ConfigurationCount: len(configurations),
		Baseline:           baseline,
		Metrics:            metricsRegistry,
	}

	if runErr != nil {
		logging.Warn("AbnTest", "Run %s stopped early after %d of %d configurations: %v", runID, metricsRegistry.Len(), len(configurations), runErr)
		return result, runErr
	}

	logging.Info("AbnTest", "Run %s completed: %d configurations recorded in %s", runID, metricsRegistry.Len(), result.CompletedAt.Sub(startedAt))
	return result, nil
}

func (e *UniformAbnTestExecutor) runAllConfigurations(ctx context.Context, configurations []SystemBehaviourConfiguration, timeSlice time.Duration, metricsRegistry *GlobalMetricsRegistry) error {
	for i, configuration := range configurations {
		logging.Info("AbnTest", "Configuration %d/%d starting", i+1, len(configurations))

		appliedSnapshot := e.applyConfiguration(ctx, configuration)

		if err := sleepContext(ctx, e.stabilization); err != nil {
			return err
		}

		logging.Info("AbnTest", "Configuration %d/%d sampling for %s", i+1, len(configurations), timeSlice)
		if err := sleepContext(ctx, timeSlice); err != nil {
			return err
		}

		dataPoint := e.collectMetrics(ctx, appliedSnapshot, timeSlice)
		id := metricsRegistry.Put(appliedSnapshot, dataPoint)
		logging.Info("AbnTest", "Configuration %d/%d recorded as %s with %d service data points", i+1, len(configurations), id, len(dataPoint.ServiceMetrics))

		// Separate from the next configuration, unless this was the last.
		if i < len(configurations)-1 {
			if err := sleepContext(ctx, e.separation); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyConfiguration writes every selection into the registry and notifies
// the owning service's replicas. Selections already live in the registry
// are skipped without a write or a notification. A single selection's
// failure is logged and does not stop the remaining selections.
func (e *UniformAbnTestExecutor) applyConfiguration(ctx context.Context, configuration SystemBehaviourConfiguration) snapshot.SystemConfigurationSnapshot {
	applyStart := time.Now()
	defer func() {
		telemetry.ObserveConfigurationApply(time.Since(applyStart))
	}()

	applied, skipped, failed := 0, 0, 0

	for _, selection := range configuration.Selections() {
		switch err := e.applySelection(ctx, selection); {
		case err == nil:
			applied++
		case domain.IsInvalidArgument(err):
			failed++
			logging.Error("AbnTest", err, "Selection %s -> %s rejected", selection.MethodPath(), selection.Behaviour)
		case err == errAlreadyApplied:
			skipped++
		default:
			failed++
			logging.Error("AbnTest", err, "Selection %s -> %s failed", selection.MethodPath(), selection.Behaviour)
		}
	}

	logging.Info("AbnTest", "Applied %d selections, skipped %d, failed %d", applied, skipped, failed)
	return snapshot.FromRegistry(e.registry)
}

var errAlreadyApplied = fmt.Errorf("behaviour already applied")

func (e *UniformAbnTestExecutor) applySelection(ctx context.Context, selection BehaviourSelection) error {
	current, err := e.registry.CurrentBehaviourForMethod(selection.Point.ServiceName, selection.Point.ClassName, selection.Point.MethodName)
	if err != nil {
		return err
	}
	if current == selection.Behaviour {
		return errAlreadyApplied
	}

	if err := e.registry.ModifyCurrentBehaviourForMethod(selection.Point.ServiceName, selection.Point.ClassName, selection.Point.MethodName, selection.Behaviour); err != nil {
		return err
	}

	endpoint, err := e.registry.EndpointOfService(selection.Point.ServiceName)
	if err != nil {
		return err
	}

	return e.notifier.NotifyBehaviourChange(ctx, endpoint, BehaviourChange{
		ServiceName: selection.Point.ServiceName.String(),
		ClassName:   selection.Point.ClassName.String(),
		MethodName:  selection.Point.MethodName.String(),
		BehaviourID: selection.Behaviour.String(),
	})
}

// collectMetrics samples every service in the applied snapshot plus every
// tracked non-marionette node. A node appearing in both is sampled once.
func (e *UniformAbnTestExecutor) collectMetrics(ctx context.Context, appliedSnapshot snapshot.SystemConfigurationSnapshot, timeSlice time.Duration) metrics.SystemMetricsDataPoint {
	var serviceDataPoints []metrics.ServiceMetricsDataPoint

	for _, serviceName := range appliedSnapshot.ServiceNames() {
		serviceSnapshot, _ := appliedSnapshot.ServiceByName(serviceName)
		serviceDataPoints = append(serviceDataPoints, e.sampleService(ctx, serviceName, serviceSnapshot, timeSlice))
	}

	for _, nodeName := range e.tracker.NodeNames() {
		if appliedSnapshot.HasService(nodeName) {
			continue
		}
		serviceDataPoints = append(serviceDataPoints, e.sampleService(ctx, nodeName, snapshot.ForNonMarionetteNode(nodeName), timeSlice))
	}

	return metrics.SystemMetricsDataPoint{ServiceMetrics: serviceDataPoints}
}

func (e *UniformAbnTestExecutor) sampleService(ctx context.Context, serviceName string, serviceSnapshot snapshot.ServiceSnapshot, timeSlice time.Duration) metrics.ServiceMetricsDataPoint {
	collected, err := e.provider.FetchMetricsForService(ctx, serviceName, timeSlice, e.samplingPeriod)
	if err != nil {
		logging.Warn("AbnTest", "Metrics collection for %s failed: %v", serviceName, err)
		collected = nil
	}
	return metrics.ServiceMetricsDataPoint{ServiceConfiguration: serviceSnapshot, Metrics: collected}
}

// restoreBaseline re-applies the snapshot captured at run entry: every
// method whose registry behaviour drifted from the baseline is written back
// and the owning service's replicas are notified. Failures are logged, not
// retried. Restoration runs on a fresh context so a cancelled run still
// restores.
func (e *UniformAbnTestExecutor) restoreBaseline(baseline snapshot.SystemConfigurationSnapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logging.Info("AbnTest", "Restoring baseline state for %d services", len(baseline.Services))

	restored, failed := 0, 0
	for _, serviceName := range baseline.ServiceNames() {
		serviceSnapshot, _ := baseline.ServiceByName(serviceName)
		for className, classSnapshot := range serviceSnapshot.Classes {
			for methodName, behaviourID := range classSnapshot.MethodBehaviours {
				selection := BehaviourSelection{
					Point: VariationPointKey{
						ServiceName: domain.ServiceName(serviceName),
						ClassName:   domain.ClassName(className),
						MethodName:  domain.MethodName(methodName),
					},
					Behaviour: domain.BehaviourID(behaviourID),
				}
				switch err := e.applySelection(ctx, selection); {
				case err == nil:
					restored++
				case err == errAlreadyApplied:
					// Never drifted.
				default:
					failed++
					logging.Error("AbnTest", err, "Baseline restore of %s -> %s failed", selection.MethodPath(), behaviourID)
				}
			}
		}
	}

	logging.Info("AbnTest", "Baseline restore done: %d methods restored, %d failed", restored, failed)
}

// computeTimeSlice divides the total experiment duration evenly across the
// configurations. Too-short slices are a caller error surfaced as warnings,
// not failures.
func computeTimeSlice(totalDuration time.Duration, configurationCount int) (time.Duration, error) {
	if configurationCount <= 0 {
		return 0, domain.NewInvalidArgumentError(fmt.Sprintf("configuration count must be positive, got %d", configurationCount))
	}
	if totalDuration <= 0 {
		return 0, domain.NewInvalidArgumentError(fmt.Sprintf("total duration must be positive, got %s", totalDuration))
	}

	timeSlice := totalDuration / time.Duration(configurationCount)

	if timeSlice < timeSliceFloor {
		logging.Warn("AbnTest", "Time slice of %s per configuration is below %s, consider a longer total duration or fewer configurations", timeSlice, timeSliceFloor)
		logging.Warn("AbnTest", "Recommendation: use at least %s total duration for %d configurations", time.Duration(configurationCount)*timeSliceFloor, configurationCount)
	}
	if timeSlice > timeSliceCeiling {
		logging.Warn("AbnTest", "Time slice of %s per configuration is quite long", timeSlice)
	}

	return timeSlice, nil
}

// sleepContext blocks for the given duration or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
