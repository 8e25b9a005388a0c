package app

import (
	"context"
	"time"

	"marionettist/internal/domain"
	"marionettist/internal/experiment"
	"marionettist/internal/metrics"
	"marionettist/internal/ranking"
	"marionettist/pkg/logging"
)

// ConfigurationExecutor runs a list of system configurations for a total
// duration. Satisfied by experiment.UniformAbnTestExecutor.
type ConfigurationExecutor interface {
	Execute(ctx context.Context, configurations []experiment.SystemBehaviourConfiguration, totalDuration time.Duration) (*experiment.ExperimentRunResult, error)
}

// AbnTestRunner drives one complete experiment: variation point extraction,
// combinatorial generation, execution, ranking and result storage.
type AbnTestRunner struct {
	registry *domain.ConfigRegistry
	executor ConfigurationExecutor
	ranker   *ranking.SystemConfigurationsRanker
	metadata metrics.MetadataProvider
	results  *ranking.ResultsStorage
}

// NewAbnTestRunner wires the full experiment pipeline.
func NewAbnTestRunner(registry *domain.ConfigRegistry, executor ConfigurationExecutor, ranker *ranking.SystemConfigurationsRanker, metadata metrics.MetadataProvider, results *ranking.ResultsStorage) *AbnTestRunner {
	return &AbnTestRunner{
		registry: registry,
		executor: executor,
		ranker:   ranker,
		metadata: metadata,
		results:  results,
	}
}

// Run executes every combination of the currently registered variation
// points for an equal share of totalDuration, ranks the outcomes and stores
// the result as the latest one.
func (r *AbnTestRunner) Run(ctx context.Context, totalDuration time.Duration) (ranking.AbnTestResult, error) {
	points := experiment.ExtractVariationPoints(r.registry)
	if len(points) == 0 {
		return ranking.AbnTestResult{}, domain.NewInvalidArgumentError("no variation points registered, nothing to test")
	}

	generator := experiment.NewSystemConfigurationsGenerator(points)
	configurations := generator.GenerateAll()
	logging.Info("Experiment", "Testing %d configurations over %d variation points", len(configurations), len(points))

	runResult, err := r.executor.Execute(ctx, configurations, totalDuration)
	if err != nil {
		return ranking.AbnTestResult{}, err
	}

	order := r.metadata.LoadMetrics()
	ranked := r.ranker.RankConfigurations(runResult.Metrics.Records(), order)

	result := ranking.AbnTestResult{
		RunID:              runResult.RunID,
		StartedAt:          runResult.StartedAt,
		CompletedAt:        runResult.CompletedAt,
		TimeSlice:          runResult.TimeSlice,
		ConfigurationCount: runResult.ConfigurationCount,
		MetricsOrder:       order,
		Ranked:             ranked,
	}
	r.results.Store(result)
	return result, nil
}
