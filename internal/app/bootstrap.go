package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"marionettist/internal/api"
	"marionettist/internal/config"
	"marionettist/internal/discovery"
	"marionettist/internal/domain"
	"marionettist/internal/experiment"
	"marionettist/internal/gateway"
	"marionettist/internal/metrics"
	"marionettist/internal/ranking"
	"marionettist/internal/telemetry"
	"marionettist/pkg/logging"
)

// Config carries the command line level settings for bootstrapping.
type Config struct {
	// Debug enables debug-level logging.
	Debug bool
	// Silent suppresses all log output.
	Silent bool
	// ConfigPath is the configuration directory. Empty means the default
	// user config directory.
	ConfigPath string
}

// Application holds every wired component of the running control plane.
type Application struct {
	cfg      config.Config
	cfgPath  string
	registry *domain.ConfigRegistry
	disc     *discovery.UseCase
	provider *SwappableMetricsProvider
	runner   *AbnTestRunner
	server   *api.Server
}

// NewApplication performs the complete bootstrap: logging, configuration,
// Kubernetes client and component wiring. The returned application is ready
// to Run.
func NewApplication(bootCfg *Config) (*Application, error) {
	logLevel := logging.LevelInfo
	if bootCfg.Debug {
		logLevel = logging.LevelDebug
	}
	var logOutput io.Writer = os.Stdout
	if bootCfg.Silent {
		logOutput = io.Discard
	}
	logging.Init(logLevel, logOutput)

	configPath := bootCfg.ConfigPath
	if configPath == "" {
		configPath = config.GetDefaultConfigPathOrPanic()
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration from %s", configPath)
		return nil, fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}

	kube, err := NewKubernetesClient()
	if err != nil {
		return nil, err
	}

	registry := domain.NewConfigRegistry()

	finder := discovery.NewKubernetesServiceFinder(kube)
	validator := discovery.NewHTTPMarionetteValidator().
		WithTimeout(cfg.Discovery.ProbeTimeout.Std()).
		WithRetries(cfg.Discovery.ProbeRetries)
	fetcher := discovery.NewHTTPConfigurationFetcher()
	disc := discovery.NewUseCase(finder, validator, fetcher, registry)

	notifier := gateway.NewPodFanoutGateway(kube)
	provider := NewSwappableMetricsProvider(cfg.Metrics.ToProviderConfig())
	tracker := metrics.NewStaticNonMarionetteTracker(cfg.NonMarionetteNodes)

	executor := experiment.NewUniformAbnTestExecutor(registry, notifier, provider, tracker).
		WithSamplingPeriod(cfg.Experiment.SamplingPeriod.Std())
	ranker := ranking.NewSystemConfigurationsRanker(ranking.NewSystemMetricsAggregator())
	results := ranking.NewResultsStorage()
	runner := NewAbnTestRunner(registry, executor, ranker, provider, results)

	promRegistry := prometheus.NewRegistry()
	if err := telemetry.Register(promRegistry); err != nil {
		return nil, fmt.Errorf("failed to register telemetry collectors: %w", err)
	}

	server := api.NewServer(registry, notifier, disc, runner, results, promRegistry, cfg.Experiment.TotalDuration.Std())

	return &Application{
		cfg:      cfg,
		cfgPath:  configPath,
		registry: registry,
		disc:     disc,
		provider: provider,
		runner:   runner,
		server:   server,
	}, nil
}

// Registry exposes the live configuration registry.
func (a *Application) Registry() *domain.ConfigRegistry {
	return a.registry
}

// Discovery exposes the discovery use case for one-shot commands.
func (a *Application) Discovery() *discovery.UseCase {
	return a.disc
}

// Runner exposes the experiment pipeline for one-shot commands.
func (a *Application) Runner() *AbnTestRunner {
	return a.runner
}

// ExperimentDuration returns the configured default total experiment
// duration.
func (a *Application) ExperimentDuration() time.Duration {
	return a.cfg.Experiment.TotalDuration.Std()
}

// Run performs the initial discovery pass and serves the REST API until the
// context is cancelled. Configuration file changes are picked up while
// running, a changed metrics section takes effect for the next experiment.
func (a *Application) Run(ctx context.Context) error {
	count, err := a.disc.Run(ctx)
	if err != nil {
		telemetry.ObserveDiscovery(telemetry.OutcomeError, -1)
		logging.Error("Bootstrap", err, "Initial discovery failed, continuing with an empty registry")
	} else {
		telemetry.ObserveDiscovery(telemetry.OutcomeSuccess, count)
	}

	group, groupCtx := errgroup.WithContext(ctx)

	watcher, err := config.NewWatcher(a.cfgPath, a.applyConfigChange)
	if err != nil {
		logging.Warn("Bootstrap", "Configuration watching disabled: %v", err)
	} else {
		group.Go(func() error {
			return watcher.Run(groupCtx)
		})
	}

	group.Go(func() error {
		return a.server.Start(groupCtx, a.cfg.API.Address())
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *Application) applyConfigChange(next config.Config) {
	a.provider.Swap(next.Metrics.ToProviderConfig())
	logging.Info("Bootstrap", "Reloaded metrics configuration with %d metric specs", len(next.Metrics.Specs))
}
