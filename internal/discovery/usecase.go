package discovery

import (
	"context"
	"errors"
	"net/url"

	"golang.org/x/sync/errgroup"

	"marionettist/internal/domain"
	"marionettist/pkg/logging"
)

// maxParallelProbes bounds how many candidates are validated at once.
const maxParallelProbes = 8

// Finder lists discovery candidates.
type Finder interface {
	FindCandidateServices(ctx context.Context) ([]CandidateService, error)
}

// Validator decides whether a candidate speaks the marionette protocol.
type Validator interface {
	ValidateCandidate(ctx context.Context, candidate CandidateService) bool
}

// ConfigurationFetcher loads a confirmed node's configuration tree.
type ConfigurationFetcher interface {
	FetchConfiguration(ctx context.Context, endpoint *url.URL) (domain.ServiceConfig, error)
}

// UseCase composes find -> validate -> fetch -> register into the full
// discovery pipeline.
type UseCase struct {
	finder    Finder
	validator Validator
	fetcher   ConfigurationFetcher
	registry  *domain.ConfigRegistry
}

// NewUseCase wires the discovery pipeline.
func NewUseCase(finder Finder, validator Validator, fetcher ConfigurationFetcher, registry *domain.ConfigRegistry) *UseCase {
	return &UseCase{finder: finder, validator: validator, fetcher: fetcher, registry: registry}
}

// Run executes one full discovery pass. Candidates are validated in
// parallel, a latency optimization only. A service whose configuration
// cannot be fetched is logged and skipped, never fatal. Returns the number
// of services registered.
func (u *UseCase) Run(ctx context.Context) (int, error) {
	candidates, err := u.finder.FindCandidateServices(ctx)
	if err != nil {
		return 0, err
	}

	validated := u.validateAll(ctx, candidates)
	logging.Info("Discovery", "%d of %d candidates confirmed as marionette nodes", len(validated), len(candidates))

	registered := 0
	for _, candidate := range validated {
		config, err := u.fetcher.FetchConfiguration(ctx, candidate.Endpoint)
		if err != nil {
			var fetchErr *FetchConfigurationError
			if errors.As(err, &fetchErr) {
				logging.Warn("Discovery", "Skipping node %s: %s", candidate.Endpoint, fetchErr.UserMessage)
			} else {
				logging.Warn("Discovery", "Skipping node %s: %v", candidate.Endpoint, err)
			}
			continue
		}

		if err := u.registry.AddDiscoveredService(config.ServiceName(), config, candidate.Endpoint); err != nil {
			logging.Error("Discovery", err, "Failed to register service %s", config.ServiceName())
			continue
		}
		registered++
	}

	u.registry.TouchLastDiscovery()
	logging.Info("Discovery", "Discovery complete: %d services registered", registered)
	return registered, nil
}

// Rediscover flushes the registry and reruns a full discovery pass. No
// incremental diffing is attempted.
func (u *UseCase) Rediscover(ctx context.Context) (int, error) {
	logging.Info("Discovery", "Rediscovery requested, flushing registry")
	u.registry.FlushAll()
	return u.Run(ctx)
}

// validateAll probes all candidates concurrently and returns the confirmed
// ones in candidate order.
func (u *UseCase) validateAll(ctx context.Context, candidates []CandidateService) []CandidateService {
	confirmed := make([]bool, len(candidates))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxParallelProbes)
	for i, candidate := range candidates {
		group.Go(func() error {
			confirmed[i] = u.validator.ValidateCandidate(groupCtx, candidate)
			return nil
		})
	}
	group.Wait()

	var validated []CandidateService
	for i, candidate := range candidates {
		if confirmed[i] {
			validated = append(validated, candidate)
		}
	}
	return validated
}
