package api

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marionettist/internal/domain"
	"marionettist/internal/experiment"
	"marionettist/internal/ranking"
	"marionettist/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

// DiscoveryTrigger re-runs service discovery from scratch.
type DiscoveryTrigger interface {
	Rediscover(ctx context.Context) (int, error)
}

// ExperimentRunner executes one complete A/B test and returns the ranked
// outcome. Implementations store the result themselves.
type ExperimentRunner interface {
	Run(ctx context.Context, totalDuration time.Duration) (ranking.AbnTestResult, error)
}

// Server is the HTTP facade of the control plane.
type Server struct {
	registry        *domain.ConfigRegistry
	notifier        experiment.BehaviourNotifier
	discovery       DiscoveryTrigger
	runner          ExperimentRunner
	results         *ranking.ResultsStorage
	gatherer        prometheus.Gatherer
	defaultDuration time.Duration

	engine     *gin.Engine
	httpServer *http.Server

	experimentRunning atomic.Bool
}

// NewServer assembles the router. defaultDuration is used when a run
// request does not carry an explicit duration.
func NewServer(registry *domain.ConfigRegistry, notifier experiment.BehaviourNotifier, discovery DiscoveryTrigger, runner ExperimentRunner, results *ranking.ResultsStorage, gatherer prometheus.Gatherer, defaultDuration time.Duration) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		registry:        registry,
		notifier:        notifier,
		discovery:       discovery,
		runner:          runner,
		results:         results,
		gatherer:        gatherer,
		defaultDuration: defaultDuration,
		engine:          engine,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	apiGroup := s.engine.Group("/api")
	{
		apiGroup.GET("/configurations", s.handleListConfigurations)
		apiGroup.POST("/behaviour", s.handleChangeBehaviour)
		apiGroup.POST("/discovery/trigger", s.handleTriggerDiscovery)
		apiGroup.POST("/abntest/run", s.handleRunExperiment)
		apiGroup.GET("/abntest/results", s.handleGetResults)
		apiGroup.GET("/health", s.handleHealth)
	}

	if s.gatherer != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves HTTP on addr until the context is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("API", "Listening on %s", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
