package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"marionettist/internal/domain"
	"marionettist/internal/experiment"
	"marionettist/internal/ranking"
	"marionettist/internal/telemetry"
	"marionettist/pkg/logging"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListConfigurations(c *gin.Context) {
	c.JSON(http.StatusOK, buildConfigurationsResponse(s.registry))
}

// handleChangeBehaviour applies a single behaviour change to the registry
// and fans it out to the running replicas. The registry is the source of
// truth, a delivery failure after a successful registry update is still
// reported as an error to the caller.
func (s *Server) handleChangeBehaviour(c *gin.Context) {
	var req BehaviourChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body: "+err.Error()))
		return
	}

	serviceName, err := domain.NewServiceName(req.ServiceName)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	className, err := domain.NewClassName(req.ClassName)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	methodName, err := domain.NewMethodName(req.MethodName)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	behaviourID, err := domain.NewBehaviourID(req.BehaviourID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := s.registry.ModifyCurrentBehaviourForMethod(serviceName, className, methodName, behaviourID); err != nil {
		telemetry.ObserveBehaviourChange(telemetry.OutcomeError)
		status := http.StatusInternalServerError
		if domain.IsInvalidArgument(err) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, errorResponse(err.Error()))
		return
	}

	endpoint, err := s.registry.EndpointOfService(serviceName)
	if err != nil {
		telemetry.ObserveBehaviourChange(telemetry.OutcomeError)
		c.JSON(http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}

	change := experiment.BehaviourChange{
		ServiceName: req.ServiceName,
		ClassName:   req.ClassName,
		MethodName:  req.MethodName,
		BehaviourID: req.BehaviourID,
	}
	if err := s.notifier.NotifyBehaviourChange(c.Request.Context(), endpoint, change); err != nil {
		telemetry.ObserveBehaviourChange(telemetry.OutcomeError)
		logging.Error("API", err, "Behaviour change for %s accepted but not delivered", req.ServiceName)
		c.JSON(http.StatusBadGateway, errorResponse("behaviour recorded but delivery to service failed: "+err.Error()))
		return
	}

	telemetry.ObserveBehaviourChange(telemetry.OutcomeSuccess)
	c.JSON(http.StatusOK, gin.H{
		"status":      "applied",
		"serviceName": req.ServiceName,
		"className":   req.ClassName,
		"methodName":  req.MethodName,
		"behaviourId": req.BehaviourID,
	})
}

func (s *Server) handleTriggerDiscovery(c *gin.Context) {
	count, err := s.discovery.Rediscover(c.Request.Context())
	if err != nil {
		telemetry.ObserveDiscovery(telemetry.OutcomeError, -1)
		c.JSON(http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}

	telemetry.ObserveDiscovery(telemetry.OutcomeSuccess, count)
	c.JSON(http.StatusOK, gin.H{"registeredServices": count})
}

// handleRunExperiment executes a full A/B test synchronously. Only one run
// may be in flight at a time.
func (s *Server) handleRunExperiment(c *gin.Context) {
	totalDuration := s.defaultDuration
	if raw := c.Query("durationSeconds"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			c.JSON(http.StatusBadRequest, errorResponse("durationSeconds must be a positive integer"))
			return
		}
		totalDuration = time.Duration(seconds) * time.Second
	}

	if !s.experimentRunning.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, errorResponse("an experiment is already running"))
		return
	}
	defer s.experimentRunning.Store(false)

	started := time.Now()
	result, err := s.runner.Run(c.Request.Context(), totalDuration)
	if err != nil {
		telemetry.ObserveExperiment(time.Since(started), telemetry.OutcomeError)
		status := http.StatusInternalServerError
		if domain.IsInvalidArgument(err) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, errorResponse(err.Error()))
		return
	}

	telemetry.ObserveExperiment(time.Since(started), telemetry.OutcomeSuccess)
	c.JSON(http.StatusOK, resultResponse(result))
}

func (s *Server) handleGetResults(c *gin.Context) {
	result, ok := s.results.Latest()
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse("no experiment has completed yet"))
		return
	}
	c.JSON(http.StatusOK, resultResponse(result))
}

// resultResponse trims the ranking to the reportable top entries.
func resultResponse(result ranking.AbnTestResult) ranking.AbnTestResult {
	result.Ranked = result.TopRanked(ranking.MaxReportedConfigurations)
	return result
}
