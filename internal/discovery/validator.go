package discovery

import (
	"context"
	"io"
	"net/http"
	"time"

	"marionettist/pkg/logging"
)

const (
	// isMarionettePath is the marionette protocol identity probe.
	isMarionettePath = "/marionette/api/isMarionette"

	defaultProbeTimeout = 10 * time.Second
	defaultProbeRetries = 3
)

// HTTPMarionetteValidator probes candidates for marionette compliance.
type HTTPMarionetteValidator struct {
	client     *http.Client
	timeout    time.Duration
	maxRetries int
}

// NewHTTPMarionetteValidator creates a validator with the default retry
// budget.
func NewHTTPMarionetteValidator() *HTTPMarionetteValidator {
	return &HTTPMarionetteValidator{
		client:     &http.Client{Timeout: defaultProbeTimeout},
		timeout:    defaultProbeTimeout,
		maxRetries: defaultProbeRetries,
	}
}

// WithRetries overrides the attempt budget.
func (v *HTTPMarionetteValidator) WithRetries(retries int) *HTTPMarionetteValidator {
	if retries > 0 {
		v.maxRetries = retries
	}
	return v
}

// WithTimeout overrides the per-attempt timeout.
func (v *HTTPMarionetteValidator) WithTimeout(timeout time.Duration) *HTTPMarionetteValidator {
	if timeout > 0 {
		v.timeout = timeout
		v.client.Timeout = timeout
	}
	return v
}

// ValidateCandidate probes the candidate's identity endpoint with a bounded
// number of attempts, each independently timed out. Any 2xx confirms the
// node. A 4xx is a definitive rejection, the node exists but does not speak
// the protocol, so no retry. Server errors and transport failures retry up
// to the budget; exhausting it rejects.
func (v *HTTPMarionetteValidator) ValidateCandidate(ctx context.Context, candidate CandidateService) bool {
	probeURL := candidate.Endpoint.JoinPath(isMarionettePath).String()
	logging.Debug("Discovery", "Validating marionette candidate %s", probeURL)

	for attempt := 1; attempt <= v.maxRetries; attempt++ {
		confirmed, definitive := v.probeOnce(ctx, probeURL)
		if definitive {
			if confirmed {
				logging.Info("Discovery", "Service %s confirmed as marionette node", candidate.ServiceName)
			} else {
				logging.Debug("Discovery", "Service %s rejected the identity probe, discarding", candidate.ServiceName)
			}
			return confirmed
		}
		if ctx.Err() != nil {
			return false
		}
	}

	logging.Debug("Discovery", "Service %s did not respond to %d probes, discarding", candidate.ServiceName, v.maxRetries)
	return false
}

// probeOnce returns (confirmed, definitive). A non-definitive result means
// the attempt should be retried.
func (v *HTTPMarionetteValidator) probeOnce(ctx context.Context, probeURL string) (bool, bool) {
	attemptCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, probeURL, nil)
	if err != nil {
		return false, true
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return false, false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, true
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return false, true
	default:
		return false, false
	}
}
