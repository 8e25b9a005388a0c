package domain

import (
	"net/url"
	"time"
)

// ServiceStatus tracks the lifecycle state of a discovered service.
type ServiceStatus string

const (
	// StatusDiscovered marks a newly found service.
	StatusDiscovered ServiceStatus = "DISCOVERED"
	// StatusAvailable marks a service responding to health checks.
	StatusAvailable ServiceStatus = "AVAILABLE"
	// StatusModified marks a service whose runtime configuration diverged
	// from its template.
	StatusModified ServiceStatus = "MODIFIED"
	// StatusUnavailable marks a service that was found before but is not
	// responding now.
	StatusUnavailable ServiceStatus = "UNAVAILABLE"
	// StatusResetToTemplate marks a service recently reset to its template
	// configuration.
	StatusResetToTemplate ServiceStatus = "RESET_TO_TEMPLATE"
)

// ServiceMetadata is the registry's bookkeeping for one service: where to
// reach it, when it was last seen, and its status. Immutable; WithX methods
// return copies.
type ServiceMetadata struct {
	serviceName ServiceName
	endpoint    *url.URL
	lastSeen    time.Time
	status      ServiceStatus
}

// NewServiceMetadata creates metadata for a service.
func NewServiceMetadata(name ServiceName, endpoint *url.URL, lastSeen time.Time, status ServiceStatus) (ServiceMetadata, error) {
	if endpoint == nil {
		return ServiceMetadata{}, NewInvalidArgumentError("service endpoint cannot be nil")
	}
	return ServiceMetadata{
		serviceName: name,
		endpoint:    endpoint,
		lastSeen:    lastSeen,
		status:      status,
	}, nil
}

// DiscoveredNew creates metadata for a freshly discovered service.
func DiscoveredNew(name ServiceName, endpoint *url.URL) (ServiceMetadata, error) {
	return NewServiceMetadata(name, endpoint, time.Now(), StatusDiscovered)
}

// WithStatus returns a copy with the status replaced.
func (m ServiceMetadata) WithStatus(status ServiceStatus) ServiceMetadata {
	m.status = status
	return m
}

// WithLastSeen returns a copy with the last-seen timestamp replaced.
func (m ServiceMetadata) WithLastSeen(t time.Time) ServiceMetadata {
	m.lastSeen = t
	return m
}

// ServiceName returns the service name.
func (m ServiceMetadata) ServiceName() ServiceName { return m.serviceName }

// Endpoint returns the service endpoint URL.
func (m ServiceMetadata) Endpoint() *url.URL { return m.endpoint }

// LastSeen returns the last-seen timestamp.
func (m ServiceMetadata) LastSeen() time.Time { return m.lastSeen }

// Status returns the service status.
func (m ServiceMetadata) Status() ServiceStatus { return m.status }
