package domain

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"marionettist/pkg/logging"
)

// ConfigRegistry is the process-wide authoritative store of fleet
// configuration. It holds two parallel maps per service: the template
// configuration (first seen at discovery, the reset target) and the runtime
// configuration (the live, possibly mutated state), plus service metadata.
//
// Every key in runtime also exists in templates. All operations are
// serialized behind one lock: config application during an experiment,
// snapshot reads and discovery writes must never interleave inconsistently.
type ConfigRegistry struct {
	mu            sync.RWMutex
	templates     map[ServiceName]ServiceConfig
	runtime       map[ServiceName]ServiceConfig
	metadata      map[ServiceName]ServiceMetadata
	lastDiscovery time.Time
}

// NewConfigRegistry creates an empty registry.
func NewConfigRegistry() *ConfigRegistry {
	return &ConfigRegistry{
		templates:     make(map[ServiceName]ServiceConfig),
		runtime:       make(map[ServiceName]ServiceConfig),
		metadata:      make(map[ServiceName]ServiceMetadata),
		lastDiscovery: time.Now(),
	}
}

// AddDiscoveredService records a discovered service. The template is always
// overwritten; the runtime configuration is only seeded when the service is
// new, so user-applied drift survives rediscovery.
func (r *ConfigRegistry) AddDiscoveredService(name ServiceName, template ServiceConfig, endpoint *url.URL) error {
	meta, err := DiscoveredNew(name, endpoint)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.templates[name] = template
	if _, exists := r.runtime[name]; !exists {
		r.runtime[name] = template
	}
	r.metadata[name] = meta

	logging.Info("Registry", "Added service %s (template stored, runtime preserved)", name)
	return nil
}

// UpdateRuntimeConfiguration replaces the live configuration of a known
// service.
func (r *ConfigRegistry) UpdateRuntimeConfiguration(name ServiceName, cfg ServiceConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templates[name]; !exists {
		return NewInvalidArgumentError(fmt.Sprintf("cannot update runtime config for unknown service %s", name))
	}

	r.runtime[name] = cfg
	r.updateStatusLocked(name, StatusModified)
	return nil
}

// ResetToTemplate restores a service's runtime configuration to its template.
// Unknown services are ignored.
func (r *ConfigRegistry) ResetToTemplate(name ServiceName) {
	r.mu.Lock()
	defer r.mu.Unlock()

	template, ok := r.templates[name]
	if !ok {
		return
	}
	r.runtime[name] = template
	r.updateStatusLocked(name, StatusResetToTemplate)
}

// MarkServiceUnavailable flags a service as not responding.
func (r *ConfigRegistry) MarkServiceUnavailable(name ServiceName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateStatusLocked(name, StatusUnavailable)
}

// RemoveService deletes all state for a service.
func (r *ConfigRegistry) RemoveService(name ServiceName) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.templates, name)
	delete(r.runtime, name)
	delete(r.metadata, name)
}

// ModifyCurrentBehaviourForMethod changes the current behaviour of one
// method in a known service's runtime configuration. Fails with an
// InvalidArgumentError when the service, class, method or behaviour is
// unknown. The replacement is atomic under the registry lock.
func (r *ConfigRegistry) ModifyCurrentBehaviourForMethod(service ServiceName, class ClassName, method MethodName, behaviour BehaviourID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.runtime[service]
	if !ok {
		return NewInvalidArgumentError(fmt.Sprintf("service %s does not exist in the registry", service))
	}

	modified, err := current.WithBehaviourForMethod(class, method, behaviour)
	if err != nil {
		return err
	}

	r.runtime[service] = modified
	return nil
}

// FlushAll clears all configurations and metadata. Used before a full
// rediscovery.
func (r *ConfigRegistry) FlushAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	logging.Info("Registry", "Flushing registry: clearing all configurations and metadata")
	r.templates = make(map[ServiceName]ServiceConfig)
	r.runtime = make(map[ServiceName]ServiceConfig)
	r.metadata = make(map[ServiceName]ServiceMetadata)
	r.lastDiscovery = time.Now()
}

// IsServiceModified reports whether a service's runtime configuration
// diverged from its template (structural comparison).
func (r *ConfigRegistry) IsServiceModified(name ServiceName) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	template, tok := r.templates[name]
	runtime, rok := r.runtime[name]
	if !tok || !rok {
		return false
	}
	return !template.Equal(runtime)
}

// RuntimeConfiguration returns the live configuration of a service.
func (r *ConfigRegistry) RuntimeConfiguration(name ServiceName) (ServiceConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.runtime[name]
	return cfg, ok
}

// TemplateConfiguration returns the template configuration of a service.
func (r *ConfigRegistry) TemplateConfiguration(name ServiceName) (ServiceConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.templates[name]
	return cfg, ok
}

// AllRuntimeConfigurations returns a consistent copy of all live
// configurations, taken under the lock.
func (r *ConfigRegistry) AllRuntimeConfigurations() map[ServiceName]ServiceConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	copied := make(map[ServiceName]ServiceConfig, len(r.runtime))
	for name, cfg := range r.runtime {
		copied[name] = cfg
	}
	return copied
}

// AllServiceMetadata returns a copy of all service metadata.
func (r *ConfigRegistry) AllServiceMetadata() map[ServiceName]ServiceMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	copied := make(map[ServiceName]ServiceMetadata, len(r.metadata))
	for name, meta := range r.metadata {
		copied[name] = meta
	}
	return copied
}

// EndpointOfService returns the endpoint a service was discovered at.
func (r *ConfigRegistry) EndpointOfService(name ServiceName) (*url.URL, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.metadata[name]
	if !ok {
		return nil, NewInvalidArgumentError(fmt.Sprintf("no metadata for service %s", name))
	}
	return meta.Endpoint(), nil
}

// CurrentBehaviourForMethod reads the live behaviour of one method.
func (r *ConfigRegistry) CurrentBehaviourForMethod(service ServiceName, class ClassName, method MethodName) (BehaviourID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.runtime[service]
	if !ok {
		return "", NewInvalidArgumentError(fmt.Sprintf("service %s does not exist in the registry", service))
	}
	id, ok := cfg.CurrentBehaviourForMethod(class, method)
	if !ok {
		return "", NewInvalidArgumentError(fmt.Sprintf("method %s.%s does not exist in service %s", class, method, service))
	}
	return id, nil
}

// ServiceCount returns the number of registered services.
func (r *ConfigRegistry) ServiceCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.runtime)
}

// LastDiscovery returns the time of the last discovery run.
func (r *ConfigRegistry) LastDiscovery() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastDiscovery
}

// TouchLastDiscovery records that a discovery run completed now.
func (r *ConfigRegistry) TouchLastDiscovery() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastDiscovery = time.Now()
}

func (r *ConfigRegistry) updateStatusLocked(name ServiceName, status ServiceStatus) {
	if meta, ok := r.metadata[name]; ok {
		r.metadata[name] = meta.WithStatus(status).WithLastSeen(time.Now())
	}
}
