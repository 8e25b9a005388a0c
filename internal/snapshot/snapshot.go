// Package snapshot provides point-in-time, fully flattened captures of the
// registry's runtime state. Snapshots serve both as the experiment's audit
// trail and as the key under which collected metrics are filed.
package snapshot

import (
	"time"

	"marionettist/internal/domain"
)

// ClassSnapshot maps each method of a class to its current behaviour only.
type ClassSnapshot struct {
	ClassName        string            `json:"className"`
	MethodBehaviours map[string]string `json:"methodBehaviours"`
}

// ServiceSnapshot is the flattened behaviour state of one service.
type ServiceSnapshot struct {
	ServiceName string                   `json:"serviceName"`
	Classes     map[string]ClassSnapshot `json:"classes"`
}

// SystemConfigurationSnapshot captures the entire fleet's live behaviour
// selection at one instant.
type SystemConfigurationSnapshot struct {
	Services   map[string]ServiceSnapshot `json:"services"`
	CapturedAt time.Time                  `json:"capturedAt"`
}

// FromRegistry captures the registry's current runtime state. The registry
// read is a single lock-protected copy, so the snapshot is internally
// consistent.
func FromRegistry(registry *domain.ConfigRegistry) SystemConfigurationSnapshot {
	services := make(map[string]ServiceSnapshot)
	for name, cfg := range registry.AllRuntimeConfigurations() {
		services[name.String()] = FromServiceConfig(cfg)
	}
	return SystemConfigurationSnapshot{
		Services:   services,
		CapturedAt: time.Now(),
	}
}

// FromServiceConfig flattens one service configuration.
func FromServiceConfig(cfg domain.ServiceConfig) ServiceSnapshot {
	classes := make(map[string]ClassSnapshot)
	for className, classCfg := range cfg.ClassConfigs() {
		methods := make(map[string]string)
		for methodName, methodCfg := range classCfg.MethodConfigs() {
			methods[methodName.String()] = methodCfg.CurrentBehaviourID().String()
		}
		classes[className.String()] = ClassSnapshot{
			ClassName:        className.String(),
			MethodBehaviours: methods,
		}
	}
	return ServiceSnapshot{
		ServiceName: cfg.ServiceName().String(),
		Classes:     classes,
	}
}

// ForNonMarionetteNode creates a placeholder snapshot for a node whose
// metrics matter but which is not behaviour-controllable.
func ForNonMarionetteNode(serviceName string) ServiceSnapshot {
	return ServiceSnapshot{
		ServiceName: serviceName,
		Classes:     map[string]ClassSnapshot{},
	}
}

// ServiceNames lists the services captured by the snapshot.
func (s SystemConfigurationSnapshot) ServiceNames() []string {
	names := make([]string, 0, len(s.Services))
	for name := range s.Services {
		names = append(names, name)
	}
	return names
}

// ServiceByName looks up a service snapshot.
func (s SystemConfigurationSnapshot) ServiceByName(name string) (ServiceSnapshot, bool) {
	svc, ok := s.Services[name]
	return svc, ok
}

// HasService reports whether the snapshot covers the named service.
func (s SystemConfigurationSnapshot) HasService(name string) bool {
	_, ok := s.Services[name]
	return ok
}
