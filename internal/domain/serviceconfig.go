package domain

import "fmt"

// ServiceConfig is the full behaviour surface of one marionette service,
// composed of class configurations. Copy-on-write like ClassConfig.
type ServiceConfig struct {
	serviceName  ServiceName
	classConfigs map[ClassName]ClassConfig
}

// NewServiceConfig creates a ServiceConfig with the given classes. The map
// is defensively copied.
func NewServiceConfig(serviceName ServiceName, classes map[ClassName]ClassConfig) ServiceConfig {
	copied := make(map[ClassName]ClassConfig, len(classes))
	for name, cfg := range classes {
		copied[name] = cfg
	}
	return ServiceConfig{serviceName: serviceName, classConfigs: copied}
}

// WithClassConfig returns a copy with the given class configuration added
// or replaced.
func (s ServiceConfig) WithClassConfig(cfg ClassConfig) ServiceConfig {
	copy := s.copyClasses()
	copy[cfg.ClassName()] = cfg
	return ServiceConfig{serviceName: s.serviceName, classConfigs: copy}
}

// WithBehaviourForMethod returns a copy where the current behaviour of the
// method identified by (class, method) is replaced.
func (s ServiceConfig) WithBehaviourForMethod(class ClassName, method MethodName, id BehaviourID) (ServiceConfig, error) {
	existing, ok := s.classConfigs[class]
	if !ok {
		return ServiceConfig{}, NewInvalidArgumentError(
			fmt.Sprintf("class %s does not exist in the configuration of service %s", class, s.serviceName))
	}

	updated, err := existing.WithBehaviourForMethod(method, id)
	if err != nil {
		return ServiceConfig{}, err
	}

	copy := s.copyClasses()
	copy[class] = updated
	return ServiceConfig{serviceName: s.serviceName, classConfigs: copy}, nil
}

// ServiceName returns the service name.
func (s ServiceConfig) ServiceName() ServiceName { return s.serviceName }

// ClassConfig looks up a class configuration by name.
func (s ServiceConfig) ClassConfig(name ClassName) (ClassConfig, bool) {
	cfg, ok := s.classConfigs[name]
	return cfg, ok
}

// ClassConfigs returns a copy of the class configuration map.
func (s ServiceConfig) ClassConfigs() map[ClassName]ClassConfig {
	return s.copyClasses()
}

// CurrentBehaviourForMethod returns the current behaviour of the method
// identified by (class, method).
func (s ServiceConfig) CurrentBehaviourForMethod(class ClassName, method MethodName) (BehaviourID, bool) {
	classCfg, ok := s.classConfigs[class]
	if !ok {
		return "", false
	}
	return classCfg.CurrentBehaviourForMethod(method)
}

// Equal reports structural equality with another ServiceConfig.
func (s ServiceConfig) Equal(other ServiceConfig) bool {
	if s.serviceName != other.serviceName || len(s.classConfigs) != len(other.classConfigs) {
		return false
	}
	for name, cfg := range s.classConfigs {
		otherCfg, ok := other.classConfigs[name]
		if !ok || !cfg.Equal(otherCfg) {
			return false
		}
	}
	return true
}

func (s ServiceConfig) copyClasses() map[ClassName]ClassConfig {
	copied := make(map[ClassName]ClassConfig, len(s.classConfigs))
	for name, cfg := range s.classConfigs {
		copied[name] = cfg
	}
	return copied
}
