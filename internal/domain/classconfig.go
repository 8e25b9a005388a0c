package domain

import "fmt"

// ClassConfig groups the method configurations of one class. Duplicate
// method names are impossible by construction (map keyed by MethodName).
// All mutation is copy-on-write.
type ClassConfig struct {
	className     ClassName
	methodConfigs map[MethodName]MethodConfig
}

// NewClassConfig creates a ClassConfig with the given methods. The map is
// defensively copied.
func NewClassConfig(className ClassName, methods map[MethodName]MethodConfig) ClassConfig {
	copied := make(map[MethodName]MethodConfig, len(methods))
	for name, cfg := range methods {
		copied[name] = cfg
	}
	return ClassConfig{className: className, methodConfigs: copied}
}

// WithMethodConfig returns a copy with the given method configuration added
// or replaced.
func (c ClassConfig) WithMethodConfig(cfg MethodConfig) ClassConfig {
	copy := c.copyMethods()
	copy[cfg.MethodName()] = cfg
	return ClassConfig{className: c.className, methodConfigs: copy}
}

// WithBehaviourForMethod returns a copy where the named method's current
// behaviour is replaced. The method must exist and the behaviour must be
// selectable.
func (c ClassConfig) WithBehaviourForMethod(method MethodName, id BehaviourID) (ClassConfig, error) {
	existing, ok := c.methodConfigs[method]
	if !ok {
		return ClassConfig{}, NewInvalidArgumentError(
			fmt.Sprintf("method %s does not exist in class %s", method, c.className))
	}

	updated, err := existing.WithCurrentBehaviourID(id)
	if err != nil {
		return ClassConfig{}, err
	}

	copy := c.copyMethods()
	copy[method] = updated
	return ClassConfig{className: c.className, methodConfigs: copy}, nil
}

// ClassName returns the class name.
func (c ClassConfig) ClassName() ClassName { return c.className }

// MethodConfig looks up a method configuration by name.
func (c ClassConfig) MethodConfig(name MethodName) (MethodConfig, bool) {
	cfg, ok := c.methodConfigs[name]
	return cfg, ok
}

// MethodConfigs returns a copy of the method configuration map.
func (c ClassConfig) MethodConfigs() map[MethodName]MethodConfig {
	return c.copyMethods()
}

// CurrentBehaviourForMethod returns the current behaviour of the named method.
func (c ClassConfig) CurrentBehaviourForMethod(name MethodName) (BehaviourID, bool) {
	cfg, ok := c.methodConfigs[name]
	if !ok {
		return "", false
	}
	return cfg.CurrentBehaviourID(), true
}

// Equal reports structural equality with another ClassConfig.
func (c ClassConfig) Equal(other ClassConfig) bool {
	if c.className != other.className || len(c.methodConfigs) != len(other.methodConfigs) {
		return false
	}
	for name, cfg := range c.methodConfigs {
		otherCfg, ok := other.methodConfigs[name]
		if !ok || !cfg.Equal(otherCfg) {
			return false
		}
	}
	return true
}

func (c ClassConfig) copyMethods() map[MethodName]MethodConfig {
	copied := make(map[MethodName]MethodConfig, len(c.methodConfigs))
	for name, cfg := range c.methodConfigs {
		copied[name] = cfg
	}
	return copied
}
