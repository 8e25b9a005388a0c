package domain

import "fmt"

// MethodConfig describes the behaviour surface of a single method: its
// factory default, the currently selected behaviour and the set of legally
// selectable ones.
//
// Invariant: availableBehaviourIDs is non-empty and contains both the
// default and the current behaviour. Only the current behaviour ever
// changes, via WithCurrentBehaviourID, which produces a new value.
type MethodConfig struct {
	methodName            MethodName
	defaultBehaviourID    BehaviourID
	currentBehaviourID    BehaviourID
	availableBehaviourIDs BehaviourIDSet
}

// NewMethodConfig validates the invariants and creates a MethodConfig.
func NewMethodConfig(methodName MethodName, defaultID, currentID BehaviourID, available BehaviourIDSet) (MethodConfig, error) {
	if available.Len() == 0 {
		return MethodConfig{}, NewInvalidArgumentError(
			fmt.Sprintf("method %s declares no available behaviours", methodName))
	}
	if !available.Contains(defaultID) {
		return MethodConfig{}, NewInvalidArgumentError(
			fmt.Sprintf("default behaviour %s of method %s is not among the available ones %s", defaultID, methodName, available))
	}
	if !available.Contains(currentID) {
		return MethodConfig{}, NewInvalidArgumentError(
			fmt.Sprintf("current behaviour %s of method %s is not among the available ones %s", currentID, methodName, available))
	}

	return MethodConfig{
		methodName:            methodName,
		defaultBehaviourID:    defaultID,
		currentBehaviourID:    currentID,
		availableBehaviourIDs: available,
	}, nil
}

// MethodConfigFromStrings builds a MethodConfig from raw string values,
// validating every identifier.
func MethodConfigFromStrings(methodName, defaultID, currentID string, available []string) (MethodConfig, error) {
	name, err := NewMethodName(methodName)
	if err != nil {
		return MethodConfig{}, err
	}
	def, err := NewBehaviourID(defaultID)
	if err != nil {
		return MethodConfig{}, err
	}
	cur, err := NewBehaviourID(currentID)
	if err != nil {
		return MethodConfig{}, err
	}
	set, err := BehaviourIDSetFromStrings(available)
	if err != nil {
		return MethodConfig{}, err
	}
	return NewMethodConfig(name, def, cur, set)
}

// WithCurrentBehaviourID returns a copy with a new current behaviour. The
// new id must be a member of the available set.
func (m MethodConfig) WithCurrentBehaviourID(id BehaviourID) (MethodConfig, error) {
	if !m.availableBehaviourIDs.Contains(id) {
		return MethodConfig{}, NewInvalidArgumentError(
			fmt.Sprintf("behaviour %s is not among the available ones for method %s, which are %s",
				id, m.methodName, m.availableBehaviourIDs))
	}
	return MethodConfig{
		methodName:            m.methodName,
		defaultBehaviourID:    m.defaultBehaviourID,
		currentBehaviourID:    id,
		availableBehaviourIDs: m.availableBehaviourIDs,
	}, nil
}

// MethodName returns the method's name.
func (m MethodConfig) MethodName() MethodName { return m.methodName }

// DefaultBehaviourID returns the factory-default behaviour.
func (m MethodConfig) DefaultBehaviourID() BehaviourID { return m.defaultBehaviourID }

// CurrentBehaviourID returns the currently selected behaviour.
func (m MethodConfig) CurrentBehaviourID() BehaviourID { return m.currentBehaviourID }

// AvailableBehaviourIDs returns the set of legally selectable behaviours.
func (m MethodConfig) AvailableBehaviourIDs() BehaviourIDSet { return m.availableBehaviourIDs }

// VariationCount returns the number of selectable behaviours.
func (m MethodConfig) VariationCount() int { return m.availableBehaviourIDs.Len() }

// Equal reports structural equality with another MethodConfig.
func (m MethodConfig) Equal(other MethodConfig) bool {
	return m.methodName == other.methodName &&
		m.defaultBehaviourID == other.defaultBehaviourID &&
		m.currentBehaviourID == other.currentBehaviourID &&
		m.availableBehaviourIDs.Equal(other.availableBehaviourIDs)
}

func (m MethodConfig) String() string {
	return fmt.Sprintf("MethodConfig{method=%s, default=%s, current=%s, available=%s}",
		m.methodName, m.defaultBehaviourID, m.currentBehaviourID, m.availableBehaviourIDs)
}
