package domain

import (
	"sort"
	"strings"
)

// ServiceName identifies a managed service in the fleet.
type ServiceName string

// ClassName identifies a class exposed by a marionette node.
type ClassName string

// MethodName identifies a method within a class.
type MethodName string

// BehaviourID identifies one selectable implementation variant of a method.
type BehaviourID string

// NewServiceName validates and creates a ServiceName.
func NewServiceName(name string) (ServiceName, error) {
	if strings.TrimSpace(name) == "" {
		return "", NewInvalidArgumentError("service name cannot be blank")
	}
	return ServiceName(name), nil
}

// NewClassName validates and creates a ClassName.
func NewClassName(name string) (ClassName, error) {
	if strings.TrimSpace(name) == "" {
		return "", NewInvalidArgumentError("class name cannot be blank")
	}
	return ClassName(name), nil
}

// NewMethodName validates and creates a MethodName.
func NewMethodName(name string) (MethodName, error) {
	if strings.TrimSpace(name) == "" {
		return "", NewInvalidArgumentError("method name cannot be blank")
	}
	return MethodName(name), nil
}

// NewBehaviourID validates and creates a BehaviourID.
func NewBehaviourID(id string) (BehaviourID, error) {
	if strings.TrimSpace(id) == "" {
		return "", NewInvalidArgumentError("behaviour id cannot be blank")
	}
	return BehaviourID(id), nil
}

func (s ServiceName) String() string { return string(s) }
func (c ClassName) String() string   { return string(c) }
func (m MethodName) String() string  { return string(m) }
func (b BehaviourID) String() string { return string(b) }

// BehaviourIDSet is an immutable, non-empty set of behaviour ids.
type BehaviourIDSet struct {
	ids map[BehaviourID]struct{}
}

// NewBehaviourIDSet creates a set from the given ids. The set must end up
// non-empty; duplicates collapse.
func NewBehaviourIDSet(ids ...BehaviourID) (BehaviourIDSet, error) {
	if len(ids) == 0 {
		return BehaviourIDSet{}, NewInvalidArgumentError("behaviour id set cannot be empty")
	}
	set := make(map[BehaviourID]struct{}, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(string(id)) == "" {
			return BehaviourIDSet{}, NewInvalidArgumentError("behaviour id set cannot contain blank ids")
		}
		set[id] = struct{}{}
	}
	return BehaviourIDSet{ids: set}, nil
}

// BehaviourIDSetFromStrings creates a set from raw strings.
func BehaviourIDSetFromStrings(ids []string) (BehaviourIDSet, error) {
	converted := make([]BehaviourID, 0, len(ids))
	for _, raw := range ids {
		id, err := NewBehaviourID(raw)
		if err != nil {
			return BehaviourIDSet{}, err
		}
		converted = append(converted, id)
	}
	return NewBehaviourIDSet(converted...)
}

// Add returns a new set also containing the given id.
func (s BehaviourIDSet) Add(id BehaviourID) (BehaviourIDSet, error) {
	if strings.TrimSpace(string(id)) == "" {
		return BehaviourIDSet{}, NewInvalidArgumentError("behaviour id cannot be blank")
	}
	next := make(map[BehaviourID]struct{}, len(s.ids)+1)
	for existing := range s.ids {
		next[existing] = struct{}{}
	}
	next[id] = struct{}{}
	return BehaviourIDSet{ids: next}, nil
}

// Remove returns a new set without the given id. Removing the last id
// fails, the set must stay non-empty.
func (s BehaviourIDSet) Remove(id BehaviourID) (BehaviourIDSet, error) {
	if !s.Contains(id) {
		return s, nil
	}
	if len(s.ids) == 1 {
		return BehaviourIDSet{}, NewInvalidArgumentError("behaviour id set cannot become empty")
	}
	next := make(map[BehaviourID]struct{}, len(s.ids)-1)
	for existing := range s.ids {
		if existing != id {
			next[existing] = struct{}{}
		}
	}
	return BehaviourIDSet{ids: next}, nil
}

// Contains reports whether the set holds the given id.
func (s BehaviourIDSet) Contains(id BehaviourID) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of behaviours in the set.
func (s BehaviourIDSet) Len() int {
	return len(s.ids)
}

// Values returns the behaviours in deterministic (sorted) order.
func (s BehaviourIDSet) Values() []BehaviourID {
	values := make([]BehaviourID, 0, len(s.ids))
	for id := range s.ids {
		values = append(values, id)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return values
}

// Strings returns the behaviours as sorted raw strings.
func (s BehaviourIDSet) Strings() []string {
	values := s.Values()
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// Equal reports structural equality with another set.
func (s BehaviourIDSet) Equal(other BehaviourIDSet) bool {
	if len(s.ids) != len(other.ids) {
		return false
	}
	for id := range s.ids {
		if _, ok := other.ids[id]; !ok {
			return false
		}
	}
	return true
}

func (s BehaviourIDSet) String() string {
	return "[" + strings.Join(s.Strings(), ", ") + "]"
}
