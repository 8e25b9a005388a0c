package experiment

import (
	"fmt"
	"maps"
	"sort"
	"strings"

	"marionettist/internal/domain"
)

// BehaviourSelection is one (variation point, chosen behaviour) pair of a
// system configuration.
type BehaviourSelection struct {
	Point     VariationPointKey
	Behaviour domain.BehaviourID
}

// MethodPath returns the dotted path of the selected method.
func (s BehaviourSelection) MethodPath() string {
	return s.Point.String()
}

// SystemBehaviourConfiguration is one complete assignment of a behaviour to
// every variation point, representing a single experiment treatment.
// Immutable once constructed; equality is structural.
type SystemBehaviourConfiguration struct {
	selections map[VariationPointKey]domain.BehaviourID
}

// NewSystemBehaviourConfiguration copies the given selections into an
// immutable configuration.
func NewSystemBehaviourConfiguration(selections map[VariationPointKey]domain.BehaviourID) SystemBehaviourConfiguration {
	copied := make(map[VariationPointKey]domain.BehaviourID, len(selections))
	maps.Copy(copied, selections)
	return SystemBehaviourConfiguration{selections: copied}
}

// BehaviourFor returns the behaviour selected for a variation point.
func (c SystemBehaviourConfiguration) BehaviourFor(key VariationPointKey) (domain.BehaviourID, bool) {
	id, ok := c.selections[key]
	return id, ok
}

// Selections returns the selection pairs sorted by method path.
func (c SystemBehaviourConfiguration) Selections() []BehaviourSelection {
	out := make([]BehaviourSelection, 0, len(c.selections))
	for key, id := range c.selections {
		out = append(out, BehaviourSelection{Point: key, Behaviour: id})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Point.String() < out[j].Point.String()
	})
	return out
}

// Len returns the number of variation points covered.
func (c SystemBehaviourConfiguration) Len() int { return len(c.selections) }

// Equal reports structural equality of the two assignments.
func (c SystemBehaviourConfiguration) Equal(other SystemBehaviourConfiguration) bool {
	return maps.Equal(c.selections, other.selections)
}

// String renders the configuration one selection per line.
func (c SystemBehaviourConfiguration) String() string {
	if len(c.selections) == 0 {
		return "SystemBehaviourConfiguration [no selections]"
	}
	var b strings.Builder
	b.WriteString("SystemBehaviourConfiguration [\n")
	for _, sel := range c.Selections() {
		fmt.Fprintf(&b, "    %s -> %s\n", sel.Point, sel.Behaviour)
	}
	b.WriteString("]")
	return b.String()
}
