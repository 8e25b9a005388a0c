package experiment

import (
	"fmt"
	"sort"

	"marionettist/internal/domain"
)

// VariationPointKey identifies one independently-choosable axis of an
// experiment. It is comparable and used as the selection map key.
type VariationPointKey struct {
	ServiceName domain.ServiceName
	ClassName   domain.ClassName
	MethodName  domain.MethodName
}

// String returns the dotted method path.
func (k VariationPointKey) String() string {
	return fmt.Sprintf("%s.%s.%s", k.ServiceName, k.ClassName, k.MethodName)
}

// VariationPoint is one method with at least two selectable behaviours,
// together with the full set of behaviours to choose from. Derived from the
// registry per run, never stored.
type VariationPoint struct {
	key        VariationPointKey
	behaviours domain.BehaviourIDSet
}

// NewVariationPoint creates a variation point. The behaviour set must have
// at least two members, otherwise there is nothing to vary.
func NewVariationPoint(service domain.ServiceName, class domain.ClassName, method domain.MethodName, behaviours domain.BehaviourIDSet) (VariationPoint, error) {
	if behaviours.Len() < 2 {
		return VariationPoint{}, domain.NewInvalidArgumentError(
			fmt.Sprintf("variation point %s.%s.%s needs at least 2 behaviours, got %d", service, class, method, behaviours.Len()))
	}
	return VariationPoint{
		key:        VariationPointKey{ServiceName: service, ClassName: class, MethodName: method},
		behaviours: behaviours,
	}, nil
}

// Key returns the comparable identity of the variation point.
func (p VariationPoint) Key() VariationPointKey { return p.key }

// Behaviours returns the selectable behaviour set.
func (p VariationPoint) Behaviours() domain.BehaviourIDSet { return p.behaviours }

// String returns the method path with its behaviour options.
func (p VariationPoint) String() string {
	return fmt.Sprintf("%s %s", p.key, p.behaviours)
}

// ExtractVariationPoints walks the registry's runtime configurations and
// returns one variation point per method with two or more available
// behaviours. The result is sorted by method path so repeated runs over the
// same registry log identically; callers must not rely on the order for
// correctness.
func ExtractVariationPoints(registry *domain.ConfigRegistry) []VariationPoint {
	var points []VariationPoint

	for serviceName, serviceConfig := range registry.AllRuntimeConfigurations() {
		for className, classConfig := range serviceConfig.ClassConfigs() {
			for methodName, methodConfig := range classConfig.MethodConfigs() {
				if methodConfig.VariationCount() < 2 {
					continue
				}
				point, err := NewVariationPoint(serviceName, className, methodName, methodConfig.AvailableBehaviourIDs())
				if err != nil {
					continue
				}
				points = append(points, point)
			}
		}
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].key.String() < points[j].key.String()
	})
	return points
}
