package experiment

import (
	"math"

	"marionettist/internal/domain"
	"marionettist/pkg/logging"
)

// configurationCountWarning is the point beyond which the generator warns
// that the experiment will take impractically long.
const configurationCountWarning = 1000

// SystemConfigurationsGenerator expands a list of variation points into the
// Cartesian product of their behaviour sets.
type SystemConfigurationsGenerator struct {
	points []VariationPoint
}

// NewSystemConfigurationsGenerator creates a generator over the given
// variation points.
func NewSystemConfigurationsGenerator(points []VariationPoint) *SystemConfigurationsGenerator {
	copied := make([]VariationPoint, len(points))
	copy(copied, points)
	return &SystemConfigurationsGenerator{points: copied}
}

// Count returns the number of configurations GenerateAll will produce,
// without generating them. The product grows combinatorially, so callers
// check this before committing to a run.
func (g *SystemConfigurationsGenerator) Count() int {
	count := 1
	for _, point := range g.points {
		if count > math.MaxInt/point.Behaviours().Len() {
			return math.MaxInt
		}
		count *= point.Behaviours().Len()
	}
	return count
}

// GenerateAll produces every complete assignment across all variation
// points. Zero variation points yields exactly one empty configuration.
// Selections are made depth-first over a single working map; only terminal
// assignments are copied out.
func (g *SystemConfigurationsGenerator) GenerateAll() []SystemBehaviourConfiguration {
	count := g.Count()
	if count > configurationCountWarning {
		logging.Warn("Generator", "Expanding %d variation points into %d configurations, the experiment will take a long time", len(g.points), count)
	}

	configurations := make([]SystemBehaviourConfiguration, 0, count)
	working := make(map[VariationPointKey]domain.BehaviourID, len(g.points))
	g.expand(0, working, &configurations)
	return configurations
}

func (g *SystemConfigurationsGenerator) expand(index int, working map[VariationPointKey]domain.BehaviourID, out *[]SystemBehaviourConfiguration) {
	if index == len(g.points) {
		*out = append(*out, NewSystemBehaviourConfiguration(working))
		return
	}

	point := g.points[index]
	for _, behaviour := range point.Behaviours().Values() {
		working[point.Key()] = behaviour
		g.expand(index+1, working, out)
		delete(working, point.Key())
	}
}
