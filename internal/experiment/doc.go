// Package experiment implements the behavioural A/B test engine: variation
// point extraction from the live registry, Cartesian-product generation of
// system configurations, and the sequential executor that applies each
// configuration to the fleet and samples metrics under it.
//
// The executor is deliberately sequential across configurations. Two
// configurations live on the same fleet at once would produce metrics no
// ranking could interpret, so every sampling window fully elapses before the
// next configuration is applied.
package experiment
