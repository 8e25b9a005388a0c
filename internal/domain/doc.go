// Package domain contains the core model of the control plane: validated
// identifier value objects, the immutable configuration entities describing
// the behaviour surface of a marionette node, and the process-wide
// configuration registry.
//
// Entities follow a copy-on-write discipline: every WithX operation returns
// a new value and never mutates its receiver. The ConfigRegistry is the only
// piece of shared mutable state in the whole system; all of its operations
// are serialized behind a single lock.
package domain
