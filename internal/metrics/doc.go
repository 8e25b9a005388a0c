// Package metrics defines the metrics-provider boundary of the control
// plane: the domain types describing externally observed metrics, the
// ordered ranking metadata, and a Prometheus-backed implementation of the
// fetch gateway.
//
// The core only depends on the Provider and MetadataProvider interfaces;
// the Prometheus client is one implementation wired in at startup.
package metrics
