// Package discovery finds marionette nodes in the cluster and loads their
// behaviour configurations into the registry. The pipeline is find ->
// validate -> fetch -> register: cluster Services outside the system
// namespaces are probed for marionette compliance, and each compliant
// node's configuration tree is fetched and registered. Per-service failures
// degrade the result, they never halt the pipeline.
package discovery
