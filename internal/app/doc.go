// Package app bootstraps the control plane: it loads configuration, builds
// the Kubernetes client, wires discovery, the behaviour gateway, the
// experiment executor and the REST API together, and runs them until the
// context is cancelled.
package app
