// Package api exposes the control plane over HTTP. It is a thin gin
// adapter: handlers translate between JSON and the registry, discovery,
// experiment and ranking packages, and never hold state of their own
// beyond the single-run guard.
package api
