// Package gateway delivers behaviour-change instructions to marionette
// services. A Kubernetes Service endpoint hides an arbitrary number of pod
// replicas behind one virtual IP, so a single request would update only one
// replica; the gateway resolves every Running pod behind the Service's
// selector and notifies each of them directly.
package gateway
