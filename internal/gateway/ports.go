package gateway

import (
	"strings"

	corev1 "k8s.io/api/core/v1"
)

// preferredPortNames are container port names that mark the HTTP port a
// marionette node serves its protocol on.
var preferredPortNames = []string{"http", "web", "marionette"}

// commonHTTPPorts are conventional HTTP ports tried when no port is named.
var commonHTTPPorts = map[int32]struct{}{
	8080: {},
	8000: {},
	3000: {},
	80:   {},
	9090: {},
}

// resolvePodPort picks the port a pod most likely serves HTTP on, by
// priority: an explicitly named http/web/marionette port, then a
// conventional HTTP port number, then the first declared port as a last
// resort. Returns false when the pod declares no ports at all.
func resolvePodPort(pod corev1.Pod) (int32, bool) {
	for _, container := range pod.Spec.Containers {
		for _, port := range container.Ports {
			for _, name := range preferredPortNames {
				if strings.EqualFold(port.Name, name) {
					return port.ContainerPort, true
				}
			}
		}
	}

	for _, container := range pod.Spec.Containers {
		for _, port := range container.Ports {
			if _, ok := commonHTTPPorts[port.ContainerPort]; ok {
				return port.ContainerPort, true
			}
		}
	}

	for _, container := range pod.Spec.Containers {
		if len(container.Ports) > 0 {
			return container.Ports[0].ContainerPort, true
		}
	}

	return 0, false
}
