package discovery

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"marionettist/pkg/logging"
)

// systemNamespaces are never scanned for marionette candidates.
var systemNamespaces = map[string]struct{}{
	"kube-system":     {},
	"kube-public":     {},
	"kube-node-lease": {},
	"ingress-nginx":   {},
	"monitoring":      {},
}

// CandidateService is one cluster Service that may be a marionette node.
type CandidateService struct {
	ServiceName string
	Endpoint    *url.URL
}

// KubernetesServiceFinder lists cluster Services as discovery candidates.
type KubernetesServiceFinder struct {
	kube client.Client
}

// NewKubernetesServiceFinder creates a finder over the given cluster client.
func NewKubernetesServiceFinder(kube client.Client) *KubernetesServiceFinder {
	return &KubernetesServiceFinder{kube: kube}
}

// FindCandidateServices lists Services across all namespaces, skipping
// system namespaces, kube-* services and the kubernetes apiserver Service
// itself. Services without a declared port cannot be probed and are
// skipped. The endpoint uses the Service's first declared port.
func (f *KubernetesServiceFinder) FindCandidateServices(ctx context.Context) ([]CandidateService, error) {
	var serviceList corev1.ServiceList
	if err := f.kube.List(ctx, &serviceList); err != nil {
		return nil, fmt.Errorf("failed to list cluster services: %w", err)
	}

	var candidates []CandidateService
	for _, service := range serviceList.Items {
		if isSystemService(service.Name, service.Namespace) {
			continue
		}
		if len(service.Spec.Ports) == 0 {
			continue
		}

		endpoint, err := url.Parse(fmt.Sprintf("http://%s.%s.svc.cluster.local:%d",
			service.Name, service.Namespace, service.Spec.Ports[0].Port))
		if err != nil {
			logging.Warn("Discovery", "Skipping service %s/%s with unparsable endpoint: %v", service.Namespace, service.Name, err)
			continue
		}

		candidates = append(candidates, CandidateService{ServiceName: service.Name, Endpoint: endpoint})
	}

	logging.Info("Discovery", "Found %d candidate services across the cluster", len(candidates))
	return candidates, nil
}

func isSystemService(serviceName, namespace string) bool {
	if _, ok := systemNamespaces[namespace]; ok {
		return true
	}
	return strings.HasPrefix(serviceName, "kube-") || serviceName == "kubernetes"
}
