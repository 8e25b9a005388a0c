package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
)

func clusterService(name, namespace string, ports ...int32) *corev1.Service {
	var servicePorts []corev1.ServicePort
	for _, port := range ports {
		servicePorts = append(servicePorts, corev1.ServicePort{Port: port})
	}
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec:       corev1.ServiceSpec{Ports: servicePorts},
	}
}

func TestFindCandidateServicesSkipsSystemServices(t *testing.T) {
	kube := fake.NewClientBuilder().WithObjects(
		clusterService("image-service", "demo", 8080),
		clusterService("coredns", "kube-system", 53),
		clusterService("metrics-server", "kube-public", 443),
		clusterService("lease-keeper", "kube-node-lease", 80),
		clusterService("controller", "ingress-nginx", 80),
		clusterService("prometheus", "monitoring", 9090),
		clusterService("kube-proxy-metrics", "demo", 10249),
		clusterService("kubernetes", "default", 443),
	).Build()

	candidates, err := NewKubernetesServiceFinder(kube).FindCandidateServices(context.Background())
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, "image-service", candidates[0].ServiceName)
	assert.Equal(t, "http://image-service.demo.svc.cluster.local:8080", candidates[0].Endpoint.String())
}

func TestFindCandidateServicesSkipsPortlessServices(t *testing.T) {
	kube := fake.NewClientBuilder().WithObjects(
		clusterService("headless", "demo"),
		clusterService("gallery-ui", "demo", 3000, 9100),
	).Build()

	candidates, err := NewKubernetesServiceFinder(kube).FindCandidateServices(context.Background())
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, "gallery-ui", candidates[0].ServiceName)
	assert.Equal(t, "http://gallery-ui.demo.svc.cluster.local:3000", candidates[0].Endpoint.String(),
		"the first declared port builds the endpoint")
}

func TestFindCandidateServicesEmptyCluster(t *testing.T) {
	candidates, err := NewKubernetesServiceFinder(fake.NewClientBuilder().Build()).FindCandidateServices(context.Background())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
