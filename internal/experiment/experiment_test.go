package experiment

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marionettist/internal/domain"
	"marionettist/internal/metrics"
)

func mustMethod(t *testing.T, method, def, cur string, available []string) domain.MethodConfig {
	t.Helper()
	cfg, err := domain.MethodConfigFromStrings(method, def, cur, available)
	require.NoError(t, err)
	return cfg
}

// seedRegistry populates a registry with one service carrying two variation
// points (2 and 3 behaviours) and one fixed single-behaviour method.
func seedRegistry(t *testing.T) *domain.ConfigRegistry {
	t.Helper()

	resize := mustMethod(t, "resize", "bilinear", "bilinear", []string{"bilinear", "nearest"})
	store := mustMethod(t, "store", "disk", "disk", []string{"disk", "memory", "s3"})
	encode := mustMethod(t, "encode", "jpeg", "jpeg", []string{"jpeg"})

	class := domain.NewClassConfig("ImageProcessor", map[domain.MethodName]domain.MethodConfig{
		"resize": resize,
		"store":  store,
		"encode": encode,
	})
	service := domain.NewServiceConfig("image-service", map[domain.ClassName]domain.ClassConfig{
		"ImageProcessor": class,
	})

	endpoint, err := url.Parse("http://image-service.demo.svc.cluster.local:8080")
	require.NoError(t, err)

	registry := domain.NewConfigRegistry()
	require.NoError(t, registry.AddDiscoveredService("image-service", service, endpoint))
	return registry
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []BehaviourChange
}

func (n *recordingNotifier) NotifyBehaviourChange(_ context.Context, _ *url.URL, change BehaviourChange) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
	return nil
}

func (n *recordingNotifier) changeCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.changes)
}

type stubProvider struct{}

func (stubProvider) FetchMetricsForService(_ context.Context, serviceName string, _, _ time.Duration) ([]metrics.AggregateMetric, error) {
	return []metrics.AggregateMetric{
		{Name: "avg_latency", Value: 0.2, Timestamp: time.Now(), Unit: "seconds"},
	}, nil
}
