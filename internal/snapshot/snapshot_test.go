package snapshot

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marionettist/internal/domain"
)

func registryWithService(t *testing.T) *domain.ConfigRegistry {
	t.Helper()

	resize, err := domain.MethodConfigFromStrings("resize", "bilinear", "nearest", []string{"bilinear", "nearest"})
	require.NoError(t, err)

	class := domain.NewClassConfig("ImageProcessor", map[domain.MethodName]domain.MethodConfig{
		resize.MethodName(): resize,
	})
	cfg := domain.NewServiceConfig("image-service", map[domain.ClassName]domain.ClassConfig{
		class.ClassName(): class,
	})

	endpoint, err := url.Parse("http://image-service.demo.svc.cluster.local:8080")
	require.NoError(t, err)

	registry := domain.NewConfigRegistry()
	require.NoError(t, registry.AddDiscoveredService("image-service", cfg, endpoint))
	return registry
}

func TestFromRegistryFlattensCurrentBehaviours(t *testing.T) {
	registry := registryWithService(t)

	snap := FromRegistry(registry)

	require.True(t, snap.HasService("image-service"))
	svc, ok := snap.ServiceByName("image-service")
	require.True(t, ok)
	assert.Equal(t, "nearest", svc.Classes["ImageProcessor"].MethodBehaviours["resize"])
	assert.False(t, snap.CapturedAt.IsZero())
}

func TestSnapshotIsStale(t *testing.T) {
	registry := registryWithService(t)
	snap := FromRegistry(registry)

	// Mutating the registry after the capture must not change the snapshot.
	require.NoError(t, registry.ModifyCurrentBehaviourForMethod("image-service", "ImageProcessor", "resize", "bilinear"))

	svc, _ := snap.ServiceByName("image-service")
	assert.Equal(t, "nearest", svc.Classes["ImageProcessor"].MethodBehaviours["resize"])
}

func TestForNonMarionetteNode(t *testing.T) {
	svc := ForNonMarionetteNode("postgres")
	assert.Equal(t, "postgres", svc.ServiceName)
	assert.Empty(t, svc.Classes)
}
