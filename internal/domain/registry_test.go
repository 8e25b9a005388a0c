package domain

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEndpoint(t *testing.T) *url.URL {
	t.Helper()
	endpoint, err := url.Parse("http://image-service.demo.svc.cluster.local:8080")
	require.NoError(t, err)
	return endpoint
}

func TestAddDiscoveredServiceSeedsRuntimeOnce(t *testing.T) {
	registry := NewConfigRegistry()
	cfg := testServiceConfig(t)

	require.NoError(t, registry.AddDiscoveredService("image-service", cfg, testEndpoint(t)))

	// Drift the runtime configuration.
	require.NoError(t, registry.ModifyCurrentBehaviourForMethod("image-service", "ImageProcessor", "store", "s3"))

	// Rediscovery overwrites the template but preserves the drift.
	require.NoError(t, registry.AddDiscoveredService("image-service", cfg, testEndpoint(t)))

	current, err := registry.CurrentBehaviourForMethod("image-service", "ImageProcessor", "store")
	require.NoError(t, err)
	assert.Equal(t, BehaviourID("s3"), current)
	assert.True(t, registry.IsServiceModified("image-service"))
}

func TestModifyBehaviourUnknownServiceFails(t *testing.T) {
	registry := NewConfigRegistry()
	err := registry.ModifyCurrentBehaviourForMethod("ghost", "C", "m", "b")
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestModifyBehaviourUnknownClassFails(t *testing.T) {
	registry := NewConfigRegistry()
	require.NoError(t, registry.AddDiscoveredService("image-service", testServiceConfig(t), testEndpoint(t)))

	err := registry.ModifyCurrentBehaviourForMethod("image-service", "NoSuchClass", "resize", "nearest")
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestResetToTemplate(t *testing.T) {
	registry := NewConfigRegistry()
	require.NoError(t, registry.AddDiscoveredService("image-service", testServiceConfig(t), testEndpoint(t)))
	require.NoError(t, registry.ModifyCurrentBehaviourForMethod("image-service", "ImageProcessor", "resize", "nearest"))
	require.True(t, registry.IsServiceModified("image-service"))

	registry.ResetToTemplate("image-service")

	assert.False(t, registry.IsServiceModified("image-service"))
	meta := registry.AllServiceMetadata()["image-service"]
	assert.Equal(t, StatusResetToTemplate, meta.Status())
}

func TestFlushAll(t *testing.T) {
	registry := NewConfigRegistry()
	require.NoError(t, registry.AddDiscoveredService("image-service", testServiceConfig(t), testEndpoint(t)))
	require.Equal(t, 1, registry.ServiceCount())

	registry.FlushAll()

	assert.Equal(t, 0, registry.ServiceCount())
	assert.Empty(t, registry.AllRuntimeConfigurations())
	assert.Empty(t, registry.AllServiceMetadata())
}

func TestRemoveService(t *testing.T) {
	registry := NewConfigRegistry()
	require.NoError(t, registry.AddDiscoveredService("image-service", testServiceConfig(t), testEndpoint(t)))

	registry.RemoveService("image-service")

	_, ok := registry.RuntimeConfiguration("image-service")
	assert.False(t, ok)
	_, ok = registry.TemplateConfiguration("image-service")
	assert.False(t, ok)
}

func TestUpdateRuntimeConfigurationUnknownServiceFails(t *testing.T) {
	registry := NewConfigRegistry()
	err := registry.UpdateRuntimeConfiguration("ghost", testServiceConfig(t))
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestMarkServiceUnavailable(t *testing.T) {
	registry := NewConfigRegistry()
	require.NoError(t, registry.AddDiscoveredService("image-service", testServiceConfig(t), testEndpoint(t)))

	registry.MarkServiceUnavailable("image-service")

	meta := registry.AllServiceMetadata()["image-service"]
	assert.Equal(t, StatusUnavailable, meta.Status())
}

func TestAllRuntimeConfigurationsReturnsCopy(t *testing.T) {
	registry := NewConfigRegistry()
	require.NoError(t, registry.AddDiscoveredService("image-service", testServiceConfig(t), testEndpoint(t)))

	configs := registry.AllRuntimeConfigurations()
	delete(configs, "image-service")

	assert.Equal(t, 1, registry.ServiceCount())
}
