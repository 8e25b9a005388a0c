package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServiceConfig(t *testing.T) ServiceConfig {
	t.Helper()

	resize := mustMethodConfig(t, "resize", "bilinear", "bilinear", []string{"bilinear", "nearest"})
	store := mustMethodConfig(t, "store", "disk", "disk", []string{"disk", "memory", "s3"})

	class := NewClassConfig("ImageProcessor", map[MethodName]MethodConfig{
		resize.MethodName(): resize,
		store.MethodName():  store,
	})

	return NewServiceConfig("image-service", map[ClassName]ClassConfig{
		class.ClassName(): class,
	})
}

func TestClassConfigCopyOnWrite(t *testing.T) {
	resize := mustMethodConfig(t, "resize", "bilinear", "bilinear", []string{"bilinear", "nearest"})
	original := NewClassConfig("ImageProcessor", map[MethodName]MethodConfig{
		resize.MethodName(): resize,
	})

	updated, err := original.WithBehaviourForMethod("resize", "nearest")
	require.NoError(t, err)

	// The receiver must be unchanged.
	cur, ok := original.CurrentBehaviourForMethod("resize")
	require.True(t, ok)
	assert.Equal(t, BehaviourID("bilinear"), cur)

	cur, ok = updated.CurrentBehaviourForMethod("resize")
	require.True(t, ok)
	assert.Equal(t, BehaviourID("nearest"), cur)
}

func TestClassConfigUnknownMethodFails(t *testing.T) {
	class := NewClassConfig("ImageProcessor", nil)
	_, err := class.WithBehaviourForMethod("resize", "nearest")
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestServiceConfigCopyOnWrite(t *testing.T) {
	original := testServiceConfig(t)

	updated, err := original.WithBehaviourForMethod("ImageProcessor", "store", "s3")
	require.NoError(t, err)

	cur, ok := original.CurrentBehaviourForMethod("ImageProcessor", "store")
	require.True(t, ok)
	assert.Equal(t, BehaviourID("disk"), cur)

	cur, ok = updated.CurrentBehaviourForMethod("ImageProcessor", "store")
	require.True(t, ok)
	assert.Equal(t, BehaviourID("s3"), cur)

	assert.False(t, original.Equal(updated))
}

func TestServiceConfigUnknownClassFails(t *testing.T) {
	cfg := testServiceConfig(t)
	_, err := cfg.WithBehaviourForMethod("NoSuchClass", "resize", "nearest")
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestServiceConfigEqualStructural(t *testing.T) {
	a := testServiceConfig(t)
	b := testServiceConfig(t)
	assert.True(t, a.Equal(b))
}

func TestServiceConfigClassConfigsReturnsCopy(t *testing.T) {
	cfg := testServiceConfig(t)
	classes := cfg.ClassConfigs()
	delete(classes, "ImageProcessor")

	_, ok := cfg.ClassConfig("ImageProcessor")
	assert.True(t, ok, "mutating the returned map must not affect the config")
}
