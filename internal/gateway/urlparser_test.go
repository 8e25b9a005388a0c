package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServiceURL(t *testing.T) {
	info, err := ParseServiceURL("http://image-service.demo.svc.cluster.local:8080")
	require.NoError(t, err)
	assert.Equal(t, "image-service", info.ServiceName)
	assert.Equal(t, "demo", info.Namespace)
	assert.Equal(t, "8080", info.Port)
}

func TestParseServiceURLWithoutPort(t *testing.T) {
	info, err := ParseServiceURL("https://gallery-ui.prod.svc.cluster.local")
	require.NoError(t, err)
	assert.Equal(t, "gallery-ui", info.ServiceName)
	assert.Equal(t, "prod", info.Namespace)
	assert.Empty(t, info.Port)
}

func TestParseServiceURLWithPath(t *testing.T) {
	info, err := ParseServiceURL("http://image-service.demo.svc.cluster.local:8080/marionette/api/isMarionette")
	require.NoError(t, err)
	assert.Equal(t, "image-service", info.ServiceName)
	assert.Equal(t, "8080", info.Port)
}

func TestParseServiceURLRejectsExternalHosts(t *testing.T) {
	_, err := ParseServiceURL("http://example.com:8080")
	assert.Error(t, err)

	_, err = ParseServiceURL("not a url")
	assert.Error(t, err)
}
