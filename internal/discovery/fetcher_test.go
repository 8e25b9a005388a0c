package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marionettist/internal/domain"
)

const sampleConfigJSON = `{
	"serviceName": "image-service",
	"classes": [
		{
			"name": "ImageProcessor",
			"methods": [
				{
					"name": "resize",
					"currentBehaviour": "bilinear",
					"availableBehaviours": ["bilinear", "nearest"]
				},
				{
					"name": "store",
					"currentBehaviour": "disk",
					"availableBehaviours": ["disk", "memory", "s3"]
				}
			]
		}
	]
}`

func endpointFor(t *testing.T, serverURL string) *url.URL {
	t.Helper()
	endpoint, err := url.Parse(serverURL)
	require.NoError(t, err)
	return endpoint
}

func TestFetchConfigurationParsesTree(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, getConfigurationPath, r.URL.Path)
		fmt.Fprint(w, sampleConfigJSON)
	}))
	defer server.Close()

	config, err := NewHTTPConfigurationFetcher().FetchConfiguration(context.Background(), endpointFor(t, server.URL))
	require.NoError(t, err)

	assert.Equal(t, domain.ServiceName("image-service"), config.ServiceName())

	class, ok := config.ClassConfig("ImageProcessor")
	require.True(t, ok)

	resize, ok := class.MethodConfig("resize")
	require.True(t, ok)
	assert.Equal(t, domain.BehaviourID("bilinear"), resize.CurrentBehaviourID())
	assert.Equal(t, domain.BehaviourID("bilinear"), resize.DefaultBehaviourID(),
		"the behaviour current at discovery doubles as the default")
	assert.Equal(t, 2, resize.VariationCount())

	store, ok := class.MethodConfig("store")
	require.True(t, ok)
	assert.Equal(t, 3, store.VariationCount())
}

func TestFetchConfigurationNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewHTTPConfigurationFetcher().FetchConfiguration(context.Background(), endpointFor(t, server.URL))

	var fetchErr *FetchConfigurationError
	require.ErrorAs(t, err, &fetchErr)
	assert.NotEmpty(t, fetchErr.UserMessage)
}

func TestFetchConfigurationParseFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json at all")
	}))
	defer server.Close()

	_, err := NewHTTPConfigurationFetcher().FetchConfiguration(context.Background(), endpointFor(t, server.URL))

	var fetchErr *FetchConfigurationError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestFetchConfigurationTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := NewHTTPConfigurationFetcher().FetchConfiguration(context.Background(), endpointFor(t, server.URL))

	var fetchErr *FetchConfigurationError
	require.ErrorAs(t, err, &fetchErr)
	assert.True(t, errors.Unwrap(fetchErr) != nil, "transport failures carry their cause")
}

func TestFetchConfigurationInvalidTree(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// currentBehaviour outside availableBehaviours
		fmt.Fprint(w, `{"serviceName": "bad", "classes": [{"name": "C", "methods": [
			{"name": "m", "currentBehaviour": "x", "availableBehaviours": ["y"]}]}]}`)
	}))
	defer server.Close()

	_, err := NewHTTPConfigurationFetcher().FetchConfiguration(context.Background(), endpointFor(t, server.URL))
	assert.Error(t, err)
}
