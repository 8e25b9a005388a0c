package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marionettist/internal/metrics"
)

const vectorEnvelope = `{
	"status": "success",
	"data": {
		"resultType": "vector",
		"result": [
			{"metric": {}, "value": [1756600000, "%s"]}
		]
	}
}`

func prometheusStub(t *testing.T, value string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fmt.Sprintf(vectorEnvelope, value)))
	}))
	t.Cleanup(server.Close)
	return server
}

func providerConfig(serverURL, metricName string) metrics.PrometheusConfig {
	return metrics.PrometheusConfig{
		URL:            serverURL,
		APIPath:        "/api/v1/query",
		RequestTimeout: 2 * time.Second,
		Metrics: []metrics.MetricSpec{
			{DisplayName: metricName, Query: "avg(rate(http_request_duration_seconds_sum{service=\"$SERVICE_NAME\"}[$DURATION]))", Order: 1, Direction: metrics.LowerIsBetter, Unit: "s"},
		},
	}
}

func TestSwappableProviderFetchesThroughCurrentConfig(t *testing.T) {
	server := prometheusStub(t, "0.125")

	provider := NewSwappableMetricsProvider(providerConfig(server.URL, "avg_latency"))

	fetched, err := provider.FetchMetricsForService(context.Background(), "image-service", time.Minute, 20*time.Second)
	require.NoError(t, err)
	require.Len(t, fetched, 1)
	assert.Equal(t, "avg_latency", fetched[0].Name)
}

func TestSwappableProviderPicksUpNewMetadata(t *testing.T) {
	server := prometheusStub(t, "0.125")

	provider := NewSwappableMetricsProvider(providerConfig(server.URL, "avg_latency"))
	require.Equal(t, 1, provider.LoadMetrics().Len())
	assert.Equal(t, "avg_latency", provider.LoadMetrics().Ordered()[0].MetricName)

	next := providerConfig(server.URL, "error_rate")
	next.Metrics = append(next.Metrics, metrics.MetricSpec{
		DisplayName: "throughput", Query: "sum(rate(requests_total{service=\"$SERVICE_NAME\"}[$DURATION]))", Order: 2, Direction: metrics.HigherIsBetter, Unit: "req/s",
	})
	provider.Swap(next)

	reloaded := provider.LoadMetrics()
	require.Equal(t, 2, reloaded.Len())
	assert.Equal(t, "error_rate", reloaded.Ordered()[0].MetricName)
}
