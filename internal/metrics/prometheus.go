package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"marionettist/pkg/logging"
)

// MetricSpec describes one metric queried from the backend, including its
// place in the ranking priority order.
type MetricSpec struct {
	DisplayName string                `yaml:"displayName"`
	Query       string                `yaml:"query"`
	Order       int                   `yaml:"order"`
	Direction   OptimizationDirection `yaml:"direction"`
	Unit        string                `yaml:"unit"`
	Description string                `yaml:"description,omitempty"`
}

// PrometheusConfig configures the Prometheus-backed metrics provider.
type PrometheusConfig struct {
	URL            string        `yaml:"url"`
	APIPath        string        `yaml:"apiPath"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	Metrics        []MetricSpec  `yaml:"metrics"`
}

// DefaultPrometheusConfig returns the defaults used when the config file
// leaves fields unset.
func DefaultPrometheusConfig() PrometheusConfig {
	return PrometheusConfig{
		APIPath:        "/api/v1/query",
		RequestTimeout: 20 * time.Second,
	}
}

// PrometheusProvider implements Provider against the Prometheus HTTP API.
type PrometheusProvider struct {
	config PrometheusConfig
	client *http.Client
}

// NewPrometheusProvider creates a provider for the given backend.
func NewPrometheusProvider(config PrometheusConfig) *PrometheusProvider {
	if config.APIPath == "" {
		config.APIPath = "/api/v1/query"
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 20 * time.Second
	}
	return &PrometheusProvider{
		config: config,
		client: &http.Client{Timeout: config.RequestTimeout},
	}
}

// prometheusResponse is the Prometheus HTTP API envelope.
type prometheusResponse struct {
	Status string         `json:"status"`
	Data   prometheusData `json:"data"`
	Error  string         `json:"error"`
}

type prometheusData struct {
	ResultType string             `json:"resultType"`
	Result     []prometheusSeries `json:"result"`
}

type prometheusSeries struct {
	Metric map[string]string `json:"metric"`
	Value  []json.RawMessage `json:"value"`
}

// FetchMetricsForService runs every configured query for the given service
// and converts the responses into aggregate metrics. A single query's
// failure is logged and skipped; the remaining queries still run.
func (p *PrometheusProvider) FetchMetricsForService(ctx context.Context, serviceName string, timeSpan, samplingPeriod time.Duration) ([]AggregateMetric, error) {
	collected := make([]AggregateMetric, 0, len(p.config.Metrics))

	for _, spec := range p.config.Metrics {
		queryURL, err := BuildQueryURL(p.config.URL, p.config.APIPath, spec.Query, serviceName, timeSpan, samplingPeriod)
		if err != nil {
			logging.Warn("Metrics", "Skipping metric %s for service %s: %v", spec.DisplayName, serviceName, err)
			continue
		}

		metric, err := p.fetchSingleMetric(ctx, queryURL, spec)
		if err != nil {
			logging.Warn("Metrics", "Failed to fetch metric %s for service %s: %v", spec.DisplayName, serviceName, err)
			continue
		}
		collected = append(collected, metric)
	}

	logging.Debug("Metrics", "Collected %d/%d metrics for service %s", len(collected), len(p.config.Metrics), serviceName)
	return collected, nil
}

func (p *PrometheusProvider) fetchSingleMetric(ctx context.Context, queryURL string, spec MetricSpec) (AggregateMetric, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return AggregateMetric{}, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return AggregateMetric{}, fmt.Errorf("query request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return AggregateMetric{}, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return AggregateMetric{}, fmt.Errorf("failed to read response body: %w", err)
	}

	var envelope prometheusResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return AggregateMetric{}, fmt.Errorf("failed to parse response: %w", err)
	}

	if envelope.Status != "success" {
		return AggregateMetric{}, fmt.Errorf("backend reported error: %s", envelope.Error)
	}

	if len(envelope.Data.Result) == 0 {
		return AggregateMetric{}, fmt.Errorf("query returned no series")
	}
	if len(envelope.Data.Result) > 1 {
		logging.Debug("Metrics", "Query for %s returned %d series, using the first", spec.DisplayName, len(envelope.Data.Result))
	}

	series := envelope.Data.Result[0]
	if len(series.Value) < 2 {
		return AggregateMetric{}, fmt.Errorf("series value is incomplete")
	}

	var epoch float64
	if err := json.Unmarshal(series.Value[0], &epoch); err != nil {
		return AggregateMetric{}, fmt.Errorf("failed to parse sample timestamp: %w", err)
	}

	var raw string
	if err := json.Unmarshal(series.Value[1], &raw); err != nil {
		return AggregateMetric{}, fmt.Errorf("failed to parse sample value: %w", err)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return AggregateMetric{}, fmt.Errorf("sample value %q is not a number: %w", raw, err)
	}

	return AggregateMetric{
		Name:      spec.DisplayName,
		Value:     value,
		Timestamp: time.Unix(int64(epoch), 0),
		Unit:      spec.Unit,
	}, nil
}

// PrometheusMetadataProvider derives the ordered ranking metadata from the
// same metric specs the provider queries with.
type PrometheusMetadataProvider struct {
	config PrometheusConfig
}

// NewPrometheusMetadataProvider creates a metadata provider over the config.
func NewPrometheusMetadataProvider(config PrometheusConfig) *PrometheusMetadataProvider {
	return &PrometheusMetadataProvider{config: config}
}

// LoadMetrics converts the metric specs into ordered ranking metadata.
func (p *PrometheusMetadataProvider) LoadMetrics() MetricsConfiguration {
	metadata := make([]OrderedMetricMetadata, 0, len(p.config.Metrics))
	for _, spec := range p.config.Metrics {
		metadata = append(metadata, OrderedMetricMetadata{
			MetricName: spec.DisplayName,
			Order:      spec.Order,
			Direction:  spec.Direction,
			Unit:       spec.Unit,
		})
	}
	return NewMetricsConfiguration(metadata)
}
