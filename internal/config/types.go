package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"marionettist/internal/metrics"
)

// Duration is a time.Duration that unmarshals from the human form used in
// config files ("30s", "5m").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the top-level marionettist configuration.
type Config struct {
	API                APIConfig        `yaml:"api"`
	Discovery          DiscoveryConfig  `yaml:"discovery"`
	Experiment         ExperimentConfig `yaml:"experiment"`
	Metrics            MetricsConfig    `yaml:"metrics"`
	NonMarionetteNodes []string         `yaml:"nonMarionetteNodes,omitempty"`
}

// APIConfig configures the REST surface.
type APIConfig struct {
	Host string `yaml:"host,omitempty"` // Host to bind to (default: localhost)
	Port int    `yaml:"port,omitempty"` // Port for the REST API (default: 8090)
}

// Address returns the host:port bind address.
func (c APIConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DiscoveryConfig configures candidate probing.
type DiscoveryConfig struct {
	ProbeTimeout Duration `yaml:"probeTimeout,omitempty"` // Per-attempt timeout (default: 10s)
	ProbeRetries int      `yaml:"probeRetries,omitempty"` // Attempt budget per candidate (default: 3)
}

// ExperimentConfig configures the A/B test executor.
type ExperimentConfig struct {
	TotalDuration  Duration `yaml:"totalDuration,omitempty"`  // Shared across all configurations (default: 100s)
	SamplingPeriod Duration `yaml:"samplingPeriod,omitempty"` // Metrics backend resolution (default: 20s)
}

// MetricsConfig configures the Prometheus backend and the queried metrics.
type MetricsConfig struct {
	PrometheusURL  string               `yaml:"prometheusUrl"`
	APIPath        string               `yaml:"apiPath,omitempty"`
	RequestTimeout Duration             `yaml:"requestTimeout,omitempty"`
	Specs          []metrics.MetricSpec `yaml:"specs"`
}

// ToProviderConfig converts the section into the metrics provider's form.
func (c MetricsConfig) ToProviderConfig() metrics.PrometheusConfig {
	return metrics.PrometheusConfig{
		URL:            c.PrometheusURL,
		APIPath:        c.APIPath,
		RequestTimeout: c.RequestTimeout.Std(),
		Metrics:        c.Specs,
	}
}
