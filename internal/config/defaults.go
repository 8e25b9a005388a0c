package config

import "time"

// GetDefaultConfig returns the configuration used when config.yaml is
// absent or leaves sections unset.
func GetDefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host: "localhost",
			Port: 8090,
		},
		Discovery: DiscoveryConfig{
			ProbeTimeout: Duration(10 * time.Second),
			ProbeRetries: 3,
		},
		Experiment: ExperimentConfig{
			TotalDuration:  Duration(100 * time.Second),
			SamplingPeriod: Duration(20 * time.Second),
		},
		Metrics: MetricsConfig{
			APIPath:        "/api/v1/query",
			RequestTimeout: Duration(20 * time.Second),
		},
	}
}
