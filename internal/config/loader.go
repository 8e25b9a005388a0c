package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"marionettist/internal/metrics"
	"marionettist/pkg/logging"
)

const (
	userConfigDir  = ".config/marionettist"
	configFileName = "config.yaml"
)

// Environment variables overriding endpoint values from config.yaml, for
// per-deployment wiring without editing the file.
const (
	// PrometheusURLEnvVar overrides metrics.prometheusUrl.
	PrometheusURLEnvVar = "MARIONETTIST_PROMETHEUS_URL"
	// APIHostEnvVar overrides api.host.
	APIHostEnvVar = "MARIONETTIST_API_HOST"
)

// GetDefaultConfigPathOrPanic returns ~/.config/marionettist.
func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}
	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads config.yaml from the given directory. A missing file
// yields the defaults; a malformed file is an error.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			applyEnvOverrides(&config)
			return config, nil
		}
		return Config{}, err
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}

	applyEnvOverrides(&config)

	if err := Validate(config); err != nil {
		return Config{}, fmt.Errorf("invalid configuration in %s: %w", configFilePath, err)
	}

	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv(PrometheusURLEnvVar); v != "" {
		config.Metrics.PrometheusURL = v
	}
	if v := os.Getenv(APIHostEnvVar); v != "" {
		config.API.Host = v
	}
}

// Validate checks the loaded configuration for mistakes that would only
// surface mid-experiment otherwise.
func Validate(config Config) error {
	if config.API.Port <= 0 || config.API.Port > 65535 {
		return fmt.Errorf("api port %d out of range", config.API.Port)
	}
	if config.Discovery.ProbeRetries <= 0 {
		return fmt.Errorf("discovery probe retries must be positive, got %d", config.Discovery.ProbeRetries)
	}
	if config.Experiment.TotalDuration.Std() <= 0 {
		return fmt.Errorf("experiment total duration must be positive, got %s", config.Experiment.TotalDuration.Std())
	}

	for _, spec := range config.Metrics.Specs {
		if spec.DisplayName == "" {
			return fmt.Errorf("metric spec without a displayName")
		}
		if spec.Query == "" {
			return fmt.Errorf("metric %s has no query", spec.DisplayName)
		}
		if !metrics.HasServicePlaceholder(spec.Query) {
			return fmt.Errorf("metric %s query carries no service placeholder", spec.DisplayName)
		}
		if spec.Direction != metrics.HigherIsBetter && spec.Direction != metrics.LowerIsBetter {
			return fmt.Errorf("metric %s has invalid direction %q", spec.DisplayName, spec.Direction)
		}
	}
	return nil
}
