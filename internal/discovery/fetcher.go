package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"marionettist/internal/domain"
	"marionettist/pkg/logging"
)

// getConfigurationPath is the marionette protocol introspection endpoint.
const getConfigurationPath = "/marionette/api/getConfiguration"

const defaultFetchTimeout = 30 * time.Second

// FetchConfigurationError wraps any transport or parse failure during
// configuration fetch. It carries an internal diagnostic next to a separate
// message fit for surfacing to users.
type FetchConfigurationError struct {
	Diagnostic  string
	UserMessage string
	Err         error
}

func (e *FetchConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Diagnostic, e.Err)
	}
	return e.Diagnostic
}

func (e *FetchConfigurationError) Unwrap() error { return e.Err }

func newFetchError(err error, diagnosticFmt string, endpoint string) *FetchConfigurationError {
	return &FetchConfigurationError{
		Diagnostic:  fmt.Sprintf(diagnosticFmt, endpoint),
		UserMessage: fmt.Sprintf("impossible to fetch the configuration of the service at %s", endpoint),
		Err:         err,
	}
}

// marionetteConfigResponse mirrors the getConfiguration wire format.
type marionetteConfigResponse struct {
	ServiceName string                  `json:"serviceName"`
	Classes     []marionetteClassConfig `json:"classes"`
}

type marionetteClassConfig struct {
	Name    string                   `json:"name"`
	Methods []marionetteMethodConfig `json:"methods"`
}

type marionetteMethodConfig struct {
	Name                string   `json:"name"`
	CurrentBehaviour    string   `json:"currentBehaviour"`
	AvailableBehaviours []string `json:"availableBehaviours"`
}

// HTTPConfigurationFetcher fetches and parses a marionette node's
// configuration tree.
type HTTPConfigurationFetcher struct {
	client *http.Client
}

// NewHTTPConfigurationFetcher creates a fetcher.
func NewHTTPConfigurationFetcher() *HTTPConfigurationFetcher {
	return &HTTPConfigurationFetcher{client: &http.Client{Timeout: defaultFetchTimeout}}
}

// FetchConfiguration GETs the node's configuration description and converts
// it into the domain tree. The node does not expose its factory default, so
// the behaviour current at discovery time doubles as the default. All
// failures surface as a *FetchConfigurationError.
func (f *HTTPConfigurationFetcher) FetchConfiguration(ctx context.Context, endpoint *url.URL) (domain.ServiceConfig, error) {
	fetchURL := endpoint.JoinPath(getConfigurationPath).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return domain.ServiceConfig{}, newFetchError(err, "failed to build configuration request for %s", fetchURL)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.ServiceConfig{}, newFetchError(err, "network error fetching configuration from %s", fetchURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ServiceConfig{}, newFetchError(fmt.Errorf("status %d", resp.StatusCode), "configuration endpoint %s returned a non-OK status", fetchURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ServiceConfig{}, newFetchError(err, "failed to read configuration response from %s", fetchURL)
	}

	var response marionetteConfigResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return domain.ServiceConfig{}, newFetchError(err, "failed to parse configuration response from %s", fetchURL)
	}

	config, err := toServiceConfig(response)
	if err != nil {
		return domain.ServiceConfig{}, newFetchError(err, "configuration from %s is invalid", fetchURL)
	}

	logging.Debug("Discovery", "Fetched configuration for service %s: %d classes", response.ServiceName, len(response.Classes))
	return config, nil
}

func toServiceConfig(response marionetteConfigResponse) (domain.ServiceConfig, error) {
	serviceName, err := domain.NewServiceName(response.ServiceName)
	if err != nil {
		return domain.ServiceConfig{}, err
	}

	classes := make(map[domain.ClassName]domain.ClassConfig, len(response.Classes))
	for _, classResponse := range response.Classes {
		className, err := domain.NewClassName(classResponse.Name)
		if err != nil {
			return domain.ServiceConfig{}, err
		}

		methods := make(map[domain.MethodName]domain.MethodConfig, len(classResponse.Methods))
		for _, methodResponse := range classResponse.Methods {
			methodConfig, err := domain.MethodConfigFromStrings(
				methodResponse.Name,
				methodResponse.CurrentBehaviour,
				methodResponse.CurrentBehaviour,
				methodResponse.AvailableBehaviours,
			)
			if err != nil {
				return domain.ServiceConfig{}, err
			}
			methods[methodConfig.MethodName()] = methodConfig
		}

		classes[className] = domain.NewClassConfig(className, methods)
	}

	return domain.NewServiceConfig(serviceName, classes), nil
}
