package metrics

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Query templates may carry placeholders that are substituted before the
// query is fired:
//
//	{service}  or <service-name>    the target service
//	{timespan} or <time-slice>      the sampling window, Prometheus format
//	{sampling} or <sampling-period> the sampling period, Prometheus format
//
// Example:
//
//	rate(http_server_requests_seconds_count{service="{service}"}[{timespan}])
const (
	servicePlaceholder     = "{service}"
	servicePlaceholderAlt  = "<service-name>"
	timespanPlaceholder    = "{timespan}"
	timespanPlaceholderAlt = "<time-slice>"
	samplingPlaceholder    = "{sampling}"
	samplingPlaceholderAlt = "<sampling-period>"
)

// BuildQueryURL substitutes the placeholders of a query template and
// assembles the full Prometheus HTTP API URL.
func BuildQueryURL(prometheusURL, apiPath, queryTemplate, serviceName string, timeSpan, samplingPeriod time.Duration) (string, error) {
	if strings.TrimSpace(prometheusURL) == "" {
		return "", fmt.Errorf("prometheus URL cannot be blank")
	}
	if strings.TrimSpace(queryTemplate) == "" {
		return "", fmt.Errorf("query template cannot be blank")
	}
	if strings.TrimSpace(serviceName) == "" {
		return "", fmt.Errorf("service name cannot be blank")
	}
	if timeSpan <= 0 {
		return "", fmt.Errorf("time span must be positive, got %s", timeSpan)
	}

	query := queryTemplate
	query = strings.ReplaceAll(query, servicePlaceholder, serviceName)
	query = strings.ReplaceAll(query, servicePlaceholderAlt, serviceName)

	span := PrometheusDuration(timeSpan)
	query = strings.ReplaceAll(query, timespanPlaceholder, span)
	query = strings.ReplaceAll(query, timespanPlaceholderAlt, span)

	if samplingPeriod > 0 {
		sampling := PrometheusDuration(samplingPeriod)
		query = strings.ReplaceAll(query, samplingPlaceholder, sampling)
		query = strings.ReplaceAll(query, samplingPlaceholderAlt, sampling)
	}

	return prometheusURL + apiPath + "?query=" + url.QueryEscape(query), nil
}

// PrometheusDuration renders a duration in the most compact Prometheus time
// unit that divides it evenly.
func PrometheusDuration(d time.Duration) string {
	seconds := int64(d.Seconds())
	switch {
	case seconds%31536000 == 0:
		return fmt.Sprintf("%dy", seconds/31536000)
	case seconds%604800 == 0:
		return fmt.Sprintf("%dw", seconds/604800)
	case seconds%86400 == 0:
		return fmt.Sprintf("%dd", seconds/86400)
	case seconds%3600 == 0:
		return fmt.Sprintf("%dh", seconds/3600)
	case seconds%60 == 0:
		return fmt.Sprintf("%dm", seconds/60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// HasServicePlaceholder reports whether a template carries the mandatory
// service placeholder. Useful for configuration validation.
func HasServicePlaceholder(queryTemplate string) bool {
	return strings.Contains(queryTemplate, servicePlaceholder) ||
		strings.Contains(queryTemplate, servicePlaceholderAlt)
}
