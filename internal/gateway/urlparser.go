package gateway

import (
	"fmt"
	"regexp"
)

// serviceURLPattern matches in-cluster service URLs of the form
// http://<service>.<namespace>.svc.cluster.local[:port][/path].
var serviceURLPattern = regexp.MustCompile(`^https?://([^.]+)\.([^.]+)\.svc\.cluster\.local(?::(\d+))?.*$`)

// ServiceURLInfo is the cluster coordinates recovered from a service
// endpoint URL.
type ServiceURLInfo struct {
	ServiceName string
	Namespace   string
	Port        string
}

// ParseServiceURL extracts service name, namespace and optional port from an
// in-cluster service URL.
func ParseServiceURL(rawURL string) (ServiceURLInfo, error) {
	matches := serviceURLPattern.FindStringSubmatch(rawURL)
	if matches == nil {
		return ServiceURLInfo{}, fmt.Errorf("%q is not an in-cluster service URL", rawURL)
	}
	return ServiceURLInfo{
		ServiceName: matches[1],
		Namespace:   matches[2],
		Port:        matches[3],
	}, nil
}
