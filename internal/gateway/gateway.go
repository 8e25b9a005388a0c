package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"marionettist/internal/experiment"
	"marionettist/internal/telemetry"
	"marionettist/pkg/logging"
)

const (
	// changeBehaviourPath is the marionette protocol mutation endpoint.
	changeBehaviourPath = "/marionette/api/changeBehaviour"

	defaultPerPodTimeout = 30 * time.Second
)

// changeBehaviourRequest is the wire payload pushed to each pod.
type changeBehaviourRequest struct {
	ClassName   string `json:"className"`
	MethodName  string `json:"methodName"`
	BehaviourID string `json:"behaviourId"`
}

// NotificationTally summarizes one fan-out round.
type NotificationTally struct {
	Attempted int
	Succeeded int
	Failed    int
}

// PodFanoutGateway notifies every Running replica behind a Service
// concurrently, each pod with its own timeout. Per-pod failures are tallied
// and logged, never propagated: absence of confirmation is a degraded state
// the experiment continues through.
type PodFanoutGateway struct {
	kube          client.Client
	httpClient    *http.Client
	perPodTimeout time.Duration
}

// NewPodFanoutGateway creates a gateway over the given cluster client.
func NewPodFanoutGateway(kube client.Client) *PodFanoutGateway {
	return &PodFanoutGateway{
		kube:          kube,
		httpClient:    &http.Client{Timeout: defaultPerPodTimeout},
		perPodTimeout: defaultPerPodTimeout,
	}
}

// WithPerPodTimeout overrides the timeout each pod notification runs under.
func (g *PodFanoutGateway) WithPerPodTimeout(timeout time.Duration) *PodFanoutGateway {
	if timeout > 0 {
		g.perPodTimeout = timeout
		g.httpClient.Timeout = timeout
	}
	return g
}

// NotifyBehaviourChange implements experiment.BehaviourNotifier. The
// endpoint's namespace locates the Service, the Service's selector locates
// the pods. Zero reachable pods is logged, not an error.
func (g *PodFanoutGateway) NotifyBehaviourChange(ctx context.Context, endpoint *url.URL, change experiment.BehaviourChange) error {
	info, err := ParseServiceURL(endpoint.String())
	if err != nil {
		return fmt.Errorf("failed to parse service endpoint: %w", err)
	}

	pods, err := g.findRunningPods(ctx, info.Namespace, change.ServiceName)
	if err != nil {
		return err
	}
	if len(pods) == 0 {
		logging.Warn("Gateway", "No running pods found for service %s in namespace %s", change.ServiceName, info.Namespace)
		return nil
	}

	tally := g.notifyPods(ctx, pods, change)
	logging.Info("Gateway", "Notification complete for %s: %d/%d pods updated", change.ServiceName, tally.Succeeded, tally.Attempted)
	return nil
}

// findRunningPods resolves the Service's selector and lists its Running
// pods with an assigned IP.
func (g *PodFanoutGateway) findRunningPods(ctx context.Context, namespace, serviceName string) ([]corev1.Pod, error) {
	var service corev1.Service
	if err := g.kube.Get(ctx, types.NamespacedName{Namespace: namespace, Name: serviceName}, &service); err != nil {
		return nil, fmt.Errorf("failed to read service %s/%s: %w", namespace, serviceName, err)
	}

	if len(service.Spec.Selector) == 0 {
		logging.Warn("Gateway", "Service %s/%s has no selector, cannot resolve pods", namespace, serviceName)
		return nil, nil
	}

	var podList corev1.PodList
	if err := g.kube.List(ctx, &podList, client.InNamespace(namespace), client.MatchingLabels(service.Spec.Selector)); err != nil {
		return nil, fmt.Errorf("failed to list pods of service %s/%s: %w", namespace, serviceName, err)
	}

	running := make([]corev1.Pod, 0, len(podList.Items))
	for _, pod := range podList.Items {
		if pod.Status.Phase == corev1.PodRunning && pod.Status.PodIP != "" {
			running = append(running, pod)
		}
	}

	logging.Debug("Gateway", "Found %d running pods for service %s/%s", len(running), namespace, serviceName)
	return running, nil
}

// notifyPods fires the change at every pod concurrently and joins the
// results. One pod's failure never blocks or fails its siblings.
func (g *PodFanoutGateway) notifyPods(ctx context.Context, pods []corev1.Pod, change experiment.BehaviourChange) NotificationTally {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failed    int
	)

	for _, pod := range pods {
		wg.Add(1)
		go func(pod corev1.Pod) {
			defer wg.Done()
			err := g.notifySinglePod(ctx, pod, change)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				telemetry.ObservePodNotification(telemetry.OutcomeError)
				logging.Warn("Gateway", "Failed to notify pod %s: %v", pod.Name, err)
			} else {
				succeeded++
				telemetry.ObservePodNotification(telemetry.OutcomeSuccess)
			}
		}(pod)
	}
	wg.Wait()

	return NotificationTally{Attempted: len(pods), Succeeded: succeeded, Failed: failed}
}

func (g *PodFanoutGateway) notifySinglePod(ctx context.Context, pod corev1.Pod, change experiment.BehaviourChange) error {
	port, ok := resolvePodPort(pod)
	if !ok {
		return fmt.Errorf("pod %s declares no ports", pod.Name)
	}

	payload, err := json.Marshal(changeBehaviourRequest{
		ClassName:   change.ClassName,
		MethodName:  change.MethodName,
		BehaviourID: change.BehaviourID,
	})
	if err != nil {
		return fmt.Errorf("failed to encode change payload: %w", err)
	}

	podCtx, cancel := context.WithTimeout(ctx, g.perPodTimeout)
	defer cancel()

	podURL := fmt.Sprintf("http://%s:%d%s", pod.Status.PodIP, port, changeBehaviourPath)
	req, err := http.NewRequestWithContext(podCtx, http.MethodPost, podURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request for pod %s: %w", pod.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to pod %s failed: %w", pod.Name, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("pod %s returned status %d", pod.Name, resp.StatusCode)
	}

	logging.Debug("Gateway", "Pod %s (%s:%d) updated to %s.%s=%s", pod.Name, pod.Status.PodIP, port, change.ClassName, change.MethodName, change.BehaviourID)
	return nil
}
