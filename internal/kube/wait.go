package kube

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"

	appsv1 "k8s.io/api/apps/v1"
)

const pollInterval = 5 * time.Second

// WaitForPodsReady blocks until every pod matching the selector reports
// a ready condition. At least one pod must exist; an empty selection is
// treated as not ready so callers never race a deployment that has not
// created its pods yet.
func (c *Client) WaitForPodsReady(ctx context.Context, namespace, selector string, timeout time.Duration) error {
	return wait.PollUntilContextTimeout(ctx, pollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		pods, err := c.Clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
			LabelSelector: selector,
		})
		if err != nil {
			return false, nil
		}
		if len(pods.Items) == 0 {
			return false, nil
		}
		for i := range pods.Items {
			if !isPodReady(&pods.Items[i]) {
				return false, nil
			}
		}
		return true, nil
	})
}

// WaitForRollout blocks until every deployment matching the selector has
// converged: all replicas updated, available, and the availability
// condition true.
func (c *Client) WaitForRollout(ctx context.Context, namespace, selector string, timeout time.Duration) error {
	return wait.PollUntilContextTimeout(ctx, pollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		deployments, err := c.Clientset.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{
			LabelSelector: selector,
		})
		if err != nil {
			return false, nil
		}
		if len(deployments.Items) == 0 {
			return false, nil
		}
		for i := range deployments.Items {
			if !isDeploymentReady(&deployments.Items[i]) {
				return false, nil
			}
		}
		return true, nil
	})
}

// ServiceExternalEndpoint reads the externally-assigned endpoint of a
// LoadBalancer service. It returns an empty host while the platform has
// not provisioned the ingress yet; that is the pending state, not an
// error.
func (c *Client) ServiceExternalEndpoint(ctx context.Context, namespace, name string) (string, int32, error) {
	svc, err := c.Clientset.CoreV1().Services(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return "", 0, fmt.Errorf("failed to get service %s: %w", name, err)
	}

	var port int32
	if len(svc.Spec.Ports) > 0 {
		port = svc.Spec.Ports[0].Port
	}

	for _, ingress := range svc.Status.LoadBalancer.Ingress {
		if ingress.IP != "" {
			return ingress.IP, port, nil
		}
		if ingress.Hostname != "" {
			return ingress.Hostname, port, nil
		}
	}

	return "", port, nil
}

func isPodReady(pod *corev1.Pod) bool {
	if pod.Status.Phase != corev1.PodRunning {
		return false
	}
	for _, condition := range pod.Status.Conditions {
		if condition.Type == corev1.PodReady && condition.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}

func isDeploymentReady(deployment *appsv1.Deployment) bool {
	if deployment.Spec.Replicas == nil {
		return false
	}
	replicas := *deployment.Spec.Replicas
	if deployment.Status.UpdatedReplicas != replicas ||
		deployment.Status.Replicas != replicas ||
		deployment.Status.AvailableReplicas != replicas {
		return false
	}
	for _, condition := range deployment.Status.Conditions {
		if condition.Type == appsv1.DeploymentAvailable && condition.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}
