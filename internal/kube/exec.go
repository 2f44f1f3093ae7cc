package kube

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/remotecommand"
)

// ErrPodNotFound means no running pod matched the selector.
var ErrPodNotFound = errors.New("no running pod found")

// PodNameForSelector returns the name of the running pod matching the
// selector. Exactly one running pod is expected per node component.
func (c *Client) PodNameForSelector(ctx context.Context, namespace, selector string) (string, error) {
	pods, err := c.Clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector,
	})
	if err != nil {
		return "", fmt.Errorf("failed to list pods: %w", err)
	}

	for i := range pods.Items {
		if pods.Items[i].Status.Phase == corev1.PodRunning {
			return pods.Items[i].Name, nil
		}
	}

	return "", fmt.Errorf("%w: selector %q in namespace %s", ErrPodNotFound, selector, namespace)
}

// ExecInPod runs a command inside a container of a running pod and
// returns its combined standard output. The command is expected to be
// read-only; stderr is folded into the returned error on failure.
func (c *Client) ExecInPod(ctx context.Context, namespace, pod, container string, command []string) (string, error) {
	req := c.Clientset.CoreV1().RESTClient().Post().
		Resource("pods").
		Namespace(namespace).
		Name(pod).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: container,
			Command:   command,
			Stdout:    true,
			Stderr:    true,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(c.restConfig, "POST", req.URL())
	if err != nil {
		return "", fmt.Errorf("failed to create exec stream: %w", err)
	}

	var stdout, stderr bytes.Buffer
	err = executor.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		return "", fmt.Errorf("exec in pod %s failed: %w (stderr: %s)", pod, err, stderr.String())
	}

	return stdout.String(), nil
}
