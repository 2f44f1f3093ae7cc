package kube

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8sfake "k8s.io/client-go/kubernetes/fake"
)

func readyPod(name, target string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: "default",
			Labels:    map[string]string{InstanceLabel: target},
		},
		Status: corev1.PodStatus{
			Phase: corev1.PodRunning,
			Conditions: []corev1.PodCondition{
				{Type: corev1.PodReady, Status: corev1.ConditionTrue},
			},
		},
	}
}

func TestWaitForPodsReady(t *testing.T) {
	t.Parallel()

	clientset := k8sfake.NewSimpleClientset(
		readyPod("devnet-validator-0", "devnet"),
		readyPod("devnet-fullnode-0", "devnet"),
	)
	client := &Client{Clientset: clientset}

	err := client.WaitForPodsReady(context.Background(), "default", InstanceSelector("devnet"), 30*time.Second)
	require.NoError(t, err)
}

func TestWaitForPodsReady_NoPodsTimesOut(t *testing.T) {
	t.Parallel()

	client := &Client{Clientset: k8sfake.NewSimpleClientset()}

	err := client.WaitForPodsReady(context.Background(), "default", InstanceSelector("devnet"), 50*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitForPodsReady_NotReadyTimesOut(t *testing.T) {
	t.Parallel()

	pod := readyPod("devnet-validator-0", "devnet")
	pod.Status.Conditions[0].Status = corev1.ConditionFalse
	client := &Client{Clientset: k8sfake.NewSimpleClientset(pod)}

	err := client.WaitForPodsReady(context.Background(), "default", InstanceSelector("devnet"), 50*time.Millisecond)
	require.Error(t, err)
}

func TestServiceExternalEndpoint(t *testing.T) {
	t.Parallel()

	pending := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: "devnet-p2p-validator-0", Namespace: "default"},
		Spec: corev1.ServiceSpec{
			Ports: []corev1.ServicePort{{Port: 26656}},
		},
	}
	resolved := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: "devnet-p2p-validator-1", Namespace: "default"},
		Spec: corev1.ServiceSpec{
			Ports: []corev1.ServicePort{{Port: 26656}},
		},
		Status: corev1.ServiceStatus{
			LoadBalancer: corev1.LoadBalancerStatus{
				Ingress: []corev1.LoadBalancerIngress{{IP: "203.0.113.7"}},
			},
		},
	}
	client := &Client{Clientset: k8sfake.NewSimpleClientset(pending, resolved)}

	host, port, err := client.ServiceExternalEndpoint(context.Background(), "default", "devnet-p2p-validator-0")
	require.NoError(t, err)
	assert.Empty(t, host)
	assert.Equal(t, int32(26656), port)

	host, port, err = client.ServiceExternalEndpoint(context.Background(), "default", "devnet-p2p-validator-1")
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", host)
	assert.Equal(t, int32(26656), port)
}

func TestPodNameForSelector(t *testing.T) {
	t.Parallel()

	pod := readyPod("devnet-validator-0-abc123", "devnet")
	pod.Labels[ComponentLabel] = "validator-0"
	client := &Client{Clientset: k8sfake.NewSimpleClientset(pod)}

	name, err := client.PodNameForSelector(context.Background(), "default", NodeSelector("devnet", "validator-0"))
	require.NoError(t, err)
	assert.Equal(t, "devnet-validator-0-abc123", name)

	_, err = client.PodNameForSelector(context.Background(), "default", NodeSelector("devnet", "validator-9"))
	require.ErrorIs(t, err, ErrPodNotFound)
}
