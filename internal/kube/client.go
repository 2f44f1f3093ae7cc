// Package kube wraps the Kubernetes API operations the bootstrap
// orchestrator needs: listing and deleting workload resources by label
// selector, reading service-provisioned external endpoints, waiting for
// pod readiness, executing commands inside running pods, and patching
// container images.
package kube

import (
	"fmt"
	"os"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

const (
	// InstanceLabel scopes every resource to its release target.
	InstanceLabel = "app.kubernetes.io/instance"

	// ComponentLabel identifies a single node within a target, e.g.
	// "validator-0" or "fullnode-1".
	ComponentLabel = "app.kubernetes.io/component"

	// KeepPolicyAnnotation marks durable resources (ingress,
	// certificates) that teardown must never delete.
	KeepPolicyAnnotation = "helm.sh/resource-policy"

	// KeepPolicyValue is the annotation value that activates the keep
	// policy.
	KeepPolicyValue = "keep"
)

// Client wraps a Kubernetes clientset and the REST config needed for
// pod exec streams.
type Client struct {
	Clientset  kubernetes.Interface
	restConfig *rest.Config
}

// NewClient creates a Client from a kubeconfig path. An empty path falls
// back to the default kubeconfig location, then to in-cluster
// configuration.
func NewClient(kubeconfigPath string) (*Client, error) {
	restConfig, err := buildRESTConfig(kubeconfigPath)
	if err != nil {
		return nil, err
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	return &Client{Clientset: clientset, restConfig: restConfig}, nil
}

func buildRESTConfig(kubeconfigPath string) (*rest.Config, error) {
	if kubeconfigPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			defaultPath := home + "/.kube/config"
			if _, err := os.Stat(defaultPath); err == nil {
				kubeconfigPath = defaultPath
			}
		}
	}

	if kubeconfigPath != "" {
		config, err := clientcmd.BuildConfigFromFlags("", kubeconfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to build kubeconfig: %w", err)
		}
		return config, nil
	}

	config, err := rest.InClusterConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build in-cluster config: %w", err)
	}
	return config, nil
}

// InstanceSelector returns the label selector matching every resource of
// a release target.
func InstanceSelector(target string) string {
	return fmt.Sprintf("%s=%s", InstanceLabel, target)
}

// NodeSelector returns the label selector matching a single node's
// resources within a target.
func NodeSelector(target, component string) string {
	return fmt.Sprintf("%s=%s,%s=%s", InstanceLabel, target, ComponentLabel, component)
}
