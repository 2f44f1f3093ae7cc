package kube

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	appsv1 "k8s.io/api/apps/v1"
)

// DeleteWorkloads removes the deployments and persistent volume claims
// matching the selector. Resources annotated with the keep policy are
// skipped, so durable resources survive teardown. Absent resources are
// not an error, which makes repeated teardown idempotent.
func (c *Client) DeleteWorkloads(ctx context.Context, namespace, selector string) error {
	listOpts := metav1.ListOptions{LabelSelector: selector}

	deployments, err := c.Clientset.AppsV1().Deployments(namespace).List(ctx, listOpts)
	if err != nil {
		return fmt.Errorf("failed to list deployments: %w", err)
	}
	for _, d := range deployments.Items {
		if hasKeepPolicy(d.Annotations) {
			continue
		}
		err := c.Clientset.AppsV1().Deployments(namespace).Delete(ctx, d.Name, metav1.DeleteOptions{})
		if err != nil && !apierrors.IsNotFound(err) {
			return fmt.Errorf("failed to delete deployment %s: %w", d.Name, err)
		}
	}

	claims, err := c.Clientset.CoreV1().PersistentVolumeClaims(namespace).List(ctx, listOpts)
	if err != nil {
		return fmt.Errorf("failed to list persistent volume claims: %w", err)
	}
	for _, pvc := range claims.Items {
		if hasKeepPolicy(pvc.Annotations) {
			continue
		}
		err := c.Clientset.CoreV1().PersistentVolumeClaims(namespace).Delete(ctx, pvc.Name, metav1.DeleteOptions{})
		if err != nil && !apierrors.IsNotFound(err) {
			return fmt.Errorf("failed to delete pvc %s: %w", pvc.Name, err)
		}
	}

	return nil
}

// DeploymentsBySelector lists the deployments matching a label selector.
func (c *Client) DeploymentsBySelector(ctx context.Context, namespace, selector string) ([]appsv1.Deployment, error) {
	deployments, err := c.Clientset.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}
	return deployments.Items, nil
}

// PatchDeploymentImage updates the image of the named container in a
// deployment via a strategic merge patch, leaving every other field
// untouched.
func (c *Client) PatchDeploymentImage(ctx context.Context, namespace, name, container, image string) error {
	patch := fmt.Sprintf(
		`{"spec":{"template":{"spec":{"containers":[{"name":%q,"image":%q}]}}}}`,
		container, image,
	)

	_, err := c.Clientset.AppsV1().Deployments(namespace).Patch(
		ctx, name, types.StrategicMergePatchType, []byte(patch), metav1.PatchOptions{},
	)
	if err != nil {
		return fmt.Errorf("failed to patch image on deployment %s: %w", name, err)
	}
	return nil
}

func hasKeepPolicy(annotations map[string]string) bool {
	return annotations[KeepPolicyAnnotation] == KeepPolicyValue
}
