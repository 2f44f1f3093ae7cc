package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appsv1 "k8s.io/api/apps/v1"

	"github.com/netforge/netforge/internal/config"
	"github.com/netforge/netforge/internal/kube"
)

var (
	// ErrReadinessTimeout means the target's pods did not all report
	// ready within the configured bound.
	ErrReadinessTimeout = errors.New("pods did not become ready within the timeout")

	// ErrRollout means an image bump did not converge.
	ErrRollout = errors.New("image rollout did not converge")
)

// ApplyError reports a failed declarative apply.
type ApplyError struct {
	Target string
	Err    error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("deployment apply for %s failed: %v", e.Target, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// nodeContainer is the chart's container name for the node software,
// the only container the patch path touches.
const nodeContainer = "node"

// Cluster is the subset of platform operations the controller needs.
// Implemented by kube.Client.
type Cluster interface {
	DeleteWorkloads(ctx context.Context, namespace, selector string) error
	WaitForPodsReady(ctx context.Context, namespace, selector string, timeout time.Duration) error
	DeploymentsBySelector(ctx context.Context, namespace, selector string) ([]appsv1.Deployment, error)
	PatchDeploymentImage(ctx context.Context, namespace, name, container, image string) error
	WaitForRollout(ctx context.Context, namespace, selector string, timeout time.Duration) error
}

// Logger receives progress output.
type Logger interface {
	Printf(format string, v ...any)
}

// Controller applies and removes one target's cluster configuration.
type Controller struct {
	cluster Cluster
	helm    HelmRunner
	cfg     *config.Config
	logger  Logger
}

// NewController creates a Controller.
func NewController(cluster Cluster, helm HelmRunner, cfg *config.Config, logger Logger) *Controller {
	return &Controller{cluster: cluster, helm: helm, cfg: cfg, logger: logger}
}

// Teardown removes the target's mutable workload resources. Durable
// resources carrying the keep policy survive; tearing down an absent
// target is not an error.
func (c *Controller) Teardown(ctx context.Context, target string) error {
	c.logger.Printf("tearing down workloads for %s", target)
	if err := c.cluster.DeleteWorkloads(ctx, c.cfg.Namespace, kube.InstanceSelector(target)); err != nil {
		return fmt.Errorf("teardown of %s failed: %w", target, err)
	}
	return nil
}

// Apply declaratively applies the target's configuration: computed
// values (node counts, image, engine version, filesystem ownership,
// workspace path) layered over the target's values overlay file.
func (c *Controller) Apply(ctx context.Context, target, workspaceDir string) error {
	overlay, err := FromYAMLFile(c.cfg.ValuesOverlayPath())
	if err != nil {
		return &ApplyError{Target: target, Err: err}
	}

	values := Merge(overlay, Values{
		"validators": map[string]any{"count": c.cfg.Validators},
		"fullnodes":  map[string]any{"count": c.cfg.Fullnodes},
		"image": map[string]any{
			"repository": c.cfg.ImageRepo,
			"tag":        c.cfg.Version,
		},
		"engine": map[string]any{"version": c.cfg.EngineVersion},
		"podSecurity": map[string]any{
			"runAsUser": c.cfg.FSUserID,
			"fsGroup":   c.cfg.FSGroupID,
		},
		"workspace": map[string]any{"hostPath": workspaceDir},
	})

	c.logger.Printf("applying chart for %s (image %s)", target, c.cfg.Image())
	if err := c.helm.InstallOrUpgrade(ctx, target, c.cfg.ChartDir, values); err != nil {
		return &ApplyError{Target: target, Err: err}
	}
	return nil
}

// WaitUntilReady blocks until every pod of the target reports ready.
func (c *Controller) WaitUntilReady(ctx context.Context, target string) error {
	c.logger.Printf("waiting for pods of %s to become ready", target)
	err := c.cluster.WaitForPodsReady(ctx, c.cfg.Namespace, kube.InstanceSelector(target), c.cfg.Timeouts.PodReady)
	if err != nil {
		return fmt.Errorf("%w: target %s: %v", ErrReadinessTimeout, target, err)
	}
	return nil
}

// BumpImage updates only the node container image on the target's
// validator and fullnode deployments, then waits for the rollout to
// converge. Chain state is untouched.
func (c *Controller) BumpImage(ctx context.Context, target string) error {
	selector := kube.InstanceSelector(target)

	deployments, err := c.cluster.DeploymentsBySelector(ctx, c.cfg.Namespace, selector)
	if err != nil {
		return &ApplyError{Target: target, Err: err}
	}

	image := c.cfg.Image()
	bumped := 0
	for _, d := range deployments {
		if !isNodeWorkload(&d) {
			continue
		}
		c.logger.Printf("bumping image on %s to %s", d.Name, image)
		if err := c.cluster.PatchDeploymentImage(ctx, c.cfg.Namespace, d.Name, nodeContainer, image); err != nil {
			return &ApplyError{Target: target, Err: err}
		}
		bumped++
	}
	if bumped == 0 {
		return &ApplyError{Target: target, Err: fmt.Errorf("no node deployments found for selector %q", selector)}
	}

	if err := c.cluster.WaitForRollout(ctx, c.cfg.Namespace, selector, c.cfg.Timeouts.Rollout); err != nil {
		return &ApplyError{Target: target, Err: fmt.Errorf("%w: %v", ErrRollout, err)}
	}
	return nil
}

// isNodeWorkload reports whether a deployment runs a validator or
// fullnode, as opposed to durable auxiliary workloads.
func isNodeWorkload(d *appsv1.Deployment) bool {
	component := d.Labels[kube.ComponentLabel]
	return strings.HasPrefix(component, "validator-") || strings.HasPrefix(component, "fullnode-")
}
