package deploy

import (
	"context"
	"fmt"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart/loader"
	"k8s.io/cli-runtime/pkg/genericclioptions"
)

// HelmRunner installs or upgrades the testnet chart. The production
// implementation drives the Helm SDK; tests substitute a fake.
type HelmRunner interface {
	InstallOrUpgrade(ctx context.Context, release, chartDir string, values map[string]any) error
}

// helmRunner implements HelmRunner against a live cluster.
type helmRunner struct {
	namespace    string
	actionConfig *action.Configuration
}

// NewHelmRunner creates a HelmRunner. An empty kubeconfig path uses the
// default client loading rules (including in-cluster configuration).
func NewHelmRunner(kubeconfigPath, namespace string) (HelmRunner, error) {
	flags := genericclioptions.NewConfigFlags(false)
	flags.Namespace = &namespace
	if kubeconfigPath != "" {
		flags.KubeConfig = &kubeconfigPath
	}

	actionConfig := new(action.Configuration)
	if err := actionConfig.Init(flags, namespace, "secret", func(string, ...interface{}) {}); err != nil {
		return nil, fmt.Errorf("failed to initialize helm action config: %w", err)
	}

	return &helmRunner{namespace: namespace, actionConfig: actionConfig}, nil
}

// InstallOrUpgrade installs the chart or upgrades the release if it
// already exists. The apply is a full replace of all mutable fields, so
// repeated calls with the same values converge. Readiness is the
// caller's concern; the runner does not wait for pods.
func (r *helmRunner) InstallOrUpgrade(ctx context.Context, release, chartDir string, values map[string]any) error {
	chart, err := loader.Load(chartDir)
	if err != nil {
		return fmt.Errorf("failed to load chart %s: %w", chartDir, err)
	}

	histClient := action.NewHistory(r.actionConfig)
	histClient.Max = 1
	if _, err := histClient.Run(release); err != nil {
		installClient := action.NewInstall(r.actionConfig)
		installClient.ReleaseName = release
		installClient.Namespace = r.namespace
		installClient.CreateNamespace = true

		if _, err := installClient.RunWithContext(ctx, chart, values); err != nil {
			return fmt.Errorf("helm install of %s failed: %w", release, err)
		}
		return nil
	}

	upgradeClient := action.NewUpgrade(r.actionConfig)
	upgradeClient.Namespace = r.namespace

	if _, err := upgradeClient.RunWithContext(ctx, release, chart, values); err != nil {
		return fmt.Errorf("helm upgrade of %s failed: %w", release, err)
	}
	return nil
}
