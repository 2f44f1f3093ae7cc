// Package handlers wires the orchestrator's concrete capabilities and
// runs the bootstrap.
package handlers

import (
	"context"
	"fmt"

	"github.com/netforge/netforge/internal/bootstrap"
	"github.com/netforge/netforge/internal/config"
	"github.com/netforge/netforge/internal/deploy"
	"github.com/netforge/netforge/internal/genesis"
	"github.com/netforge/netforge/internal/kube"
	"github.com/netforge/netforge/internal/peering"
)

// Bootstrap builds the component graph from the environment and runs
// the orchestrator once.
func Bootstrap(ctx context.Context) error {
	cfg, err := config.FromEnvironment()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	observer := bootstrap.NewConsoleObserver()

	kubeClient, err := kube.NewClient(cfg.Kubeconfig)
	if err != nil {
		return fmt.Errorf("failed to connect to the platform: %w", err)
	}

	helmRunner, err := deploy.NewHelmRunner(cfg.Kubeconfig, cfg.Namespace)
	if err != nil {
		return fmt.Errorf("failed to set up the deployment engine: %w", err)
	}

	controller := deploy.NewController(kubeClient, helmRunner, cfg, observer)
	builder := genesis.NewBuilder(cfg.WorkspaceRoot, &genesis.CommandGenerator{Binary: cfg.GeneratorBinary}, observer)
	resolver := peering.NewResolver(kubeClient, observer, peering.ResolverOptions{
		Namespace:    cfg.Namespace,
		PollInterval: cfg.Timeouts.AddressPoll,
		WaitTimeout:  cfg.Timeouts.AddressWait,
	})

	orchestrator := bootstrap.New(cfg, controller, workspaceBuilder{builder}, resolver, observer)
	return orchestrator.Run(ctx)
}

// workspaceBuilder adapts genesis.Builder's concrete return type to the
// orchestrator's Workspace interface.
type workspaceBuilder struct {
	*genesis.Builder
}

func (b workspaceBuilder) Build(ctx context.Context, target string, validators, fullnodes int, preserveChainID bool) (bootstrap.Workspace, error) {
	ws, err := b.Builder.Build(ctx, target, validators, fullnodes, preserveChainID)
	if err != nil {
		return nil, err
	}
	return ws, nil
}
