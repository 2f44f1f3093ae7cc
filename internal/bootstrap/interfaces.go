package bootstrap

import (
	"context"

	"github.com/netforge/netforge/internal/peering"
)

// Deployer applies and removes the target's cluster configuration.
// Implemented by deploy.Controller.
type Deployer interface {
	Teardown(ctx context.Context, target string) error
	Apply(ctx context.Context, target, workspaceDir string) error
	WaitUntilReady(ctx context.Context, target string) error
	BumpImage(ctx context.Context, target string) error
}

// Workspace is the local staging area produced by a genesis build.
// Implemented by genesis.Workspace.
type Workspace interface {
	Dir() string
	WritePeers(mesh map[peering.NodeRef]string) error
	WriteExternalAddresses(d *peering.Discovery) error
	Remove() error
}

// WorkspaceBuilder prepares the genesis workspace for a full rebuild.
// Implemented by an adapter over genesis.Builder.
type WorkspaceBuilder interface {
	Build(ctx context.Context, target string, validators, fullnodes int, preserveChainID bool) (Workspace, error)
}

// AddressResolver discovers every node's external endpoint and identity.
// Implemented by peering.Resolver.
type AddressResolver interface {
	Resolve(ctx context.Context, target string, validators, fullnodes int) (*peering.Discovery, error)
}
