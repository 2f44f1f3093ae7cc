// Package bootstrap sequences the two-phase testnet bootstrap: deploy
// with empty peer lists, discover externally-assigned addresses and node
// identities, assemble the peer mesh, and redeploy to apply it.
//
// The second teardown and apply cycle exists because nodes read peer
// configuration only from files bound at pod creation time; there is no
// live reload path, so picking up freshly discovered peers requires a
// full pod replacement.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/netforge/netforge/internal/config"
	"github.com/netforge/netforge/internal/peering"
	"github.com/netforge/netforge/internal/release"
)

// Orchestrator owns the top-level bootstrap state machine. It is the
// only issuer of mutating cluster operations; a run must not overlap
// another run against the same target (external serialization assumed).
type Orchestrator struct {
	cfg      *config.Config
	deployer Deployer
	builder  WorkspaceBuilder
	resolver AddressResolver
	observer Observer
}

// New creates an Orchestrator over injected capabilities.
func New(cfg *config.Config, deployer Deployer, builder WorkspaceBuilder, resolver AddressResolver, observer Observer) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		deployer: deployer,
		builder:  builder,
		resolver: resolver,
		observer: observer,
	}
}

// Run classifies the requested version and drives either the in-place
// patch path or the full two-phase rebuild. Any phase failure aborts
// immediately; a failed rebuild must be re-invoked from the start, which
// idempotent teardown makes safe.
func (o *Orchestrator) Run(ctx context.Context) error {
	decision := release.Classify(o.cfg.Version)
	o.observer.Printf("release %s version %s classified as %s", o.cfg.Release, o.cfg.Version, decision)

	if decision == release.Malformed {
		// Never skip a needed rebuild because of an unparsable version.
		o.observer.Printf("version %s did not parse, falling back to a full rebuild", o.cfg.Version)
		decision = release.FullRebuild
	}

	if decision == release.Patch {
		return o.runPatch(ctx)
	}
	return o.runRebuild(ctx)
}

// runPatch performs an in-place image bump. No workspace is created, no
// genesis is regenerated, and teardown is never invoked, so chain state
// is preserved by construction.
func (o *Orchestrator) runPatch(ctx context.Context) error {
	target := o.cfg.Release
	return o.runPhases(ctx, []phase{
		{"bump-image", func(ctx context.Context) error {
			return o.deployer.BumpImage(ctx, target)
		}},
		{"wait-ready", func(ctx context.Context) error {
			return o.deployer.WaitUntilReady(ctx, target)
		}},
	})
}

// runRebuild performs the full two-phase bootstrap. On failure before
// the public pass, the cluster is left torn down rather than
// half-applied.
func (o *Orchestrator) runRebuild(ctx context.Context) error {
	target := o.cfg.Release

	var (
		ws   Workspace
		disc *peering.Discovery
	)

	err := o.runPhases(ctx, []phase{
		{"teardown", func(ctx context.Context) error {
			return o.deployer.Teardown(ctx, target)
		}},
		{"genesis", func(ctx context.Context) (err error) {
			ws, err = o.builder.Build(ctx, target, o.cfg.Validators, o.cfg.Fullnodes, o.cfg.PreserveChainID())
			return err
		}},
		{"deploy-private", func(ctx context.Context) error {
			if err := o.deployer.Apply(ctx, target, ws.Dir()); err != nil {
				return err
			}
			return o.deployer.WaitUntilReady(ctx, target)
		}},
		{"resolve-addresses", func(ctx context.Context) (err error) {
			disc, err = o.resolver.Resolve(ctx, target, o.cfg.Validators, o.cfg.Fullnodes)
			return err
		}},
		{"assemble-mesh", func(ctx context.Context) error {
			mesh := peering.AssembleMesh(disc)
			if err := ws.WritePeers(mesh); err != nil {
				return err
			}
			return ws.WriteExternalAddresses(disc)
		}},
		{"teardown-for-redeploy", func(ctx context.Context) error {
			return o.deployer.Teardown(ctx, target)
		}},
		{"deploy-public", func(ctx context.Context) error {
			if err := o.deployer.Apply(ctx, target, ws.Dir()); err != nil {
				return err
			}
			return o.deployer.WaitUntilReady(ctx, target)
		}},
	})
	if err != nil {
		return err
	}

	// The workspace belongs to this run only; its contents are baked
	// into the deployed pods now.
	if err := ws.Remove(); err != nil {
		o.observer.Printf("could not remove workspace %s: %v", ws.Dir(), err)
	}

	o.observer.Printf("bootstrap of %s complete: %d validators, %d fullnodes",
		target, o.cfg.Validators, o.cfg.Fullnodes)
	return nil
}

// phase is one named step of the state machine.
type phase struct {
	name string
	run  func(context.Context) error
}

// runPhases executes phases sequentially, emitting a progress line
// around each and aborting on the first failure.
func (o *Orchestrator) runPhases(ctx context.Context, phases []phase) error {
	for i, p := range phases {
		name := fmt.Sprintf("%s (%d/%d)", p.name, i+1, len(phases))
		o.observer.Printf("[%s] starting", name)

		start := time.Now()
		if err := p.run(ctx); err != nil {
			o.observer.Printf("[%s] failed: %v", name, err)
			return fmt.Errorf("%s phase failed: %w", p.name, err)
		}
		o.observer.Printf("[%s] completed in %v", name, time.Since(start).Round(time.Millisecond))
	}
	return nil
}
