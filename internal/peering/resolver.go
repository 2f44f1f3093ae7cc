package peering

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/netforge/netforge/internal/kube"
)

var (
	// ErrProvisioningStalled means the platform never assigned external
	// endpoints within the configured bound.
	ErrProvisioningStalled = errors.New("external address provisioning stalled")

	// ErrNodeNotFound means a node's running pod could not be located
	// for identity discovery.
	ErrNodeNotFound = errors.New("node not found")
)

// Platform is the subset of cluster operations the resolver needs.
// Implemented by kube.Client.
type Platform interface {
	ServiceExternalEndpoint(ctx context.Context, namespace, name string) (string, int32, error)
	PodNameForSelector(ctx context.Context, namespace, selector string) (string, error)
	ExecInPod(ctx context.Context, namespace, pod, container string, command []string) (string, error)
}

// Logger receives progress output.
type Logger interface {
	Printf(format string, v ...any)
}

// defaultIdentityCommand obtains a node's stable identity token from the
// consensus engine inside the node container.
var defaultIdentityCommand = []string{"tendermint", "show-node-id"}

// Resolver discovers every node's external endpoint and identity token.
type Resolver struct {
	platform        Platform
	logger          Logger
	namespace       string
	nodeContainer   string
	identityCommand []string
	pollInterval    time.Duration
	waitTimeout     time.Duration
}

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	Namespace string

	// NodeContainer is the container holding the node software.
	NodeContainer string

	// IdentityCommand overrides the command run inside the node
	// container to read its identity token.
	IdentityCommand []string

	// PollInterval is the sleep between address provisioning probes.
	PollInterval time.Duration

	// WaitTimeout bounds the provisioning poll. Zero means the poll is
	// bounded only by the caller's context.
	WaitTimeout time.Duration
}

// NewResolver creates a Resolver over the given platform.
func NewResolver(platform Platform, logger Logger, opts ResolverOptions) *Resolver {
	if opts.NodeContainer == "" {
		opts.NodeContainer = "node"
	}
	if len(opts.IdentityCommand) == 0 {
		opts.IdentityCommand = defaultIdentityCommand
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	return &Resolver{
		platform:        platform,
		logger:          logger,
		namespace:       opts.Namespace,
		nodeContainer:   opts.NodeContainer,
		identityCommand: opts.IdentityCommand,
		pollInterval:    opts.PollInterval,
		waitTimeout:     opts.WaitTimeout,
	}
}

// Resolve blocks until every node's p2p service has an external
// endpoint, then reads each node's identity token from its running pod.
// There is no partial success: any missing pod or failed lookup fails
// the whole call.
func (r *Resolver) Resolve(ctx context.Context, target string, validators, fullnodes int) (*Discovery, error) {
	refs := Refs(validators, fullnodes)

	if r.waitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.waitTimeout)
		defer cancel()
	}

	endpoints, err := r.awaitEndpoints(ctx, target, refs)
	if err != nil {
		return nil, err
	}

	discovery := NewDiscovery()
	for _, ref := range refs {
		id, err := r.nodeIdentity(ctx, target, ref)
		if err != nil {
			return nil, err
		}
		discovery.Add(ref, IdentityRecord{ID: id, Address: endpoints[ref]})
	}

	return discovery, nil
}

// awaitEndpoints polls the platform until every node's p2p service has
// an externally-assigned endpoint. The whole batch is re-probed each
// round so a service that loses its endpoint mid-wait is caught.
func (r *Resolver) awaitEndpoints(ctx context.Context, target string, refs []NodeRef) (map[NodeRef]string, error) {
	for {
		endpoints := make(map[NodeRef]string, len(refs))
		pending := 0

		for _, ref := range refs {
			host, port, err := r.platform.ServiceExternalEndpoint(ctx, r.namespace, ref.ServiceName(target))
			if err != nil {
				return nil, fmt.Errorf("failed to query endpoint for %s: %w", ref, err)
			}
			if host == "" {
				pending++
				continue
			}
			endpoints[ref] = fmt.Sprintf("%s:%d", host, port)
		}

		if pending == 0 {
			return endpoints, nil
		}

		r.logger.Printf("waiting for %d of %d external addresses to be provisioned", pending, len(refs))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %d endpoints still pending: %v", ErrProvisioningStalled, pending, ctx.Err())
		case <-time.After(r.pollInterval):
		}
	}
}

// nodeIdentity reads the identity token from the node's running pod.
func (r *Resolver) nodeIdentity(ctx context.Context, target string, ref NodeRef) (string, error) {
	selector := kube.NodeSelector(target, ref.String())

	pod, err := r.platform.PodNameForSelector(ctx, r.namespace, selector)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNodeNotFound, ref, err)
	}

	out, err := r.platform.ExecInPod(ctx, r.namespace, pod, r.nodeContainer, r.identityCommand)
	if err != nil {
		return "", fmt.Errorf("failed to read identity of %s: %w", ref, err)
	}

	id := strings.TrimSpace(out)
	if id == "" {
		return "", fmt.Errorf("empty identity token from %s", ref)
	}
	return id, nil
}
