package genesis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/netforge/netforge/internal/peering"
)

// Generator is the external genesis generator, invoked as a black box.
// It reads the validator-set document and writes real per-node
// configuration into the workspace, overwriting the placeholder
// descriptors.
type Generator interface {
	Generate(ctx context.Context, validatorSetPath, outputDir string, preserveChainID bool) error
}

// GeneratorError reports a genesis generator failure. A workspace from a
// failed generation must never be deployed.
type GeneratorError struct {
	Err    error
	Stderr string
}

func (e *GeneratorError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("genesis generator failed: %v: %s", e.Err, e.Stderr)
	}
	return fmt.Sprintf("genesis generator failed: %v", e.Err)
}

func (e *GeneratorError) Unwrap() error {
	return e.Err
}

// validatorDescriptor is the placeholder written per validator before the
// generator runs. If the generator is unavailable these defaults remain
// and the deployment carries inert identities; that is an accepted
// degraded mode.
type validatorDescriptor struct {
	Name         string `yaml:"name"`
	VotingPower  int    `yaml:"voting_power"`
	IdentityKey  string `yaml:"identity_key"`
	ConsensusKey string `yaml:"consensus_key"`
}

// validatorSet is the aggregate document handed to the generator.
type validatorSet struct {
	Validators []validatorDescriptor `yaml:"validators"`
}

// Logger receives progress output.
type Logger interface {
	Printf(format string, v ...any)
}

// Builder prepares a clean workspace and invokes the genesis generator.
type Builder struct {
	root      string
	generator Generator
	logger    Logger
}

// NewBuilder creates a Builder that stages workspaces under root.
func NewBuilder(root string, generator Generator, logger Logger) *Builder {
	return &Builder{root: root, generator: generator, logger: logger}
}

// Build deletes and recreates the target's workspace, writes one
// placeholder descriptor per validator, invokes the generator with the
// aggregated validator set, and guarantees that every node directory
// holds (possibly empty) external-address and peer-address files.
func (b *Builder) Build(ctx context.Context, target string, validators, fullnodes int, preserveChainID bool) (*Workspace, error) {
	ws := &Workspace{
		Root: filepath.Join(b.root, target),
		refs: peering.Refs(validators, fullnodes),
	}

	if err := os.RemoveAll(ws.Root); err != nil {
		return nil, fmt.Errorf("failed to clear workspace %s: %w", ws.Root, err)
	}

	descriptors := make([]validatorDescriptor, 0, validators)
	for _, ref := range ws.refs {
		if err := os.MkdirAll(ws.NodeDir(ref), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create node dir for %s: %w", ref, err)
		}
		if ref.Class != peering.ClassValidator {
			continue
		}

		desc := validatorDescriptor{Name: ref.DirName(), VotingPower: 10}
		data, err := yaml.Marshal(desc)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal descriptor for %s: %w", ref, err)
		}
		path := filepath.Join(ws.NodeDir(ref), "validator.yml")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write descriptor for %s: %w", ref, err)
		}
		descriptors = append(descriptors, desc)
	}

	setPath := filepath.Join(ws.Root, "validator-set.yml")
	setData, err := yaml.Marshal(validatorSet{Validators: descriptors})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal validator set: %w", err)
	}
	if err := os.WriteFile(setPath, setData, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write validator set: %w", err)
	}

	b.logger.Printf("generating genesis for %d validators (preserve chain id: %t)", validators, preserveChainID)
	switch err := b.generator.Generate(ctx, setPath, ws.Root, preserveChainID); {
	case err == nil:
	case errors.Is(err, ErrGeneratorUnavailable):
		// The placeholder descriptors stay in place and the deployment
		// carries inert identities. Accepted degraded mode.
		b.logger.Printf("continuing with placeholder identities: %v", err)
	default:
		var genErr *GeneratorError
		if errors.As(err, &genErr) {
			return nil, err
		}
		return nil, &GeneratorError{Err: err}
	}

	for _, ref := range ws.refs {
		for _, name := range []string{externalAddressFile, peersFile} {
			if err := ensureFile(filepath.Join(ws.NodeDir(ref), name)); err != nil {
				return nil, err
			}
		}
	}

	return ws, nil
}

// ensureFile creates an empty file if it does not exist, leaving any
// generator-written content alone.
func ensureFile(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	return nil
}
