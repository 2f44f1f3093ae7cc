// Package config builds the orchestrator's immutable configuration from
// the environment.
//
// All recognized environment variables are read exactly once, in
// [FromEnvironment], and decoded into a Config value that is passed
// explicitly into every component constructor. No component reads ambient
// process state directly.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Pre-flight configuration errors. Both are raised before any workspace
// or cluster mutation.
var (
	// ErrUnsupportedTarget means the release name matched none of the
	// recognized target-name patterns.
	ErrUnsupportedTarget = errors.New("unsupported release target")

	// ErrMissingValuesFile means the target matched a pattern but its
	// values overlay file does not exist.
	ErrMissingValuesFile = errors.New("values overlay file not found")
)

// Timeouts groups the bounds on the orchestrator's polling loops.
type Timeouts struct {
	// PodReady bounds every pod-readiness wait.
	PodReady time.Duration `env:"NF_READY_TIMEOUT"`

	// AddressWait bounds the external-address provisioning poll.
	// Zero means no bound; the caller's context is the only limit.
	AddressWait time.Duration `env:"NF_ADDRESS_TIMEOUT"`

	// AddressPoll is the sleep between address provisioning probes.
	AddressPoll time.Duration `env:"NF_ADDRESS_POLL"`

	// Rollout bounds the image-bump convergence wait on the patch path.
	Rollout time.Duration `env:"NF_ROLLOUT_TIMEOUT"`
}

// Config is the orchestrator's complete runtime configuration.
type Config struct {
	// ImageRepo is the node container image repository.
	ImageRepo string `env:"NF_IMAGE"`

	// Version is the image version token under deployment.
	Version string `env:"NF_VERSION"`

	// Release is the deployment target name. Every cluster operation is
	// scoped by it.
	Release string `env:"NF_RELEASE"`

	// Validators and Fullnodes are the node counts per class.
	Validators int `env:"NF_VALIDATORS"`
	Fullnodes  int `env:"NF_FULLNODES"`

	// FSUserID and FSGroupID are the filesystem ownership pair applied
	// to node volumes.
	FSUserID  int `env:"NF_FS_UID"`
	FSGroupID int `env:"NF_FS_GID"`

	// EngineVersion is the consensus engine (sidecar) version.
	EngineVersion string `env:"NF_ENGINE_VERSION"`

	// Namespace is the platform namespace holding the target's resources.
	Namespace string `env:"NF_NAMESPACE"`

	// ChartDir is the local chart applied by the deployment controller.
	ChartDir string `env:"NF_CHART"`

	// ValuesDir holds the per-target values overlay files.
	ValuesDir string `env:"NF_VALUES_DIR"`

	// WorkspaceRoot is the parent directory for genesis workspaces.
	WorkspaceRoot string `env:"NF_WORKSPACE"`

	// Kubeconfig is the path to the platform credentials file. Empty
	// means in-cluster configuration.
	Kubeconfig string `env:"NF_KUBECONFIG"`

	// GeneratorBinary is the external genesis generator executable.
	GeneratorBinary string `env:"NF_GENERATOR"`

	Timeouts Timeouts `env:",squash"`
}

// recognizedKeys lists every environment variable the orchestrator reads.
var recognizedKeys = []string{
	"NF_IMAGE", "NF_VERSION", "NF_RELEASE",
	"NF_VALIDATORS", "NF_FULLNODES",
	"NF_FS_UID", "NF_FS_GID",
	"NF_ENGINE_VERSION", "NF_NAMESPACE",
	"NF_CHART", "NF_VALUES_DIR", "NF_WORKSPACE",
	"NF_KUBECONFIG", "NF_GENERATOR",
	"NF_READY_TIMEOUT", "NF_ADDRESS_TIMEOUT", "NF_ADDRESS_POLL", "NF_ROLLOUT_TIMEOUT",
}

// FromEnvironment reads the recognized environment variables once and
// returns a validated Config.
func FromEnvironment() (*Config, error) {
	raw := make(map[string]string, len(recognizedKeys))
	for _, key := range recognizedKeys {
		if v, ok := os.LookupEnv(key); ok {
			raw[key] = v
		}
	}
	return fromMap(raw)
}

// fromMap decodes and validates a raw key/value set. Split out so tests
// can build configurations without mutating the process environment.
func fromMap(raw map[string]string) (*Config, error) {
	cfg := defaults()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "env",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaults returns a Config with every optional field populated.
func defaults() *Config {
	return &Config{
		Validators:      2,
		Fullnodes:       2,
		FSUserID:        1000,
		FSGroupID:       1000,
		Namespace:       "default",
		ChartDir:        filepath.Join("deployments", "chart"),
		ValuesDir:       filepath.Join("deployments", "values"),
		WorkspaceRoot:   filepath.Join(os.TempDir(), "netforge"),
		GeneratorBinary: "chaind",
		Timeouts: Timeouts{
			PodReady:    10 * time.Minute,
			AddressWait: 0,
			AddressPoll: 5 * time.Second,
			Rollout:     10 * time.Minute,
		},
	}
}

// Validate checks required fields and resolves the target's values
// overlay, so unsupported targets and missing overlay files fail before
// anything is mutated.
func (c *Config) Validate() error {
	if c.ImageRepo == "" {
		return errors.New("NF_IMAGE is required")
	}
	if c.Version == "" {
		return errors.New("NF_VERSION is required")
	}
	if c.Release == "" {
		return errors.New("NF_RELEASE is required")
	}
	if c.EngineVersion == "" {
		return errors.New("NF_ENGINE_VERSION is required")
	}
	if c.Validators < 1 {
		return fmt.Errorf("NF_VALIDATORS must be at least 1, got %d", c.Validators)
	}
	if c.Fullnodes < 0 {
		return fmt.Errorf("NF_FULLNODES must not be negative, got %d", c.Fullnodes)
	}
	if c.Timeouts.AddressPoll <= 0 {
		return errors.New("NF_ADDRESS_POLL must be positive")
	}

	overlay, err := ValuesOverlay(c.Release)
	if err != nil {
		return err
	}
	path := filepath.Join(c.ValuesDir, overlay)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrMissingValuesFile, path)
	}
	return nil
}

// ValuesOverlayPath returns the absolute overlay file for the configured
// release. Validate has already established that it exists.
func (c *Config) ValuesOverlayPath() string {
	overlay, _ := ValuesOverlay(c.Release)
	return filepath.Join(c.ValuesDir, overlay)
}

// Image returns the full image reference for the configured version.
func (c *Config) Image() string {
	return c.ImageRepo + ":" + c.Version
}

// PreserveChainID reports whether this target must retain a stable chain
// identity across rebuilds. Only the long-lived "testnet" target does;
// every other target mints a fresh identity on each rebuild.
func (c *Config) PreserveChainID() bool {
	return c.Release == "testnet"
}
