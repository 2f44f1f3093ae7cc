// Package commands defines the CLI command structure.
//
// The netforge CLI has no subcommands: it reads its entire configuration
// from the environment and runs one bootstrap. Execution is delegated to
// the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/netforge/netforge/cmd/netforge/handlers"
)

// Root returns the root command for the netforge CLI.
func Root() *cobra.Command {
	return &cobra.Command{
		Use:   "netforge",
		Short: "Bootstrap a multi-node testnet on Kubernetes",
		Long: `Bootstrap a multi-node testnet on Kubernetes.

Patch releases (version ending in a non-zero numeral) update the running
network's image in place. Any other version triggers a full rebuild:
teardown, genesis generation, a private deployment pass, external
address and identity discovery, peer mesh assembly, and a public
deployment pass with the populated peer files.

Configuration is read from NF_* environment variables; NF_IMAGE,
NF_VERSION, NF_RELEASE and NF_ENGINE_VERSION are required.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Bootstrap(cmd.Context())
		},
	}
}
