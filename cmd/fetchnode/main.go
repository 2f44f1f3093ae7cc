// Package main is the entry point for fetchnode, a small utility that
// downloads a prebuilt node binary from a release server and installs
// it locally. It is unrelated to the bootstrap orchestrator.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/netforge/netforge/internal/fetch"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	opts := fetch.Options{}

	cmd := &cobra.Command{
		Use:          "fetchnode",
		Short:        "Download and install a prebuilt node binary",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := fetch.Install(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Printf("installed %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.BaseURL, "url", "https://releases.netforge.dev", "release server base URL")
	cmd.Flags().StringVar(&opts.Name, "name", "chaind", "binary name")
	cmd.Flags().StringVar(&opts.Version, "version", "", "release version (required)")
	cmd.Flags().StringVar(&opts.DestDir, "dest", "/usr/local/bin", "installation directory")
	_ = cmd.MarkFlagRequired("version")

	return cmd
}
