// Package main is the entry point for the netforge bootstrap CLI.
//
// netforge bootstraps a multi-node blockchain testnet on Kubernetes,
// solving the peer-discovery chicken-and-egg problem with a two-phase
// deploy: first with empty peer lists, then again once every node's
// externally-assigned address and identity are known.
//
// The command takes no arguments; it is driven entirely by NF_*
// environment variables. See config.FromEnvironment for the full list.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/netforge/netforge/cmd/netforge/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
