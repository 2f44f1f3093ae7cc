// Package genesis prepares the local staging workspace for a full
// network rebuild and drives the external genesis generator that
// populates it.
package genesis

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/netforge/netforge/internal/peering"
)

const (
	// externalAddressFile holds a node's externally-routable address.
	externalAddressFile = "external_address.txt"

	// peersFile holds a node's comma-joined persistent peer list.
	peersFile = "persistent_peers.txt"
)

// Workspace is the local staging area for one target's rebuild. It is
// destroyed and recreated at the start of every full rebuild and owned
// exclusively by one orchestrator run.
type Workspace struct {
	// Root is the workspace directory, scoped to one target.
	Root string

	refs []peering.NodeRef
}

// Dir returns the workspace root directory.
func (w *Workspace) Dir() string {
	return w.Root
}

// NodeDir returns a node's directory within the workspace.
func (w *Workspace) NodeDir(ref peering.NodeRef) string {
	return filepath.Join(w.Root, ref.DirName())
}

// Refs returns the nodes this workspace was built for.
func (w *Workspace) Refs() []peering.NodeRef {
	return w.refs
}

// WritePeers writes each node's peer string into its peer-address file.
// Called after mesh assembly, before the public deployment pass.
func (w *Workspace) WritePeers(mesh map[peering.NodeRef]string) error {
	for _, ref := range w.refs {
		peers, ok := mesh[ref]
		if !ok {
			return fmt.Errorf("mesh has no entry for %s", ref)
		}
		path := filepath.Join(w.NodeDir(ref), peersFile)
		if err := os.WriteFile(path, []byte(peers+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write peers for %s: %w", ref, err)
		}
	}
	return nil
}

// WriteExternalAddresses writes each node's discovered endpoint into its
// external-address file.
func (w *Workspace) WriteExternalAddresses(d *peering.Discovery) error {
	for _, ref := range w.refs {
		rec, ok := d.Get(ref)
		if !ok {
			return fmt.Errorf("discovery has no record for %s", ref)
		}
		path := filepath.Join(w.NodeDir(ref), externalAddressFile)
		if err := os.WriteFile(path, []byte(rec.Address+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write external address for %s: %w", ref, err)
		}
	}
	return nil
}

// PeersPath returns a node's peer-address file path.
func (w *Workspace) PeersPath(ref peering.NodeRef) string {
	return filepath.Join(w.NodeDir(ref), peersFile)
}

// Remove deletes the workspace. Called on successful orchestrator exit;
// the workspace is never reused across runs.
func (w *Workspace) Remove() error {
	return os.RemoveAll(w.Root)
}
