// Package peering discovers each node's externally-routable address and
// stable identity, and assembles the per-node peer mesh from them.
package peering

import "fmt"

// NodeClass distinguishes consensus-participating validators from
// observing fullnodes.
type NodeClass string

const (
	// ClassValidator participates in consensus.
	ClassValidator NodeClass = "validator"

	// ClassFullnode observes only.
	ClassFullnode NodeClass = "fullnode"
)

// NodeRef identifies a node by class and ordinal index within a target.
type NodeRef struct {
	Class NodeClass
	Index int
}

// String renders the node's component name, e.g. "validator-0".
func (r NodeRef) String() string {
	return fmt.Sprintf("%s-%d", r.Class, r.Index)
}

// DirName returns the node's workspace directory name. Validators use
// the historical "node<i>" layout the genesis generator expects.
func (r NodeRef) DirName() string {
	if r.Class == ClassValidator {
		return fmt.Sprintf("node%d", r.Index)
	}
	return fmt.Sprintf("fullnode%d", r.Index)
}

// ServiceName returns the node's p2p service name within a target.
func (r NodeRef) ServiceName(target string) string {
	return fmt.Sprintf("%s-p2p-%s", target, r)
}

// IdentityRecord is a node's stable identity token paired with its
// externally reachable endpoint. Immutable once written.
type IdentityRecord struct {
	ID      string
	Address string
}

// ConnectionString renders the record as a peer connection string.
func (rec IdentityRecord) ConnectionString() string {
	return rec.ID + "@" + rec.Address
}

// Discovery holds the identity records of one bootstrap pass, keyed by
// node and preserving discovery order so mesh assembly is reproducible
// within the pass.
type Discovery struct {
	order   []NodeRef
	records map[NodeRef]IdentityRecord
}

// NewDiscovery returns an empty Discovery.
func NewDiscovery() *Discovery {
	return &Discovery{records: make(map[NodeRef]IdentityRecord)}
}

// Add records a node's identity. Adding the same node twice replaces the
// record without changing its position.
func (d *Discovery) Add(ref NodeRef, rec IdentityRecord) {
	if _, exists := d.records[ref]; !exists {
		d.order = append(d.order, ref)
	}
	d.records[ref] = rec
}

// Get returns the record for a node.
func (d *Discovery) Get(ref NodeRef) (IdentityRecord, bool) {
	rec, ok := d.records[ref]
	return rec, ok
}

// Refs returns the nodes in discovery order.
func (d *Discovery) Refs() []NodeRef {
	return d.order
}

// Len returns the number of discovered nodes.
func (d *Discovery) Len() int {
	return len(d.order)
}

// Refs builds the canonical node list for a cluster: validators by
// index, then fullnodes by index.
func Refs(validators, fullnodes int) []NodeRef {
	refs := make([]NodeRef, 0, validators+fullnodes)
	for i := 0; i < validators; i++ {
		refs = append(refs, NodeRef{Class: ClassValidator, Index: i})
	}
	for i := 0; i < fullnodes; i++ {
		refs = append(refs, NodeRef{Class: ClassFullnode, Index: i})
	}
	return refs
}
