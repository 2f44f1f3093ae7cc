package peering

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discovery(n int) *Discovery {
	d := NewDiscovery()
	for i, ref := range Refs(n/2+n%2, n/2)[:n] {
		d.Add(ref, IdentityRecord{
			ID:      strings.Repeat(string(rune('a'+i)), 4),
			Address: "203.0.113.1:26656",
		})
	}
	return d
}

func TestAssembleMesh_ExcludesSelf(t *testing.T) {
	t.Parallel()

	d := NewDiscovery()
	d.Add(NodeRef{Class: ClassValidator, Index: 0}, IdentityRecord{ID: "aaaa", Address: "203.0.113.1:26656"})
	d.Add(NodeRef{Class: ClassValidator, Index: 1}, IdentityRecord{ID: "bbbb", Address: "203.0.113.2:26656"})
	d.Add(NodeRef{Class: ClassFullnode, Index: 0}, IdentityRecord{ID: "cccc", Address: "203.0.113.3:26656"})
	d.Add(NodeRef{Class: ClassFullnode, Index: 1}, IdentityRecord{ID: "dddd", Address: "203.0.113.4:26656"})

	mesh := AssembleMesh(d)
	require.Len(t, mesh, 4)

	// Validator 0's peers are every other node in discovery order.
	assert.Equal(t,
		"bbbb@203.0.113.2:26656,cccc@203.0.113.3:26656,dddd@203.0.113.4:26656",
		mesh[NodeRef{Class: ClassValidator, Index: 0}],
	)

	for ref, peers := range mesh {
		rec, ok := d.Get(ref)
		require.True(t, ok)
		assert.NotContains(t, peers, rec.ID, "node %s lists itself", ref)
		assert.False(t, strings.HasSuffix(peers, ","), "trailing comma for %s", ref)
	}
}

func TestAssembleMesh_SingleNode(t *testing.T) {
	t.Parallel()

	d := NewDiscovery()
	d.Add(NodeRef{Class: ClassValidator, Index: 0}, IdentityRecord{ID: "aaaa", Address: "203.0.113.1:26656"})

	mesh := AssembleMesh(d)
	require.Len(t, mesh, 1)
	assert.Empty(t, mesh[NodeRef{Class: ClassValidator, Index: 0}])
}

func TestAssembleMesh_Reproducible(t *testing.T) {
	t.Parallel()

	d := discovery(5)
	first := AssembleMesh(d)
	second := AssembleMesh(d)
	assert.Equal(t, first, second)
}

func TestNodeRefNaming(t *testing.T) {
	t.Parallel()

	val := NodeRef{Class: ClassValidator, Index: 2}
	full := NodeRef{Class: ClassFullnode, Index: 0}

	assert.Equal(t, "validator-2", val.String())
	assert.Equal(t, "node2", val.DirName())
	assert.Equal(t, "fullnode0", full.DirName())
	assert.Equal(t, "devnet-p2p-validator-2", val.ServiceName("devnet"))
}

func TestRefs_Order(t *testing.T) {
	t.Parallel()

	refs := Refs(2, 1)
	require.Len(t, refs, 3)
	assert.Equal(t, NodeRef{Class: ClassValidator, Index: 0}, refs[0])
	assert.Equal(t, NodeRef{Class: ClassValidator, Index: 1}, refs[1])
	assert.Equal(t, NodeRef{Class: ClassFullnode, Index: 0}, refs[2])
}
