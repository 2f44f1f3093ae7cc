package peering

import "strings"

// AssembleMesh computes each node's persistent-peer string: the
// comma-joined connection strings of every other discovered node, in
// discovery order, with the node's own entry excluded. A single-node
// discovery yields an empty peer string; a one-node network has no peers.
func AssembleMesh(d *Discovery) map[NodeRef]string {
	mesh := make(map[NodeRef]string, d.Len())

	for _, self := range d.Refs() {
		peers := make([]string, 0, d.Len()-1)
		for _, other := range d.Refs() {
			if other == self {
				continue
			}
			rec, _ := d.Get(other)
			peers = append(peers, rec.ConnectionString())
		}
		mesh[self] = strings.Join(peers, ",")
	}

	return mesh
}
