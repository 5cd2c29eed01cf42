package actions

import (
	"errors"
	"fmt"

	"github.com/matthewrmshin/atlas/mesh"
	"github.com/matthewrmshin/atlas/uid"
)

// Check audits the edge tables of a built partition and returns every
// violation found, joined.
func Check(m *mesh.Mesh, cfg Config) error {
	cfg = cfg.withDefaults()
	var (
		errs  []error
		nodes = m.Nodes
		cells = m.Cells
		edges = m.Edges
		u     = uid.NewUniqueLonLat(nodes, cfg.Precision)
		ids   = make(map[int64]int, edges.Size())
	)
	fail := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	for e := 0; e < edges.Size(); e++ {
		n := edges.NodeConnectivity.Row(e)
		if len(n) != 2 {
			fail("edge %d has %d nodes", e, len(n))
			continue
		}
		if n[0] == n[1] {
			fail("edge %d joins node %d to itself", e, nodes.GlobalIndex[n[0]])
		}
		if u.Node(n[0]) > u.Node(n[1]) {
			fail("edge %d nodes %v not in unique id order", e, globalIDs(nodes, n))
		}
		id := edges.GlobalIndex[e]
		if edges.IsPoleEdge[e] {
			// The band is not stored, so either pole is accepted
			if north, south := u.PoleEdge(n[0], n[1], true), u.PoleEdge(n[0], n[1], false); id != north && id != south {
				fail("edge %d global id %d, expected %d or %d", e, id, north, south)
			}
		} else if want := u.Edge(n[0], n[1]); id != want {
			fail("edge %d global id %d, expected %d", e, id, want)
		}
		if prev, ok := ids[id]; ok {
			fail("edge %d shares global id %d with edge %d", e, id, prev)
		} else {
			ids[id] = e
		}
		if p := min(nodes.Partition[n[0]], nodes.Partition[n[1]]); edges.Partition[e] != p {
			fail("edge %d partition %d, expected %d", e, edges.Partition[e], p)
		}
		c := edges.CellConnectivity.Row(e)
		switch {
		case edges.IsPoleEdge[e] && (c[0] != mesh.Missing || c[1] != mesh.Missing):
			fail("pole edge %d has cells %v", e, c)
		case !edges.IsPoleEdge[e] && c[0] == mesh.Missing:
			fail("edge %d has no element connected", e)
		}
	}
	if cells.EdgeConnectivity.Rows() != cells.Size() {
		fail("cell to edge table has %d rows for %d cells", cells.EdgeConnectivity.Rows(), cells.Size())
		return errors.Join(errs...)
	}
	for c := 0; c < cells.Size(); c++ {
		for slot, e := range cells.EdgeConnectivity.Row(c) {
			if e == mesh.Missing {
				fail("cell %d edge slot %d not filled", c, slot)
				continue
			}
			ec := edges.CellConnectivity.Row(e)
			if ec[0] != c && ec[1] != c {
				fail("cell %d lists edge %d which does not list it back", c, e)
			}
		}
	}
	return errors.Join(errs...)
}
