package actions

import (
	"github.com/matthewrmshin/atlas/mesh"
	"github.com/matthewrmshin/atlas/uid"
)

// BuildEdges replaces the edges of m with one edge per accumulated facet.
// Edge nodes and edge cells are put in ascending unique id order, so copies
// of an edge held by different partitions agree.
func BuildEdges(m *mesh.Mesh, cfg Config) (err error) {
	cfg = cfg.withDefaults()
	m.ClearEdges()

	var f *Facets
	if f, err = AccumulateFacets(m); err != nil {
		return
	}
	var (
		nodes   = m.Nodes
		cells   = m.Cells
		edges   = m.Edges
		u       = uid.NewUniqueLonLat(nodes, cfg.Precision)
		cellUID = make(map[int]int64)
		begin   int
	)
	cellKey := func(c int) int64 {
		if k, ok := cellUID[c]; ok {
			return k
		}
		k := u.Nodes(cells.NodeConnectivity.Row(c))
		cellUID[c] = k
		return k
	}
	if begin, err = edges.Add(f.Size(), f.Nodes); err != nil {
		return
	}
	for i := 0; i < f.Size(); i++ {
		var (
			e      = begin + i
			n1, n2 = f.Nodes[2*i], f.Nodes[2*i+1]
			c1, c2 = f.Cells[2*i], f.Cells[2*i+1]
		)
		if u.Node(n1) > u.Node(n2) {
			n1, n2 = n2, n1
		}
		edges.NodeConnectivity.SetRow(e, n1, n2)
		edges.GlobalIndex[e] = u.Edge(n1, n2)
		edges.Partition[e] = min(nodes.Partition[n1], nodes.Partition[n2])
		edges.RemoteIndex[e] = e

		if c2 != mesh.Missing && cellKey(c1) > cellKey(c2) {
			c1, c2 = c2, c1
		}
		edges.CellConnectivity.SetRow(e, c1, c2)
	}
	cfg.Logger.Debug("built edges",
		"part", m.Part, "facets", f.Size(), "inner", f.NumInner, "boundary", f.Size()-f.NumInner)
	return
}
