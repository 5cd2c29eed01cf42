package actions

import (
	"sort"

	"github.com/matthewrmshin/atlas/mesh"
)

// SortedEdges returns local edge indices stably sorted by edge global id.
// Visiting edges in this order, rather than in discovery order, makes the
// derived tables independent of the partitioning.
func SortedEdges(edges *mesh.Edges) (order []int) {
	order = make([]int, edges.Size())
	for e := range order {
		order[e] = e
	}
	sort.SliceStable(order, func(i, j int) bool {
		return edges.GlobalIndex[order[i]] < edges.GlobalIndex[order[j]]
	})
	return
}

// BuildElementToEdgeConnectivity fills each cell's edge slots from the edge
// to cell table, in ascending edge global id order. Every slot of every cell
// must be filled, and every edge other than a pole edge must have a cell.
func BuildElementToEdgeConnectivity(m *mesh.Mesh) error {
	var (
		cells = m.Cells
		edges = m.Edges
		c2e   = cells.EdgeConnectivity
		next  = make([]int, cells.Size())
	)
	c2e.Clear()
	for c := 0; c < cells.Size(); c++ {
		_ = c2e.Add(1, cells.ElementTypes[c].NumEdges(), nil)
	}
	for _, e := range SortedEdges(edges) {
		if !edges.IsPoleEdge[e] && edges.CellConnectivity.At(e, 0) == mesh.Missing {
			terr := newTopologyError("element to edge", "edge has no element connected")
			terr.Edge = e
			terr.Nodes = globalIDs(m.Nodes, edges.NodeConnectivity.Row(e))
			return terr
		}
		for _, c := range edges.CellConnectivity.Row(e) {
			if c == mesh.Missing {
				continue
			}
			if next[c] == c2e.Cols(c) {
				terr := newTopologyError("element to edge", "cell has more edges than slots")
				terr.Cell, terr.Edge = c, e
				terr.Nodes = globalIDs(m.Nodes, cells.NodeConnectivity.Row(c))
				return terr
			}
			c2e.Set(c, next[c], e)
			next[c]++
		}
	}
	for c := 0; c < cells.Size(); c++ {
		if slot := c2e.HasMissing(c); slot >= 0 {
			terr := newTopologyError("element to edge", "cell edge slot not filled")
			terr.Cell, terr.Slot = c, slot
			terr.Nodes = globalIDs(m.Nodes, cells.NodeConnectivity.Row(c))
			return terr
		}
	}
	return nil
}

// BuildNodeToEdgeConnectivity lists each node's edges in ascending edge
// global id order. Row widths are the node degrees.
func BuildNodeToEdgeConnectivity(m *mesh.Mesh) {
	var (
		nodes  = m.Nodes
		edges  = m.Edges
		n2e    = nodes.EdgeConnectivity
		degree = make([]int, nodes.Size())
	)
	for e := 0; e < edges.Size(); e++ {
		for _, n := range edges.NodeConnectivity.Row(e) {
			degree[n]++
		}
	}
	n2e.Clear()
	n2e.AddVariable(degree)

	next := make([]int, nodes.Size())
	for _, e := range SortedEdges(edges) {
		for _, n := range edges.NodeConnectivity.Row(e) {
			n2e.Set(n, next[n], e)
			next[n]++
		}
	}
}
