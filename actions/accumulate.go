package actions

import (
	"fmt"

	"github.com/matthewrmshin/atlas/mesh"
	"github.com/matthewrmshin/atlas/types"
)

// Facets are the undirected edges found on cell boundaries, in discovery
// order, before any global identity is assigned.
type Facets struct {
	Nodes    []int // Two local node indices per facet, as first seen
	Cells    []int // Two local cell indices per facet, second is Missing on a boundary
	NumInner int   // Facets with two cells
}

func (f *Facets) Size() int { return len(f.Nodes) / 2 }

// AccumulateFacets walks every cell's local edges and merges those joining
// the same two nodes. A facet shared by more than two cells, or joining a
// node to itself, is a topology error.
func AccumulateFacets(m *mesh.Mesh) (f *Facets, err error) {
	var (
		cells  = m.Cells
		nnodes = m.Nodes.Size()
		lookup = make(map[types.EdgeKey]int)
	)
	f = &Facets{}
	for c := 0; c < cells.Size(); c++ {
		var (
			et      = cells.ElementTypes[c]
			cnodes  = cells.NodeConnectivity.Row(c)
			pattern [][2]int
		)
		if pattern, err = et.EdgeNodes(); err != nil {
			return nil, fmt.Errorf("cell %d: %w", c, err)
		}
		for _, local := range pattern {
			verts := [2]int{cnodes[local[0]], cnodes[local[1]]}
			if verts[0] < 0 || verts[0] >= nnodes || verts[1] < 0 || verts[1] >= nnodes {
				terr := newTopologyError("accumulate facets", "node index out of range")
				terr.Cell = c
				terr.Nodes = []int64{int64(verts[0]), int64(verts[1])}
				return nil, terr
			}
			key := types.NewEdgeKey(verts)
			if key.IsDegenerate() {
				terr := newTopologyError("accumulate facets", "degenerate facet")
				terr.Cell = c
				terr.Nodes = globalIDs(m.Nodes, cnodes)
				return nil, terr
			}
			facet, found := lookup[key]
			if !found {
				lookup[key] = f.Size()
				f.Nodes = append(f.Nodes, verts[0], verts[1])
				f.Cells = append(f.Cells, c, mesh.Missing)
				continue
			}
			if f.Cells[2*facet+1] != mesh.Missing {
				terr := newTopologyError("accumulate facets", "facet shared by more than two cells")
				terr.Cell = c
				terr.Nodes = globalIDs(m.Nodes, verts[:])
				return nil, terr
			}
			f.Cells[2*facet+1] = c
			f.NumInner++
		}
	}
	return
}
