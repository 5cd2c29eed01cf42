// Package actions derives edges and the connectivity tables built on them
// from the cell to node connectivity of one mesh partition.
package actions

import (
	"github.com/matthewrmshin/atlas/mesh"
)

// Build rebuilds every edge table of m: cell edges, pole edges, cell to edge
// and node to edge connectivity. Any previous edges are discarded. On error
// the edge tables are left empty.
func Build(m *mesh.Mesh, cfg Config) (err error) {
	cfg = cfg.withDefaults()
	defer func() {
		if err != nil {
			m.ClearEdges()
		}
	}()
	if err = BuildEdges(m, cfg); err != nil {
		return
	}
	var npole int
	if npole, err = BuildPoleEdges(m, cfg); err != nil {
		return
	}
	if err = BuildElementToEdgeConnectivity(m); err != nil {
		return
	}
	BuildNodeToEdgeConnectivity(m)
	cfg.Logger.Info("mesh edges built", "part", m.Part,
		"nodes", m.Nodes.Size(), "cells", m.Cells.Size(), "edges", m.Edges.Size(), "pole_edges", npole)
	return
}
