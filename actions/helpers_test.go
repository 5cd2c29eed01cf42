package actions

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matthewrmshin/atlas/mesh"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return cfg
}

// newTestMesh builds a single partition mesh; cells with 3 nodes are
// triangles, 4 nodes quads
func newTestMesh(t *testing.T, lonlat [][2]float64, cells ...[]int) *mesh.Mesh {
	m := mesh.NewMesh(len(lonlat))
	for i, ll := range lonlat {
		m.Nodes.Set(i, ll[0], ll[1], int64(i+1), 0, 0)
	}
	for _, c := range cells {
		et := mesh.Quad
		if len(c) == 3 {
			et = mesh.Triangle
		}
		_, err := m.Cells.Add(et, 1, c)
		require.NoError(t, err)
	}
	return m
}

// quadPatch is a 2x2 block of quads around the node at (1,1)
func quadPatch(t *testing.T) *mesh.Mesh {
	var lonlat [][2]float64
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			lonlat = append(lonlat, [2]float64{float64(i), float64(j)})
		}
	}
	idx := func(i, j int) int { return j*3 + i }
	var cells [][]int
	for j := 0; j < 2; j++ {
		for i := 0; i < 2; i++ {
			cells = append(cells, []int{idx(i, j), idx(i+1, j), idx(i+1, j+1), idx(i, j+1)})
		}
	}
	return newTestMesh(t, lonlat, cells...)
}

// triangleFan is four triangles sharing the center node 0
func triangleFan(t *testing.T) *mesh.Mesh {
	return newTestMesh(t,
		[][2]float64{{1, 1}, {0, 0}, {2, 0}, {2, 2}, {0, 2}},
		[]int{0, 1, 2}, []int{0, 2, 3}, []int{0, 3, 4}, []int{0, 4, 1},
	)
}

// northPair has two nodes at the north pole 180 degrees apart that share
// no cell edge
func northPair(t *testing.T) *mesh.Mesh {
	return newTestMesh(t,
		[][2]float64{{10, 90}, {190, 90}, {100, 80}, {280, 80}},
		[]int{0, 2, 3}, []int{1, 3, 2},
	)
}

// edgeView describes a built partition by global ids only
type edgeView struct {
	edgeNodes map[int64][2]int64
	edgeCells map[int64][2]int64
	cellEdges map[int64][]int64
	nodeEdges map[int64][]int64
}

func viewOf(m *mesh.Mesh) (v edgeView) {
	var (
		nodes = m.Nodes
		cells = m.Cells
		edges = m.Edges
	)
	v = edgeView{
		edgeNodes: make(map[int64][2]int64),
		edgeCells: make(map[int64][2]int64),
		cellEdges: make(map[int64][]int64),
		nodeEdges: make(map[int64][]int64),
	}
	cellID := func(c int) int64 {
		if c == mesh.Missing {
			return mesh.Missing
		}
		return cells.GlobalIndex[c]
	}
	for e := 0; e < edges.Size(); e++ {
		n, c := edges.NodeConnectivity.Row(e), edges.CellConnectivity.Row(e)
		v.edgeNodes[edges.GlobalIndex[e]] = [2]int64{nodes.GlobalIndex[n[0]], nodes.GlobalIndex[n[1]]}
		v.edgeCells[edges.GlobalIndex[e]] = [2]int64{cellID(c[0]), cellID(c[1])}
	}
	for c := 0; c < cells.Size(); c++ {
		for _, e := range cells.EdgeConnectivity.Row(c) {
			v.cellEdges[cells.GlobalIndex[c]] = append(v.cellEdges[cells.GlobalIndex[c]], edges.GlobalIndex[e])
		}
	}
	for n := 0; n < nodes.Size(); n++ {
		for _, e := range nodes.EdgeConnectivity.Row(n) {
			v.nodeEdges[nodes.GlobalIndex[n]] = append(v.nodeEdges[nodes.GlobalIndex[n]], edges.GlobalIndex[e])
		}
	}
	return
}
