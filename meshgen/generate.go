package meshgen

import (
	"fmt"

	"github.com/matthewrmshin/atlas/mesh"
	"github.com/matthewrmshin/atlas/types"
	"github.com/matthewrmshin/atlas/utils"
)

type Options struct {
	// IncludePoles adds a row at each pole with as many points as the
	// nearest grid row
	IncludePoles bool
}

// Generate meshes the strips between consecutive rows of g. Rows of equal
// size are joined by quads, others by triangles. Node and cell global
// indices are 1-based in generation order.
func Generate(g Grid, opt Options) (m *mesh.Mesh, err error) {
	if err = g.Validate(); err != nil {
		return
	}
	var (
		lats  = g.Lats
		nlons = g.NLons
	)
	if opt.IncludePoles {
		if g.Lats[0] == 90 || g.Lats[len(g.Lats)-1] == -90 {
			return nil, fmt.Errorf("grid %s already contains a pole row", g.Name)
		}
		lats = append(append([]float64{90}, lats...), -90)
		nlons = append(append([]int{nlons[0]}, nlons...), nlons[len(nlons)-1])
	}
	rows := Grid{Name: g.Name, Lats: lats, NLons: nlons}

	m = mesh.NewMesh(rows.NPoints())
	rowStart := make([]int, rows.NLat()+1)
	for j := 0; j < rows.NLat(); j++ {
		rowStart[j+1] = rowStart[j] + nlons[j]
		var flags types.Topology
		if opt.IncludePoles && (j == 0 || j == rows.NLat()-1) {
			flags = types.Pole
		}
		for i := 0; i < nlons[j]; i++ {
			n := rowStart[j] + i
			m.Nodes.Set(n, rows.Lon(j, i), lats[j], int64(n+1), 0, flags)
		}
	}
	for j := 0; j < rows.NLat()-1; j++ {
		if err = zipRows(m.Cells, rowStart[j], nlons[j], rowStart[j+1], nlons[j+1]); err != nil {
			return
		}
	}
	return
}

// zipRows fills the strip between a northern row of na nodes starting at a
// and a southern row of nb nodes starting at b, counter-clockwise in lon/lat.
func zipRows(cells *mesh.Cells, a, na, b, nb int) (err error) {
	A := func(i int) int { return a + i%na }
	B := func(j int) int { return b + j%nb }
	if na == nb {
		quads := make([]int, 0, 4*na)
		for i := 0; i < na; i++ {
			quads = append(quads, B(i), B(i+1), A(i+1), A(i))
		}
		_, err = cells.Add(mesh.Quad, na, quads)
		return
	}
	var (
		tris = make([]int, 0, 3*(na+nb))
		i, j int
	)
	for i < na || j < nb {
		// Advance the row whose next point lies further west
		if j == nb || (i < na && (i+1)*nb < (j+1)*na) {
			tris = append(tris, B(j), A(i+1), A(i))
			i++
		} else {
			tris = append(tris, B(j), B(j+1), A(i))
			j++
		}
	}
	_, err = cells.Add(mesh.Triangle, na+nb, tris)
	return
}

// Partition splits global into nparts contiguous bands of cells. The cell
// and node partitions found are recorded on global. Each part holds its own
// cells and every node they use, numbered in first use order; nodes owned
// by another part are flagged as ghosts.
func Partition(global *mesh.Mesh, nparts int) (parts []*mesh.Mesh, err error) {
	ncells := global.Cells.Size()
	if nparts < 1 || nparts > ncells {
		return nil, fmt.Errorf("cannot split %d cells into %d partitions", ncells, nparts)
	}
	pm := utils.NewPartitionMap(nparts, ncells)
	for k := 0; k < ncells; k++ {
		global.Cells.Partition[k], _, _ = pm.GetBucket(k)
	}
	copy(global.Nodes.Partition, global.NodeOwners())
	global.NumPartitions = nparts

	parts = make([]*mesh.Mesh, nparts)
	for p := 0; p < nparts; p++ {
		if parts[p], err = extractPart(global, pm, p); err != nil {
			return nil, err
		}
	}
	return
}

func extractPart(global *mesh.Mesh, pm *utils.PartitionMap, p int) (m *mesh.Mesh, err error) {
	var (
		kmin, kmax = pm.GetBucketRange(p)
		gcells     = global.Cells
		gnodes     = global.Nodes
		localNode  = make(map[int]int)
		order      []int // local to global node
	)
	for k := kmin; k < kmax; k++ {
		for _, n := range gcells.NodeConnectivity.Row(k) {
			if _, ok := localNode[n]; !ok {
				localNode[n] = len(order)
				order = append(order, n)
			}
		}
	}
	m = mesh.NewMesh(len(order))
	m.Part, m.NumPartitions = p, pm.ParallelDegree
	for i, n := range order {
		flags := gnodes.Flags[n]
		if gnodes.Partition[n] != p {
			flags.Set(types.Ghost)
		} else {
			flags.Unset(types.Ghost)
		}
		m.Nodes.Set(i, gnodes.Lon(n), gnodes.Lat(n), gnodes.GlobalIndex[n], gnodes.Partition[n], flags)
	}
	for k := kmin; k < kmax; k++ {
		var (
			grow  = gcells.NodeConnectivity.Row(k)
			local = make([]int, len(grow))
			c     int
		)
		for j, n := range grow {
			local[j] = localNode[n]
		}
		if c, err = m.Cells.Add(gcells.ElementTypes[k], 1, local); err != nil {
			return
		}
		m.Cells.GlobalIndex[c] = gcells.GlobalIndex[k]
		m.Cells.Partition[c] = p
	}
	return
}
