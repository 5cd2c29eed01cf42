package actions

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/matthewrmshin/atlas/mesh"
	"github.com/matthewrmshin/atlas/parallel"
	"github.com/matthewrmshin/atlas/types"
	"github.com/matthewrmshin/atlas/uid"
)

const (
	NORTH = iota
	SOUTH
)

// LonLatBounds returns the lon/lat bounding box of all partitions. Every
// partition sharing the reducer must call it, even one holding no nodes.
func LonLatBounds(nodes *mesh.Nodes, r parallel.Reducer) (lo, hi [2]float64, err error) {
	lo = [2]float64{math.Inf(1), math.Inf(1)}
	hi = [2]float64{math.Inf(-1), math.Inf(-1)}
	if nodes.Size() > 0 {
		for _, dim := range []int{mesh.LON, mesh.LAT} {
			col := mat.Col(nil, dim, nodes.LonLat)
			lo[dim], hi[dim] = floats.Min(col), floats.Max(col)
		}
	}
	if err = r.MinAll(lo[:]); err != nil {
		return
	}
	err = r.MaxAll(hi[:])
	return
}

// PoleBands returns, in ascending local index order, the nodes lying within
// tol of the global maximum (NORTH) and minimum (SOUTH) latitude
func PoleBands(nodes *mesh.Nodes, latMin, latMax, tol float64) (bands [2][]int) {
	for n := 0; n < nodes.Size(); n++ {
		lat := nodes.Lat(n)
		switch {
		case math.Abs(lat-latMax) < tol:
			bands[NORTH] = append(bands[NORTH], n)
		case math.Abs(lat-latMin) < tol:
			bands[SOUTH] = append(bands[SOUTH], n)
		}
	}
	return
}

// PolePairs pairs, band by band, pole band nodes lying 180 degrees apart in
// longitude, modulo 360. Periodic and ghost nodes start no pair and periodic
// nodes end none. Pairs already joined in connected are skipped, and each
// emitted pair is added to connected.
func PolePairs(nodes *mesh.Nodes, bands [2][]int, prec uid.Precision,
	connected types.EdgeKeySet) (pairs [2][]int, err error) {
	for _, band := range bands {
		if len(band) == 0 {
			continue
		}
		part := nodes.Partition[band[0]]
		for _, n := range band[1:] {
			if nodes.Partition[n] != part {
				return pairs, fmt.Errorf("%w: node %d [p%d] should belong to part %d",
					ErrSplitPole, nodes.GlobalIndex[n], nodes.Partition[n], part)
			}
		}
	}
	var (
		half = prec.Quantize(180.)
		full = prec.Quantize(360.)
	)
	for b, band := range bands {
		for _, n := range band {
			if nodes.Flags[n].CheckAny(types.Periodic | types.Ghost) {
				continue
			}
			x := prec.Quantize(nodes.Lon(n))
			for _, other := range band {
				if other == n || nodes.Flags[other].Check(types.Periodic) {
					continue
				}
				d := prec.Quantize(nodes.Lon(other)) - x
				if d < 0 {
					d = -d
				}
				if d%full != half {
					continue
				}
				if connected.Has([2]int{n, other}) {
					continue
				}
				connected.Add([2]int{n, other})
				pairs[b] = append(pairs[b], n, other)
			}
		}
	}
	return
}

// BuildPoleEdges closes the mesh across both poles, appending one edge per
// antipodal pair of pole band nodes. Pole edges have no cells and their
// unique id is taken at the pole of their band.
func BuildPoleEdges(m *mesh.Mesh, cfg Config) (npole int, err error) {
	cfg = cfg.withDefaults()
	var (
		nodes  = m.Nodes
		edges  = m.Edges
		lo, hi [2]float64
	)
	if lo, hi, err = LonLatBounds(nodes, cfg.Reducer); err != nil {
		return
	}
	bands := PoleBands(nodes, lo[mesh.LAT], hi[mesh.LAT], cfg.PoleTolerance)

	connected := make(types.EdgeKeySet, edges.Size())
	for e := 0; e < edges.Size(); e++ {
		row := edges.NodeConnectivity.Row(e)
		connected.Add([2]int{row[0], row[1]})
	}
	var pairs [2][]int
	if pairs, err = PolePairs(nodes, bands, cfg.Precision, connected); err != nil {
		return
	}
	u := uid.NewUniqueLonLat(nodes, cfg.Precision)
	for b, bp := range pairs {
		n := len(bp) / 2
		var begin int
		if begin, err = edges.Add(n, bp); err != nil {
			return
		}
		for e := begin; e < begin+n; e++ {
			row := edges.NodeConnectivity.Row(e)
			n1, n2 := row[0], row[1]
			if u.Node(n1) > u.Node(n2) {
				n1, n2 = n2, n1
			}
			edges.NodeConnectivity.SetRow(e, n1, n2)
			edges.GlobalIndex[e] = u.PoleEdge(n1, n2, b == NORTH)
			edges.Partition[e] = min(nodes.Partition[n1], nodes.Partition[n2])
			edges.RemoteIndex[e] = e
			edges.IsPoleEdge[e] = true
		}
		npole += n
	}
	cfg.Logger.Debug("built pole edges", "part", m.Part,
		"north", len(bands[NORTH]), "south", len(bands[SOUTH]), "pole_edges", npole)
	return
}
