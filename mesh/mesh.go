package mesh

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/matthewrmshin/atlas/types"
)

// Column indices into Nodes.LonLat
const (
	LON = 0
	LAT = 1
)

// Nodes holds the per-node fields of one partition. Nodes are created by
// mesh generation or file readers and are never removed by the edge builders.
type Nodes struct {
	LonLat      *mat.Dense       // [nnodes][2] longitude, latitude in degrees
	GlobalIndex []int64          // Unique across all partitions
	Partition   []int            // Owning partition
	Flags       []types.Topology // Periodic, ghost, ...

	EdgeConnectivity *Connectivity // Node to edge, variable width
}

func NewNodes(n int) *Nodes {
	nodes := &Nodes{
		LonLat:           &mat.Dense{},
		GlobalIndex:      make([]int64, n),
		Partition:        make([]int, n),
		Flags:            make([]types.Topology, n),
		EdgeConnectivity: NewConnectivity(),
	}
	if n > 0 {
		nodes.LonLat = mat.NewDense(n, 2, nil)
	}
	for i := range nodes.GlobalIndex {
		nodes.GlobalIndex[i] = int64(i + 1)
	}
	return nodes
}

func (n *Nodes) Size() int { return len(n.GlobalIndex) }

func (n *Nodes) Lon(i int) float64 { return n.LonLat.At(i, LON) }

func (n *Nodes) Lat(i int) float64 { return n.LonLat.At(i, LAT) }

func (n *Nodes) Set(i int, lon, lat float64, glb int64, part int, flags types.Topology) {
	n.LonLat.Set(i, LON, lon)
	n.LonLat.Set(i, LAT, lat)
	n.GlobalIndex[i] = glb
	n.Partition[i] = part
	n.Flags[i] = flags
}

// Cells holds the 2D elements of one partition. All element types share one
// mesh-wide local numbering in insertion order.
type Cells struct {
	ElementTypes []ElementType // Element type for each cell
	GlobalIndex  []int64
	Partition    []int

	NodeConnectivity *Connectivity // Cell to node, width = ElementType.NumNodes()
	EdgeConnectivity *Connectivity // Cell to edge, width = ElementType.NumEdges()
}

func NewCells() *Cells {
	return &Cells{
		NodeConnectivity: NewConnectivity(),
		EdgeConnectivity: NewConnectivity(),
	}
}

func (c *Cells) Size() int { return len(c.ElementTypes) }

// Add appends n cells of type et. nodes holds n*et.NumNodes() local node
// indices. New cells get sequential global indices and partition 0 until set.
func (c *Cells) Add(et ElementType, n int, nodes []int) (begin int, err error) {
	if _, err = et.EdgeNodes(); err != nil {
		return
	}
	begin = c.Size()
	if err = c.NodeConnectivity.Add(n, et.NumNodes(), nodes); err != nil {
		return
	}
	for i := 0; i < n; i++ {
		c.ElementTypes = append(c.ElementTypes, et)
		c.GlobalIndex = append(c.GlobalIndex, int64(begin+i+1))
		c.Partition = append(c.Partition, 0)
	}
	return
}

// CountByType returns the number of cells of each element type present
func (c *Cells) CountByType() (counts map[ElementType]int) {
	counts = make(map[ElementType]int)
	for _, et := range c.ElementTypes {
		counts[et]++
	}
	return
}

// Edges holds the 2-node facets of one partition, including pole edges
type Edges struct {
	NodeConnectivity *Connectivity // Edge to node, width 2
	CellConnectivity *Connectivity // Edge to cell, width 2, Missing-filled
	GlobalIndex      []int64
	Partition        []int
	RemoteIndex      []int
	IsPoleEdge       []bool
}

func NewEdges() *Edges {
	return &Edges{
		NodeConnectivity: NewConnectivity(),
		CellConnectivity: NewConnectivity(),
	}
}

func (e *Edges) Size() int { return e.NodeConnectivity.Rows() }

// Add appends n edges with the given node pairs (2 per edge). The new edges
// have no cells, remote index pointing at themselves, and are not pole edges.
func (e *Edges) Add(n int, nodes []int) (begin int, err error) {
	begin = e.Size()
	if err = e.NodeConnectivity.Add(n, 2, nodes); err != nil {
		return
	}
	_ = e.CellConnectivity.Add(n, 2, nil)
	end := begin + n
	e.GlobalIndex = types.GrowSlice(e.GlobalIndex, end, 0)
	e.Partition = types.GrowSlice(e.Partition, end, 0)
	e.RemoteIndex = types.GrowSlice(e.RemoteIndex, end, Missing)
	e.IsPoleEdge = types.GrowSlice(e.IsPoleEdge, end, false)
	for i := begin; i < end; i++ {
		e.RemoteIndex[i] = i
	}
	return
}

func (e *Edges) Clear() {
	e.NodeConnectivity.Clear()
	e.CellConnectivity.Clear()
	e.GlobalIndex = e.GlobalIndex[:0]
	e.Partition = e.Partition[:0]
	e.RemoteIndex = e.RemoteIndex[:0]
	e.IsPoleEdge = e.IsPoleEdge[:0]
}

// NumPoleEdges counts the edges flagged as pole edges
func (e *Edges) NumPoleEdges() (n int) {
	for _, p := range e.IsPoleEdge {
		if p {
			n++
		}
	}
	return
}

// Mesh represents one partition of a distributed unstructured 2D mesh
type Mesh struct {
	Nodes *Nodes
	Cells *Cells
	Edges *Edges

	Part          int // Partition held by this mesh
	NumPartitions int
}

func NewMesh(nnodes int) *Mesh {
	return &Mesh{
		Nodes:         NewNodes(nnodes),
		Cells:         NewCells(),
		Edges:         NewEdges(),
		NumPartitions: 1,
	}
}

// ClearEdges drops every edge and every table derived from edges
func (m *Mesh) ClearEdges() {
	m.Edges.Clear()
	m.Cells.EdgeConnectivity.Clear()
	m.Nodes.EdgeConnectivity.Clear()
}

// NodeOwners returns, for each node, the partition of the lowest-indexed
// cell using it. Nodes referenced by no cell keep their current partition.
func (m *Mesh) NodeOwners() (owners []int) {
	var (
		nodes = m.Nodes
		cells = m.Cells
		seen  = make([]bool, nodes.Size())
	)
	owners = append([]int(nil), nodes.Partition...)
	for k := 0; k < cells.Size(); k++ {
		for _, n := range cells.NodeConnectivity.Row(k) {
			if seen[n] {
				continue
			}
			seen[n] = true
			owners[n] = cells.Partition[k]
		}
	}
	return
}

// AssignNodeOwnership sets each node's partition from NodeOwners and flags
// nodes owned by another partition as ghosts
func (m *Mesh) AssignNodeOwnership() {
	copy(m.Nodes.Partition, m.NodeOwners())
	m.FlagGhosts()
}

// FlagGhosts sets the Ghost flag on nodes owned by a partition other than
// m.Part and clears it on the rest
func (m *Mesh) FlagGhosts() {
	nodes := m.Nodes
	for n := range nodes.Partition {
		if nodes.Partition[n] != m.Part {
			nodes.Flags[n].Set(types.Ghost)
		} else {
			nodes.Flags[n].Unset(types.Ghost)
		}
	}
}

// PrintStatistics prints mesh statistics
func (m *Mesh) PrintStatistics() {
	fmt.Printf("Mesh Statistics [part %d of %d]:\n", m.Part, m.NumPartitions)
	fmt.Printf("  Nodes: %d\n", m.Nodes.Size())
	fmt.Printf("  Cells: %d\n", m.Cells.Size())
	fmt.Printf("  Edges: %d\n", m.Edges.Size())
	fmt.Printf("  Pole edges: %d\n", m.Edges.NumPoleEdges())

	typeCounts := m.Cells.CountByType()
	keys := make([]int, 0, len(typeCounts))
	for t := range typeCounts {
		keys = append(keys, int(t))
	}
	sort.Ints(keys)
	fmt.Printf("  Element types:\n")
	for _, t := range keys {
		fmt.Printf("    %s: %d\n", ElementType(t), typeCounts[ElementType(t)])
	}

	boundaryEdges := 0
	for e := 0; e < m.Edges.Size(); e++ {
		if !m.Edges.IsPoleEdge[e] && m.Edges.CellConnectivity.At(e, 1) == Missing {
			boundaryEdges++
		}
	}
	fmt.Printf("  Boundary edges: %d\n", boundaryEdges)
}
