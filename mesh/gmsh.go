package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Gmsh 2.2 element type numbers used for lon/lat meshes
const (
	gmshLine     = 1
	gmshTriangle = 2
	gmshQuad     = 3
)

// Physical tags written on line elements
const (
	GmshCellEdgeTag = 1
	GmshPoleEdgeTag = 2
)

// GmshPartitionView names the $NodeData view holding each node's partition
const GmshPartitionView = "partition"

var gmshElementType = map[int]ElementType{
	gmshTriangle: Triangle,
	gmshQuad:     Quad,
}

// ReadGmsh reads a Gmsh 2.2 ASCII file whose node x/y coordinates are
// longitude/latitude. Triangles and quads become cells; line elements are
// skipped because edges are always rebuilt. A file whose cells all carry the
// same partition tag is read as that partition, and node partitions come
// from a "partition" $NodeData view when one is present.
func ReadGmsh(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadGmshFrom(file)
}

func ReadGmshFrom(r io.Reader) (*Mesh, error) {
	var (
		scanner   = bufio.NewScanner(r)
		m         *Mesh
		nodeIDMap = make(map[int]int) // Gmsh node id → local index
		nodePart  map[int]int         // Gmsh node id → partition
	)
	// Increase scanner buffer for large files
	const maxScanTokenSize = 1024 * 1024 * 10 // 10MB
	scanner.Buffer(make([]byte, 64*1024), maxScanTokenSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "$MeshFormat":
			if err := readMeshFormat(scanner); err != nil {
				return nil, err
			}

		case "$Nodes":
			var err error
			if m, err = readNodes(scanner, nodeIDMap); err != nil {
				return nil, err
			}

		case "$Elements":
			if m == nil {
				return nil, fmt.Errorf("$Elements section found before $Nodes")
			}
			if err := readElements(scanner, m, nodeIDMap); err != nil {
				return nil, err
			}

		case "$NodeData":
			name, values, err := readNodeData(scanner)
			if err != nil {
				return nil, err
			}
			if name == GmshPartitionView {
				nodePart = values
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("no $Nodes section found")
	}
	if cells := m.Cells; cells.Size() > 0 {
		part := cells.Partition[0]
		for _, p := range cells.Partition[1:] {
			if p != part {
				part = 0
				break
			}
		}
		m.Part = part
	}
	if nodePart == nil {
		m.AssignNodeOwnership()
		return m, nil
	}
	for id, p := range nodePart {
		n, ok := nodeIDMap[id]
		if !ok {
			return nil, fmt.Errorf("$NodeData references unknown node %d", id)
		}
		m.Nodes.Partition[n] = p
		if p+1 > m.NumPartitions {
			m.NumPartitions = p + 1
		}
	}
	m.FlagGhosts()
	return m, nil
}

// readMeshFormat reads the MeshFormat section
func readMeshFormat(scanner *bufio.Scanner) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}

	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}
	if !strings.HasPrefix(parts[0], "2") {
		return fmt.Errorf("unsupported Gmsh version: %s", parts[0])
	}
	if parts[1] != "0" {
		return fmt.Errorf("binary Gmsh files are not supported")
	}

	return skipTo(scanner, "$EndMeshFormat")
}

// readNodes reads the Nodes section
func readNodes(scanner *bufio.Scanner, nodeIDMap map[int]int) (*Mesh, error) {
	if !scanner.Scan() {
		return nil, fmt.Errorf("unexpected EOF in Nodes")
	}

	numNodes, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return nil, fmt.Errorf("invalid number of nodes: %w", err)
	}

	m := NewMesh(numNodes)
	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected EOF in Nodes at node %d", i)
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return nil, fmt.Errorf("invalid node entry at line %d", i+1)
		}

		nodeID, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("invalid node ID: %w", err)
		}

		var coords [2]float64
		for j := 0; j < 2; j++ {
			if coords[j], err = strconv.ParseFloat(fields[j+1], 64); err != nil {
				return nil, fmt.Errorf("invalid coordinate: %w", err)
			}
		}
		nodeIDMap[nodeID] = i
		m.Nodes.Set(i, coords[LON], coords[LAT], int64(nodeID), 0, 0)
	}

	return m, skipTo(scanner, "$EndNodes")
}

// readElements reads the Elements section
func readElements(scanner *bufio.Scanner, m *Mesh, nodeIDMap map[int]int) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Elements")
	}

	numElems, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid number of elements: %w", err)
	}

	for i := 0; i < numElems; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in Elements at element %d", i)
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			return fmt.Errorf("invalid element entry at line %d", i+1)
		}

		ints := make([]int, len(fields))
		for j, f := range fields {
			if ints[j], err = strconv.Atoi(f); err != nil {
				return fmt.Errorf("invalid integer %q in element entry %d", f, i+1)
			}
		}
		elemID, gmshType, numTags := ints[0], ints[1], ints[2]

		etype, ok := gmshElementType[gmshType]
		if !ok {
			continue // Lines, points and anything that is not a 2D cell
		}
		offset := 3 + numTags
		if len(ints) != offset+etype.NumNodes() {
			return fmt.Errorf("element %d: expected %d nodes, got %d",
				elemID, etype.NumNodes(), len(ints)-offset)
		}

		verts := make([]int, etype.NumNodes())
		for j := range verts {
			idx, ok := nodeIDMap[ints[offset+j]]
			if !ok {
				return fmt.Errorf("element %d references unknown node %d", elemID, ints[offset+j])
			}
			verts[j] = idx
		}
		k, err := m.Cells.Add(etype, 1, verts)
		if err != nil {
			return err
		}
		m.Cells.GlobalIndex[k] = int64(elemID)
		// Tags: physical, elementary, number of partitions, partition ids (1-based)
		if numTags >= 4 && ints[5] > 0 {
			m.Cells.Partition[k] = ints[6] - 1
			if ints[6] > m.NumPartitions {
				m.NumPartitions = ints[6]
			}
		}
	}

	return skipTo(scanner, "$EndElements")
}

// readNodeData reads a single component $NodeData view of integer values,
// returning its name and values keyed by Gmsh node id
func readNodeData(scanner *bufio.Scanner) (name string, values map[int]int, err error) {
	// String tags, real tags, then integer tags: time step, components, count
	var tags [3][]string
	for i := range tags {
		if !scanner.Scan() {
			return "", nil, fmt.Errorf("unexpected EOF in NodeData")
		}
		var ntags int
		if ntags, err = strconv.Atoi(strings.TrimSpace(scanner.Text())); err != nil {
			return "", nil, fmt.Errorf("invalid NodeData tag count: %w", err)
		}
		for j := 0; j < ntags; j++ {
			if !scanner.Scan() {
				return "", nil, fmt.Errorf("unexpected EOF in NodeData tags")
			}
			tags[i] = append(tags[i], strings.TrimSpace(scanner.Text()))
		}
	}
	if len(tags[0]) > 0 {
		name = strings.Trim(tags[0][0], `"`)
	}
	if len(tags[2]) < 3 || tags[2][1] != "1" {
		return "", nil, fmt.Errorf("NodeData %q: only single component views are supported", name)
	}
	var count int
	if count, err = strconv.Atoi(tags[2][2]); err != nil {
		return "", nil, fmt.Errorf("invalid NodeData count: %w", err)
	}
	values = make(map[int]int, count)
	for i := 0; i < count; i++ {
		if !scanner.Scan() {
			return "", nil, fmt.Errorf("unexpected EOF in NodeData at entry %d", i)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			return "", nil, fmt.Errorf("invalid NodeData entry at line %d", i+1)
		}
		var (
			id int
			v  float64
		)
		if id, err = strconv.Atoi(fields[0]); err != nil {
			return "", nil, fmt.Errorf("invalid NodeData node ID: %w", err)
		}
		if v, err = strconv.ParseFloat(fields[1], 64); err != nil {
			return "", nil, fmt.Errorf("invalid NodeData value: %w", err)
		}
		values[id] = int(v)
	}
	return name, values, skipTo(scanner, "$EndNodeData")
}

func skipTo(scanner *bufio.Scanner, end string) error {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == end {
			return nil
		}
	}
	return fmt.Errorf("missing %s", end)
}

// WriteGmsh writes nodes, cells and edges as a Gmsh 2.2 ASCII file. Edges
// are written as lines tagged GmshCellEdgeTag or GmshPoleEdgeTag, and node
// partitions as the GmshPartitionView node data.
func WriteGmsh(m *Mesh, w io.Writer) error {
	var (
		bw     = bufio.NewWriter(w)
		nodes  = m.Nodes
		cells  = m.Cells
		edges  = m.Edges
		lineID int64
	)
	fmt.Fprintf(bw, "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n")

	fmt.Fprintf(bw, "$Nodes\n%d\n", nodes.Size())
	for i := 0; i < nodes.Size(); i++ {
		fmt.Fprintf(bw, "%d %.17g %.17g 0\n", nodes.GlobalIndex[i], nodes.Lon(i), nodes.Lat(i))
	}
	fmt.Fprintf(bw, "$EndNodes\n")

	fmt.Fprintf(bw, "$NodeData\n1\n\"%s\"\n1\n0.0\n3\n0\n1\n%d\n", GmshPartitionView, nodes.Size())
	for i := 0; i < nodes.Size(); i++ {
		fmt.Fprintf(bw, "%d %d\n", nodes.GlobalIndex[i], nodes.Partition[i])
	}
	fmt.Fprintf(bw, "$EndNodeData\n")

	fmt.Fprintf(bw, "$Elements\n%d\n", cells.Size()+edges.Size())
	writeElement := func(id int64, gmshType, phys, part int, verts []int) {
		fmt.Fprintf(bw, "%d %d 4 %d 1 1 %d", id, gmshType, phys, part+1)
		for _, v := range verts {
			fmt.Fprintf(bw, " %d", nodes.GlobalIndex[v])
		}
		fmt.Fprintf(bw, "\n")
	}
	for k := 0; k < cells.Size(); k++ {
		gmshType := gmshTriangle
		if cells.ElementTypes[k] == Quad {
			gmshType = gmshQuad
		}
		writeElement(cells.GlobalIndex[k], gmshType, 0, cells.Partition[k], cells.NodeConnectivity.Row(k))
		if cells.GlobalIndex[k] > lineID {
			lineID = cells.GlobalIndex[k]
		}
	}
	// Line ids follow the largest cell id so cell ids survive a round trip
	for e := 0; e < edges.Size(); e++ {
		tag := GmshCellEdgeTag
		if edges.IsPoleEdge[e] {
			tag = GmshPoleEdgeTag
		}
		lineID++
		writeElement(lineID, gmshLine, tag, edges.Partition[e], edges.NodeConnectivity.Row(e))
	}
	fmt.Fprintf(bw, "$EndElements\n")

	return bw.Flush()
}
