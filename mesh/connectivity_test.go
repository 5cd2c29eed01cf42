package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewrmshin/atlas/types"
	"github.com/matthewrmshin/atlas/utils"
)

func TestConnectivity(t *testing.T) {
	c := NewConnectivity()
	require.NoError(t, c.Add(2, 3, []int{0, 1, 2, 2, 3, 0}))
	require.NoError(t, c.Add(1, 4, nil))
	c.AddVariable([]int{0, 2})
	assert.Equal(t, 5, c.Rows())
	assert.Equal(t, 4, c.MaxCols())
	assert.Equal(t, []int{3, 3, 4, 0, 2}, []int{c.Cols(0), c.Cols(1), c.Cols(2), c.Cols(3), c.Cols(4)})
	assert.Equal(t, 3, c.At(1, 1))
	assert.Equal(t, -1, c.HasMissing(0))
	assert.Equal(t, 0, c.HasMissing(2))

	c.SetRow(2, 4, 5, Missing, 7)
	assert.Equal(t, 2, c.HasMissing(2))
	c.Set(2, 2, 6)
	assert.Equal(t, []int{4, 5, 6, 7}, c.Row(2))
	assert.Equal(t, [][]int{{0, 1, 2}, {2, 3, 0}, {4, 5, 6, 7}, {}, {Missing, Missing}}, c.Table())

	// Row is a view into the table
	c.Row(0)[0] = 9
	assert.Equal(t, 9, c.At(0, 0))

	assert.Panics(t, func() { c.At(0, 3) })
	assert.Panics(t, func() { c.SetRow(0, 1, 2) })
	assert.Error(t, c.Add(2, 2, []int{1}))

	c.Clear()
	assert.Equal(t, 0, c.Rows())
	assert.Equal(t, 0, c.MaxCols())
}

func TestConnectivityIncidence(t *testing.T) {
	c := NewConnectivity()
	require.NoError(t, c.Add(2, 2, []int{0, 2, 1, Missing}))
	inc, err := c.Incidence(3)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, utils.RowCounts(inc))
	assert.Equal(t, 1., inc.At(0, 2))
	assert.Equal(t, 0., inc.At(1, 0))

	_, err = c.Incidence(2)
	assert.Error(t, err)
}

func TestElementType(t *testing.T) {
	assert.Equal(t, 3, Triangle.NumEdges())
	assert.Equal(t, 4, Quad.NumEdges())
	assert.Equal(t, 4, Quad.NumNodes())
	en, err := Quad.EdgeNodes()
	require.NoError(t, err)
	assert.Equal(t, [2]int{3, 0}, en[3])
	_, err = Line.EdgeNodes()
	assert.ErrorIs(t, err, ErrUnknownElementType)
	assert.Equal(t, "Triangle", Triangle.String())
}

func TestMeshEntities(t *testing.T) {
	m := NewMesh(4)
	for i, ll := range [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
		m.Nodes.Set(i, ll[0], ll[1], int64(10+i), 0, 0)
	}
	assert.Equal(t, 1., m.Nodes.Lon(2))
	assert.Equal(t, int64(13), m.Nodes.GlobalIndex[3])

	k, err := m.Cells.Add(Triangle, 2, []int{0, 1, 2, 0, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0, k)
	_, err = m.Cells.Add(Line, 1, []int{0, 1})
	assert.Error(t, err)
	assert.Equal(t, 2, m.Cells.Size())
	assert.Equal(t, []int64{1, 2}, m.Cells.GlobalIndex)
	assert.Equal(t, map[ElementType]int{Triangle: 2}, m.Cells.CountByType())

	e, err := m.Edges.Add(2, []int{0, 1, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, 0, e)
	e, err = m.Edges.Add(1, []int{0, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, e)
	assert.Equal(t, []int{0, 1, 2}, m.Edges.RemoteIndex)
	assert.Equal(t, []int{Missing, Missing}, m.Edges.CellConnectivity.Row(2))
	m.Edges.IsPoleEdge[1] = true
	assert.Equal(t, 1, m.Edges.NumPoleEdges())
	m.PrintStatistics()

	m.ClearEdges()
	assert.Equal(t, 0, m.Edges.Size())
	assert.Len(t, m.Edges.IsPoleEdge, 0)
}

func TestAssignNodeOwnership(t *testing.T) {
	m := NewMesh(5)
	_, err := m.Cells.Add(Triangle, 2, []int{0, 1, 2, 1, 3, 2})
	require.NoError(t, err)
	m.Cells.Partition[0], m.Cells.Partition[1] = 1, 0
	m.Nodes.Partition[4] = 2
	m.AssignNodeOwnership()
	assert.Equal(t, []int{1, 1, 1, 0, 2}, m.Nodes.Partition)
	assert.True(t, m.Nodes.Flags[0].Check(types.Ghost))
	assert.False(t, m.Nodes.Flags[3].Check(types.Ghost))
	assert.True(t, m.Nodes.Flags[4].Check(types.Ghost))
}
