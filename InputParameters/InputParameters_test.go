package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewrmshin/atlas/actions"
	"github.com/matthewrmshin/atlas/meshgen"
	"github.com/matthewrmshin/atlas/types"
)

func TestParse(t *testing.T) {
	fileInput := []byte(`
Title: Small band
Latitudes: [60, 0, -60]
NLons: [4, 6, 4]
IncludePoles: true
Partitions: 2
Precision: 1.e-5
Flags:
  Periodic: [1, 2]
  ghost: [3]
`)
	var ip BuildParameters
	require.NoError(t, ip.Parse(fileInput))
	assert.Equal(t, "Small band", ip.Title)
	assert.Equal(t, []float64{60, 0, -60}, ip.Latitudes)
	assert.Equal(t, 2, ip.Partitions)
	assert.Equal(t, []int{1, 2}, ip.Flags["Periodic"])
	ip.Print()

	g, err := ip.NewGrid()
	require.NoError(t, err)
	assert.Equal(t, "Small band", g.Name)
	assert.Equal(t, []int{4, 6, 4}, g.NLons)

	cfg := ip.ApplyTo(actions.DefaultConfig())
	assert.Equal(t, 1.e-5, cfg.Precision.Resolution)
	assert.Equal(t, actions.DefaultConfig().PoleTolerance, cfg.PoleTolerance)

	m, err := meshgen.Generate(g, meshgen.Options{IncludePoles: ip.IncludePoles})
	require.NoError(t, err)
	require.NoError(t, ip.SetFlags(m))
	assert.True(t, m.Nodes.Flags[0].Check(types.Periodic|types.Pole))
	assert.True(t, m.Nodes.Flags[1].Check(types.Periodic))
	assert.True(t, m.Nodes.Flags[2].Check(types.Ghost))
	assert.Equal(t, types.TopologyNone, m.Nodes.Flags[5])
}

func TestNamedGrid(t *testing.T) {
	var ip BuildParameters
	require.NoError(t, ip.Parse([]byte("Grid: regular_4x8\n")))
	g, err := ip.NewGrid()
	require.NoError(t, err)
	assert.Equal(t, 4, g.NLat())

	ip = BuildParameters{}
	_, err = ip.NewGrid()
	assert.Error(t, err)

	ip = BuildParameters{Latitudes: []float64{0, 10}, NLons: []int{4, 4}}
	_, err = ip.NewGrid()
	assert.Error(t, err)
}

func TestSetFlagsErrors(t *testing.T) {
	m, err := meshgen.Generate(meshgen.NewRegularGrid(2, 4), meshgen.Options{})
	require.NoError(t, err)
	ip := BuildParameters{Flags: map[string][]int{"sticky": {1}}}
	assert.Error(t, ip.SetFlags(m))
	ip = BuildParameters{Flags: map[string][]int{"ghost": {100}}}
	assert.Error(t, ip.SetFlags(m))
}
