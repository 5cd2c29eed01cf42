package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/matthewrmshin/atlas/actions"
	"github.com/matthewrmshin/atlas/mesh"
	"github.com/matthewrmshin/atlas/parallel"
	"github.com/matthewrmshin/atlas/types"
)

func TestProcessInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "params.yaml")
	require.NoError(t, os.WriteFile(input, []byte(`
Title: Test Case
Grid: regular_4x8
Partitions: 3
PoleTolerance: 1.e-4
`), 0644))

	ip, err := processInput(&BuildModel{InputFile: input, Partitions: 1})
	require.NoError(t, err)
	assert.Equal(t, "regular_4x8", ip.Grid)
	assert.Equal(t, 3, ip.Partitions)
	assert.Equal(t, 1.e-4, ip.ApplyTo(actions.DefaultConfig()).PoleTolerance)

	// Flags override the file
	ip, err = processInput(&BuildModel{InputFile: input, GridName: "T95", Partitions: 2, PartitionsSet: true, Poles: true})
	require.NoError(t, err)
	assert.Equal(t, "T95", ip.Grid)
	assert.Equal(t, 2, ip.Partitions)
	assert.True(t, ip.IncludePoles)

	// A single partition asked for explicitly still wins
	ip, err = processInput(&BuildModel{InputFile: input, Partitions: 1, PartitionsSet: true})
	require.NoError(t, err)
	assert.Equal(t, 1, ip.Partitions)

	_, err = processInput(&BuildModel{})
	assert.Error(t, err)
	_, err = processInput(&BuildModel{InputFile: filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestRunBuild(t *testing.T) {
	dir := t.TempDir()
	bm := &BuildModel{GridName: "regular_6x12", Poles: true, Partitions: 3,
		OutputFile: filepath.Join(dir, "edges.msh")}
	ip, err := processInput(bm)
	require.NoError(t, err)
	parts, err := RunBuild(bm, ip, actions.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, parts, 3)

	var (
		npole int
		backs = make([]*mesh.Mesh, len(parts))
	)
	for p, m := range parts {
		npole += m.Edges.NumPoleEdges()
		back, err := mesh.ReadGmsh(partFileName(bm.OutputFile, p, len(parts)))
		require.NoError(t, err)
		assert.Equal(t, p, back.Part)
		assert.Equal(t, m.Cells.Size(), back.Cells.Size())
		assert.Equal(t, m.Cells.GlobalIndex, back.Cells.GlobalIndex)
		assert.Equal(t, m.Nodes.Partition, back.Nodes.Partition)
		for n := range m.Nodes.Flags {
			assert.Equal(t, m.Nodes.Flags[n].Check(types.Ghost), back.Nodes.Flags[n].Check(types.Ghost))
		}
		backs[p] = back
	}
	// Six antipodal pairs of twelve nodes at each pole
	assert.Equal(t, 12, npole)

	// Partition files read back build the same edges
	var (
		group = parallel.NewGroup(len(backs))
		eg    errgroup.Group
	)
	for p := range backs {
		p := p
		eg.Go(func() error {
			cfg := actions.DefaultConfig()
			cfg.Reducer = group.Rank(p)
			return actions.Build(backs[p], cfg)
		})
	}
	require.NoError(t, eg.Wait())
	for p, back := range backs {
		assert.Equal(t, parts[p].Edges.NumPoleEdges(), back.Edges.NumPoleEdges(), "partition %d", p)
		assert.Equal(t, parts[p].Edges.GlobalIndex, back.Edges.GlobalIndex, "partition %d", p)
	}
}

func TestRunBuildFromMeshFile(t *testing.T) {
	var (
		dir      = t.TempDir()
		meshFile = filepath.Join(dir, "grid.msh")
		buf      bytes.Buffer
	)
	require.NoError(t, RunGenerate("regular_4x8", false, &buf))
	require.NoError(t, os.WriteFile(meshFile, buf.Bytes(), 0644))

	bm := &BuildModel{MeshFile: meshFile, Partitions: 1}
	ip, err := processInput(bm)
	require.NoError(t, err)
	parts, err := RunBuild(bm, ip, actions.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, 56+8, parts[0].Edges.Size())
	assert.Equal(t, 8, parts[0].Edges.NumPoleEdges())

	assert.Error(t, RunGenerate("T42", false, &buf))
}

func TestPartFileName(t *testing.T) {
	assert.Equal(t, "out.msh", partFileName("out.msh", 0, 1))
	assert.Equal(t, "out.p2.msh", partFileName("out.msh", 2, 4))
	assert.Equal(t, "dir/out.p0", partFileName("dir/out", 0, 2))
}
