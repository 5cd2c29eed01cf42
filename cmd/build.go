/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/matthewrmshin/atlas/InputParameters"
	"github.com/matthewrmshin/atlas/actions"
	"github.com/matthewrmshin/atlas/mesh"
	"github.com/matthewrmshin/atlas/meshgen"
	"github.com/matthewrmshin/atlas/parallel"
	"github.com/matthewrmshin/atlas/utils"
)

type BuildModel struct {
	MeshFile   string
	GridName   string
	InputFile  string
	OutputFile string
	Poles      bool
	Partitions int
	Profile    bool
	// PartitionsSet is true when Partitions was given on the command line,
	// in the environment or in the config file, and overrides the input file
	PartitionsSet bool
}

// BuildCmd represents the build command
var BuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build edges, pole edges and connectivity for a mesh",
	Long: `
Reads a Gmsh mesh or generates one from a grid, optionally splits it into
partitions that are built concurrently, and reports edge statistics.

atlas build -m mesh.msh [-p 4] [-o edges.msh]
atlas build -g T95 [-I params.yaml]`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		bm := &BuildModel{}
		bm.MeshFile, _ = cmd.Flags().GetString("meshFile")
		bm.GridName, _ = cmd.Flags().GetString("grid")
		bm.InputFile, _ = cmd.Flags().GetString("inputParametersFile")
		bm.OutputFile, _ = cmd.Flags().GetString("output")
		bm.Poles, _ = cmd.Flags().GetBool("poles")
		bm.Profile, _ = cmd.Flags().GetBool("profile")
		bm.Partitions = viper.GetInt("partitions")
		bm.PartitionsSet = cmd.Flags().Changed("partitions") || viper.IsSet("partitions")
		if bm.Profile {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		}
		var ip *InputParameters.BuildParameters
		if ip, err = processInput(bm); err != nil {
			return
		}
		cfg := ip.ApplyTo(actions.DefaultConfig())
		if p := viper.GetFloat64("precision"); p > 0 {
			cfg.Precision.Resolution = p
		}
		if tol := viper.GetFloat64("poleTolerance"); tol > 0 {
			cfg.PoleTolerance = tol
		}
		var parts []*mesh.Mesh
		if parts, err = RunBuild(bm, ip, cfg); err != nil {
			return
		}
		for _, m := range parts {
			m.PrintStatistics()
		}
		fmt.Println(utils.GetMemUsage())
		return
	},
}

func init() {
	rootCmd.AddCommand(BuildCmd)
	BuildCmd.Flags().StringP("meshFile", "m", "", "mesh file to read in Gmsh 2.2 ASCII (.msh) format")
	BuildCmd.Flags().StringP("grid", "g", "", "grid to generate instead of reading a mesh, see generate --list")
	BuildCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file for build parameters like:\n\t- Grid\n\t- Partitions\n\t- Precision")
	BuildCmd.Flags().StringP("output", "o", "", "Gmsh file to write nodes, cells and edges to, one per partition")
	BuildCmd.Flags().Bool("poles", false, "add a row of nodes at each pole of a generated grid")
	BuildCmd.Flags().IntP("partitions", "p", 1, "number of partitions built concurrently")
	BuildCmd.Flags().Float64("precision", 0, "unique id resolution in degrees (default 1e-6)")
	BuildCmd.Flags().Float64("poleTolerance", 0, "pole band tolerance in degrees (default 1e-6)")
	BuildCmd.Flags().Bool("profile", false, "write a CPU profile to the current directory")
	_ = viper.BindPFlag("partitions", BuildCmd.Flags().Lookup("partitions"))
	_ = viper.BindPFlag("precision", BuildCmd.Flags().Lookup("precision"))
	_ = viper.BindPFlag("poleTolerance", BuildCmd.Flags().Lookup("poleTolerance"))
}

func processInput(bm *BuildModel) (ip *InputParameters.BuildParameters, err error) {
	ip = &InputParameters.BuildParameters{}
	if len(bm.InputFile) != 0 {
		var data []byte
		if data, err = ioutil.ReadFile(bm.InputFile); err != nil {
			return
		}
		if err = ip.Parse(data); err != nil {
			return
		}
		ip.Print()
	}
	if len(bm.GridName) != 0 {
		ip.Grid, ip.Latitudes, ip.NLons = bm.GridName, nil, nil
	}
	if bm.Poles {
		ip.IncludePoles = true
	}
	if bm.PartitionsSet || ip.Partitions == 0 {
		ip.Partitions = bm.Partitions
	}
	if ip.Partitions < 1 {
		ip.Partitions = 1
	}
	if len(bm.MeshFile) == 0 && len(ip.Grid) == 0 && len(ip.Latitudes) == 0 {
		exampleFile := `
########################################
Title: "Reduced band"
Latitudes: [60, 0, -60] # Or Grid: T95
NLons: [4, 6, 4]
IncludePoles: true
Partitions: 2
########################################
`
		err = fmt.Errorf("must supply a mesh file (-m, --meshFile), a grid (-g, --grid) or an input parameters file (-I) like:%s",
			exampleFile)
	}
	return
}

// RunBuild builds every partition of the mesh concurrently, one goroutine per
// partition, and writes the results when an output file is named
func RunBuild(bm *BuildModel, ip *InputParameters.BuildParameters, cfg actions.Config) (parts []*mesh.Mesh, err error) {
	var global *mesh.Mesh
	if len(bm.MeshFile) != 0 {
		if global, err = mesh.ReadGmsh(bm.MeshFile); err != nil {
			return
		}
	} else {
		var g meshgen.Grid
		if g, err = ip.NewGrid(); err != nil {
			return
		}
		if global, err = meshgen.Generate(g, meshgen.Options{IncludePoles: ip.IncludePoles}); err != nil {
			return
		}
	}
	if err = ip.SetFlags(global); err != nil {
		return
	}
	if ip.Partitions > 1 {
		if parts, err = meshgen.Partition(global, ip.Partitions); err != nil {
			return
		}
	} else {
		parts = []*mesh.Mesh{global}
	}
	// Partitions meet in a reduction after their facets are accumulated, so
	// malformed cells must be found before any partition starts
	for _, m := range parts {
		if _, err = actions.AccumulateFacets(m); err != nil {
			return nil, fmt.Errorf("partition %d: %w", m.Part, err)
		}
	}
	var (
		group = parallel.NewGroup(len(parts))
		eg    errgroup.Group
	)
	for p := range parts {
		p := p
		eg.Go(func() error {
			pcfg := cfg
			pcfg.Reducer = group.Rank(p)
			pcfg.Logger = slog.Default().With("rank", p)
			if err := actions.Build(parts[p], pcfg); err != nil {
				return fmt.Errorf("partition %d: %w", p, err)
			}
			return actions.Check(parts[p], pcfg)
		})
	}
	if err = eg.Wait(); err != nil {
		return
	}
	if len(bm.OutputFile) != 0 {
		for _, m := range parts {
			if err = writePart(m, partFileName(bm.OutputFile, m.Part, len(parts))); err != nil {
				return
			}
		}
	}
	return
}

// partFileName inserts the partition number before the extension when there
// is more than one partition
func partFileName(name string, part, nparts int) string {
	if nparts == 1 {
		return name
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s.p%d%s", strings.TrimSuffix(name, ext), part, ext)
}

func writePart(m *mesh.Mesh, fileName string) (err error) {
	var file *os.File
	if file, err = os.Create(fileName); err != nil {
		return
	}
	defer file.Close()
	return mesh.WriteGmsh(m, file)
}
