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
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matthewrmshin/atlas/mesh"
	"github.com/matthewrmshin/atlas/meshgen"
)

// GenerateCmd represents the generate command
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a lon/lat grid mesh in Gmsh format",
	Long: `
Meshes the strips between the latitude rows of a grid, quads between rows of
equal size and triangles otherwise, and writes nodes and cells as Gmsh 2.2.

atlas generate -g regular_<nlat>x<nlon> [--poles] -o grid.msh`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		if list, _ := cmd.Flags().GetBool("list"); list {
			for _, name := range meshgen.GridNames() {
				fmt.Println(name)
			}
			return
		}
		gridName, _ := cmd.Flags().GetString("grid")
		poles, _ := cmd.Flags().GetBool("poles")
		output, _ := cmd.Flags().GetString("output")
		if len(output) == 0 {
			return fmt.Errorf("must supply an output file (-o, --output)")
		}
		var file *os.File
		if file, err = os.Create(output); err != nil {
			return
		}
		defer file.Close()
		return RunGenerate(gridName, poles, file)
	},
}

func init() {
	rootCmd.AddCommand(GenerateCmd)
	GenerateCmd.Flags().StringP("grid", "g", "T95", "grid name, see --list")
	GenerateCmd.Flags().Bool("poles", false, "add a row of nodes at each pole")
	GenerateCmd.Flags().StringP("output", "o", "", "Gmsh file to write")
	GenerateCmd.Flags().Bool("list", false, "list the known grids")
}

func RunGenerate(gridName string, poles bool, w io.Writer) (err error) {
	var (
		g meshgen.Grid
		m *mesh.Mesh
	)
	if g, err = meshgen.LookupGrid(gridName); err != nil {
		return
	}
	if m, err = meshgen.Generate(g, meshgen.Options{IncludePoles: poles}); err != nil {
		return
	}
	m.PrintStatistics()
	return mesh.WriteGmsh(m, w)
}
