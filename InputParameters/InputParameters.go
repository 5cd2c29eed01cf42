package InputParameters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/matthewrmshin/atlas/actions"
	"github.com/matthewrmshin/atlas/mesh"
	"github.com/matthewrmshin/atlas/meshgen"
	"github.com/matthewrmshin/atlas/types"
)

// Parameters obtained from the YAML input file
type BuildParameters struct {
	Title         string           `yaml:"Title"`
	Grid          string           `yaml:"Grid"`      // Predefined grid name, used when Latitudes is empty
	Latitudes     []float64        `yaml:"Latitudes"` // Custom grid rows, north to south
	NLons         []int            `yaml:"NLons"`
	IncludePoles  bool             `yaml:"IncludePoles"`
	Partitions    int              `yaml:"Partitions"`
	Precision     float64          `yaml:"Precision"`     // Degrees
	PoleTolerance float64          `yaml:"PoleTolerance"` // Degrees
	Flags         map[string][]int `yaml:"Flags"`         // Topology flag name to node global ids
}

func (ip *BuildParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *BuildParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	if len(ip.Latitudes) != 0 {
		fmt.Printf("[%d rows]\t\t= Custom Grid\n", len(ip.Latitudes))
	} else {
		fmt.Printf("[%s]\t\t\t= Grid\n", ip.Grid)
	}
	fmt.Printf("[%v]\t\t\t= Include Poles\n", ip.IncludePoles)
	fmt.Printf("[%d]\t\t\t\t= Partitions\n", ip.Partitions)
	fmt.Printf("%8.2e\t\t= Precision\n", ip.Precision)
	fmt.Printf("%8.2e\t\t= Pole Tolerance\n", ip.PoleTolerance)
	keys := make([]string, len(ip.Flags))
	i := 0
	for k := range ip.Flags {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("Flags[%s] = %v\n", key, ip.Flags[key])
	}
}

// NewGrid returns the custom grid when rows are given, otherwise the named one
func (ip *BuildParameters) NewGrid() (g meshgen.Grid, err error) {
	if len(ip.Latitudes) == 0 {
		if len(ip.Grid) == 0 {
			return g, fmt.Errorf("input parameters name no grid and give no latitudes")
		}
		return meshgen.LookupGrid(ip.Grid)
	}
	g = meshgen.Grid{Name: ip.Title, Lats: ip.Latitudes, NLons: ip.NLons}
	if len(g.Name) == 0 {
		g.Name = "custom"
	}
	return g, g.Validate()
}

// ApplyTo overrides the tolerances of cfg that the parameters set
func (ip *BuildParameters) ApplyTo(cfg actions.Config) actions.Config {
	if ip.Precision > 0 {
		cfg.Precision.Resolution = ip.Precision
	}
	if ip.PoleTolerance > 0 {
		cfg.PoleTolerance = ip.PoleTolerance
	}
	return cfg
}

// SetFlags sets the named topology flags on the nodes with the listed global ids
func (ip *BuildParameters) SetFlags(m *mesh.Mesh) error {
	if len(ip.Flags) == 0 {
		return nil
	}
	byGlobal := make(map[int64]int, m.Nodes.Size())
	for n, gid := range m.Nodes.GlobalIndex {
		byGlobal[gid] = n
	}
	for name, ids := range ip.Flags {
		flag, ok := types.TopologyNameMap[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("unknown topology flag %q", name)
		}
		for _, id := range ids {
			n, ok := byGlobal[int64(id)]
			if !ok {
				return fmt.Errorf("flag %s: no node with global id %d", name, id)
			}
			m.Nodes.Flags[n].Set(flag)
		}
	}
	return nil
}
