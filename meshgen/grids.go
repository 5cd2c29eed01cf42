// Package meshgen generates lon/lat meshes of regular and reduced grids and
// splits them into partitions.
package meshgen

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Grid is a set of latitude rows ordered north to south. Row j holds NLons[j]
// points evenly spaced in longitude starting at 0.
type Grid struct {
	Name  string
	Lats  []float64
	NLons []int
}

func (g Grid) NLat() int { return len(g.Lats) }

func (g Grid) Lon(jlat, jlon int) float64 {
	return 360. * float64(jlon) / float64(g.NLons[jlat])
}

func (g Grid) NPoints() (npts int) {
	for _, n := range g.NLons {
		npts += n
	}
	return
}

func (g Grid) Validate() error {
	if g.NLat() < 2 {
		return fmt.Errorf("grid %s: need at least two latitudes, have %d", g.Name, g.NLat())
	}
	if len(g.NLons) != g.NLat() {
		return fmt.Errorf("grid %s: %d latitudes but %d row sizes", g.Name, g.NLat(), len(g.NLons))
	}
	for j, lat := range g.Lats {
		if lat > 90 || lat < -90 {
			return fmt.Errorf("grid %s: latitude %g out of range", g.Name, lat)
		}
		if j > 0 && lat >= g.Lats[j-1] {
			return fmt.Errorf("grid %s: latitudes must decrease, row %d has %g after %g",
				g.Name, j, lat, g.Lats[j-1])
		}
		if g.NLons[j] < 3 {
			return fmt.Errorf("grid %s: row %d has %d points, need at least 3", g.Name, j, g.NLons[j])
		}
	}
	return nil
}

// NewRegularGrid has nlat rows of nlon points, half a spacing away from the poles
func NewRegularGrid(nlat, nlon int) Grid {
	g := Grid{
		Name:  fmt.Sprintf("regular_%dx%d", nlat, nlon),
		Lats:  make([]float64, nlat),
		NLons: make([]int, nlat),
	}
	dlat := 180. / float64(nlat)
	for j := range g.Lats {
		g.Lats[j] = 90. - (float64(j)+0.5)*dlat
		g.NLons[j] = nlon
	}
	return g
}

// NewReducedGrid mirrors a northern hemisphere, given as colatitudes in
// radians from the pole towards the equator, into a global grid
func NewReducedGrid(name string, colat []float64, nlons []int) Grid {
	var (
		N = len(colat)
		g = Grid{
			Name:  name,
			Lats:  make([]float64, 2*N),
			NLons: make([]int, 2*N),
		}
	)
	for j := 0; j < N; j++ {
		lat := 90. - colat[j]*180./math.Pi
		g.Lats[j], g.Lats[2*N-1-j] = lat, -lat
		g.NLons[j], g.NLons[2*N-1-j] = nlons[j], nlons[j]
	}
	return g
}

// NewT95 is the reduced Gaussian grid of spectral truncation 95
func NewT95() Grid {
	nlons := []int{
		20, 25, 36, 40, 45, 50, 60, 60, 72, 75, 80, 90, 96, 100, 108, 120,
		120, 120, 125, 135, 144, 144, 150, 150, 160, 160, 160, 180, 180, 180, 180, 180,
		192, 192, 192, 192, 192, 192, 192, 192, 192, 192, 192, 192, 192, 192, 192, 192,
	}
	colat := []float64{
		0.02492036059421555427, 0.05720262597323678977, 0.08967553546914315554, 0.12219151945674987247,
		0.15472384244808873310, 0.18726407174005726963, 0.21980871933238274596, 0.25235608399078757191,
		0.28490523779441129237, 0.31745563181617048043, 0.35000692063955030076, 0.38255887607470256961,
		0.41511134132612115266, 0.44766420509684223816, 0.48021738619824949623, 0.51277082400921480954,
		0.54532447234592495988, 0.57787829540015078766, 0.61043226497516234197, 0.64298635856011987499,
		0.67554055796049028437, 0.70809484830577151815, 0.74064921731856214748, 0.77320365476802566107,
		0.80575815205564238486, 0.83831270189731077469, 0.87086729807659968294, 0.90342193525120484399,
		0.93597660879965882685, 0.96853131469881359461, 1.00108604942508527813, 1.03364080987421291802,
		1.06619559329555757543, 1.09875039723791489976, 1.13130521950450657620, 1.16386005811532911025,
		1.19641491127544452588, 1.22896977734808365845, 1.26152465483166875693, 1.29407954234003508276,
		1.32663443858526908237, 1.35918934236269328686, 1.39174425253759537213, 1.42429916803338851850,
		1.45685408782091840862, 1.48940901090868638157, 1.52196393633378246335, 1.55451886315335485733,
	}
	return NewReducedGrid("T95", colat, nlons)
}

var predefinedGrids = map[string]func() Grid{
	"T95": NewT95,
}

// GridNames lists the predefined grids, plus the regular grid pattern
func GridNames() (names []string) {
	for name := range predefinedGrids {
		names = append(names, name)
	}
	sort.Strings(names)
	return append(names, "regular_<nlat>x<nlon>")
}

// LookupGrid finds a predefined grid, or parses a regular_<nlat>x<nlon> name
func LookupGrid(name string) (g Grid, err error) {
	if newGrid, ok := predefinedGrids[name]; ok {
		return newGrid(), nil
	}
	if strings.HasPrefix(name, "regular_") {
		var nlat, nlon int
		if _, err = fmt.Sscanf(strings.TrimPrefix(name, "regular_"), "%dx%d", &nlat, &nlon); err != nil {
			return g, fmt.Errorf("unable to parse regular grid name %q: %w", name, err)
		}
		g = NewRegularGrid(nlat, nlon)
		return g, g.Validate()
	}
	return g, fmt.Errorf("unknown grid %q, known grids are %v", name, GridNames())
}
