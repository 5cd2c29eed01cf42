package types

import "strings"

// Topology is a bitmask of per-node flags, set upstream by mesh generation
// and halo construction and only read by the edge builders.
type Topology uint32

const (
	TopologyNone Topology = 0
	Periodic     Topology = 1 << iota
	Ghost
	Pole
	Internal
	Bc
)

var topologyNames = []struct {
	flag Topology
	name string
}{
	{Periodic, "periodic"},
	{Ghost, "ghost"},
	{Pole, "pole"},
	{Internal, "internal"},
	{Bc, "bc"},
}

// TopologyNameMap maps the lowercase name of a flag, as used in input files, to the flag.
var TopologyNameMap = map[string]Topology{
	"periodic": Periodic,
	"ghost":    Ghost,
	"pole":     Pole,
	"internal": Internal,
	"bc":       Bc,
}

// Check reports whether every bit of flags is set.
func (t Topology) Check(flags Topology) bool { return t&flags == flags }

// CheckAny reports whether at least one bit of flags is set.
func (t Topology) CheckAny(flags Topology) bool { return t&flags != 0 }

func (t *Topology) Set(flags Topology)   { *t |= flags }
func (t *Topology) Unset(flags Topology) { *t &^= flags }

func (t Topology) String() string {
	if t == TopologyNone {
		return "none"
	}
	var names []string
	for _, tn := range topologyNames {
		if t.Check(tn.flag) {
			names = append(names, tn.name)
		}
	}
	return strings.Join(names, "|")
}
