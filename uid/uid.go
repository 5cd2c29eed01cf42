// Package uid computes partition-independent identifiers for mesh entities
// from their longitude/latitude. Two partitions holding copies of the same
// node, edge or cell compute the same identifier without communicating.
package uid

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sort"

	"github.com/matthewrmshin/atlas/utils"
)

// LonLatSource gives access to node coordinates in degrees
type LonLatSource interface {
	Lon(i int) float64
	Lat(i int) float64
}

// Precision is the coordinate resolution, in degrees, used to quantize
// longitudes and latitudes before they are combined into an identifier.
// It must exceed the round-off noise expected between partitions.
type Precision struct {
	Resolution float64
}

func DefaultPrecision() Precision {
	return Precision{Resolution: utils.MICRODEG}
}

// Quantize rounds deg to the nearest multiple of the resolution, half away from zero
func (p Precision) Quantize(deg float64) int64 {
	return int64(math.Round(deg / p.Resolution))
}

// LonLat is the identifier of a point. When both quantized coordinates fit
// in 32 bits they are concatenated, longitude in the high word; otherwise
// they are hashed.
func (p Precision) LonLat(lon, lat float64) int64 {
	lonQ, latQ := p.Quantize(lon), p.Quantize(lat)
	if lonQ < math.MinInt32 || lonQ > math.MaxInt32 || latQ < math.MinInt32 || latQ > math.MaxInt32 {
		return Combine(lonQ, latQ)
	}
	return int64(uint64(uint32(int32(lonQ)))<<32 | uint64(uint32(int32(latQ))))
}

// Combine hashes an ordered list of keys with 64-bit FNV-1a. The result
// depends on the order and the number of keys.
func Combine(keys ...int64) int64 {
	var (
		h   = fnv.New64a()
		buf [8]byte
	)
	for _, k := range keys {
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
		h.Write(buf[:])
	}
	return int64(h.Sum64())
}

// UniqueLonLat computes identifiers for nodes, edges and cells of one partition
type UniqueLonLat struct {
	coords LonLatSource
	prec   Precision
}

func NewUniqueLonLat(coords LonLatSource, prec Precision) *UniqueLonLat {
	return &UniqueLonLat{coords: coords, prec: prec}
}

func (u *UniqueLonLat) Precision() Precision { return u.prec }

func (u *UniqueLonLat) Node(i int) int64 {
	return u.prec.LonLat(u.coords.Lon(i), u.coords.Lat(i))
}

// Edge combines the endpoint identifiers in ascending order, so the result
// does not depend on the direction the edge was discovered in.
func (u *UniqueLonLat) Edge(n1, n2 int) int64 {
	a, b := u.Node(n1), u.Node(n2)
	if a > b {
		a, b = b, a
	}
	return Combine(a, b)
}

// Nodes is the identifier of a cell given all of its nodes. Node order and
// starting node do not matter.
func (u *UniqueLonLat) Nodes(nodes []int) int64 {
	keys := make([]int64, len(nodes))
	for i, n := range nodes {
		keys[i] = u.Node(n)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return Combine(keys...)
}

// PoleEdge is the identifier of a synthetic edge across the north or south
// pole band. Its position is the mean longitude of the endpoints at the pole
// itself (±90), so both quantized coordinates enter the hash. A single key is
// hashed, which keeps pole edge ids apart from regular edges hashed from two keys.
func (u *UniqueLonLat) PoleEdge(n1, n2 int, north bool) int64 {
	var (
		lon = 0.5 * (u.coords.Lon(n1) + u.coords.Lon(n2))
		lat = -90.
	)
	if north {
		lat = 90.
	}
	return Combine(u.prec.LonLat(lon, lat))
}
