package mesh

import (
	"errors"
	"fmt"
)

// ErrUnknownElementType is returned when a cell type has no local edge pattern.
var ErrUnknownElementType = errors.New("unknown element type")

// ElementType represents different element types
type ElementType int

const (
	Line ElementType = iota
	Triangle
	Quad
)

func (e ElementType) String() string {
	switch e {
	case Line:
		return "Line"
	case Triangle:
		return "Triangle"
	case Quad:
		return "Quad"
	default:
		return fmt.Sprintf("ElementType(%d)", int(e))
	}
}

// NumNodes is the fixed node arity of the element type
func (e ElementType) NumNodes() int {
	switch e {
	case Line:
		return 2
	case Triangle:
		return 3
	case Quad:
		return 4
	default:
		return 0
	}
}

// NumEdges is the number of edges bounding a 2D cell of this type, which is
// also the width of its row in the cell→edge table.
func (e ElementType) NumEdges() int {
	switch e {
	case Triangle:
		return 3
	case Quad:
		return 4
	default:
		return 0
	}
}

var (
	triangleEdges = [][2]int{{0, 1}, {1, 2}, {2, 0}}
	quadEdges     = [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}
)

// EdgeNodes returns the local node pairs of each edge of a 2D cell, in edge
// order. Edge i runs from local node i to the next node around the cell.
func (e ElementType) EdgeNodes() ([][2]int, error) {
	switch e {
	case Triangle:
		return triangleEdges, nil
	case Quad:
		return quadEdges, nil
	default:
		return nil, fmt.Errorf("%w: %s has no cell edge pattern", ErrUnknownElementType, e)
	}
}
