package actions

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matthewrmshin/atlas/mesh"
)

var (
	// ErrTopology matches every *TopologyError
	ErrTopology       = errors.New("mesh topology error")
	ErrNotImplemented = errors.New("not implemented")
	// ErrSplitPole is returned when the nodes of one pole band belong to more
	// than one partition
	ErrSplitPole = fmt.Errorf("split pole latitude: %w", ErrNotImplemented)
)

// TopologyError reports malformed cell connectivity. Local indices are
// mesh.Missing when they do not apply; Nodes holds node global ids.
type TopologyError struct {
	Stage  string
	Reason string
	Cell   int
	Edge   int
	Slot   int
	Nodes  []int64
}

func newTopologyError(stage, reason string) *TopologyError {
	return &TopologyError{
		Stage:  stage,
		Reason: reason,
		Cell:   mesh.Missing,
		Edge:   mesh.Missing,
		Slot:   mesh.Missing,
	}
}

func (e *TopologyError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s", e.Stage, e.Reason)
	if e.Cell != mesh.Missing {
		fmt.Fprintf(&sb, ", cell %d", e.Cell)
	}
	if e.Slot != mesh.Missing {
		fmt.Fprintf(&sb, ", slot %d", e.Slot)
	}
	if e.Edge != mesh.Missing {
		fmt.Fprintf(&sb, ", edge %d", e.Edge)
	}
	if len(e.Nodes) != 0 {
		fmt.Fprintf(&sb, ", nodes %v", e.Nodes)
	}
	return sb.String()
}

func (e *TopologyError) Is(target error) bool { return target == ErrTopology }

// globalIDs maps local node indices to global ids for error reports
func globalIDs(nodes *mesh.Nodes, local []int) (ids []int64) {
	ids = make([]int64, 0, len(local))
	for _, n := range local {
		if n < 0 || n >= nodes.Size() {
			ids = append(ids, int64(n))
			continue
		}
		ids = append(ids, nodes.GlobalIndex[n])
	}
	return
}
