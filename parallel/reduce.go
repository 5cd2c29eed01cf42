// Package parallel provides the collective operations the edge builders need
// from a distributed run: element-wise min/max reductions over small arrays.
package parallel

import (
	"fmt"
	"math"

	"github.com/matthewrmshin/atlas/utils"
)

// Reducer performs synchronous all-reduce operations in place. A call returns
// only once every participant has contributed.
type Reducer interface {
	MinAll(vals []float64) error
	MaxAll(vals []float64) error
}

// Local is the reduction of a single participant: values are left unchanged
type Local struct{}

func (Local) MinAll([]float64) error { return nil }
func (Local) MaxAll([]float64) error { return nil }

// Group simulates NP partitions running as goroutines in one process. Each
// partition reduces through its own Rank.
type Group struct {
	NP      int
	mail    *utils.MailBox[[]float64]
	barrier *utils.Barrier
}

func NewGroup(NP int) *Group {
	if NP < 1 {
		panic(fmt.Errorf("group needs at least one rank, have %d", NP))
	}
	return &Group{
		NP:      NP,
		mail:    utils.NewMailBox[[]float64](NP),
		barrier: utils.NewBarrier(NP),
	}
}

// Rank returns the Reducer used by partition myRank. Every rank of the group
// must take part in every reduction, in the same order.
func (g *Group) Rank(myRank int) Reducer {
	if myRank < 0 || myRank >= g.NP {
		panic(fmt.Errorf("rank %d out of range [0,%d)", myRank, g.NP))
	}
	return &rank{group: g, myRank: myRank}
}

type rank struct {
	group  *Group
	myRank int
}

func (r *rank) MinAll(vals []float64) error { return r.allReduce(vals, math.Min) }

func (r *rank) MaxAll(vals []float64) error { return r.allReduce(vals, math.Max) }

func (r *rank) allReduce(vals []float64, op func(a, b float64) float64) error {
	var (
		mb = r.group.mail
		me = r.myRank
	)
	mb.PostMessageToAll(me, append([]float64(nil), vals...))
	mb.DeliverMyMessages(me)
	r.group.barrier.Wait()

	mb.ReceiveMyMessages(me)
	msgs := mb.ReceiveMsgQs[me].Cells()
	if len(msgs) != r.group.NP {
		mb.ClearMyMessages(me)
		r.group.barrier.Wait()
		return fmt.Errorf("rank %d received %d contributions, expected %d", me, len(msgs), r.group.NP)
	}
	for _, msg := range msgs {
		if len(msg) != len(vals) {
			mb.ClearMyMessages(me)
			r.group.barrier.Wait()
			return fmt.Errorf("rank %d: reduction length mismatch, %d vs %d", me, len(msg), len(vals))
		}
	}
	for i := range vals {
		for _, msg := range msgs {
			vals[i] = op(vals[i], msg[i])
		}
	}
	mb.ClearMyMessages(me)
	// Nobody posts the next round until everyone has read this one
	r.group.barrier.Wait()
	return nil
}
