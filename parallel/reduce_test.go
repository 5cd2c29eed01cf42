package parallel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestLocal(t *testing.T) {
	var (
		r    Reducer = Local{}
		vals         = []float64{3, -1}
	)
	require.NoError(t, r.MinAll(vals))
	require.NoError(t, r.MaxAll(vals))
	assert.Equal(t, []float64{3, -1}, vals)
}

func TestGroupAllReduce(t *testing.T) {
	var (
		NP      = 5
		g       = NewGroup(NP)
		mins    = make([][]float64, NP)
		maxs    = make([][]float64, NP)
		eg      errgroup.Group
		rounds  = 4
		results = make([][]float64, NP)
	)
	for n := 0; n < NP; n++ {
		n := n
		eg.Go(func() error {
			r := g.Rank(n)
			for round := 0; round < rounds; round++ {
				mins[n] = []float64{float64(n + round), float64(-n)}
				if err := r.MinAll(mins[n]); err != nil {
					return err
				}
				maxs[n] = []float64{float64(n + round), float64(-n)}
				if err := r.MaxAll(maxs[n]); err != nil {
					return err
				}
			}
			results[n] = append(append([]float64{}, mins[n]...), maxs[n]...)
			return nil
		})
	}
	require.NoError(t, eg.Wait())
	last := float64(rounds - 1)
	for n := 0; n < NP; n++ {
		assert.Equal(t, []float64{last, float64(1 - NP), last + float64(NP-1), 0}, results[n])
	}
}

func TestGroupSingleRank(t *testing.T) {
	r := NewGroup(1).Rank(0)
	vals := []float64{1, 2}
	require.NoError(t, r.MaxAll(vals))
	assert.Equal(t, []float64{1, 2}, vals)
	assert.Panics(t, func() { NewGroup(2).Rank(2) })
}
