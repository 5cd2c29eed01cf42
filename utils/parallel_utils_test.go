package utils

import (
	"math"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionMap(t *testing.T) {
	{ // Test PartitionMap
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				kmin, kmax := pm.GetBucketRange(np)
				histo[kmax-kmin]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		assert.Equal(t, 287, getTotal(getHisto(287, 32)))
		for n := 64; n < 2000; n++ {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 32)
			for key := range histo {
				keys[keyNum] = float64(key)
				keyNum++
			}
			if keyNum == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1])) // Maximum imbalance of 1
			}
			assert.Equal(t, n, getTotal(histo))
		}
	}
	{ // Test inverted bucket probe - find bucket that contains index (efficiently)
		for maxIndex := 10; maxIndex < 500; maxIndex++ {
			pm := NewPartitionMap(5, maxIndex)
			for k := 0; k < maxIndex; k++ {
				tryCount, bn, min, max := pm.getBucketWithTryCount(k)
				mmin, mmax := pm.GetBucketRange(bn)
				assert.True(t, k >= min && k < max && min == mmin && max == mmax && tryCount <= 1)
			}
		}
		pm := NewPartitionMap(3, 9)
		bn, _, _ := pm.GetBucket(9)
		assert.Equal(t, -1, bn)
	}
}

func TestMailBoxAllToAll(t *testing.T) {
	const NP = 4
	var (
		mb       = NewMailBox[int](NP)
		barrier  = NewBarrier(NP)
		wg       sync.WaitGroup
		received = make([][]int, NP)
	)
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			for round := 0; round < 3; round++ {
				mb.PostMessageToAll(np, 10*round+np)
				mb.DeliverMyMessages(np)
				barrier.Wait()
				mb.ReceiveMyMessages(np)
				msgs := append([]int{}, mb.ReceiveMsgQs[np].Cells()...)
				mb.ClearMyMessages(np)
				barrier.Wait()
				if round == 2 {
					sort.Ints(msgs)
					received[np] = msgs
				}
			}
		}(np)
	}
	wg.Wait()
	for np := 0; np < NP; np++ {
		assert.Equal(t, []int{20, 21, 22, 23}, received[np])
	}
}

func TestIncidence(t *testing.T) {
	rows := [][]int{{0, 2}, {1, -1}, {}}
	m, err := NewIncidence(rows, 3, -1)
	require.NoError(t, err)
	nr, nc := m.Dims()
	assert.Equal(t, 3, nr)
	assert.Equal(t, 3, nc)
	assert.Equal(t, 1., m.At(0, 2))
	assert.Equal(t, 0., m.At(1, 0))
	assert.Equal(t, []int{2, 1, 0}, RowCounts(m))

	_, err = NewIncidence([][]int{{5}}, 3, -1)
	assert.Error(t, err)
}
