package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
)

// NewIncidence converts a jagged row→column table into a 0/1 incidence
// matrix with nc columns. Entries equal to missing are skipped, so
// sentinel-padded rows produce fewer non-zeros.
func NewIncidence(rows [][]int, nc, missing int) (*sparse.CSR, error) {
	dok := sparse.NewDOK(len(rows), nc)
	for i, row := range rows {
		for _, j := range row {
			if j == missing {
				continue
			}
			if j < 0 || j >= nc {
				return nil, fmt.Errorf("incidence column %d of row %d out of range [0,%d)", j, i, nc)
			}
			dok.Set(i, j, 1)
		}
	}
	return dok.ToCSR(), nil
}

// RowCounts returns the number of stored non-zeros in each row of a CSR matrix.
func RowCounts(m *sparse.CSR) (counts []int) {
	var (
		nr, _ = m.Dims()
		raw   = m.RawMatrix()
	)
	counts = make([]int, nr)
	for i := 0; i < nr; i++ {
		counts[i] = raw.Indptr[i+1] - raw.Indptr[i]
	}
	return
}
