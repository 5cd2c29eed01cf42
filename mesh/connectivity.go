package mesh

import (
	"fmt"

	"github.com/james-bowman/sparse"

	"github.com/matthewrmshin/atlas/utils"
)

// Missing marks an unfilled slot in any connectivity table
const Missing = -1

// Connectivity is an irregular table mapping a row (the owning entity's
// local index) to an ordered list of referenced local indices. Rows are
// stored contiguously; a row's width is fixed when the row is added.
type Connectivity struct {
	values  []int
	offsets []int
	maxCols int
}

func NewConnectivity() *Connectivity {
	return &Connectivity{offsets: []int{0}}
}

func (c *Connectivity) Rows() int { return len(c.offsets) - 1 }

func (c *Connectivity) Cols(row int) int { return c.offsets[row+1] - c.offsets[row] }

func (c *Connectivity) MaxCols() int { return c.maxCols }

func (c *Connectivity) At(row, col int) int {
	c.checkCol(row, col)
	return c.values[c.offsets[row]+col]
}

func (c *Connectivity) Set(row, col, v int) {
	c.checkCol(row, col)
	c.values[c.offsets[row]+col] = v
}

// SetRow overwrites a whole row; vals must have the row's width
func (c *Connectivity) SetRow(row int, vals ...int) {
	if len(vals) != c.Cols(row) {
		panic(fmt.Errorf("row %d has %d columns, got %d values", row, c.Cols(row), len(vals)))
	}
	copy(c.values[c.offsets[row]:], vals)
}

// Row returns a view of a row. Writes through the view modify the table.
func (c *Connectivity) Row(row int) []int {
	b, e := c.offsets[row], c.offsets[row+1]
	return c.values[b:e:e]
}

// Add appends rows of fixed width cols. When values is nil the new slots are
// filled with Missing.
func (c *Connectivity) Add(rows, cols int, values []int) error {
	if values != nil && len(values) != rows*cols {
		return fmt.Errorf("connectivity add: want %d values for %d rows of %d, got %d",
			rows*cols, rows, cols, len(values))
	}
	for i := 0; i < rows; i++ {
		c.offsets = append(c.offsets, c.offsets[len(c.offsets)-1]+cols)
	}
	if values != nil {
		c.values = append(c.values, values...)
	} else {
		for i := 0; i < rows*cols; i++ {
			c.values = append(c.values, Missing)
		}
	}
	if cols > c.maxCols {
		c.maxCols = cols
	}
	return nil
}

// AddVariable appends one Missing-filled row per entry of cols, row i being cols[i] wide
func (c *Connectivity) AddVariable(cols []int) {
	for _, n := range cols {
		_ = c.Add(1, n, nil)
	}
}

func (c *Connectivity) Clear() {
	c.values = c.values[:0]
	c.offsets = c.offsets[:1]
	c.maxCols = 0
}

// HasMissing reports the first Missing column of row, or -1 when the row is full
func (c *Connectivity) HasMissing(row int) (col int) {
	for j, v := range c.Row(row) {
		if v == Missing {
			return j
		}
	}
	return -1
}

// Table returns a copy of the table as a slice of rows
func (c *Connectivity) Table() (table [][]int) {
	table = make([][]int, c.Rows())
	for i := range table {
		table[i] = append([]int(nil), c.Row(i)...)
	}
	return
}

// Incidence exports the table as a 0/1 sparse matrix with nc columns, the
// form downstream operators consume.
func (c *Connectivity) Incidence(nc int) (*sparse.CSR, error) {
	return utils.NewIncidence(c.Table(), nc, Missing)
}

func (c *Connectivity) checkCol(row, col int) {
	if col < 0 || col >= c.Cols(row) {
		panic(fmt.Errorf("column %d out of range for row %d with %d columns", col, row, c.Cols(row)))
	}
}
