// Package lattice holds the periodic 2D grid of integer site states shared
// by every dynamics variant.
package lattice

import (
	"fmt"
	"strings"

	"github.com/san-kum/spinlattice/internal/dynamo"
)

// Site addresses one cell of a Grid.
type Site struct {
	I, J int
}

// Grid stores xDim*yDim site values in row-major order. Every access wraps
// its indices, so the grid behaves as a torus.
type Grid struct {
	xDim, yDim int
	cells      []int
}

// New allocates a zero-filled grid.
func New(xDim, yDim int) (*Grid, error) {
	if xDim < 1 {
		return nil, dynamo.ConfigErrorf("xDim", xDim, "must be at least 1")
	}
	if yDim < 1 {
		return nil, dynamo.ConfigErrorf("yDim", yDim, "must be at least 1")
	}
	return &Grid{xDim: xDim, yDim: yDim, cells: make([]int, xDim*yDim)}, nil
}

// FromRows builds a grid from an externally supplied 2D array. The first
// index is i, the second j; dimensions are inferred.
func FromRows(rows [][]int) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, dynamo.ConfigErrorf("rows", len(rows), "initial grid is empty")
	}
	g, err := New(len(rows), len(rows[0]))
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != g.yDim {
			return nil, dynamo.ConfigErrorf("rows", i, "row has %d entries, want %d (grid not rectangular)", len(row), g.yDim)
		}
		copy(g.cells[i*g.yDim:], row)
	}
	return g, nil
}

// Dims returns the x and y dimensions.
func (g *Grid) Dims() (int, int) { return g.xDim, g.yDim }

// Size returns the number of sites.
func (g *Grid) Size() int { return len(g.cells) }

// Wrap reduces (i, j) onto the grid with periodic boundaries.
func (g *Grid) Wrap(i, j int) (int, int) {
	i = (i%g.xDim + g.xDim) % g.xDim
	j = (j%g.yDim + g.yDim) % g.yDim
	return i, j
}

func (g *Grid) index(i, j int) int {
	i, j = g.Wrap(i, j)
	return i*g.yDim + j
}

// Get returns the state at (i, j).
func (g *Grid) Get(i, j int) int { return g.cells[g.index(i, j)] }

// Set stores v at (i, j).
func (g *Grid) Set(i, j, v int) { g.cells[g.index(i, j)] = v }

// Flip negates the state at (i, j) and returns the new value.
func (g *Grid) Flip(i, j int) int {
	idx := g.index(i, j)
	g.cells[idx] = -g.cells[idx]
	return g.cells[idx]
}

// Neighbors returns the four axis-aligned periodic neighbours of (i, j) in
// the fixed order (i-1, j), (i+1, j), (i, j+1), (i, j-1).
func (g *Grid) Neighbors(i, j int) [4]Site {
	i, j = g.Wrap(i, j)
	return [4]Site{
		{(i - 1 + g.xDim) % g.xDim, j},
		{(i + 1) % g.xDim, j},
		{i, (j + 1) % g.yDim},
		{i, (j - 1 + g.yDim) % g.yDim},
	}
}

// NeighborSum adds the states of the four neighbours of (i, j).
func (g *Grid) NeighborSum(i, j int) int {
	sum := 0
	for _, n := range g.Neighbors(i, j) {
		sum += g.cells[n.I*g.yDim+n.J]
	}
	return sum
}

// AreNeighbors reports whether a and b are nearest neighbours under
// periodic wrap. It is symmetric in its arguments.
func (g *Grid) AreNeighbors(a, b Site) bool {
	return g.Bonds(a, b) > 0
}

// Bonds counts how many of a's neighbour slots point at b. It is 1 for
// adjacent sites on grids with both dimensions >= 3 and can reach 2 along a
// dimension of length 2, where the up and down neighbours coincide.
func (g *Grid) Bonds(a, b Site) int {
	a.I, a.J = g.Wrap(a.I, a.J)
	b.I, b.J = g.Wrap(b.I, b.J)
	n := 0
	for _, s := range g.Neighbors(a.I, a.J) {
		if s == b {
			n++
		}
	}
	return n
}

// Count returns the number of sites holding v.
func (g *Grid) Count(v int) int {
	n := 0
	for _, c := range g.cells {
		if c == v {
			n++
		}
	}
	return n
}

// Sum adds every site value.
func (g *Grid) Sum() int {
	s := 0
	for _, c := range g.cells {
		s += c
	}
	return s
}

// Rows returns a copy of the grid as a 2D array indexed [i][j].
func (g *Grid) Rows() [][]int {
	rows := make([][]int, g.xDim)
	for i := range rows {
		rows[i] = make([]int, g.yDim)
		copy(rows[i], g.cells[i*g.yDim:(i+1)*g.yDim])
	}
	return rows
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	c := &Grid{xDim: g.xDim, yDim: g.yDim, cells: make([]int, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// Composition counts each distinct state present.
func (g *Grid) Composition() map[int]int {
	counts := make(map[int]int)
	for _, c := range g.cells {
		counts[c]++
	}
	return counts
}

func (g *Grid) String() string {
	var b strings.Builder
	for i := 0; i < g.xDim; i++ {
		for j := 0; j < g.yDim; j++ {
			if j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%2d", g.cells[i*g.yDim+j])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
