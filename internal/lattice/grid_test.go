package lattice

import (
	"errors"
	"testing"

	"github.com/san-kum/spinlattice/internal/dynamo"
	"github.com/san-kum/spinlattice/internal/dynamo/dynamotest"
)

func TestNewInvalidDims(t *testing.T) {
	tests := []struct {
		name       string
		xDim, yDim int
	}{
		{"zero x", 0, 4},
		{"zero y", 4, 0},
		{"negative", -2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.xDim, tt.yDim)
			if !errors.Is(err, dynamo.ErrConfiguration) {
				t.Errorf("New(%d, %d) error = %v, want ErrConfiguration", tt.xDim, tt.yDim, err)
			}
		})
	}
}

func TestGetSetWraps(t *testing.T) {
	g, err := New(3, 4)
	if err != nil {
		t.Fatal(err)
	}
	g.Set(-1, 5, 7)
	if got := g.Get(2, 1); got != 7 {
		t.Errorf("Get(2,1) = %d, want 7", got)
	}
	if got := g.Get(5, -3); got != 7 {
		t.Errorf("Get(5,-3) = %d, want 7", got)
	}
}

func TestNeighborsPeriodic(t *testing.T) {
	g, _ := New(5, 4)
	xDim, yDim := g.Dims()

	contains := func(ns [4]Site, s Site) bool {
		for _, n := range ns {
			if n == s {
				return true
			}
		}
		return false
	}

	for j := 0; j < yDim; j++ {
		if !contains(g.Neighbors(0, j), Site{xDim - 1, j}) {
			t.Errorf("neighbors(0,%d) missing (%d,%d)", j, xDim-1, j)
		}
		if !contains(g.Neighbors(xDim-1, j), Site{0, j}) {
			t.Errorf("neighbors(%d,%d) missing (0,%d)", xDim-1, j, j)
		}
	}
	for i := 0; i < xDim; i++ {
		if !contains(g.Neighbors(i, 0), Site{i, yDim - 1}) {
			t.Errorf("neighbors(%d,0) missing (%d,%d)", i, i, yDim-1)
		}
		if !contains(g.Neighbors(i, yDim-1), Site{i, 0}) {
			t.Errorf("neighbors(%d,%d) missing (%d,0)", i, yDim-1, i)
		}
	}
}

func TestNeighborsOrder(t *testing.T) {
	g, _ := New(4, 4)
	want := [4]Site{{0, 2}, {2, 2}, {1, 3}, {1, 1}}
	if got := g.Neighbors(1, 2); got != want {
		t.Errorf("Neighbors(1,2) = %v, want %v", got, want)
	}
}

func TestAreNeighbors(t *testing.T) {
	g, _ := New(4, 5)
	tests := []struct {
		a, b Site
		want bool
	}{
		{Site{0, 0}, Site{0, 1}, true},
		{Site{0, 0}, Site{1, 0}, true},
		{Site{0, 0}, Site{3, 0}, true},
		{Site{0, 0}, Site{0, 4}, true},
		{Site{0, 0}, Site{1, 1}, false},
		{Site{0, 0}, Site{2, 0}, false},
		{Site{0, 0}, Site{0, 0}, false},
	}

	for _, tt := range tests {
		if got := g.AreNeighbors(tt.a, tt.b); got != tt.want {
			t.Errorf("AreNeighbors(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := g.AreNeighbors(tt.b, tt.a); got != tt.want {
			t.Errorf("AreNeighbors(%v, %v) = %v, want %v (symmetry)", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestBondsOnNarrowGrid(t *testing.T) {
	g, _ := New(2, 5)
	if got := g.Bonds(Site{0, 0}, Site{1, 0}); got != 2 {
		t.Errorf("Bonds across a length-2 axis = %d, want 2", got)
	}
	if got := g.Bonds(Site{0, 0}, Site{0, 1}); got != 1 {
		t.Errorf("Bonds along the long axis = %d, want 1", got)
	}
}

func TestFromRows(t *testing.T) {
	g, err := FromRows([][]int{{1, -1, 1}, {-1, -1, 1}})
	if err != nil {
		t.Fatal(err)
	}
	x, y := g.Dims()
	if x != 2 || y != 3 {
		t.Errorf("Dims() = %d,%d, want 2,3", x, y)
	}
	if g.Get(1, 2) != 1 || g.Get(1, 0) != -1 {
		t.Errorf("values not copied: %v", g.Rows())
	}
	if g.Sum() != 0 {
		t.Errorf("Sum() = %d, want 0", g.Sum())
	}

	_, err = FromRows([][]int{{1, 1}, {1}})
	if !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("ragged rows error = %v, want ErrConfiguration", err)
	}
	_, err = FromRows(nil)
	if !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("empty rows error = %v, want ErrConfiguration", err)
	}
}

func TestRowsIsCopy(t *testing.T) {
	g, _ := Uniform(2, 2, 1)
	rows := g.Rows()
	rows[0][0] = -1
	if g.Get(0, 0) != 1 {
		t.Error("Rows() shares storage with the grid")
	}
	c := g.Clone()
	c.Flip(1, 1)
	if g.Get(1, 1) != 1 {
		t.Error("Clone() shares storage with the grid")
	}
}

func TestSplit(t *testing.T) {
	g, err := Split(3, 3, 1, -1)
	if err != nil {
		t.Fatal(err)
	}
	if g.Count(1) != 4 || g.Count(-1) != 5 {
		t.Errorf("Split counts = %d/%d, want 4/5", g.Count(1), g.Count(-1))
	}
	if g.Get(0, 0) != 1 || g.Get(2, 2) != -1 {
		t.Errorf("unexpected layout:\n%s", g)
	}
}

func TestRandomSpins(t *testing.T) {
	rng := dynamotest.NewScripted(nil, []float64{0.1, 0.9, 0.5, 0.49})
	g, err := RandomSpins(2, 2, rng)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]int{{-1, 1}, {1, -1}}
	got := g.Rows()
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Fatalf("RandomSpins = %v, want %v", got, want)
			}
		}
	}
}

func TestStateCounts(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		fractions []float64
		want      []int
	}{
		{"exact", 100, []float64{0.33, 0.33, 0.33, 0.01}, []int{33, 33, 33, 1}},
		{"under one", 100, []float64{0.2, 0.3, 0, 0}, []int{70, 30, 0, 0}},
		{"rounding remainder", 10, []float64{0.25, 0.25, 0.25, 0.25}, []int{4, 2, 2, 2}},
		{"half", 9, []float64{0.5, 0.5, 0, 0}, []int{5, 4, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StateCounts(tt.size, tt.fractions)
			if err != nil {
				t.Fatal(err)
			}
			total := 0
			for i := range got {
				total += got[i]
				if got[i] != tt.want[i] {
					t.Errorf("StateCounts = %v, want %v", got, tt.want)
					break
				}
			}
			if total != tt.size {
				t.Errorf("total = %d, want %d", total, tt.size)
			}
		})
	}
}

func TestStateCountsRejectsOverfull(t *testing.T) {
	tests := [][]float64{
		{0.6, 0.6, 0, 0},
		{0.5, 0.5, 0.01, 0},
		{-0.1, 0.5, 0, 0},
	}
	for _, fr := range tests {
		if _, err := StateCounts(100, fr); !errors.Is(err, dynamo.ErrConfiguration) {
			t.Errorf("StateCounts(%v) error = %v, want ErrConfiguration", fr, err)
		}
	}
	if _, err := StateCounts(100, []float64{0.5, 0.5 + 1e-9, 0, 0}); err != nil {
		t.Errorf("sum within tolerance rejected: %v", err)
	}
}

func TestProportional(t *testing.T) {
	rng := dynamo.NewRandom(3)
	states := []int{0, 1, -1, 2}
	g, err := Proportional(10, 10, states, []float64{0.33, 0.33, 0.33, 0.01}, rng)
	if err != nil {
		t.Fatal(err)
	}
	if g.Size() != 100 {
		t.Fatalf("Size() = %d", g.Size())
	}
	want := map[int]int{0: 33, 1: 33, -1: 33, 2: 1}
	for s, n := range want {
		if got := g.Count(s); got != n {
			t.Errorf("Count(%d) = %d, want %d", s, got, n)
		}
	}

	if _, err := Proportional(10, 10, states, []float64{1}, rng); !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("mismatched lengths error = %v", err)
	}
}
