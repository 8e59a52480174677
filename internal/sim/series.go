package sim

import "fmt"

// Series is the append-only record of measurements: one sweep index per
// sample plus one value per column.
type Series struct {
	columns []string
	times   []int
	values  [][]float64
}

// NewSeries creates an empty series with the given value columns.
func NewSeries(columns ...string) *Series {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Series{columns: cols, values: make([][]float64, len(cols))}
}

// Append records one sample taken at sweep t.
func (s *Series) Append(t int, values ...float64) {
	if len(values) != len(s.columns) {
		panic(fmt.Sprintf("sim: series has %d columns, got %d values", len(s.columns), len(values)))
	}
	s.times = append(s.times, t)
	for i, v := range values {
		s.values[i] = append(s.values[i], v)
	}
}

func (s *Series) Len() int { return len(s.times) }

func (s *Series) Columns() []string {
	cols := make([]string, len(s.columns))
	copy(cols, s.columns)
	return cols
}

// Times returns a copy of the sweep indices.
func (s *Series) Times() []int {
	t := make([]int, len(s.times))
	copy(t, s.times)
	return t
}

// Values returns a copy of column k.
func (s *Series) Values(k int) []float64 {
	v := make([]float64, len(s.values[k]))
	copy(v, s.values[k])
	return v
}

// Column returns a copy of the named column.
func (s *Series) Column(name string) ([]float64, bool) {
	for k, c := range s.columns {
		if c == name {
			return s.Values(k), true
		}
	}
	return nil, false
}

// LastTime returns the sweep index of the newest sample.
func (s *Series) LastTime() (int, bool) {
	if len(s.times) == 0 {
		return 0, false
	}
	return s.times[len(s.times)-1], true
}
