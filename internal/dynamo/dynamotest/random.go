// Package dynamotest provides scripted random sources that pin the draw
// sequence seen by update rules in tests.
package dynamotest

import "fmt"

// Scripted replays fixed Float64 and IntN values in order and records how
// many of each were consumed. It panics when a queue runs dry so a test
// never silently depends on draws it did not script.
type Scripted struct {
	Floats []float64
	Ints   []int

	FloatDraws int
	IntDraws   int
}

// NewScripted returns a source that yields ints then floats as given.
func NewScripted(ints []int, floats []float64) *Scripted {
	return &Scripted{Ints: ints, Floats: floats}
}

func (s *Scripted) Float64() float64 {
	if s.FloatDraws >= len(s.Floats) {
		panic(fmt.Sprintf("dynamotest: Float64 draw %d not scripted", s.FloatDraws))
	}
	v := s.Floats[s.FloatDraws]
	s.FloatDraws++
	return v
}

func (s *Scripted) IntN(n int) int {
	if s.IntDraws >= len(s.Ints) {
		panic(fmt.Sprintf("dynamotest: IntN draw %d not scripted", s.IntDraws))
	}
	v := s.Ints[s.IntDraws]
	s.IntDraws++
	if v < 0 || v >= n {
		panic(fmt.Sprintf("dynamotest: scripted int %d outside [0,%d)", v, n))
	}
	return v
}

// Constant always returns the same Float64 value and cycles IntN through
// 0..n-1. It suits tests that only care about the acceptance decision.
type Constant struct {
	Value float64
	next  int
}

func (c *Constant) Float64() float64 { return c.Value }

func (c *Constant) IntN(n int) int {
	v := c.next % n
	c.next++
	return v
}
