// internal/sv/stats.go
package sv

import "math"

// RunningStat accumulates count, sum and sum of squares so the population
// standard deviation can be computed without retaining members.
type RunningStat struct {
	n          int
	sum, sumSq float64
}

func (r *RunningStat) Add(x int) {
	v := float64(x)
	r.n++
	r.sum += v
	r.sumSq += v * v
}

func (r *RunningStat) N() int { return r.n }

func (r *RunningStat) Mean() float64 {
	if r.n == 0 {
		return 0
	}
	return r.sum / float64(r.n)
}

// StdDev is the population standard deviation; zero for fewer than two values.
func (r *RunningStat) StdDev() float64 {
	if r.n < 2 {
		return 0
	}
	m := r.Mean()
	v := r.sumSq/float64(r.n) - m*m
	if v < 0 {
		v = 0 // float cancellation
	}
	return math.Sqrt(v)
}
