package history

import (
	"math"

	"github.com/san-kum/mrsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// GridTolerance is the relative deviation from the first spacing that a
// time grid may show before it is rejected as non-uniform.
const GridTolerance = 1e-6

// Integrate approximates ∫ s(τ)/sqrt(t-τ) dτ over the span of times, where
// states[i] is sampled at times[i]:
//
//	2·sqrt(t_n - t_0)·s_0 + sqrt(Δt)·Σ_j W_j·s_{n-j}
//
// with W = Coefficients(n, order) and n = len(states)-1. The whole history is
// reduced on every call, so integrating a run of n steps costs O(n²).
func Integrate(states, times []float64, order int) (float64, error) {
	n, dt, err := prepare(len(states), times, order)
	if err != nil {
		return 0, err
	}

	buf := weights.Get(n + 1)
	defer weights.Put(buf)
	w := *buf
	if err := fill(w, n, order); err != nil {
		return 0, err
	}

	sum := 0.0
	for j, wj := range w {
		sum += wj * states[n-j]
	}
	return 2*math.Sqrt(times[n]-times[0])*states[0] + math.Sqrt(dt)*sum, nil
}

// IntegrateVec is Integrate applied to both components of a vector history.
func IntegrateVec(states []r2.Vec, times []float64, order int) (r2.Vec, error) {
	n, dt, err := prepare(len(states), times, order)
	if err != nil {
		return r2.Vec{}, err
	}

	buf := weights.Get(n + 1)
	defer weights.Put(buf)
	w := *buf
	if err := fill(w, n, order); err != nil {
		return r2.Vec{}, err
	}

	var sum r2.Vec
	for j, wj := range w {
		s := states[n-j]
		sum.X += wj * s.X
		sum.Y += wj * s.Y
	}
	head := 2 * math.Sqrt(times[n]-times[0])
	root := math.Sqrt(dt)
	return r2.Vec{
		X: head*states[0].X + root*sum.X,
		Y: head*states[0].Y + root*sum.Y,
	}, nil
}

// prepare checks the history shape and returns the step count and spacing.
func prepare(count int, times []float64, order int) (int, float64, error) {
	if order < 1 || order > 3 {
		return 0, 0, dynamo.ErrInvalidOrder
	}
	if count != len(times) || count < 2 {
		return 0, 0, dynamo.ErrInvalidLength
	}
	dt, err := Spacing(times)
	if err != nil {
		return 0, 0, err
	}
	return count - 1, dt, nil
}

// Spacing returns the common step of a uniform, strictly increasing grid.
func Spacing(times []float64) (float64, error) {
	if len(times) < 2 {
		return 0, dynamo.ErrInvalidLength
	}
	dt := times[1] - times[0]
	if !(dt > 0) {
		return 0, dynamo.ErrNonUniformGrid
	}
	for i := 2; i < len(times); i++ {
		if math.Abs(times[i]-times[i-1]-dt) > GridTolerance*dt {
			return 0, dynamo.ErrNonUniformGrid
		}
	}
	return dt, nil
}
