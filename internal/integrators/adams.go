package integrators

import (
	"github.com/san-kum/mrsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

var abWeights = [...][]float64{
	1: {1},
	2: {3.0 / 2.0, -1.0 / 2.0},
	3: {23.0 / 12.0, -16.0 / 12.0, 5.0 / 12.0},
}

// AdamsBashforth returns the explicit Adams–Bashforth weights of the given
// order, newest derivative first.
func AdamsBashforth(order int) ([]float64, error) {
	if order < 1 || order > 3 {
		return nil, dynamo.ErrInvalidOrder
	}
	return append([]float64(nil), abWeights[order]...), nil
}

// Multistep keeps the most recent derivative values of one quantity and
// combines them with Adams–Bashforth weights. While fewer values than the
// target order are known it falls back to the highest order available, so
// the first step is an Euler step.
type Multistep struct {
	order int
	past  []r2.Vec // newest first
}

func NewMultistep(order int) (*Multistep, error) {
	if order < 1 || order > 3 {
		return nil, dynamo.ErrInvalidOrder
	}
	return &Multistep{order: order, past: make([]r2.Vec, 0, order)}, nil
}

// Push records the derivative at the newest time level.
func (m *Multistep) Push(f r2.Vec) {
	if len(m.past) < m.order {
		m.past = append(m.past, r2.Vec{})
	}
	copy(m.past[1:], m.past[:len(m.past)-1])
	m.past[0] = f
}

// Order is the order the next Increment will use.
func (m *Multistep) Order() int {
	return len(m.past)
}

// Increment returns h·Σ b_i·f_{n-i}.
func (m *Multistep) Increment(h float64) r2.Vec {
	var sum r2.Vec
	if len(m.past) == 0 {
		return sum
	}
	for i, b := range abWeights[len(m.past)] {
		sum = r2.Add(sum, r2.Scale(b, m.past[i]))
	}
	return r2.Scale(h, sum)
}

func (m *Multistep) Reset() {
	m.past = m.past[:0]
}
