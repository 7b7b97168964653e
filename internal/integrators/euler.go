package integrators

import "gonum.org/v1/gonum/spatial/r2"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys System, x r2.Vec, t, dt float64) (r2.Vec, error) {
	dx, err := sys.Derive(x, t)
	if err != nil {
		return x, err
	}
	return r2.Add(x, r2.Scale(dt, dx)), nil
}
