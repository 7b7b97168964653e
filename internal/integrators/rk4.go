package integrators

import "gonum.org/v1/gonum/spatial/r2"

type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(sys System, x r2.Vec, t, dt float64) (r2.Vec, error) {
	k1, err := sys.Derive(x, t)
	if err != nil {
		return x, err
	}
	k2, err := sys.Derive(r2.Add(x, r2.Scale(dt*0.5, k1)), t+dt*0.5)
	if err != nil {
		return x, err
	}
	k3, err := sys.Derive(r2.Add(x, r2.Scale(dt*0.5, k2)), t+dt*0.5)
	if err != nil {
		return x, err
	}
	k4, err := sys.Derive(r2.Add(x, r2.Scale(dt, k3)), t+dt)
	if err != nil {
		return x, err
	}

	sum := r2.Add(r2.Add(k1, r2.Scale(2, k2)), r2.Add(r2.Scale(2, k3), k4))
	return r2.Add(x, r2.Scale(dt/6.0, sum)), nil
}
