// Package integrators holds the explicit time steppers used for particle and
// tracer paths: one-step Euler and RK4, and the Adams–Bashforth combiner used
// by the inertial particle stepper.
package integrators

import "gonum.org/v1/gonum/spatial/r2"

// System is a first order ODE dx/dt = f(x, t) in the plane.
type System interface {
	Derive(x r2.Vec, t float64) (r2.Vec, error)
}

// SystemFunc adapts a function to a System.
type SystemFunc func(x r2.Vec, t float64) (r2.Vec, error)

func (f SystemFunc) Derive(x r2.Vec, t float64) (r2.Vec, error) { return f(x, t) }

// Integrator advances a System by one step of size dt.
type Integrator interface {
	Step(sys System, x r2.Vec, t, dt float64) (r2.Vec, error)
}

// New returns the one-step integrator called name ("euler" or "rk4").
func New(name string) (Integrator, bool) {
	switch name {
	case "euler":
		return NewEuler(), true
	case "rk4":
		return NewRK4(), true
	}
	return nil, false
}
