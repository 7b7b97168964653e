package flow

import (
	"fmt"

	"github.com/san-kum/mrsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Field is a 2-D, time dependent fluid velocity.
//
// Implementations return an error wrapping dynamo.ErrOutOfDomain when they
// cannot answer at the requested point. A Field has no mutable state and may
// be shared between goroutines.
type Field interface {
	Evaluate(x, y, t float64) (r2.Vec, error)
	Derivatives(x, y, t float64) (Derivatives, error)
}

// Derivatives are the first partial derivatives of the velocity (u, v).
type Derivatives struct {
	DuDx, DuDy, DuDt float64
	DvDx, DvDy, DvDt float64
}

// Advective returns (a·∇)u for the velocity field.
func (d Derivatives) Advective(a r2.Vec) r2.Vec {
	return r2.Vec{
		X: a.X*d.DuDx + a.Y*d.DuDy,
		Y: a.X*d.DvDx + a.Y*d.DvDy,
	}
}

// Local returns ∂u/∂t.
func (d Derivatives) Local() r2.Vec {
	return r2.Vec{X: d.DuDt, Y: d.DvDt}
}

// Material returns Du/Dt = ∂u/∂t + (u·∇)u for the velocity u at the point.
func (d Derivatives) Material(u r2.Vec) r2.Vec {
	return r2.Add(d.Local(), d.Advective(u))
}

// Vorticity returns ∂v/∂x - ∂u/∂y.
func (d Derivatives) Vorticity() float64 {
	return d.DvDx - d.DuDy
}

// Divergence returns ∂u/∂x + ∂v/∂y.
func (d Derivatives) Divergence() float64 {
	return d.DuDx + d.DvDy
}

// Key returns the derivative named "d{u|v}/d{x|y|t}".
func (d Derivatives) Key(name string) (float64, bool) {
	switch name {
	case "du/dx":
		return d.DuDx, true
	case "du/dy":
		return d.DuDy, true
	case "du/dt":
		return d.DuDt, true
	case "dv/dx":
		return d.DvDx, true
	case "dv/dy":
		return d.DvDy, true
	case "dv/dt":
		return d.DvDt, true
	}
	return 0, false
}

// DerivativeKeys lists the derivative names in storage order.
var DerivativeKeys = []string{"du/dx", "du/dy", "du/dt", "dv/dx", "dv/dy", "dv/dt"}

func outOfDomain(x, y, t float64) error {
	return fmt.Errorf("flow at (%g, %g, t=%g): %w", x, y, t, dynamo.ErrOutOfDomain)
}

// Zero is a fluid at rest.
type Zero struct{}

func (Zero) Evaluate(x, y, t float64) (r2.Vec, error)         { return r2.Vec{}, nil }
func (Zero) Derivatives(x, y, t float64) (Derivatives, error) { return Derivatives{}, nil }

// Uniform is a constant velocity everywhere.
type Uniform struct {
	U r2.Vec
}

func (f Uniform) Evaluate(x, y, t float64) (r2.Vec, error)         { return f.U, nil }
func (f Uniform) Derivatives(x, y, t float64) (Derivatives, error) { return Derivatives{}, nil }
