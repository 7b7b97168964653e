package flow

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// VelocityFunc is a closed-form velocity field.
type VelocityFunc func(x, y, t float64) r2.Vec

// Func adapts a VelocityFunc to a Field, differentiating it numerically with
// second order central differences of step H (relative to the coordinate
// magnitude, with a floor of H itself).
type Func struct {
	F VelocityFunc
	H float64
}

const defaultStep = 1e-5

func NewFunc(f VelocityFunc) Func {
	return Func{F: f, H: defaultStep}
}

func (f Func) Evaluate(x, y, t float64) (r2.Vec, error) {
	u := f.F(x, y, t)
	if math.IsNaN(u.X) || math.IsNaN(u.Y) {
		return r2.Vec{}, outOfDomain(x, y, t)
	}
	return u, nil
}

func (f Func) Derivatives(x, y, t float64) (Derivatives, error) {
	hx, hy, ht := f.step(x), f.step(y), f.step(t)

	ddx := central(f.F(x+hx, y, t), f.F(x-hx, y, t), hx)
	ddy := central(f.F(x, y+hy, t), f.F(x, y-hy, t), hy)
	ddt := central(f.F(x, y, t+ht), f.F(x, y, t-ht), ht)

	d := Derivatives{
		DuDx: ddx.X, DvDx: ddx.Y,
		DuDy: ddy.X, DvDy: ddy.Y,
		DuDt: ddt.X, DvDt: ddt.Y,
	}
	for _, k := range DerivativeKeys {
		if v, _ := d.Key(k); math.IsNaN(v) || math.IsInf(v, 0) {
			return Derivatives{}, outOfDomain(x, y, t)
		}
	}
	return d, nil
}

func (f Func) step(v float64) float64 {
	h := f.H
	if h <= 0 {
		h = defaultStep
	}
	return h * math.Max(1, math.Abs(v))
}

func central(plus, minus r2.Vec, h float64) r2.Vec {
	return r2.Scale(1/(2*h), r2.Sub(plus, minus))
}
