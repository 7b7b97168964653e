package flow

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vortex is a Rankine vortex of circulation Gamma centred at Centre. Outside
// the core radius it is the irrotational point vortex
//
//	u = Γ/(2π r²) · (-(y-yc), x-xc)
//
// and inside it rotates as a solid body. With Core == 0 the centre itself is
// out of domain.
type Vortex struct {
	Gamma  float64
	Centre r2.Vec
	Core   float64
}

func (f Vortex) Evaluate(x, y, t float64) (r2.Vec, error) {
	u, _, err := f.at(x, y, t, 1)
	return u, err
}

func (f Vortex) Derivatives(x, y, t float64) (Derivatives, error) {
	_, d, err := f.at(x, y, t, 1)
	return d, err
}

// at evaluates the vortex with its circulation scaled by strength.
func (f Vortex) at(x, y, t, strength float64) (r2.Vec, Derivatives, error) {
	dx, dy := x-f.Centre.X, y-f.Centre.Y
	rsq := dx*dx + dy*dy
	k := strength * f.Gamma / (2 * math.Pi)

	if rsq < f.Core*f.Core {
		a2 := f.Core * f.Core
		u := r2.Vec{X: -k * dy / a2, Y: k * dx / a2}
		return u, Derivatives{DuDy: -k / a2, DvDx: k / a2}, nil
	}
	if rsq == 0 {
		return r2.Vec{}, Derivatives{}, outOfDomain(x, y, t)
	}

	r4 := rsq * rsq
	u := r2.Vec{X: -k * dy / rsq, Y: k * dx / rsq}
	d := Derivatives{
		DuDx: 2 * k * dx * dy / r4,
		DuDy: -k * (dx*dx - dy*dy) / r4,
		DvDx: k * (dy*dy - dx*dx) / r4,
		DvDy: -2 * k * dx * dy / r4,
	}
	return u, d, nil
}

// Blink is the blinking vortex flow: two vortices at (-0.5, 0) and (0.5, 0)
// switched on alternately, each for half of Period.
type Blink struct {
	Gamma  float64
	Period float64
	Core   float64
}

// Tick is the strength of the left vortex, clip(sin(2πt/P), 0, 1), and its
// time derivative.
func Tick(t, period float64) (float64, float64) {
	w := 2 * math.Pi / period
	s := math.Sin(w * t)
	if s <= 0 {
		return 0, 0
	}
	return s, w * math.Cos(w*t)
}

// Tock is the strength of the right vortex, clip(-sin(2πt/P), 0, 1), and its
// time derivative.
func Tock(t, period float64) (float64, float64) {
	w := 2 * math.Pi / period
	s := -math.Sin(w * t)
	if s <= 0 {
		return 0, 0
	}
	return s, -w * math.Cos(w*t)
}

func (f Blink) vortices() [2]Vortex {
	return [2]Vortex{
		{Gamma: f.Gamma, Centre: r2.Vec{X: -0.5}, Core: f.Core},
		{Gamma: f.Gamma, Centre: r2.Vec{X: 0.5}, Core: f.Core},
	}
}

func (f Blink) Evaluate(x, y, t float64) (r2.Vec, error) {
	u, _, err := f.eval(x, y, t)
	return u, err
}

func (f Blink) Derivatives(x, y, t float64) (Derivatives, error) {
	_, d, err := f.eval(x, y, t)
	return d, err
}

func (f Blink) eval(x, y, t float64) (r2.Vec, Derivatives, error) {
	tick, dtick := Tick(t, f.Period)
	tock, dtock := Tock(t, f.Period)
	strengths := [2][2]float64{{tick, dtick}, {tock, dtock}}

	var u r2.Vec
	var d Derivatives
	for i, v := range f.vortices() {
		// unit strength gives the spatial shape; strengths scale it
		shape, grad, err := v.at(x, y, t, 1)
		if err != nil {
			return r2.Vec{}, Derivatives{}, err
		}
		s, ds := strengths[i][0], strengths[i][1]
		u = r2.Add(u, r2.Scale(s, shape))
		d.DuDx += s * grad.DuDx
		d.DuDy += s * grad.DuDy
		d.DvDx += s * grad.DvDx
		d.DvDy += s * grad.DvDy
		d.DuDt += ds * shape.X
		d.DvDt += ds * shape.Y
	}
	return u, d, nil
}
