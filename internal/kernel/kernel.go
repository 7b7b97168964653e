// Package kernel evaluates the two force terms of the Maxey–Riley equation
// in slip form,
//
//	d/dt (w + ξ·I[w]) = G(r, t, w),   ξ = R·sqrt(3/(π·S)),
//
// where w is the slip velocity, I[w] the singular history integral and G the
// local velocity kernel. Both kernels are pure functions of their inputs.
package kernel

import (
	"fmt"

	"github.com/san-kum/mrsim/internal/config"
	"github.com/san-kum/mrsim/internal/dynamo"
	"github.com/san-kum/mrsim/internal/flow"
	"github.com/san-kum/mrsim/internal/history"
	"gonum.org/v1/gonum/spatial/r2"
)

// Velocity returns the local force
//
//	G = (R-1)·Du/Dt - R·(w·∇)u - (R/S)·w
//
// with u and its derivatives taken from f at pos and t.
func Velocity(f flow.Field, p config.Dimensionless, pos r2.Vec, t float64, w r2.Vec) (r2.Vec, error) {
	u, err := f.Evaluate(pos.X, pos.Y, t)
	if err != nil {
		return r2.Vec{}, err
	}
	d, err := f.Derivatives(pos.X, pos.Y, t)
	if err != nil {
		return r2.Vec{}, err
	}

	r, s := p.R(), p.S()
	g := r2.Sub(
		r2.Scale(r-1, d.Material(u)),
		r2.Add(r2.Scale(r, d.Advective(w)), r2.Scale(r/s, w)),
	)
	if !dynamo.IsFinite(g) {
		return r2.Vec{}, fmt.Errorf("velocity kernel at (%g, %g, t=%g): %w", pos.X, pos.Y, t, dynamo.ErrNumericOverflow)
	}
	return g, nil
}

// History returns -ξ·I[w] for the slip history sampled at times.
func History(slips []r2.Vec, times []float64, order int, p config.Dimensionless) (r2.Vec, error) {
	integral, err := history.IntegrateVec(slips, times, order)
	if err != nil {
		return r2.Vec{}, err
	}
	h := r2.Scale(-p.HistoryScale(), integral)
	if !dynamo.IsFinite(h) {
		return r2.Vec{}, fmt.Errorf("history kernel over %d samples: %w", len(slips), dynamo.ErrNumericOverflow)
	}
	return h, nil
}

// Force is the combined right-hand side G + H at the newest sample of the
// history. Histories with a single sample carry no history force.
func Force(f flow.Field, p config.Dimensionless, pos r2.Vec, slips []r2.Vec, times []float64, order int) (r2.Vec, error) {
	if len(slips) == 0 || len(slips) != len(times) {
		return r2.Vec{}, dynamo.ErrInvalidLength
	}
	n := len(slips) - 1
	g, err := Velocity(f, p, pos, times[n], slips[n])
	if err != nil {
		return r2.Vec{}, err
	}
	if n == 0 {
		return g, nil
	}
	h, err := History(slips, times, order, p)
	if err != nil {
		return r2.Vec{}, err
	}
	return r2.Add(g, h), nil
}
