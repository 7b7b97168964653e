package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/mrsim/internal/dynamo"
	"github.com/san-kum/mrsim/internal/history"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate/quad"
)

// ExactSineHistory is ∫₀ᵗ sin τ / sqrt(t-τ) dτ. The substitution τ = t - s²
// removes the singularity, leaving 2∫₀^√t sin(t - s²) ds, which is
// evaluated by Gauss–Legendre quadrature.
func ExactSineHistory(t float64) float64 {
	if t <= 0 {
		return 0
	}
	f := func(s float64) float64 { return math.Sin(t - s*s) }
	return 2 * quad.Fixed(f, 0, math.Sqrt(t), 128, quad.Legendre{}, 0)
}

// ConvergenceRow is the maximum error of one quadrature order on one grid.
// Rate is the observed order relative to the previous, coarser grid of the
// same order, or NaN for the first grid.
type ConvergenceRow struct {
	Order    int
	Points   int
	Step     float64
	MaxError float64
	Rate     float64
}

// Convergence integrates sin over [0, span] on uniform grids of each point
// count and reports, per order, the largest deviation of every running
// history integral from ExactSineHistory.
func Convergence(orders, counts []int, span float64) ([]ConvergenceRow, error) {
	if !(span > 0) {
		return nil, fmt.Errorf("span must be positive, got %g: %w", span, dynamo.ErrParameterBounds)
	}
	rows := make([]ConvergenceRow, 0, len(orders)*len(counts))
	for _, order := range orders {
		prev := ConvergenceRow{}
		for _, count := range counts {
			if count < 2 {
				return nil, fmt.Errorf("%d points: %w", count, dynamo.ErrInvalidLength)
			}
			maxErr, err := sineError(order, count, span)
			if err != nil {
				return nil, fmt.Errorf("order %d, %d points: %w", order, count, err)
			}
			row := ConvergenceRow{
				Order:    order,
				Points:   count,
				Step:     span / float64(count-1),
				MaxError: maxErr,
				Rate:     math.NaN(),
			}
			if prev.Points != 0 && prev.MaxError > 0 && maxErr > 0 {
				row.Rate = math.Log(prev.MaxError/maxErr) / math.Log(prev.Step/row.Step)
			}
			rows = append(rows, row)
			prev = row
		}
	}
	return rows, nil
}

func sineError(order, count int, span float64) (float64, error) {
	times := floats.Span(make([]float64, count), 0, span)
	states := make([]float64, count)
	for i, t := range times {
		states[i] = math.Sin(t)
	}

	errs := make([]float64, count)
	fails := make([]error, count)
	dynamo.ParallelFor(count-1, 16, func(start, end int) {
		for i := start + 1; i < end+1; i++ {
			got, err := history.Integrate(states[:i+1], times[:i+1], order)
			if err != nil {
				fails[i] = err
				return
			}
			errs[i] = math.Abs(got - ExactSineHistory(times[i]))
		}
	})
	for _, err := range fails {
		if err != nil {
			return 0, err
		}
	}
	return floats.Max(errs), nil
}
