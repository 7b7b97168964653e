package kernel

import (
	"math"
	"testing"

	"github.com/san-kum/mrsim/internal/config"
	"github.com/san-kum/mrsim/internal/dynamo"
	"github.com/san-kum/mrsim/internal/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

func params(t *testing.T, r, s float64) config.Dimensionless {
	t.Helper()
	p, err := config.NewDimensionless(1e-3, 100, r, s)
	require.NoError(t, err)
	return p
}

type hugeField struct{}

func (hugeField) Evaluate(x, y, t float64) (r2.Vec, error) {
	return r2.Vec{X: 1e300, Y: 1e300}, nil
}

func (hugeField) Derivatives(x, y, t float64) (flow.Derivatives, error) {
	return flow.Derivatives{DuDx: 1e300, DvDy: 1e300}, nil
}

func TestVelocityZeroFlow(t *testing.T) {
	p := params(t, 1, 0.5)

	g, err := Velocity(flow.Zero{}, p, r2.Vec{}, 0, r2.Vec{})
	require.NoError(t, err)
	assert.Equal(t, r2.Vec{}, g)

	g, err = Velocity(flow.Zero{}, p, r2.Vec{X: 3}, 1, r2.Vec{X: 1, Y: -2})
	require.NoError(t, err)
	assert.InDelta(t, -2, g.X, 1e-12)
	assert.InDelta(t, 4, g.Y, 1e-12)
}

func TestVelocityUniformFlowIsDragOnly(t *testing.T) {
	p := params(t, 2, 0.25)
	w := r2.Vec{X: 0.1, Y: 0.2}
	g, err := Velocity(flow.Uniform{U: r2.Vec{X: 5, Y: -1}}, p, r2.Vec{}, 0, w)
	require.NoError(t, err)
	assert.InDelta(t, -0.8, g.X, 1e-12)
	assert.InDelta(t, -1.6, g.Y, 1e-12)
}

func TestVelocityVortexCentripetal(t *testing.T) {
	// Unit speed on the unit circle: Du/Dt is the centripetal (-1, 0).
	v := flow.Vortex{Gamma: 2 * math.Pi}
	p := params(t, 2, 1)

	g, err := Velocity(v, p, r2.Vec{X: 1}, 0, r2.Vec{})
	require.NoError(t, err)
	assert.InDelta(t, -1, g.X, 1e-12)
	assert.InDelta(t, 0, g.Y, 1e-12)

	// Neutrally buoyant particles feel no local force at zero slip.
	g, err = Velocity(v, params(t, 1, 1), r2.Vec{X: 1}, 0, r2.Vec{})
	require.NoError(t, err)
	assert.InDelta(t, 0, r2.Norm(g), 1e-12)
}

func TestVelocityErrors(t *testing.T) {
	p := params(t, 1, 1)

	_, err := Velocity(flow.Vortex{Gamma: 1}, p, r2.Vec{}, 0, r2.Vec{})
	assert.ErrorIs(t, err, dynamo.ErrOutOfDomain)

	_, err = Velocity(hugeField{}, p, r2.Vec{}, 0, r2.Vec{X: 1e300})
	assert.ErrorIs(t, err, dynamo.ErrNumericOverflow)
}

func TestHistoryConstantSlip(t *testing.T) {
	p := params(t, 1.5, 0.2)
	times := floats.Span(make([]float64, 201), 0, 2)
	slips := make([]r2.Vec, len(times))
	for i := range slips {
		slips[i] = r2.Vec{X: 1, Y: -0.5}
	}

	for order := 1; order <= 3; order++ {
		h, err := History(slips, times, order, p)
		require.NoError(t, err)
		want := -p.HistoryScale() * 4 * math.Sqrt(2)
		assert.InDelta(t, want, h.X, 1e-9, "order %d", order)
		assert.InDelta(t, -0.5*want, h.Y, 1e-9, "order %d", order)
	}
}

func TestHistoryZeroSlip(t *testing.T) {
	times := floats.Span(make([]float64, 11), 0, 1)
	h, err := History(make([]r2.Vec, len(times)), times, 3, params(t, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, r2.Vec{}, h)
}

func TestHistoryErrors(t *testing.T) {
	p := params(t, 1, 1)
	slips := make([]r2.Vec, 3)

	_, err := History(slips, []float64{0, 1, 3}, 1, p)
	assert.ErrorIs(t, err, dynamo.ErrNonUniformGrid)

	_, err = History(slips, []float64{0, 1, 2}, 4, p)
	assert.ErrorIs(t, err, dynamo.ErrInvalidOrder)

	_, err = History(slips[:1], []float64{0}, 1, p)
	assert.ErrorIs(t, err, dynamo.ErrInvalidLength)
}

func TestForce(t *testing.T) {
	p := params(t, 1, 0.5)
	w := r2.Vec{X: 1}

	f, err := Force(flow.Zero{}, p, r2.Vec{}, []r2.Vec{w}, []float64{0}, 2)
	require.NoError(t, err)
	assert.InDelta(t, -2, f.X, 1e-12)

	times := []float64{0, 0.1, 0.2}
	slips := []r2.Vec{w, w, w}
	f, err = Force(flow.Zero{}, p, r2.Vec{}, slips, times, 2)
	require.NoError(t, err)
	h, err := History(slips, times, 2, p)
	require.NoError(t, err)
	assert.InDelta(t, -2+h.X, f.X, 1e-12)

	_, err = Force(flow.Zero{}, p, r2.Vec{}, nil, nil, 2)
	assert.ErrorIs(t, err, dynamo.ErrInvalidLength)
}
