package metrics

import (
	"math"

	"github.com/san-kum/mrsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// slipSamples collects |w| over a run.
type slipSamples struct {
	values []float64
}

func (s *slipSamples) observe(st dynamo.ParticleState) {
	s.values = append(s.values, r2.Norm(st.Slip))
}

func (s *slipSamples) reset() { s.values = s.values[:0] }

// MaxSlip is the largest slip speed seen.
type MaxSlip struct {
	name string
	slipSamples
}

func NewMaxSlip() *MaxSlip {
	return &MaxSlip{name: "max_slip"}
}

func (m *MaxSlip) Name() string                   { return m.name }
func (m *MaxSlip) Observe(s dynamo.ParticleState) { m.observe(s) }
func (m *MaxSlip) Reset()                         { m.reset() }

func (m *MaxSlip) Value() float64 {
	if len(m.values) == 0 {
		return 0
	}
	return floats.Max(m.values)
}

// MeanSlip is the mean slip speed over all observed states.
type MeanSlip struct {
	name string
	slipSamples
}

func NewMeanSlip() *MeanSlip {
	return &MeanSlip{name: "mean_slip"}
}

func (m *MeanSlip) Name() string                   { return m.name }
func (m *MeanSlip) Observe(s dynamo.ParticleState) { m.observe(s) }
func (m *MeanSlip) Reset()                         { m.reset() }

func (m *MeanSlip) Value() float64 {
	if len(m.values) == 0 {
		return 0
	}
	return stat.Mean(m.values, nil)
}

// SlipSpread is the standard deviation of the slip speed.
type SlipSpread struct {
	name string
	slipSamples
}

func NewSlipSpread() *SlipSpread {
	return &SlipSpread{name: "slip_stddev"}
}

func (m *SlipSpread) Name() string                   { return m.name }
func (m *SlipSpread) Observe(s dynamo.ParticleState) { m.observe(s) }
func (m *SlipSpread) Reset()                         { m.reset() }

func (m *SlipSpread) Value() float64 {
	if len(m.values) < 2 {
		return 0
	}
	sd := stat.StdDev(m.values, nil)
	if math.IsNaN(sd) {
		return 0
	}
	return sd
}
