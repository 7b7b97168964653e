package config

import (
	"fmt"
	"math"

	"github.com/san-kum/mrsim/internal/dynamo"
)

const (
	DefaultTimestep        = 1e-3
	DefaultSteps           = 1000
	DefaultFluidDensity    = 1.0
	DefaultFluidViscosity  = 1.0
	DefaultParticleDensity = 2.0
	DefaultParticleRadius  = 0.01
	DefaultVelocityScale   = 1.0
	DefaultTimeScale       = 1.0
)

// Parameters are the physical inputs of a run. The dimensionless numbers
// are derived from them unless DensityParameter or RelaxationParameter are
// set explicitly.
type Parameters struct {
	Timestep        float64 `yaml:"timestep"`
	Steps           int     `yaml:"n_steps"`
	FluidDensity    float64 `yaml:"fluid_density"`
	FluidViscosity  float64 `yaml:"fluid_viscosity"`
	ParticleDensity float64 `yaml:"particle_density"`
	ParticleRadius  float64 `yaml:"particle_radius"`
	VelocityScale   float64 `yaml:"velocity_scale"`
	TimeScale       float64 `yaml:"time_scale"`

	DensityParameter    *float64 `yaml:"density_parameter,omitempty"`
	RelaxationParameter *float64 `yaml:"relaxation_parameter,omitempty"`
}

func DefaultParameters() Parameters {
	return Parameters{
		Timestep:        DefaultTimestep,
		Steps:           DefaultSteps,
		FluidDensity:    DefaultFluidDensity,
		FluidViscosity:  DefaultFluidViscosity,
		ParticleDensity: DefaultParticleDensity,
		ParticleRadius:  DefaultParticleRadius,
		VelocityScale:   DefaultVelocityScale,
		TimeScale:       DefaultTimeScale,
	}
}

// Dimensionless is the resolved, read-only parameter set consumed by the
// kernels and the stepper.
type Dimensionless struct {
	dt float64
	n  int
	r  float64
	s  float64
}

// NewDimensionless builds a parameter set directly from R and S.
func NewDimensionless(dt float64, steps int, r, s float64) (Dimensionless, error) {
	switch {
	case !(dt > 0) || math.IsInf(dt, 0):
		return Dimensionless{}, fmt.Errorf("timestep must be positive, got %g: %w", dt, dynamo.ErrParameterBounds)
	case steps < 1:
		return Dimensionless{}, fmt.Errorf("n_steps must be at least 1, got %d: %w", steps, dynamo.ErrParameterBounds)
	case !(r >= 0) || math.IsInf(r, 0):
		return Dimensionless{}, fmt.Errorf("density parameter must be non-negative, got %g: %w", r, dynamo.ErrParameterBounds)
	case !(s > 0) || math.IsInf(s, 0):
		return Dimensionless{}, fmt.Errorf("relaxation parameter must be positive, got %g: %w", s, dynamo.ErrParameterBounds)
	}
	return Dimensionless{dt: dt, n: steps, r: r, s: s}, nil
}

// Nondimensionalise derives
//
//	R = 3ρf / (ρf + 2ρp)
//	S = a² / (3·ν·T)
//
// and validates the result.
func (p Parameters) Nondimensionalise() (Dimensionless, error) {
	positive := []struct {
		name  string
		value float64
	}{
		{"fluid_density", p.FluidDensity},
		{"fluid_viscosity", p.FluidViscosity},
		{"particle_density", p.ParticleDensity},
		{"particle_radius", p.ParticleRadius},
		{"velocity_scale", p.VelocityScale},
		{"time_scale", p.TimeScale},
	}
	for _, f := range positive {
		if !(f.value > 0) {
			return Dimensionless{}, fmt.Errorf("%s must be positive, got %g: %w", f.name, f.value, dynamo.ErrParameterBounds)
		}
	}

	r := 3 * p.FluidDensity / (p.FluidDensity + 2*p.ParticleDensity)
	if p.DensityParameter != nil {
		r = *p.DensityParameter
	}
	s := p.ParticleRadius * p.ParticleRadius / (3 * p.FluidViscosity * p.TimeScale)
	if p.RelaxationParameter != nil {
		s = *p.RelaxationParameter
	}
	return NewDimensionless(p.Timestep, p.Steps, r, s)
}

func (d Dimensionless) Timestep() float64 { return d.dt }
func (d Dimensionless) Steps() int        { return d.n }

// R is the density parameter; 0 for infinitely heavy particles, 3 for bubbles.
func (d Dimensionless) R() float64 { return d.r }

// S is the relaxation parameter, the particle response time in flow units.
func (d Dimensionless) S() float64 { return d.s }

// HistoryScale is the Basset prefactor R·sqrt(3/(π·S)).
func (d Dimensionless) HistoryScale() float64 {
	return d.r * math.Sqrt(3/(math.Pi*d.s))
}

// Stiffness is dt·R/S. Explicit stepping of the Stokes drag is unstable once
// it exceeds about 1.
func (d Dimensionless) Stiffness() float64 {
	return d.dt * d.r / d.s
}

// Duration is the simulated time span.
func (d Dimensionless) Duration() float64 {
	return d.dt * float64(d.n)
}

func (d Dimensionless) String() string {
	return fmt.Sprintf("dt=%g N=%d R=%.6g S=%.6g", d.dt, d.n, d.r, d.s)
}
