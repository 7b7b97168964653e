package config

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/mrsim/internal/dynamo"
)

func TestNondimensionalise(t *testing.T) {
	p := DefaultParameters()
	d, err := p.Nondimensionalise()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(d.R()-0.6) > 1e-15 {
		t.Errorf("R = %g, want 0.6", d.R())
	}
	if math.Abs(d.S()-1e-4/3) > 1e-18 {
		t.Errorf("S = %g, want %g", d.S(), 1e-4/3)
	}
	if d.Timestep() != DefaultTimestep || d.Steps() != DefaultSteps {
		t.Errorf("dt/N = %g/%d", d.Timestep(), d.Steps())
	}
	if math.Abs(d.Duration()-1) > 1e-12 {
		t.Errorf("duration %g", d.Duration())
	}
	if want := 0.6 * math.Sqrt(3/(math.Pi*d.S())); math.Abs(d.HistoryScale()-want) > 1e-12*want {
		t.Errorf("history scale %g, want %g", d.HistoryScale(), want)
	}
	if math.Abs(d.Stiffness()-18) > 1e-9 {
		t.Errorf("stiffness %g, want 18", d.Stiffness())
	}
}

func TestNondimensionaliseOverrides(t *testing.T) {
	p := DefaultParameters()
	p.DensityParameter = ptr(1)
	p.RelaxationParameter = ptr(0.25)
	d, err := p.Nondimensionalise()
	if err != nil {
		t.Fatal(err)
	}
	if d.R() != 1 || d.S() != 0.25 {
		t.Errorf("got R=%g S=%g", d.R(), d.S())
	}
}

func TestNondimensionaliseBounds(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Parameters)
	}{
		{"fluid density", func(p *Parameters) { p.FluidDensity = 0 }},
		{"viscosity", func(p *Parameters) { p.FluidViscosity = -1 }},
		{"particle density", func(p *Parameters) { p.ParticleDensity = 0 }},
		{"radius", func(p *Parameters) { p.ParticleRadius = math.NaN() }},
		{"time scale", func(p *Parameters) { p.TimeScale = 0 }},
		{"steps", func(p *Parameters) { p.Steps = 0 }},
		{"timestep", func(p *Parameters) { p.Timestep = math.Inf(1) }},
		{"negative R", func(p *Parameters) { p.DensityParameter = ptr(-1) }},
		{"zero S", func(p *Parameters) { p.RelaxationParameter = ptr(0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParameters()
			tt.modify(&p)
			if _, err := p.Nondimensionalise(); !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("got %v, want ErrParameterBounds", err)
			}
		})
	}
}

func TestDimensionlessString(t *testing.T) {
	d, err := NewDimensionless(0.01, 10, 1, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if got := d.String(); got != "dt=0.01 N=10 R=1 S=0.5" {
		t.Errorf("String() = %q", got)
	}
}
