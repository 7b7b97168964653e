package config

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"

	"github.com/san-kum/mrsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFlow       = "blink"
	DefaultOrder      = 3
	DefaultTracer     = "rk4"
	DefaultGamma      = 1.0
	DefaultPeriod     = 1.0
	DefaultParticles  = 1
	DefaultRadius     = 0.1
	DefaultReleaseX   = 0.1
	DefaultReleaseY   = 0.5
	DefaultSpreadSize = 0.05
)

// Config describes one run: the flow, the release and the physical
// parameters.
type Config struct {
	Flow        string      `yaml:"flow"`
	FlowOptions FlowOptions `yaml:"flow_options"`
	Order       int         `yaml:"order"`
	Tracer      string      `yaml:"tracer_integrator"`
	Position    Vec         `yaml:"position"`
	Slip        Vec         `yaml:"slip"`
	Parameters  Parameters  `yaml:"parameters"`
	Seed        int64       `yaml:"seed"`
	Particles   int         `yaml:"particles"`
	Spread      float64     `yaml:"spread"`
}

// FlowOptions parameterise the built-in flows. Fields a flow does not use
// are ignored.
type FlowOptions struct {
	Gamma  float64 `yaml:"gamma" json:"gamma"`
	Period float64 `yaml:"period" json:"period"`
	Core   float64 `yaml:"core" json:"core"`
	Centre Vec     `yaml:"centre" json:"centre"`
	U      Vec     `yaml:"u" json:"u"`
	Path   string  `yaml:"path,omitempty" json:"path,omitempty"`
}

type Vec struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

func (v Vec) R2() r2.Vec { return r2.Vec{X: v.X, Y: v.Y} }

func FromR2(v r2.Vec) Vec { return Vec{X: v.X, Y: v.Y} }

func DefaultConfig() *Config {
	params := DefaultParameters()
	params.ParticleRadius = DefaultRadius
	return &Config{
		Flow:        DefaultFlow,
		FlowOptions: FlowOptions{Gamma: DefaultGamma, Period: DefaultPeriod},
		Order:       DefaultOrder,
		Tracer:      DefaultTracer,
		Position:    Vec{X: DefaultReleaseX, Y: DefaultReleaseY},
		Parameters:  params,
		Particles:   DefaultParticles,
		Spread:      DefaultSpreadSize,
	}
}

// Validate checks the run settings and the derived dimensionless numbers.
func (c *Config) Validate() error {
	if c.Flow == "" {
		return fmt.Errorf("flow must be set: %w", dynamo.ErrParameterBounds)
	}
	if c.Order < 1 || c.Order > 3 {
		return fmt.Errorf("order %d: %w", c.Order, dynamo.ErrInvalidOrder)
	}
	if c.Particles < 1 {
		return fmt.Errorf("particles must be at least 1, got %d: %w", c.Particles, dynamo.ErrParameterBounds)
	}
	if c.Spread < 0 || math.IsNaN(c.Spread) {
		return fmt.Errorf("spread must be non-negative, got %g: %w", c.Spread, dynamo.ErrParameterBounds)
	}
	_, err := c.Parameters.Nondimensionalise()
	return err
}

// Releases returns the release points of an ensemble: the configured
// position first, then points drawn uniformly from the square of half-width
// Spread around it. The draw depends only on Seed.
func (c *Config) Releases() []r2.Vec {
	n := max(c.Particles, 1)
	pts := make([]r2.Vec, n)
	pts[0] = c.Position.R2()

	rng := rand.New(rand.NewPCG(uint64(c.Seed), 0x6d72))
	for i := 1; i < n; i++ {
		pts[i] = r2.Vec{
			X: c.Position.X + c.Spread*(2*rng.Float64()-1),
			Y: c.Position.Y + c.Spread*(2*rng.Float64()-1),
		}
	}
	return pts
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
