package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/mrsim/internal/config"
	"github.com/san-kum/mrsim/internal/dynamo"
	"github.com/san-kum/mrsim/internal/flow"
	"github.com/san-kum/mrsim/internal/sim"
)

// Experiment binds a config to a flow and a simulator.
type Experiment struct {
	cfg       *config.Config
	field     flow.Field
	params    config.Dimensionless
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup validates the config, builds its flow from reg and attaches
// metrics to a new simulator.
func (e *Experiment) Setup(reg *Registry, ms []sim.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	params, err := e.cfg.Parameters.Nondimensionalise()
	if err != nil {
		return err
	}
	field, err := reg.GetFlow(e.cfg.Flow, e.cfg.FlowOptions)
	if err != nil {
		return err
	}

	e.field = field
	e.params = params
	e.simulator = sim.New(field, params, e.cfg.Order)
	for _, m := range ms {
		e.simulator.AddMetric(m)
	}
	return nil
}

// Run releases a single particle at the configured position and slip.
func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, sim.Release{
		Position: e.cfg.Position.R2(),
		Slip:     e.cfg.Slip.R2(),
	})
}

// RunEnsemble releases cfg.Particles particles around the configured
// position. Each run gets its own metric set from newMetrics, which may be
// nil.
func (e *Experiment) RunEnsemble(ctx context.Context, workers int, newMetrics func() []sim.Metric) ([]*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	points := e.cfg.Releases()
	releases := make([]sim.Release, len(points))
	for i, p := range points {
		releases[i] = sim.Release{Position: p, Slip: e.cfg.Slip.R2()}
	}

	ens := sim.NewEnsemble(e.simulator, workers)
	ens.Metrics = newMetrics
	return ens.Run(ctx, releases)
}

// Tracer follows a fluid tracer from the configured position with the
// configured one-step integrator, over the same steps as a particle run.
func (e *Experiment) Tracer(ctx context.Context, reg *Registry) (*dynamo.Trajectory, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	integ, err := reg.GetIntegrator(e.cfg.Tracer)
	if err != nil {
		return nil, err
	}
	return sim.TracerRun(ctx, e.field, integ, e.cfg.Position.R2(), e.params.Timestep(), e.params.Steps())
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Field() flow.Field { return e.field }

func (e *Experiment) Params() config.Dimensionless { return e.params }

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }
