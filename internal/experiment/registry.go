package experiment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/mrsim/internal/config"
	"github.com/san-kum/mrsim/internal/flow"
	"github.com/san-kum/mrsim/internal/integrators"
	"github.com/san-kum/mrsim/internal/metrics"
	"github.com/san-kum/mrsim/internal/sim"
)

// GridPrefix selects a stored flow grid: "grid:<path>".
const GridPrefix = "grid:"

// FlowFactory builds a field from the flow options of a config.
type FlowFactory func(opts config.FlowOptions) (flow.Field, error)

type Registry struct {
	flows       map[string]FlowFactory
	integrators map[string]func() integrators.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		flows:       make(map[string]FlowFactory),
		integrators: make(map[string]func() integrators.Integrator),
	}

	r.flows["zero"] = func(config.FlowOptions) (flow.Field, error) { return flow.Zero{}, nil }
	r.flows["uniform"] = func(o config.FlowOptions) (flow.Field, error) {
		return flow.Uniform{U: o.U.R2()}, nil
	}
	r.flows["vortex"] = func(o config.FlowOptions) (flow.Field, error) {
		return flow.Vortex{Gamma: o.Gamma, Centre: o.Centre.R2(), Core: o.Core}, nil
	}
	r.flows["blink"] = func(o config.FlowOptions) (flow.Field, error) {
		if !(o.Period > 0) {
			return nil, fmt.Errorf("blink period must be positive, got %g", o.Period)
		}
		return flow.Blink{Gamma: o.Gamma, Period: o.Period, Core: o.Core}, nil
	}
	r.flows["grid"] = func(o config.FlowOptions) (flow.Field, error) {
		if o.Path == "" {
			return nil, fmt.Errorf("grid flow needs a path")
		}
		return flow.LoadGrid(o.Path)
	}

	r.integrators["euler"] = func() integrators.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() integrators.Integrator { return integrators.NewRK4() }

	return r
}

// Register adds or replaces a named flow.
func (r *Registry) Register(name string, f FlowFactory) {
	r.flows[name] = f
}

// GetFlow builds the flow called name. A "grid:<path>" name loads the grid
// stored at path.
func (r *Registry) GetFlow(name string, opts config.FlowOptions) (flow.Field, error) {
	if path, ok := strings.CutPrefix(name, GridPrefix); ok {
		opts.Path = path
		name = "grid"
	}
	fn, ok := r.flows[name]
	if !ok {
		return nil, fmt.Errorf("unknown flow: %s", name)
	}
	return fn(opts)
}

func (r *Registry) GetIntegrator(name string) (integrators.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListFlows() []string {
	names := make([]string, 0, len(r.flows))
	for name := range r.flows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns a fresh set of every trajectory metric.
func (r *Registry) DefaultMetrics() []sim.Metric {
	return metrics.Defaults()
}
