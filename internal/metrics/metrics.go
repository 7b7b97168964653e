// Package metrics provides scalar summaries of particle trajectories.
package metrics

import (
	"sort"

	"github.com/san-kum/mrsim/internal/dynamo"
	"github.com/san-kum/mrsim/internal/sim"
)

var constructors = map[string]func() sim.Metric{
	"path_length":  func() sim.Metric { return NewPathLength() },
	"displacement": func() sim.Metric { return NewDisplacement() },
	"max_slip":     func() sim.Metric { return NewMaxSlip() },
	"mean_slip":    func() sim.Metric { return NewMeanSlip() },
	"slip_stddev":  func() sim.Metric { return NewSlipSpread() },
}

// Names lists the available metrics.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for n := range constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ByName returns a fresh metric, or false if name is unknown.
func ByName(name string) (sim.Metric, bool) {
	c, ok := constructors[name]
	if !ok {
		return nil, false
	}
	return c(), true
}

// Defaults returns a fresh instance of every metric.
func Defaults() []sim.Metric {
	names := Names()
	out := make([]sim.Metric, len(names))
	for i, n := range names {
		out[i] = constructors[n]()
	}
	return out
}

// Evaluate replays a stored trajectory through the given metrics.
func Evaluate(traj *dynamo.Trajectory, ms ...sim.Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for i := 0; i < traj.Len(); i++ {
			m.Observe(traj.At(i))
		}
		out[m.Name()] = m.Value()
	}
	return out
}
