// Package optim searches parameter grids for the run that minimises or
// maximises a trajectory metric.
package optim

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/san-kum/mrsim/internal/config"
	"github.com/san-kum/mrsim/internal/experiment"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Parameter names understood by ConfigBuilder.
const (
	ParamR     = "R"
	ParamS     = "S"
	ParamOrder = "order"
)

// GridSearch enumerates the cartesian product of named value ranges.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	Workers    int
	Maximize   bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// NewSweep searches the density parameter, the relaxation parameter and the
// quadrature order. An empty range leaves that setting as configured.
func NewSweep(rs, ss []float64, orders []int) *GridSearch {
	g := NewGridSearch(nil, nil)
	if len(rs) > 0 {
		g.paramNames = append(g.paramNames, ParamR)
		g.ranges = append(g.ranges, rs)
	}
	if len(ss) > 0 {
		g.paramNames = append(g.paramNames, ParamS)
		g.ranges = append(g.ranges, ss)
	}
	if len(orders) > 0 {
		vals := make([]float64, len(orders))
		for i, o := range orders {
			vals[i] = float64(o)
		}
		g.paramNames = append(g.paramNames, ParamOrder)
		g.ranges = append(g.ranges, vals)
	}
	return g
}

// Point is one evaluated grid point. Err is set when the run could not be
// built or its particle failed; Value is then NaN.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// Points lists every grid point in row-major order of the parameters.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.pointsRecursive(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) pointsRecursive(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val
		g.pointsRecursive(depth+1, newParams, out)
	}
}

// Search runs the experiment built for every grid point concurrently and
// returns all points in grid order together with the best one. Points whose
// run fails are kept in the table but never chosen as best.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) ([]Point, Point, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, Point{}, fmt.Errorf("%d parameter names for %d ranges", len(g.paramNames), len(g.ranges))
	}
	log := logrus.WithFields(logrus.Fields{"component": "optim", "metric": metricName})

	params := g.Points()
	points := make([]Point, len(params))
	workers := g.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, p := range params {
		eg.Go(func() error {
			points[i] = g.evaluate(ctx, p, buildExperiment, metricName)
			log.WithFields(logrus.Fields(toFields(p))).WithField("value", points[i].Value).Debug("grid point done")
			return ctx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return points, Point{}, err
	}

	best := Point{Value: math.NaN()}
	for _, p := range points {
		if p.Err != nil || math.IsNaN(p.Value) {
			continue
		}
		if math.IsNaN(best.Value) || g.better(p.Value, best.Value) {
			best = p
		}
	}
	if best.Params == nil {
		return points, best, fmt.Errorf("no grid point produced %s", metricName)
	}
	return points, best, nil
}

func (g *GridSearch) better(a, b float64) bool {
	if g.Maximize {
		return a > b
	}
	return a < b
}

func (g *GridSearch) evaluate(
	ctx context.Context,
	params map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
) Point {
	pt := Point{Params: params, Value: math.NaN()}
	exp, err := buildExperiment(params)
	if err != nil {
		pt.Err = err
		return pt
	}
	result, err := exp.Run(ctx)
	if err != nil {
		pt.Err = err
		return pt
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		pt.Err = fmt.Errorf("run did not report metric %q", metricName)
		return pt
	}
	pt.Value = val
	return pt
}

func toFields(p map[string]float64) map[string]any {
	f := make(map[string]any, len(p))
	for k, v := range p {
		f[k] = v
	}
	return f
}

// ConfigBuilder returns a builder that applies grid parameters to a copy of
// base and sets up an experiment with the named metric.
func ConfigBuilder(base *config.Config, reg *experiment.Registry) func(map[string]float64) (*experiment.Experiment, error) {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := *base
		for name, v := range params {
			switch name {
			case ParamR:
				cfg.Parameters.DensityParameter = &v
			case ParamS:
				cfg.Parameters.RelaxationParameter = &v
			case ParamOrder:
				cfg.Order = int(v)
			default:
				return nil, fmt.Errorf("unknown sweep parameter %q", name)
			}
		}

		exp := experiment.New(&cfg)
		if err := exp.Setup(reg, reg.DefaultMetrics()); err != nil {
			return nil, err
		}
		return exp, nil
	}
}

// Sorted returns the successful points ordered from best to worst.
func (g *GridSearch) Sorted(points []Point) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if p.Err == nil && !math.IsNaN(p.Value) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return g.better(out[i].Value, out[j].Value) })
	return out
}

// Names returns the swept parameter names in grid order.
func (g *GridSearch) Names() []string {
	return append([]string(nil), g.paramNames...)
}
