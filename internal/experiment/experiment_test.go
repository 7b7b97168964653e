package experiment

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/san-kum/mrsim/internal/config"
	"github.com/san-kum/mrsim/internal/flow"
	"github.com/san-kum/mrsim/internal/metrics"
	"github.com/san-kum/mrsim/internal/sim"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestRegistryFlows(t *testing.T) {
	reg := NewRegistry()
	want := []string{"blink", "grid", "uniform", "vortex", "zero"}
	got := reg.ListFlows()
	if len(got) != len(want) {
		t.Fatalf("ListFlows() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListFlows()[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	f, err := reg.GetFlow("uniform", config.FlowOptions{U: config.Vec{X: 2}})
	if err != nil {
		t.Fatal(err)
	}
	u, _ := f.Evaluate(5, 5, 5)
	if u.X != 2 || u.Y != 0 {
		t.Errorf("uniform velocity = %v, want (2, 0)", u)
	}

	if _, err := reg.GetFlow("bogus", config.FlowOptions{}); err == nil {
		t.Error("expected error for unknown flow")
	}
	if _, err := reg.GetFlow("blink", config.FlowOptions{Gamma: 1}); err == nil {
		t.Error("expected error for zero blink period")
	}
	if _, err := reg.GetFlow("grid", config.FlowOptions{}); err == nil {
		t.Error("expected error for grid without path")
	}
}

func TestRegistryGridFlow(t *testing.T) {
	xs := floats.Span(make([]float64, 5), -1, 1)
	ts := floats.Span(make([]float64, 3), 0, 1)
	g, err := flow.Generate(flow.Uniform{U: r2.Vec{Y: 1}}, xs, xs, ts)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "uniform.gob")
	if err := flow.SaveGrid(path, g); err != nil {
		t.Fatal(err)
	}

	f, err := NewRegistry().GetFlow(GridPrefix+path, config.FlowOptions{})
	if err != nil {
		t.Fatal(err)
	}
	u, err := f.Evaluate(0.3, -0.2, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(u.Y-1) > 1e-12 {
		t.Errorf("grid velocity = %v, want (0, 1)", u)
	}
}

func TestRegistryIntegrators(t *testing.T) {
	reg := NewRegistry()
	for _, name := range reg.ListIntegrators() {
		if _, err := reg.GetIntegrator(name); err != nil {
			t.Errorf("GetIntegrator(%s): %v", name, err)
		}
	}
	if _, err := reg.GetIntegrator("verlet"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

func relaxConfig() *config.Config {
	cfg := config.GetPreset("zero", "relax")
	cfg.Parameters.Steps = 50
	return cfg
}

func TestExperimentRun(t *testing.T) {
	reg := NewRegistry()
	exp := New(relaxConfig())

	if _, err := exp.Run(context.Background()); err == nil {
		t.Error("expected error before setup")
	}
	if err := exp.Setup(reg, []sim.Metric{metrics.NewMaxSlip()}); err != nil {
		t.Fatal(err)
	}

	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Phase != sim.Terminated {
		t.Errorf("phase = %v, want terminated", res.Phase)
	}
	if res.Trajectory.Steps() != 50 {
		t.Errorf("steps = %d, want 50", res.Trajectory.Steps())
	}
	if got := res.Metrics["max_slip"]; math.Abs(got-1) > 1e-12 {
		t.Errorf("max_slip = %v, want the release slip 1", got)
	}
	if r2.Norm(res.Final.Slip) >= 1 {
		t.Errorf("slip did not decay: %v", res.Final.Slip)
	}
}

func TestExperimentSetupErrors(t *testing.T) {
	cfg := relaxConfig()
	cfg.Order = 7
	if err := New(cfg).Setup(NewRegistry(), nil); err == nil {
		t.Error("expected error for invalid order")
	}

	cfg = relaxConfig()
	cfg.Flow = "nowhere"
	if err := New(cfg).Setup(NewRegistry(), nil); err == nil {
		t.Error("expected error for unknown flow")
	}
}

func TestExperimentEnsemble(t *testing.T) {
	cfg := relaxConfig()
	cfg.Particles = 4
	cfg.Spread = 0.1
	exp := New(cfg)
	if err := exp.Setup(NewRegistry(), nil); err != nil {
		t.Fatal(err)
	}

	results, err := exp.RunEnsemble(context.Background(), 2, metrics.Defaults)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	for i, res := range results {
		if res.Err != nil {
			t.Errorf("particle %d: %v", i, res.Err)
		}
		if _, ok := res.Metrics["path_length"]; !ok {
			t.Errorf("particle %d: missing path_length metric", i)
		}
	}
	if results[0].Trajectory.First().Position != cfg.Position.R2() {
		t.Errorf("first particle released at %v, want %v", results[0].Trajectory.First().Position, cfg.Position.R2())
	}
}

func TestExperimentTracer(t *testing.T) {
	cfg := config.GetPreset("uniform", "drift")
	cfg.Parameters.Steps = 10
	exp := New(cfg)
	reg := NewRegistry()
	if err := exp.Setup(reg, nil); err != nil {
		t.Fatal(err)
	}

	traj, err := exp.Tracer(context.Background(), reg)
	if err != nil {
		t.Fatal(err)
	}
	last := traj.Last()
	want := cfg.Position.X + last.Time
	if math.Abs(last.Position.X-want) > 1e-12 {
		t.Errorf("tracer x = %v, want %v", last.Position.X, want)
	}
}
