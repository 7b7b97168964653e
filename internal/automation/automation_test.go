package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/mrsim/internal/experiment"
	"github.com/san-kum/mrsim/internal/sim"
	"github.com/san-kum/mrsim/internal/storage"
)

const scenarioYAML = `
name: relaxation
description: slip decay then a vortex orbit
steps:
  - name: relax
    preset: zero/relax
    config:
      parameters:
        n_steps: 40
  - preset: vortex/orbit
    config:
      order: 1
      parameters:
        n_steps: 20
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "relaxation" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}

	cfg, err := sc.Steps[1].Build()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Flow != "vortex" || cfg.Order != 1 || cfg.Parameters.Steps != 20 {
		t.Errorf("overrides not applied: flow=%s order=%d steps=%d", cfg.Flow, cfg.Order, cfg.Parameters.Steps)
	}
	if cfg.FlowOptions.Core != 0.05 {
		t.Errorf("preset flow options lost: %+v", cfg.FlowOptions)
	}

	if _, err := ParseScenario([]byte("name: empty\n")); err == nil {
		t.Error("expected error for scenario without steps")
	}
}

func TestBuildErrors(t *testing.T) {
	for _, preset := range []string{"nowhere/none", "zero", "zero/none"} {
		if _, err := (ScenarioStep{Preset: preset}).Build(); err == nil {
			t.Errorf("preset %q: expected error", preset)
		}
	}

	sc, err := ParseScenario([]byte("steps:\n  - config:\n      order: 9\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sc.Steps[0].Build(); err == nil {
		t.Error("expected validation error for order 9")
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	st := storage.New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), st)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Name != "relax" || results[1].Name != "step-2" {
		t.Errorf("names = %s, %s", results[0].Name, results[1].Name)
	}
	for _, r := range results {
		if r.Result.Phase != sim.Terminated {
			t.Errorf("%s: phase %v", r.Name, r.Result.Phase)
		}
		if _, err := os.Stat(filepath.Join(st.Dir(), r.RunID, "trajectory.csv")); err != nil {
			t.Errorf("%s: %v", r.Name, err)
		}
	}
	if Failures(results) != 0 {
		t.Errorf("Failures = %d, want 0", Failures(results))
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("stored %d runs, want 2", len(runs))
	}
}

func TestRunScenarioStopsOnSetupError(t *testing.T) {
	sc, err := ParseScenario([]byte("steps:\n  - preset: zero/rest\n    config:\n      parameters:\n        n_steps: 5\n  - config:\n      flow: bogus\n"))
	if err != nil {
		t.Fatal(err)
	}
	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), nil)
	if err == nil {
		t.Fatal("expected error for unknown flow")
	}
	if len(results) != 1 || results[0].RunID != "" {
		t.Errorf("results before failure = %+v", results)
	}
}
