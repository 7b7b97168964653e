// Package automation runs scripted sequences of particle releases.
package automation

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/mrsim/internal/config"
	"github.com/san-kum/mrsim/internal/experiment"
	"github.com/san-kum/mrsim/internal/sim"
	"github.com/san-kum/mrsim/internal/storage"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Scenario is a named list of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Its config starts from Preset ("flow/name") or
// the defaults, and Config overrides any field given.
type ScenarioStep struct {
	Name   string    `yaml:"name"`
	Preset string    `yaml:"preset"`
	Config yaml.Node `yaml:"config"`
}

// StepResult pairs a step with its outcome. RunID is empty when no store
// was given.
type StepResult struct {
	Name   string
	RunID  string
	Config *config.Config
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Build resolves the config of the step.
func (s ScenarioStep) Build() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		flowName, name, ok := strings.Cut(s.Preset, "/")
		if !ok {
			return nil, fmt.Errorf("preset %q: want flow/name", s.Preset)
		}
		if cfg = config.GetPreset(flowName, name); cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", s.Preset)
		}
	}
	if !s.Config.IsZero() {
		if err := s.Config.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes the steps in order and saves each result to st when
// st is not nil. A particle that fails mid-run is saved and the scenario
// continues; a step that cannot be set up stops it.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, st *storage.Store) ([]StepResult, error) {
	log := logrus.WithFields(logrus.Fields{"component": "automation", "scenario": scenario.Name})
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		log.WithField("step", name).Infof("running step %d/%d", i+1, len(scenario.Steps))

		cfg, err := step.Build()
		if err != nil {
			return results, fmt.Errorf("step %s: %w", name, err)
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(registry, registry.DefaultMetrics()); err != nil {
			return results, fmt.Errorf("step %s setup: %w", name, err)
		}

		result, err := exp.Run(ctx)
		if result == nil {
			return results, fmt.Errorf("step %s run: %w", name, err)
		}
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		if err != nil {
			log.WithField("step", name).WithError(err).Warn("particle run failed")
		}

		sr := StepResult{Name: name, Config: cfg, Result: result}
		if st != nil {
			if sr.RunID, err = st.Save(cfg, exp.Params(), result); err != nil {
				return results, fmt.Errorf("step %s save: %w", name, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// Failures counts the steps whose particle run failed.
func Failures(results []StepResult) int {
	n := 0
	for _, r := range results {
		if r.Result.Err != nil {
			n++
		}
	}
	return n
}
