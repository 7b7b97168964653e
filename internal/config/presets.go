package config

import (
	"math"
	"sort"
)

func ptr(v float64) *float64 { return &v }

func preset(flow string, opts FlowOptions, pos, slip Vec, tweak func(*Parameters)) *Config {
	cfg := DefaultConfig()
	cfg.Flow = flow
	cfg.FlowOptions = opts
	cfg.Position = pos
	cfg.Slip = slip
	if tweak != nil {
		tweak(&cfg.Parameters)
	}
	return cfg
}

var Presets = map[string]map[string]*Config{
	"zero": {
		"rest": preset("zero", FlowOptions{}, Vec{}, Vec{}, nil),
		"relax": preset("zero", FlowOptions{}, Vec{}, Vec{X: 1}, func(p *Parameters) {
			p.DensityParameter = ptr(2)
			p.RelaxationParameter = ptr(1)
			p.Timestep = 0.005
			p.Steps = 400
		}),
	},
	"uniform": {
		"drift": preset("uniform", FlowOptions{U: Vec{X: 1}}, Vec{X: -1}, Vec{}, nil),
		"settle": preset("uniform", FlowOptions{U: Vec{X: 1}}, Vec{X: -1}, Vec{Y: -0.5}, func(p *Parameters) {
			p.Steps = 2000
		}),
	},
	"vortex": {
		"orbit": preset("vortex", FlowOptions{Gamma: 2 * math.Pi, Core: 0.05}, Vec{X: 1}, Vec{}, func(p *Parameters) {
			p.Steps = 3000
		}),
		"heavy": preset("vortex", FlowOptions{Gamma: 2 * math.Pi, Core: 0.05}, Vec{X: 1}, Vec{}, func(p *Parameters) {
			p.ParticleDensity = 10
			p.Steps = 3000
		}),
		"bubble": preset("vortex", FlowOptions{Gamma: 2 * math.Pi, Core: 0.05}, Vec{X: 1}, Vec{}, func(p *Parameters) {
			p.ParticleDensity = 0.01
			p.Steps = 3000
		}),
	},
	"blink": {
		"default": preset("blink", FlowOptions{Gamma: 1, Period: 1, Core: 0.05}, Vec{X: 0.1, Y: 0.5}, Vec{}, nil),
		"long": preset("blink", FlowOptions{Gamma: 1, Period: 1, Core: 0.05}, Vec{X: 0.1, Y: 0.5}, Vec{}, func(p *Parameters) {
			p.Steps = 5000
		}),
		"heavy": preset("blink", FlowOptions{Gamma: 1, Period: 1, Core: 0.05}, Vec{X: -0.3, Y: 0.2}, Vec{}, func(p *Parameters) {
			p.ParticleDensity = 10
			p.Steps = 3000
		}),
		"fast": preset("blink", FlowOptions{Gamma: 2, Period: 0.5, Core: 0.05}, Vec{X: 0.1, Y: 0.5}, Vec{}, func(p *Parameters) {
			p.Steps = 2000
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(flow, preset string) *Config {
	flowPresets, ok := Presets[flow]
	if !ok {
		return nil
	}
	cfg, ok := flowPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	if p := cfg.Parameters.DensityParameter; p != nil {
		c.Parameters.DensityParameter = ptr(*p)
	}
	if p := cfg.Parameters.RelaxationParameter; p != nil {
		c.Parameters.RelaxationParameter = ptr(*p)
	}
	return &c
}

func ListPresets(flow string) []string {
	flowPresets, ok := Presets[flow]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(flowPresets))
	for name := range flowPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetFlows lists the flows that have presets.
func PresetFlows() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
