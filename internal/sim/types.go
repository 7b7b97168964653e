package sim

import (
	"time"

	"github.com/san-kum/mrsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Phase is the lifecycle state of a Stepper.
type Phase int

const (
	Initializing Phase = iota
	Stepping
	Terminated
	Failed
)

func (p Phase) String() string {
	switch p {
	case Initializing:
		return "initializing"
	case Stepping:
		return "stepping"
	case Terminated:
		return "terminated"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Metric accumulates a scalar over the states of one run.
type Metric interface {
	Name() string
	Observe(s dynamo.ParticleState)
	Value() float64
	Reset()
}

// Observer is notified of every state, the release state included.
type Observer interface {
	OnStep(s dynamo.ParticleState)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(s dynamo.ParticleState)

func (f ObserverFunc) OnStep(s dynamo.ParticleState) { f(s) }

// Release is the initial condition of one particle.
type Release struct {
	Position r2.Vec
	Slip     r2.Vec
}

// Result is the outcome of one run. On failure Trajectory holds every state
// up to the last successful step and Err the cause.
type Result struct {
	Trajectory *dynamo.Trajectory
	Final      dynamo.ParticleState
	Phase      Phase
	Metrics    map[string]float64
	Err        error
	Elapsed    time.Duration
}
