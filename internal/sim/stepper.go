package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/mrsim/internal/config"
	"github.com/san-kum/mrsim/internal/dynamo"
	"github.com/san-kum/mrsim/internal/flow"
	"github.com/san-kum/mrsim/internal/history"
	"github.com/san-kum/mrsim/internal/integrators"
	"github.com/san-kum/mrsim/internal/kernel"
	"gonum.org/v1/gonum/spatial/r2"
)

// Stepper advances one inertial particle through a flow.
//
// The slip velocity obeys d/dt(w + ξI) = G, integrated over one step as
//
//	w_{n+1} + ξI_{n+1} = w_n + ξI_n + h·AB(G)
//
// with I the history integral ∫ w(τ)/sqrt(t-τ) dτ from the release time.
// The newest history sample w_{n+1} enters I_{n+1} only through the
// first quadrature weight and is solved for implicitly. The position follows
// dr/dt = w + u with the same Adams–Bashforth order, started up from lower
// orders. Each step re-reduces the whole slip history.
//
// A Stepper is not safe for concurrent use.
type Stepper struct {
	field  flow.Field
	params config.Dimensionless
	order  int
	phase  Phase
	err    error

	traj *dynamo.Trajectory

	// convolution work buffers; slips[n+1] is zero while the next
	// history term is evaluated
	slips []r2.Vec
	times []float64
	hist  r2.Vec

	force *integrators.Multistep
	drift *integrators.Multistep
}

// NewStepper seeds a trajectory at t=0 and leaves the stepper ready to
// advance.
func NewStepper(f flow.Field, p config.Dimensionless, order int, pos0, slip0 r2.Vec) (*Stepper, error) {
	if f == nil {
		return nil, fmt.Errorf("stepper: nil flow field")
	}
	force, err := integrators.NewMultistep(order)
	if err != nil {
		return nil, err
	}
	drift, _ := integrators.NewMultistep(order)

	initial := dynamo.ParticleState{Position: pos0, Slip: slip0}
	if !initial.IsValid() {
		return nil, fmt.Errorf("stepper: initial state: %w", dynamo.ErrNumericOverflow)
	}

	capacity := min(p.Steps()+2, 1<<16)
	s := &Stepper{
		field:  f,
		params: p,
		order:  order,
		phase:  Initializing,
		traj:   dynamo.NewTrajectory(initial),
		slips:  make([]r2.Vec, 1, capacity),
		times:  make([]float64, 1, capacity),
		force:  force,
		drift:  drift,
	}
	s.slips[0] = slip0
	s.phase = Stepping
	return s, nil
}

// Advance computes the next state, appends it and returns it. Once the
// configured number of steps is reached the stepper terminates; later calls
// return ErrTerminated. A kernel failure moves the stepper to Failed and is
// returned as a *dynamo.StepError; later calls return ErrFailed.
func (s *Stepper) Advance() (dynamo.ParticleState, error) {
	switch s.phase {
	case Terminated:
		return dynamo.ParticleState{}, dynamo.ErrTerminated
	case Failed:
		return dynamo.ParticleState{}, dynamo.ErrFailed
	}

	n := s.traj.Steps()
	cur := s.traj.Last()
	h := s.params.Timestep()

	g, err := kernel.Velocity(s.field, s.params, cur.Position, cur.Time, cur.Slip)
	if err != nil {
		return s.fail(n+1, cur, err)
	}
	u, err := s.field.Evaluate(cur.Position.X, cur.Position.Y, cur.Time)
	if err != nil {
		return s.fail(n+1, cur, err)
	}

	next := float64(n+1) * h
	s.slips = append(s.slips, r2.Vec{})
	s.times = append(s.times, next)
	open, err := kernel.History(s.slips, s.times, s.order, s.params)
	if err != nil {
		return s.fail(n+1, cur, err)
	}
	w, err := history.Coefficients(n+1, s.order)
	if err != nil {
		return s.fail(n+1, cur, err)
	}
	xi := s.params.HistoryScale()
	c := xi * math.Sqrt(h) * w[0]

	s.force.Push(g)
	s.drift.Push(r2.Add(cur.Slip, u))

	// The history kernel carries 2·sqrt(t)·w_0 on top of the integral;
	// remove its increment so the initial slip is not counted twice.
	start := r2.Scale(2*xi*(math.Sqrt(next)-math.Sqrt(cur.Time)), s.slips[0])
	rhs := r2.Add(r2.Add(cur.Slip, s.force.Increment(h)), r2.Add(r2.Sub(open, s.hist), start))
	state := dynamo.ParticleState{
		Position: r2.Add(cur.Position, s.drift.Increment(h)),
		Slip:     r2.Scale(1/(1+c), rhs),
		Time:     next,
	}
	if err := s.traj.Append(state); err != nil {
		return s.fail(n+1, cur, err)
	}

	s.slips[n+1] = state.Slip
	s.hist = r2.Sub(open, r2.Scale(c, state.Slip))

	if s.traj.Steps() >= s.params.Steps() {
		s.phase = Terminated
	}
	return state, nil
}

func (s *Stepper) fail(step int, cur dynamo.ParticleState, err error) (dynamo.ParticleState, error) {
	s.phase = Failed
	s.err = &dynamo.StepError{Step: step, Time: cur.Time, State: cur, Wrapped: err}
	return dynamo.ParticleState{}, s.err
}

// Stop terminates a stepping run early. It has no effect once the stepper
// has terminated or failed.
func (s *Stepper) Stop() {
	if s.phase == Stepping {
		s.phase = Terminated
	}
}

func (s *Stepper) Phase() Phase { return s.phase }

// Err is the failure that moved the stepper to Failed, or nil.
func (s *Stepper) Err() error { return s.err }

func (s *Stepper) Order() int { return s.order }

// State is the newest state of the trajectory.
func (s *Stepper) State() dynamo.ParticleState { return s.traj.Last() }

// Steps is the number of completed advances.
func (s *Stepper) Steps() int { return s.traj.Steps() }

// Trajectory returns a copy of the states computed so far.
func (s *Stepper) Trajectory() *dynamo.Trajectory { return s.traj.Clone() }

// HistoryForce is the history kernel at the newest state.
func (s *Stepper) HistoryForce() r2.Vec { return s.hist }
