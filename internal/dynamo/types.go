package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ParticleState is the position and slip velocity of a particle at one instant.
type ParticleState struct {
	Position r2.Vec
	Slip     r2.Vec
	Time     float64
}

func (s ParticleState) IsValid() bool {
	return IsFinite(s.Position) && IsFinite(s.Slip) && !math.IsNaN(s.Time) && !math.IsInf(s.Time, 0)
}

// Velocity returns the particle velocity given the fluid velocity at its position.
func (s ParticleState) Velocity(fluid r2.Vec) r2.Vec {
	return r2.Add(s.Slip, fluid)
}

// IsFinite reports whether both components of v are finite.
func IsFinite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Trajectory is the append-only history of one particle. Times are strictly
// increasing and index 0 holds the release state.
type Trajectory struct {
	times     []float64
	positions []r2.Vec
	slips     []r2.Vec
}

func NewTrajectory(initial ParticleState) *Trajectory {
	t := &Trajectory{}
	t.push(initial)
	return t
}

// NewTrajectoryFrom rebuilds a trajectory from stored columns.
func NewTrajectoryFrom(states []ParticleState) (*Trajectory, error) {
	if len(states) == 0 {
		return nil, ErrInvalidLength
	}
	t := NewTrajectory(states[0])
	for _, s := range states[1:] {
		if err := t.Append(s); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Append adds s after the last state. It rejects states that do not move time
// forward or carry non-finite values.
func (t *Trajectory) Append(s ParticleState) error {
	if !s.IsValid() {
		return ErrNumericOverflow
	}
	if s.Time <= t.times[len(t.times)-1] {
		return ErrTimeOrder
	}
	t.push(s)
	return nil
}

func (t *Trajectory) push(s ParticleState) {
	t.times = append(t.times, s.Time)
	t.positions = append(t.positions, s.Position)
	t.slips = append(t.slips, s.Slip)
}

func (t *Trajectory) Len() int { return len(t.times) }

// Steps is the number of completed steps, Len()-1.
func (t *Trajectory) Steps() int { return len(t.times) - 1 }

func (t *Trajectory) At(i int) ParticleState {
	return ParticleState{Position: t.positions[i], Slip: t.slips[i], Time: t.times[i]}
}

func (t *Trajectory) First() ParticleState { return t.At(0) }

func (t *Trajectory) Last() ParticleState { return t.At(len(t.times) - 1) }

func (t *Trajectory) Times() []float64 {
	c := make([]float64, len(t.times))
	copy(c, t.times)
	return c
}

func (t *Trajectory) Positions() []r2.Vec {
	c := make([]r2.Vec, len(t.positions))
	copy(c, t.positions)
	return c
}

func (t *Trajectory) Slips() []r2.Vec {
	c := make([]r2.Vec, len(t.slips))
	copy(c, t.slips)
	return c
}

func (t *Trajectory) States() []ParticleState {
	states := make([]ParticleState, len(t.times))
	for i := range states {
		states[i] = t.At(i)
	}
	return states
}

func (t *Trajectory) Clone() *Trajectory {
	return &Trajectory{times: t.Times(), positions: t.Positions(), slips: t.Slips()}
}

// Column extracts one scalar series from the trajectory: "x", "y", "wx",
// "wy" or "slip" (slip magnitude).
func (t *Trajectory) Column(name string) ([]float64, bool) {
	out := make([]float64, len(t.times))
	for i := range out {
		switch name {
		case "x":
			out[i] = t.positions[i].X
		case "y":
			out[i] = t.positions[i].Y
		case "wx":
			out[i] = t.slips[i].X
		case "wy":
			out[i] = t.slips[i].Y
		case "slip":
			out[i] = r2.Norm(t.slips[i])
		default:
			return nil, false
		}
	}
	return out, true
}
