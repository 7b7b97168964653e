package dynamo

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestTrajectoryAppend(t *testing.T) {
	traj := NewTrajectory(ParticleState{Position: r2.Vec{X: 1}, Time: 0})

	if err := traj.Append(ParticleState{Position: r2.Vec{X: 2}, Time: 0.1}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if traj.Len() != 2 || traj.Steps() != 1 {
		t.Errorf("got len %d steps %d, want 2 and 1", traj.Len(), traj.Steps())
	}
	if got := traj.Last().Position.X; got != 2 {
		t.Errorf("last x got %v, want 2", got)
	}
}

func TestTrajectoryRejects(t *testing.T) {
	tests := []struct {
		name  string
		state ParticleState
		want  error
	}{
		{"same time", ParticleState{Time: 0}, ErrTimeOrder},
		{"backwards", ParticleState{Time: -1}, ErrTimeOrder},
		{"nan slip", ParticleState{Slip: r2.Vec{X: math.NaN()}, Time: 1}, ErrNumericOverflow},
		{"inf position", ParticleState{Position: r2.Vec{Y: math.Inf(1)}, Time: 1}, ErrNumericOverflow},
	}

	for _, tt := range tests {
		traj := NewTrajectory(ParticleState{})
		err := traj.Append(tt.state)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
		if traj.Len() != 1 {
			t.Errorf("%s: rejected state was stored", tt.name)
		}
	}
}

func TestTrajectoryCopies(t *testing.T) {
	traj := NewTrajectory(ParticleState{Slip: r2.Vec{X: 1, Y: 1}})
	slips := traj.Slips()
	slips[0] = r2.Vec{}

	if traj.First().Slip.X != 1 {
		t.Error("modifying a returned slice changed the trajectory")
	}
}

func TestTrajectoryColumn(t *testing.T) {
	traj := NewTrajectory(ParticleState{Position: r2.Vec{X: 1, Y: 2}, Slip: r2.Vec{X: 3, Y: 4}})

	tests := []struct {
		name string
		want float64
	}{
		{"x", 1}, {"y", 2}, {"wx", 3}, {"wy", 4}, {"slip", 5},
	}
	for _, tt := range tests {
		col, ok := traj.Column(tt.name)
		if !ok {
			t.Fatalf("column %s not found", tt.name)
		}
		if col[0] != tt.want {
			t.Errorf("column %s got %v, want %v", tt.name, col[0], tt.want)
		}
	}
	if _, ok := traj.Column("energy"); ok {
		t.Error("expected unknown column to be rejected")
	}
}

func TestStepErrorUnwrap(t *testing.T) {
	err := &StepError{Step: 3, Time: 0.003, Wrapped: ErrOutOfDomain}
	if !errors.Is(err, ErrOutOfDomain) {
		t.Errorf("errors.Is failed through StepError: %v", err)
	}
}

func TestParallelForCoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100, 1001} {
		hits := make([]int32, n)
		ParallelFor(n, 8, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("n=%d index %d visited %d times", n, i, h)
			}
		}
	}
}
