package sim

import (
	"context"

	"github.com/san-kum/mrsim/internal/dynamo"
	"github.com/san-kum/mrsim/internal/flow"
	"github.com/san-kum/mrsim/internal/integrators"
	"gonum.org/v1/gonum/spatial/r2"
)

// TracerRun follows a massless fluid tracer, dr/dt = u(r, t), from pos0 for
// the given number of steps. Slip is zero throughout. On failure the
// trajectory up to the last good step is returned with a *dynamo.StepError.
func TracerRun(ctx context.Context, f flow.Field, integ integrators.Integrator, pos0 r2.Vec, dt float64, steps int) (*dynamo.Trajectory, error) {
	sys := integrators.SystemFunc(func(x r2.Vec, t float64) (r2.Vec, error) {
		return f.Evaluate(x.X, x.Y, t)
	})

	traj := dynamo.NewTrajectory(dynamo.ParticleState{Position: pos0})
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return traj, err
		}
		cur := traj.Last()
		pos, err := integ.Step(sys, cur.Position, cur.Time, dt)
		if err == nil {
			err = traj.Append(dynamo.ParticleState{Position: pos, Time: float64(i+1) * dt})
		}
		if err != nil {
			return traj, &dynamo.StepError{Step: i + 1, Time: cur.Time, State: cur, Wrapped: err}
		}
	}
	return traj, nil
}
